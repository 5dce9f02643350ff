package core

import (
	"context"
	"fmt"
	"time"

	"chemcore/pkg/domain"
	"chemcore/pkg/meta"
)

// Service exposes higher-level network operations with metrics observation.
type Service struct {
	store   domain.Network
	metrics MetricsRecorder
}

// NewService constructs a service backed by the supplied store. A nil
// recorder disables metrics.
func NewService(store domain.Network, rec MetricsRecorder) *Service {
	if rec == nil {
		rec = NoopMetricsRecorder{}
	}
	return &Service{store: store, metrics: rec}
}

// NewInMemoryService creates a service over a fresh in-memory network.
func NewInMemoryService(rec MetricsRecorder) *Service {
	return NewService(NewNetwork(), rec)
}

// Store returns the underlying network implementation.
func (s *Service) Store() domain.Network {
	return s.store
}

func (s *Service) observe(ctx context.Context, operation string, start time.Time, err error) {
	s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
}

// AddMolecule registers a molecule.
func (s *Service) AddMolecule(ctx context.Context, mol domain.Molecule, md domain.Metadata) (domain.MolIndex, error) {
	start := time.Now()
	idx, err := s.store.AddMolecule(mol, md)
	s.observe(ctx, "add_molecule", start, err)
	return idx, err
}

// AddOperator registers an operator.
func (s *Service) AddOperator(ctx context.Context, op domain.Operator, md domain.Metadata) (domain.OpIndex, error) {
	start := time.Now()
	idx, err := s.store.AddOperator(op, md)
	s.observe(ctx, "add_operator", start, err)
	return idx, err
}

// AddReaction registers a reaction.
func (s *Service) AddReaction(ctx context.Context, op domain.OpIndex, reactants, products []domain.MolIndex, md domain.Metadata) (domain.RxnIndex, error) {
	start := time.Now()
	idx, err := s.store.AddReaction(op, reactants, products, md)
	s.observe(ctx, "add_reaction", start, err)
	return idx, err
}

// Views assembles reaction views for the given handles.
func (s *Service) Views(ctx context.Context, indices ...domain.RxnIndex) ([]domain.ReactionView, error) {
	start := time.Now()
	views := make([]domain.ReactionView, len(indices))
	var err error
	for i, idx := range indices {
		views[i], err = s.store.ReactionView(idx)
		if err != nil {
			break
		}
	}
	s.observe(ctx, "views", start, err)
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Analyze runs the analysis step over the given reactions, all initially
// passing, and commits the resulting metadata back to the store. The full
// output stream is returned so callers can inspect pass/fail status.
func (s *Service) Analyze(ctx context.Context, step meta.Step, indices []domain.RxnIndex) ([]meta.StreamItem, error) {
	start := time.Now()
	out, err := s.analyze(step, indices)
	s.observe(ctx, "analyze", start, err)
	return out, err
}

func (s *Service) analyze(step meta.Step, indices []domain.RxnIndex) ([]meta.StreamItem, error) {
	items := make([]meta.StreamItem, len(indices))
	for i, idx := range indices {
		view, err := s.store.ReactionView(idx)
		if err != nil {
			return nil, err
		}
		items[i] = meta.StreamItem{Reaction: view, Passing: true}
	}
	out := meta.Collect(step.Execute(meta.Stream(items)))
	for _, item := range out {
		if err := s.commitView(item.Reaction); err != nil {
			return out, err
		}
	}
	return out, nil
}

// commitView writes a view's metadata snapshots back through the store's
// update interface.
func (s *Service) commitView(view domain.ReactionView) error {
	for k, v := range view.Operator.Meta {
		if err := s.store.SetOperatorMeta(view.Operator.Index, k, v); err != nil {
			return fmt.Errorf("commit operator meta: %w", err)
		}
	}
	for _, pkt := range view.Reactants {
		for k, v := range pkt.Meta {
			if err := s.store.SetMoleculeMeta(pkt.Index, k, v); err != nil {
				return fmt.Errorf("commit reactant meta: %w", err)
			}
		}
	}
	for _, pkt := range view.Products {
		for k, v := range pkt.Meta {
			if err := s.store.SetMoleculeMeta(pkt.Index, k, v); err != nil {
				return fmt.Errorf("commit product meta: %w", err)
			}
		}
	}
	for k, v := range view.Meta {
		if err := s.store.SetReactionMeta(view.Index, k, v); err != nil {
			return fmt.Errorf("commit reaction meta: %w", err)
		}
	}
	return nil
}

// ApplyUpdates runs a composed metadata update against each view in order,
// committing the results.
func (s *Service) ApplyUpdates(ctx context.Context, upd meta.Update, views []domain.ReactionView) error {
	start := time.Now()
	var err error
	for _, view := range views {
		updated, changed := upd.Apply(view, s.store)
		if !changed {
			continue
		}
		if err = s.commitView(updated); err != nil {
			break
		}
	}
	s.observe(ctx, "apply_updates", start, err)
	return err
}

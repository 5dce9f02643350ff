package meta

import (
	"iter"

	"chemcore/pkg/domain"
)

// StreamItem pairs a reaction view with its pass/fail status. Failed items
// stay in the stream so downstream steps can still see and annotate them;
// they are excluded from aggregate computations only.
type StreamItem struct {
	Reaction domain.ReactionView
	Passing  bool
}

// Step is one stage of the analysis pipeline, applied over a stream of
// reaction items. Steps compose linearly via Then.
type Step interface {
	Execute(items iter.Seq[StreamItem]) iter.Seq[StreamItem]
}

// Stream adapts a slice to the pipeline's lazy stream form.
func Stream(items []StreamItem) iter.Seq[StreamItem] {
	return func(yield func(StreamItem) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// Collect materializes a stream into a slice.
func Collect(items iter.Seq[StreamItem]) []StreamItem {
	var out []StreamItem
	for item := range items {
		out = append(out, item)
	}
	return out
}

type compoundStep struct {
	first, second Step
}

// Then chains two steps so the second consumes the exact stream the first
// produced. Order-sensitive; key collisions across sequential steps are
// intentional overwrites, so no disjointness check applies.
func Then(first, second Step) Step {
	return compoundStep{first: first, second: second}
}

func (s compoundStep) Execute(items iter.Seq[StreamItem]) iter.Seq[StreamItem] {
	return s.second.Execute(s.first.Execute(items))
}

// Filter is a boolean predicate over a reaction view.
type Filter interface {
	Accept(rxn domain.ReactionView) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(rxn domain.ReactionView) bool

// Accept implements Filter.
func (f FilterFunc) Accept(rxn domain.ReactionView) bool { return f(rxn) }

type filterStep struct {
	filter Filter
}

// NewFilterStep builds a step that evaluates the predicate for each
// currently-passing item, flipping it to failed on rejection. Items that are
// already failed pass through untouched and the predicate is not consulted.
func NewFilterStep(f Filter) Step {
	return filterStep{filter: f}
}

func (s filterStep) Execute(items iter.Seq[StreamItem]) iter.Seq[StreamItem] {
	return func(yield func(StreamItem) bool) {
		for item := range items {
			if item.Passing && !s.filter.Accept(item.Reaction) {
				item.Passing = false
			}
			if !yield(item) {
				return
			}
		}
	}
}

type annotateStep struct {
	comp Compositor
}

// NewAnnotateStep builds a step that materializes the entire upstream stream,
// composes a fragment for each currently-passing reaction, reduces the
// fragments into one state, and projects that state back onto every reaction
// in the stream. Materialization is a deliberate synchronization point: the
// resolver-guided merge must see every passing reaction's contribution before
// any reaction's metadata is final.
func NewAnnotateStep(c Compositor) Step {
	return annotateStep{comp: c}
}

func (s annotateStep) Execute(items iter.Seq[StreamItem]) iter.Seq[StreamItem] {
	return func(yield func(StreamItem) bool) {
		list := Collect(items)
		state := NewPropertyState()
		for _, item := range list {
			if item.Passing {
				state = state.Merge(s.comp.Compose(item.Reaction))
			}
		}
		molInfo := state.MolInfo()
		opInfo := state.OpInfo()
		rxnInfo := state.RxnInfo()
		for _, item := range list {
			item.Reaction = project(item.Reaction, molInfo, opInfo, rxnInfo)
			if !yield(item) {
				return
			}
		}
	}
}

// project unions computed metadata into a fresh copy of the view. Existing
// metadata wins on key collision; handles absent from the computed maps
// simply receive no new metadata.
func project(view domain.ReactionView, molInfo map[domain.MolIndex]domain.Metadata, opInfo map[domain.OpIndex]domain.Metadata, rxnInfo map[domain.RxnIndex]domain.Metadata) domain.ReactionView {
	out := view.Clone()
	out.Operator.Meta = unionMeta(out.Operator.Meta, opInfo[out.Operator.Index])
	for i, pkt := range out.Reactants {
		out.Reactants[i].Meta = unionMeta(pkt.Meta, molInfo[pkt.Index])
	}
	for i, pkt := range out.Products {
		out.Products[i].Meta = unionMeta(pkt.Meta, molInfo[pkt.Index])
	}
	out.Meta = unionMeta(out.Meta, rxnInfo[out.Index])
	return out
}

func unionMeta(prior, computed domain.Metadata) domain.Metadata {
	if len(computed) == 0 {
		return prior
	}
	out := computed.Clone()
	for k, v := range prior {
		out[k] = v
	}
	return out
}

package core

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"chemcore/pkg/domain"
)

// snapshotVersion is bumped whenever the envelope layout changes.
const snapshotVersion = 1

type snapshotEnvelope struct {
	Version  int             `json:"version"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// ExportState captures the full observable state of the network.
func (n *Network) ExportState() domain.Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()

	snap := domain.Snapshot{
		Molecules: make([]domain.MoleculeRecord, len(n.mols)),
		Operators: make([]domain.OperatorRecord, len(n.ops)),
		Reactions: make([]domain.ReactionRecord, len(n.rxns)),
		Compat:    make([][][]domain.MolIndex, len(n.compat)),
	}
	for i, mol := range n.mols {
		snap.Molecules[i] = domain.MoleculeRecord{
			UID:  mol.UID(),
			Blob: append([]byte(nil), mol.Blob()...),
			Meta: n.molMeta[i].Clone(),
		}
	}
	for i, op := range n.ops {
		snap.Operators[i] = domain.OperatorRecord{
			UID:   op.UID(),
			Arity: op.Arity(),
			Blob:  append([]byte(nil), op.Blob()...),
			Meta:  n.opMeta[i].Clone(),
		}
	}
	for i, rxn := range n.rxns {
		snap.Reactions[i] = domain.ReactionRecord{
			Reaction: rxn.Clone(),
			Meta:     n.rxnMeta[i].Clone(),
		}
	}
	for i, row := range n.compat {
		cp := make([][]domain.MolIndex, len(row))
		for arg, mols := range row {
			cp[arg] = append([]domain.MolIndex(nil), mols...)
		}
		snap.Compat[i] = cp
	}
	return snap
}

// ImportState replaces the network contents with the snapshot, rehydrating
// opaque payloads through the codec. Producer/consumer indices are rederived
// from the reaction registry.
func (n *Network) ImportState(snap domain.Snapshot, codec domain.Codec) error {
	if codec.Molecule == nil || codec.Operator == nil {
		return fmt.Errorf("import state: codec must decode molecules and operators")
	}

	mols := make([]domain.Molecule, len(snap.Molecules))
	for i, rec := range snap.Molecules {
		mol, err := codec.Molecule(rec.UID, rec.Blob)
		if err != nil {
			return fmt.Errorf("decode molecule %s: %w", rec.UID, err)
		}
		mols[i] = mol
	}
	ops := make([]domain.Operator, len(snap.Operators))
	for i, rec := range snap.Operators {
		op, err := codec.Operator(rec.UID, rec.Arity, rec.Blob)
		if err != nil {
			return fmt.Errorf("decode operator %s: %w", rec.UID, err)
		}
		ops[i] = op
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.mols = mols
	n.ops = ops
	n.rxns = make([]domain.Reaction, len(snap.Reactions))
	n.molMap = make(map[domain.Identifier]domain.MolIndex, len(mols))
	n.opMap = make(map[domain.Identifier]domain.OpIndex, len(ops))
	n.rxnMap = make(map[domain.ReactionKey]domain.RxnIndex, len(snap.Reactions))
	n.molMeta = make([]domain.Metadata, len(mols))
	n.opMeta = make([]domain.Metadata, len(ops))
	n.rxnMeta = make([]domain.Metadata, len(snap.Reactions))
	n.producers = make(map[domain.MolIndex]map[domain.RxnIndex]struct{})
	n.consumers = make(map[domain.MolIndex]map[domain.RxnIndex]struct{})

	for i, rec := range snap.Molecules {
		n.molMap[rec.UID] = domain.MolIndex(i)
		n.molMeta[i] = rec.Meta.Clone()
		if n.molMeta[i] == nil {
			n.molMeta[i] = domain.Metadata{}
		}
	}
	for i, rec := range snap.Operators {
		n.opMap[rec.UID] = domain.OpIndex(i)
		n.opMeta[i] = rec.Meta.Clone()
		if n.opMeta[i] == nil {
			n.opMeta[i] = domain.Metadata{}
		}
	}
	for i, rec := range snap.Reactions {
		rxn := rec.Reaction.Clone()
		n.rxns[i] = rxn
		n.rxnMap[rxn.Key()] = domain.RxnIndex(i)
		n.rxnMeta[i] = rec.Meta.Clone()
		if n.rxnMeta[i] == nil {
			n.rxnMeta[i] = domain.Metadata{}
		}
		idx := domain.RxnIndex(i)
		for _, m := range rxn.Products {
			if n.producers[m] == nil {
				n.producers[m] = make(map[domain.RxnIndex]struct{})
			}
			n.producers[m][idx] = struct{}{}
		}
		for _, m := range rxn.Reactants {
			if n.consumers[m] == nil {
				n.consumers[m] = make(map[domain.RxnIndex]struct{})
			}
			n.consumers[m][idx] = struct{}{}
		}
	}

	n.compat = make([][][]domain.MolIndex, len(snap.Compat))
	for i, row := range snap.Compat {
		cp := make([][]domain.MolIndex, len(row))
		for arg, list := range row {
			cp[arg] = append([]domain.MolIndex(nil), list...)
		}
		n.compat[i] = cp
	}
	return nil
}

// Serialize encodes the network as a versioned, gzip-compressed JSON blob.
func (n *Network) Serialize() ([]byte, error) {
	env := snapshotEnvelope{Version: snapshotVersion, Snapshot: n.ExportState()}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(env); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot unpacks a serialized blob into its snapshot without
// rehydrating payloads. Corrupt or version-mismatched blobs fail with an
// error wrapping domain.ErrCorruptSnapshot.
func DecodeSnapshot(blob []byte) (domain.Snapshot, error) {
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	defer func() { _ = zr.Close() }()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	var env snapshotEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	if env.Version != snapshotVersion {
		return domain.Snapshot{}, fmt.Errorf("%w: unsupported version %d", domain.ErrCorruptSnapshot, env.Version)
	}
	return env.Snapshot, nil
}

// Deserialize reconstructs a network from a blob produced by Serialize,
// using the codec to rehydrate opaque payloads.
func Deserialize(blob []byte, codec domain.Codec) (*Network, error) {
	snap, err := DecodeSnapshot(blob)
	if err != nil {
		return nil, err
	}
	n := NewNetwork()
	if err := n.ImportState(snap, codec); err != nil {
		return nil, err
	}
	return n, nil
}

// Package domain defines the core network entities, handle types, capability
// interfaces, and error values used by chemcore.
package domain

import (
	"fmt"
	"strings"
)

// Identifier is the externally meaningful, hashable key distinguishing one
// molecule or operator from another (e.g. a canonical structure key). It is
// distinct from the integer handle a network assigns.
type Identifier string

// MolIndex is a stable handle identifying a molecule within a network.
// Handles are assigned monotonically and never reused or invalidated.
type MolIndex int

// OpIndex is a stable handle identifying an operator within a network.
type OpIndex int

// RxnIndex is a stable handle identifying a reaction within a network.
type RxnIndex int

// EntityType identifies the kind of record stored in a network.
type EntityType string

// Supported entity type identifiers used in errors and persistence buckets.
const (
	// EntityMolecule identifies a molecule record.
	EntityMolecule EntityType = "molecule"
	// EntityOperator identifies an operator record.
	EntityOperator EntityType = "operator"
	// EntityReaction identifies a reaction record.
	EntityReaction EntityType = "reaction"
)

// DataUnit is the minimal capability surface shared by molecules and
// operators: a unique identity and an opaque serializable payload. The
// network never interprets the payload.
type DataUnit interface {
	UID() Identifier
	Blob() []byte
}

// Molecule represents an opaque chemical species.
type Molecule interface {
	DataUnit
}

// Operator represents an opaque transformation rule with a fixed number of
// argument slots. Compat reports whether a molecule satisfies the predicate
// for the given slot; it must be a pure function of the molecule and slot.
type Operator interface {
	DataUnit
	Arity() int
	Compat(mol Molecule, arg int) bool
}

// Metadata is an arbitrary key/value map attached to a network entity. Values
// are opaque to the store and must be JSON-serializable for persistence.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	cp := make(Metadata, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Reaction records one application of an operator to ordered reactants
// producing ordered products. Order within the reactant and product sequences
// is significant and participates in the dedup key.
type Reaction struct {
	Operator  OpIndex    `json:"operator"`
	Reactants []MolIndex `json:"reactants"`
	Products  []MolIndex `json:"products"`
}

// ReactionKey is a canonical comparable encoding of a reaction's structural
// identity, usable as a map key.
type ReactionKey string

// Key returns the reaction's structural identity key.
func (r Reaction) Key() ReactionKey {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", r.Operator)
	for i, m := range r.Reactants {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", m)
	}
	b.WriteByte('>')
	for i, m := range r.Products {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", m)
	}
	return ReactionKey(b.String())
}

// Equal reports structural equality of two reactions.
func (r Reaction) Equal(other Reaction) bool {
	if r.Operator != other.Operator || len(r.Reactants) != len(other.Reactants) || len(r.Products) != len(other.Products) {
		return false
	}
	for i, m := range r.Reactants {
		if other.Reactants[i] != m {
			return false
		}
	}
	for i, m := range r.Products {
		if other.Products[i] != m {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the reaction record.
func (r Reaction) Clone() Reaction {
	cp := r
	cp.Reactants = append([]MolIndex(nil), r.Reactants...)
	cp.Products = append([]MolIndex(nil), r.Products...)
	return cp
}

// MolPacket pairs a molecule handle with its data and a metadata snapshot.
// Packets are the unit handed to property calculators.
type MolPacket struct {
	Index MolIndex
	Item  Molecule
	Meta  Metadata
}

// OpPacket pairs an operator handle with its data and a metadata snapshot.
type OpPacket struct {
	Index OpIndex
	Item  Operator
	Meta  Metadata
}

// ReactionView is the explicit form of a reaction handed to the analysis
// pipeline: operator and molecule packets with metadata snapshots plus the
// reaction's own metadata.
type ReactionView struct {
	Index     RxnIndex
	Operator  OpPacket
	Reactants []MolPacket
	Products  []MolPacket
	Meta      Metadata
}

// Clone returns a copy of the view with independent packet slices and
// metadata maps.
func (v ReactionView) Clone() ReactionView {
	cp := v
	cp.Operator.Meta = v.Operator.Meta.Clone()
	cp.Reactants = make([]MolPacket, len(v.Reactants))
	for i, p := range v.Reactants {
		p.Meta = p.Meta.Clone()
		cp.Reactants[i] = p
	}
	cp.Products = make([]MolPacket, len(v.Products))
	for i, p := range v.Products {
		p.Meta = p.Meta.Clone()
		cp.Products[i] = p
	}
	cp.Meta = v.Meta.Clone()
	return cp
}

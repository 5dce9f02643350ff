// Package meta implements the metadata resolution pipeline: property
// calculators, compositors, mergeable property state, and the reaction
// analysis stream.
package meta

import (
	"fmt"
	"sort"

	"chemcore/pkg/domain"
)

// KeySet declares metadata keys partitioned by entity kind. It describes both
// the keys a calculator requires and the keys a compositor produces.
type KeySet struct {
	Mol map[string]struct{}
	Op  map[string]struct{}
	Rxn map[string]struct{}
}

// MolKeys builds a key set naming molecule metadata keys.
func MolKeys(keys ...string) KeySet {
	return KeySet{Mol: toSet(keys)}
}

// OpKeys builds a key set naming operator metadata keys.
func OpKeys(keys ...string) KeySet {
	return KeySet{Op: toSet(keys)}
}

// RxnKeys builds a key set naming reaction metadata keys.
func RxnKeys(keys ...string) KeySet {
	return KeySet{Rxn: toSet(keys)}
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// KeyConflictError reports overlapping same-partition output keys when
// and-composing compositors.
type KeyConflictError struct {
	Entity domain.EntityType
	Keys   []string
}

func (e KeyConflictError) Error() string {
	return fmt.Sprintf("conflicting %s metadata key outputs %v; separate steps with Then or combine differently", e.Entity, e.Keys)
}

// Union folds another key set in without conflict checking. Used for
// aggregating requirement declarations.
func (k KeySet) Union(other KeySet) KeySet {
	return KeySet{
		Mol: unionSet(k.Mol, other.Mol),
		Op:  unionSet(k.Op, other.Op),
		Rxn: unionSet(k.Rxn, other.Rxn),
	}
}

// Merge combines two output key sets, failing with a KeyConflictError naming
// the offending keys when any key appears in both operands' same-partition
// set. The check is static: it depends only on declarations, never on data.
func (k KeySet) Merge(other KeySet) (KeySet, error) {
	if overlap := intersect(k.Mol, other.Mol); len(overlap) > 0 {
		return KeySet{}, KeyConflictError{Entity: domain.EntityMolecule, Keys: overlap}
	}
	if overlap := intersect(k.Op, other.Op); len(overlap) > 0 {
		return KeySet{}, KeyConflictError{Entity: domain.EntityOperator, Keys: overlap}
	}
	if overlap := intersect(k.Rxn, other.Rxn); len(overlap) > 0 {
		return KeySet{}, KeyConflictError{Entity: domain.EntityReaction, Keys: overlap}
	}
	return k.Union(other), nil
}

func unionSet(a, b map[string]struct{}) map[string]struct{} {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func intersect(a, b map[string]struct{}) []string {
	var overlap []string
	for k := range a {
		if _, ok := b[k]; ok {
			overlap = append(overlap, k)
		}
	}
	sort.Strings(overlap)
	return overlap
}

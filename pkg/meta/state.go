package meta

import "chemcore/pkg/domain"

// keyState holds the values computed for one property key, mapped by entity
// handle, paired with the resolver that collapses overlapping values.
// Instances are mutable: merging consumes both operands.
type keyState[H comparable] struct {
	data     map[H]any
	resolver Resolver
}

// mergeKeyStates folds b into a. An empty side loses outright and the
// non-empty side's resolver propagates; handles present in both are resolved
// positionally; handles present in one side pass through unchanged.
func mergeKeyStates[H comparable](a, b *keyState[H]) *keyState[H] {
	if len(a.data) == 0 {
		return b
	}
	if len(b.data) == 0 {
		return a
	}
	for h, bv := range b.data {
		if av, ok := a.data[h]; ok {
			a.data[h] = a.resolver(av, bv)
		} else {
			a.data[h] = bv
		}
	}
	return a
}

// PropertyState is a transient, mergeable mapping of (entity kind, property
// key) to per-handle value maps. Fragments are produced by compositor
// invocations and destroyed by merging; they are not safe for reuse after
// being passed to Merge.
type PropertyState struct {
	mol map[string]*keyState[domain.MolIndex]
	op  map[string]*keyState[domain.OpIndex]
	rxn map[string]*keyState[domain.RxnIndex]
}

// NewPropertyState returns an empty state.
func NewPropertyState() *PropertyState {
	return &PropertyState{
		mol: make(map[string]*keyState[domain.MolIndex]),
		op:  make(map[string]*keyState[domain.OpIndex]),
		rxn: make(map[string]*keyState[domain.RxnIndex]),
	}
}

func (s *PropertyState) setMol(key string, data map[domain.MolIndex]any, r Resolver) {
	s.mol[key] = &keyState[domain.MolIndex]{data: data, resolver: r}
}

func (s *PropertyState) setOp(key string, data map[domain.OpIndex]any, r Resolver) {
	s.op[key] = &keyState[domain.OpIndex]{data: data, resolver: r}
}

func (s *PropertyState) setRxn(key string, data map[domain.RxnIndex]any, r Resolver) {
	s.rxn[key] = &keyState[domain.RxnIndex]{data: data, resolver: r}
}

// Merge folds other into the receiver, applying the per-key merge
// independently across the molecule, operator, and reaction partitions. Keys
// absent from one side pass through. Returns the receiver.
func (s *PropertyState) Merge(other *PropertyState) *PropertyState {
	s.mol = mergePartition(s.mol, other.mol)
	s.op = mergePartition(s.op, other.op)
	s.rxn = mergePartition(s.rxn, other.rxn)
	return s
}

func mergePartition[H comparable](a, b map[string]*keyState[H]) map[string]*keyState[H] {
	if len(a) == 0 {
		return b
	}
	for key, bs := range b {
		if as, ok := a[key]; ok {
			a[key] = mergeKeyStates(as, bs)
		} else {
			a[key] = bs
		}
	}
	return a
}

// MolValue returns the computed value for a molecule under the given key.
func (s *PropertyState) MolValue(key string, i domain.MolIndex) (any, bool) {
	ks, ok := s.mol[key]
	if !ok {
		return nil, false
	}
	v, ok := ks.data[i]
	return v, ok
}

// OpValue returns the computed value for an operator under the given key.
func (s *PropertyState) OpValue(key string, i domain.OpIndex) (any, bool) {
	ks, ok := s.op[key]
	if !ok {
		return nil, false
	}
	v, ok := ks.data[i]
	return v, ok
}

// RxnValue returns the computed value for a reaction under the given key.
func (s *PropertyState) RxnValue(key string, i domain.RxnIndex) (any, bool) {
	ks, ok := s.rxn[key]
	if !ok {
		return nil, false
	}
	v, ok := ks.data[i]
	return v, ok
}

// MolInfo pivots the molecule partition into per-handle metadata maps.
func (s *PropertyState) MolInfo() map[domain.MolIndex]domain.Metadata {
	return pivot(s.mol)
}

// OpInfo pivots the operator partition into per-handle metadata maps.
func (s *PropertyState) OpInfo() map[domain.OpIndex]domain.Metadata {
	return pivot(s.op)
}

// RxnInfo pivots the reaction partition into per-handle metadata maps.
func (s *PropertyState) RxnInfo() map[domain.RxnIndex]domain.Metadata {
	return pivot(s.rxn)
}

func pivot[H comparable](partition map[string]*keyState[H]) map[H]domain.Metadata {
	out := make(map[H]domain.Metadata)
	for key, ks := range partition {
		for h, v := range ks.data {
			if out[h] == nil {
				out[h] = domain.Metadata{}
			}
			out[h][key] = v
		}
	}
	return out
}

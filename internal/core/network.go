// Package core implements the in-memory chemical network store and its
// service layer.
package core

import (
	"sort"
	"sync"

	"chemcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.Network = (*Network)(nil)

// Network is the in-memory entity store: molecule, operator, and reaction
// registries with stable handles, the operator-argument compatibility table,
// and producer/consumer reverse indices. A single RWMutex serializes writers;
// reads return clones so callers never observe internal state.
type Network struct {
	mu sync.RWMutex

	mols []domain.Molecule
	ops  []domain.Operator
	rxns []domain.Reaction

	molMap map[domain.Identifier]domain.MolIndex
	opMap  map[domain.Identifier]domain.OpIndex
	rxnMap map[domain.ReactionKey]domain.RxnIndex

	molMeta []domain.Metadata
	opMeta  []domain.Metadata
	rxnMeta []domain.Metadata

	// compat[op][slot] lists molecule handles satisfying that slot predicate,
	// in molecule insertion order.
	compat [][][]domain.MolIndex

	producers map[domain.MolIndex]map[domain.RxnIndex]struct{}
	consumers map[domain.MolIndex]map[domain.RxnIndex]struct{}
}

// NewNetwork constructs an empty network store.
func NewNetwork() *Network {
	return &Network{
		molMap:    make(map[domain.Identifier]domain.MolIndex),
		opMap:     make(map[domain.Identifier]domain.OpIndex),
		rxnMap:    make(map[domain.ReactionKey]domain.RxnIndex),
		producers: make(map[domain.MolIndex]map[domain.RxnIndex]struct{}),
		consumers: make(map[domain.MolIndex]map[domain.RxnIndex]struct{}),
	}
}

// AddMolecule registers a molecule. Re-adding a known identity returns the
// existing handle without mutation. A novel molecule is tested against every
// slot of every registered operator to extend the compatibility table.
func (n *Network) AddMolecule(mol domain.Molecule, meta domain.Metadata) (domain.MolIndex, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	uid := mol.UID()
	if idx, ok := n.molMap[uid]; ok {
		return idx, nil
	}

	idx := domain.MolIndex(len(n.mols))
	n.mols = append(n.mols, mol)
	n.molMap[uid] = idx
	n.molMeta = append(n.molMeta, meta.Clone())
	if n.molMeta[idx] == nil {
		n.molMeta[idx] = domain.Metadata{}
	}

	for i, op := range n.ops {
		for arg := 0; arg < op.Arity(); arg++ {
			if op.Compat(mol, arg) {
				n.compat[i][arg] = append(n.compat[i][arg], idx)
			}
		}
	}
	return idx, nil
}

// AddOperator registers an operator. Re-adding a known identity returns the
// existing handle. A novel operator gets a fresh compatibility row built by
// testing every registered molecule against each of its slots.
func (n *Network) AddOperator(op domain.Operator, meta domain.Metadata) (domain.OpIndex, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	uid := op.UID()
	if idx, ok := n.opMap[uid]; ok {
		return idx, nil
	}

	idx := domain.OpIndex(len(n.ops))
	n.ops = append(n.ops, op)
	n.opMap[uid] = idx
	n.opMeta = append(n.opMeta, meta.Clone())
	if n.opMeta[idx] == nil {
		n.opMeta[idx] = domain.Metadata{}
	}

	row := make([][]domain.MolIndex, op.Arity())
	for arg := range row {
		row[arg] = []domain.MolIndex{}
		for molIdx, mol := range n.mols {
			if op.Compat(mol, arg) {
				row[arg] = append(row[arg], domain.MolIndex(molIdx))
			}
		}
	}
	n.compat = append(n.compat, row)
	return idx, nil
}

// AddReaction registers a reaction, deduplicated by its structural identity.
// All referenced handles must be within registry bounds; otherwise a
// RangeError is returned and the store is left unchanged. Producer and
// consumer indices are updated for every product and reactant.
func (n *Network) AddReaction(op domain.OpIndex, reactants, products []domain.MolIndex, meta domain.Metadata) (domain.RxnIndex, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	rxn := domain.Reaction{
		Operator:  op,
		Reactants: append([]domain.MolIndex(nil), reactants...),
		Products:  append([]domain.MolIndex(nil), products...),
	}
	if idx, ok := n.rxnMap[rxn.Key()]; ok {
		return idx, nil
	}

	if op < 0 || int(op) >= len(n.ops) {
		return 0, domain.RangeError{Entity: domain.EntityOperator, Index: int(op), Size: len(n.ops)}
	}
	for _, m := range rxn.Reactants {
		if m < 0 || int(m) >= len(n.mols) {
			return 0, domain.RangeError{Entity: domain.EntityMolecule, Index: int(m), Size: len(n.mols)}
		}
	}
	for _, m := range rxn.Products {
		if m < 0 || int(m) >= len(n.mols) {
			return 0, domain.RangeError{Entity: domain.EntityMolecule, Index: int(m), Size: len(n.mols)}
		}
	}

	idx := domain.RxnIndex(len(n.rxns))
	n.rxns = append(n.rxns, rxn)
	n.rxnMap[rxn.Key()] = idx
	n.rxnMeta = append(n.rxnMeta, meta.Clone())
	if n.rxnMeta[idx] == nil {
		n.rxnMeta[idx] = domain.Metadata{}
	}

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
	return idx, nil
}

// Molecule resolves a molecule handle.
func (n *Network) Molecule(i domain.MolIndex) (domain.Molecule, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || int(i) >= len(n.mols) {
		return nil, false
	}
	return n.mols[i], true
}

// Operator resolves an operator handle.
func (n *Network) Operator(i domain.OpIndex) (domain.Operator, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || int(i) >= len(n.ops) {
		return nil, false
	}
	return n.ops[i], true
}

// Reaction resolves a reaction handle.
func (n *Network) Reaction(i domain.RxnIndex) (domain.Reaction, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || int(i) >= len(n.rxns) {
		return domain.Reaction{}, false
	}
	return n.rxns[i].Clone(), true
}

// MoleculeIndex looks up a molecule handle by identity.
func (n *Network) MoleculeIndex(uid domain.Identifier) (domain.MolIndex, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	idx, ok := n.molMap[uid]
	return idx, ok
}

// OperatorIndex looks up an operator handle by identity.
func (n *Network) OperatorIndex(uid domain.Identifier) (domain.OpIndex, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	idx, ok := n.opMap[uid]
	return idx, ok
}

// ReactionIndex looks up a reaction handle by structural identity.
func (n *Network) ReactionIndex(rxn domain.Reaction) (domain.RxnIndex, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	idx, ok := n.rxnMap[rxn.Key()]
	return idx, ok
}

// MoleculeCount returns the molecule registry length.
func (n *Network) MoleculeCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.mols)
}

// OperatorCount returns the operator registry length.
func (n *Network) OperatorCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.ops)
}

// ReactionCount returns the reaction registry length.
func (n *Network) ReactionCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.rxns)
}

// Compatibility returns the ordered molecule handles satisfying the given
// operator slot predicate. Unknown handles or slots yield nil.
func (n *Network) Compatibility(op domain.OpIndex, arg int) []domain.MolIndex {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if op < 0 || int(op) >= len(n.compat) {
		return nil
	}
	row := n.compat[op]
	if arg < 0 || arg >= len(row) {
		return nil
	}
	return append([]domain.MolIndex(nil), row[arg]...)
}

// Producers returns the reactions producing the molecule, ascending by handle.
func (n *Network) Producers(mol domain.MolIndex) []domain.RxnIndex {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return sortedRxnSet(n.producers[mol])
}

// Consumers returns the reactions consuming the molecule, ascending by handle.
func (n *Network) Consumers(mol domain.MolIndex) []domain.RxnIndex {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return sortedRxnSet(n.consumers[mol])
}

func sortedRxnSet(set map[domain.RxnIndex]struct{}) []domain.RxnIndex {
	out := make([]domain.RxnIndex, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MoleculeMeta returns a copy of the molecule's metadata map.
func (n *Network) MoleculeMeta(i domain.MolIndex) domain.Metadata {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || int(i) >= len(n.molMeta) {
		return nil
	}
	return n.molMeta[i].Clone()
}

// OperatorMeta returns a copy of the operator's metadata map.
func (n *Network) OperatorMeta(i domain.OpIndex) domain.Metadata {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || int(i) >= len(n.opMeta) {
		return nil
	}
	return n.opMeta[i].Clone()
}

// ReactionMeta returns a copy of the reaction's metadata map.
func (n *Network) ReactionMeta(i domain.RxnIndex) domain.Metadata {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || int(i) >= len(n.rxnMeta) {
		return nil
	}
	return n.rxnMeta[i].Clone()
}

// SetMoleculeMeta writes one metadata key on a molecule.
func (n *Network) SetMoleculeMeta(i domain.MolIndex, key string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i < 0 || int(i) >= len(n.molMeta) {
		return domain.RangeError{Entity: domain.EntityMolecule, Index: int(i), Size: len(n.molMeta)}
	}
	n.molMeta[i][key] = value
	return nil
}

// SetOperatorMeta writes one metadata key on an operator.
func (n *Network) SetOperatorMeta(i domain.OpIndex, key string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i < 0 || int(i) >= len(n.opMeta) {
		return domain.RangeError{Entity: domain.EntityOperator, Index: int(i), Size: len(n.opMeta)}
	}
	n.opMeta[i][key] = value
	return nil
}

// SetReactionMeta writes one metadata key on a reaction.
func (n *Network) SetReactionMeta(i domain.RxnIndex, key string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i < 0 || int(i) >= len(n.rxnMeta) {
		return domain.RangeError{Entity: domain.EntityReaction, Index: int(i), Size: len(n.rxnMeta)}
	}
	n.rxnMeta[i][key] = value
	return nil
}

// ReactionView assembles the explicit pipeline view for a reaction: operator
// and molecule packets with independent metadata snapshots.
func (n *Network) ReactionView(i domain.RxnIndex) (domain.ReactionView, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || int(i) >= len(n.rxns) {
		return domain.ReactionView{}, domain.RangeError{Entity: domain.EntityReaction, Index: int(i), Size: len(n.rxns)}
	}
	rxn := n.rxns[i]
	view := domain.ReactionView{
		Index: i,
		Operator: domain.OpPacket{
			Index: rxn.Operator,
			Item:  n.ops[rxn.Operator],
			Meta:  n.opMeta[rxn.Operator].Clone(),
		},
		Meta: n.rxnMeta[i].Clone(),
	}
	view.Reactants = make([]domain.MolPacket, len(rxn.Reactants))
	for j, m := range rxn.Reactants {
		view.Reactants[j] = domain.MolPacket{Index: m, Item: n.mols[m], Meta: n.molMeta[m].Clone()}
	}
	view.Products = make([]domain.MolPacket, len(rxn.Products))
	for j, m := range rxn.Products {
		view.Products[j] = domain.MolPacket{Index: m, Item: n.mols[m], Meta: n.molMeta[m].Clone()}
	}
	return view, nil
}

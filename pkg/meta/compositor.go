package meta

import "chemcore/pkg/domain"

// Compositor adapts a single-entity property calculator to a whole-reaction
// fragment producer. Compose walks the reaction's relevant sub-entities,
// invokes the calculator for each, and collects non-absent results.
type Compositor interface {
	Compose(rxn domain.ReactionView) *PropertyState
	Keys() KeySet
}

type molCompositor struct {
	calc MolCalc
}

// NewMolCompositor wraps a per-molecule calculator; it applies to every
// reactant and product of the reaction.
func NewMolCompositor(calc MolCalc) Compositor {
	return molCompositor{calc: calc}
}

func (c molCompositor) Compose(rxn domain.ReactionView) *PropertyState {
	key := c.calc.Key()
	props := make(map[domain.MolIndex]any)
	for _, pkt := range molPackets(rxn) {
		if v, ok := c.calc.Compute(pkt, pkt.Meta[key]); ok {
			props[pkt.Index] = v
		}
	}
	state := NewPropertyState()
	state.setMol(key, props, c.calc.Resolver())
	return state
}

func (c molCompositor) Keys() KeySet {
	return MolKeys(c.calc.Key())
}

type molRxnCompositor struct {
	calc MolRxnCalc
}

// NewMolRxnCompositor wraps a per-molecule calculator that receives the
// enclosing reaction as context.
func NewMolRxnCompositor(calc MolRxnCalc) Compositor {
	return molRxnCompositor{calc: calc}
}

func (c molRxnCompositor) Compose(rxn domain.ReactionView) *PropertyState {
	key := c.calc.Key()
	props := make(map[domain.MolIndex]any)
	for _, pkt := range molPackets(rxn) {
		if v, ok := c.calc.Compute(pkt, rxn, pkt.Meta[key]); ok {
			props[pkt.Index] = v
		}
	}
	state := NewPropertyState()
	state.setMol(key, props, c.calc.Resolver())
	return state
}

func (c molRxnCompositor) Keys() KeySet {
	return MolKeys(c.calc.Key())
}

type opCompositor struct {
	calc OpCalc
}

// NewOpCompositor wraps a per-operator calculator; it applies to the
// reaction's single operator.
func NewOpCompositor(calc OpCalc) Compositor {
	return opCompositor{calc: calc}
}

func (c opCompositor) Compose(rxn domain.ReactionView) *PropertyState {
	key := c.calc.Key()
	state := NewPropertyState()
	v, ok := c.calc.Compute(rxn.Operator, rxn.Operator.Meta[key])
	if !ok {
		return state
	}
	state.setOp(key, map[domain.OpIndex]any{rxn.Operator.Index: v}, c.calc.Resolver())
	return state
}

func (c opCompositor) Keys() KeySet {
	return OpKeys(c.calc.Key())
}

type opRxnCompositor struct {
	calc OpRxnCalc
}

// NewOpRxnCompositor wraps a per-operator calculator that receives the
// enclosing reaction as context.
func NewOpRxnCompositor(calc OpRxnCalc) Compositor {
	return opRxnCompositor{calc: calc}
}

func (c opRxnCompositor) Compose(rxn domain.ReactionView) *PropertyState {
	key := c.calc.Key()
	state := NewPropertyState()
	v, ok := c.calc.Compute(rxn.Operator, rxn, rxn.Operator.Meta[key])
	if !ok {
		return state
	}
	state.setOp(key, map[domain.OpIndex]any{rxn.Operator.Index: v}, c.calc.Resolver())
	return state
}

func (c opRxnCompositor) Keys() KeySet {
	return OpKeys(c.calc.Key())
}

type rxnCompositor struct {
	calc RxnCalc
}

// NewRxnCompositor wraps a per-reaction calculator.
func NewRxnCompositor(calc RxnCalc) Compositor {
	return rxnCompositor{calc: calc}
}

func (c rxnCompositor) Compose(rxn domain.ReactionView) *PropertyState {
	key := c.calc.Key()
	state := NewPropertyState()
	v, ok := c.calc.Compute(rxn, rxn.Meta[key])
	if !ok {
		return state
	}
	state.setRxn(key, map[domain.RxnIndex]any{rxn.Index: v}, c.calc.Resolver())
	return state
}

func (c rxnCompositor) Keys() KeySet {
	return RxnKeys(c.calc.Key())
}

func molPackets(rxn domain.ReactionView) []domain.MolPacket {
	out := make([]domain.MolPacket, 0, len(rxn.Reactants)+len(rxn.Products))
	out = append(out, rxn.Reactants...)
	out = append(out, rxn.Products...)
	return out
}

type andCompositor struct {
	a, b Compositor
	keys KeySet
}

// And combines two compositors order-insensitively. Their declared output
// key sets must be disjoint within each partition; overlap fails here, at
// construction, with a KeyConflictError.
func And(a, b Compositor) (Compositor, error) {
	keys, err := a.Keys().Merge(b.Keys())
	if err != nil {
		return nil, err
	}
	return andCompositor{a: a, b: b, keys: keys}, nil
}

func (c andCompositor) Compose(rxn domain.ReactionView) *PropertyState {
	return c.a.Compose(rxn).Merge(c.b.Compose(rxn))
}

func (c andCompositor) Keys() KeySet {
	return c.keys
}

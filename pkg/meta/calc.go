package meta

import "chemcore/pkg/domain"

// Resolver combines two values independently computed for the same metadata
// key and entity into one. Resolvers must be total over the key's value
// domain and behave associatively and commutatively, since states merge via
// unordered reduction.
type Resolver func(a, b any) any

// PropertyCalc is the surface shared by all calculator shapes: the key it
// writes, the metadata it requires as input (declared for dependency
// ordering; enforcement is a collaborator concern), and the resolver for its
// key.
type PropertyCalc interface {
	Key() string
	Requires() KeySet
	Resolver() Resolver
}

// MolCalc computes one metadata value per molecule. Compute receives the
// prior value stored under the calculator's key (nil when absent) and
// returns ok=false to produce no value for that molecule.
type MolCalc interface {
	PropertyCalc
	Compute(pkt domain.MolPacket, prev any) (any, bool)
}

// MolRxnCalc computes one metadata value per molecule with the enclosing
// reaction as context.
type MolRxnCalc interface {
	PropertyCalc
	Compute(pkt domain.MolPacket, rxn domain.ReactionView, prev any) (any, bool)
}

// OpCalc computes one metadata value per operator.
type OpCalc interface {
	PropertyCalc
	Compute(pkt domain.OpPacket, prev any) (any, bool)
}

// OpRxnCalc computes one metadata value per operator with the enclosing
// reaction as context.
type OpRxnCalc interface {
	PropertyCalc
	Compute(pkt domain.OpPacket, rxn domain.ReactionView, prev any) (any, bool)
}

// RxnCalc computes one metadata value per reaction.
type RxnCalc interface {
	PropertyCalc
	Compute(rxn domain.ReactionView, prev any) (any, bool)
}

type calcBase struct {
	key      string
	requires KeySet
	resolver Resolver
}

func (c calcBase) Key() string        { return c.key }
func (c calcBase) Requires() KeySet   { return c.requires }
func (c calcBase) Resolver() Resolver { return c.resolver }

type molCalcFunc struct {
	calcBase
	fn func(domain.MolPacket, any) (any, bool)
}

func (c molCalcFunc) Compute(pkt domain.MolPacket, prev any) (any, bool) {
	return c.fn(pkt, prev)
}

// NewMolCalc builds a func-backed per-molecule calculator.
func NewMolCalc(key string, requires KeySet, resolver Resolver, fn func(domain.MolPacket, any) (any, bool)) MolCalc {
	return molCalcFunc{calcBase{key, requires, resolver}, fn}
}

type molRxnCalcFunc struct {
	calcBase
	fn func(domain.MolPacket, domain.ReactionView, any) (any, bool)
}

func (c molRxnCalcFunc) Compute(pkt domain.MolPacket, rxn domain.ReactionView, prev any) (any, bool) {
	return c.fn(pkt, rxn, prev)
}

// NewMolRxnCalc builds a func-backed per-molecule calculator with reaction
// context.
func NewMolRxnCalc(key string, requires KeySet, resolver Resolver, fn func(domain.MolPacket, domain.ReactionView, any) (any, bool)) MolRxnCalc {
	return molRxnCalcFunc{calcBase{key, requires, resolver}, fn}
}

type opCalcFunc struct {
	calcBase
	fn func(domain.OpPacket, any) (any, bool)
}

func (c opCalcFunc) Compute(pkt domain.OpPacket, prev any) (any, bool) {
	return c.fn(pkt, prev)
}

// NewOpCalc builds a func-backed per-operator calculator.
func NewOpCalc(key string, requires KeySet, resolver Resolver, fn func(domain.OpPacket, any) (any, bool)) OpCalc {
	return opCalcFunc{calcBase{key, requires, resolver}, fn}
}

type opRxnCalcFunc struct {
	calcBase
	fn func(domain.OpPacket, domain.ReactionView, any) (any, bool)
}

func (c opRxnCalcFunc) Compute(pkt domain.OpPacket, rxn domain.ReactionView, prev any) (any, bool) {
	return c.fn(pkt, rxn, prev)
}

// NewOpRxnCalc builds a func-backed per-operator calculator with reaction
// context.
func NewOpRxnCalc(key string, requires KeySet, resolver Resolver, fn func(domain.OpPacket, domain.ReactionView, any) (any, bool)) OpRxnCalc {
	return opRxnCalcFunc{calcBase{key, requires, resolver}, fn}
}

type rxnCalcFunc struct {
	calcBase
	fn func(domain.ReactionView, any) (any, bool)
}

func (c rxnCalcFunc) Compute(rxn domain.ReactionView, prev any) (any, bool) {
	return c.fn(rxn, prev)
}

// NewRxnCalc builds a func-backed per-reaction calculator.
func NewRxnCalc(key string, requires KeySet, resolver Resolver, fn func(domain.ReactionView, any) (any, bool)) RxnCalc {
	return rxnCalcFunc{calcBase{key, requires, resolver}, fn}
}

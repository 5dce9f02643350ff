package domain

// Network is the entity store contract: molecule/operator/reaction registries
// with stable handles, an operator-argument compatibility table, and
// producer/consumer reverse indices. Adds are idempotent: re-adding an
// existing identity returns the existing handle without mutation. Handles are
// never reassigned; registries only grow.
type Network interface {
	// AddMolecule registers a molecule, returning its handle. For a novel
	// identity the molecule is tested against every slot of every existing
	// operator and appended to the compatibility table where satisfied.
	AddMolecule(mol Molecule, meta Metadata) (MolIndex, error)
	// AddOperator registers an operator, building a fresh compatibility row
	// by testing every existing molecule against each of its slots.
	AddOperator(op Operator, meta Metadata) (OpIndex, error)
	// AddReaction registers a reaction, validating that all referenced
	// handles are within registry bounds (RangeError otherwise) and updating
	// the producer/consumer indices for each product and reactant.
	AddReaction(op OpIndex, reactants, products []MolIndex, meta Metadata) (RxnIndex, error)

	Molecule(i MolIndex) (Molecule, bool)
	Operator(i OpIndex) (Operator, bool)
	Reaction(i RxnIndex) (Reaction, bool)
	MoleculeIndex(uid Identifier) (MolIndex, bool)
	OperatorIndex(uid Identifier) (OpIndex, bool)
	ReactionIndex(rxn Reaction) (RxnIndex, bool)
	MoleculeCount() int
	OperatorCount() int
	ReactionCount() int

	// Compatibility returns the ordered molecule handles satisfying the
	// given operator slot predicate.
	Compatibility(op OpIndex, arg int) []MolIndex
	// Producers returns the reactions producing the molecule, ascending.
	Producers(mol MolIndex) []RxnIndex
	// Consumers returns the reactions consuming the molecule, ascending.
	Consumers(mol MolIndex) []RxnIndex

	MoleculeMeta(i MolIndex) Metadata
	OperatorMeta(i OpIndex) Metadata
	ReactionMeta(i RxnIndex) Metadata
	SetMoleculeMeta(i MolIndex, key string, value any) error
	SetOperatorMeta(i OpIndex, key string, value any) error
	SetReactionMeta(i RxnIndex, key string, value any) error

	// ReactionView assembles the explicit pipeline view for a reaction.
	ReactionView(i RxnIndex) (ReactionView, error)

	// Serialize encodes the whole store as an opaque blob; a round trip
	// through Deserialize reconstructs an observably identical store.
	Serialize() ([]byte, error)
}

// Codec rehydrates opaque molecule and operator payloads during
// deserialization. The network stores only identity and blob; concrete types
// are the caller's concern.
type Codec struct {
	Molecule func(uid Identifier, blob []byte) (Molecule, error)
	Operator func(uid Identifier, arity int, blob []byte) (Operator, error)
}

// MoleculeRecord is the persisted form of a molecule registry entry.
type MoleculeRecord struct {
	UID  Identifier `json:"uid"`
	Blob []byte     `json:"blob"`
	Meta Metadata   `json:"meta,omitempty"`
}

// OperatorRecord is the persisted form of an operator registry entry.
type OperatorRecord struct {
	UID   Identifier `json:"uid"`
	Arity int        `json:"arity"`
	Blob  []byte     `json:"blob"`
	Meta  Metadata   `json:"meta,omitempty"`
}

// ReactionRecord is the persisted form of a reaction registry entry.
type ReactionRecord struct {
	Reaction Reaction `json:"reaction"`
	Meta     Metadata `json:"meta,omitempty"`
}

// Snapshot captures the full observable state of a network. Producer and
// consumer indices are derived from the reaction registry on import.
type Snapshot struct {
	Molecules []MoleculeRecord `json:"molecules"`
	Operators []OperatorRecord `json:"operators"`
	Reactions []ReactionRecord `json:"reactions"`
	Compat    [][][]MolIndex   `json:"compat"`
}

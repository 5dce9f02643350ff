// Package testutil provides concrete, serializable molecule and operator
// fixtures for package tests. The core treats these types as opaque
// capability bearers; nothing here is real chemistry.
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"chemcore/pkg/domain"
)

// Molecule is a minimal molecule fixture identified by a string key.
type Molecule struct {
	ID   domain.Identifier `json:"id"`
	Mass float64           `json:"mass"`
}

// UID returns the molecule identity.
func (m Molecule) UID() domain.Identifier { return m.ID }

// Blob returns the JSON payload for persistence.
func (m Molecule) Blob() []byte {
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return b
}

// Operator is an operator fixture whose slot predicates match molecules by
// identity substring, one marker per argument slot. Marker matching keeps the
// compatibility predicate deterministic and serializable.
type Operator struct {
	ID    domain.Identifier `json:"id"`
	Slots []string          `json:"slots"`
}

// UID returns the operator identity.
func (o Operator) UID() domain.Identifier { return o.ID }

// Blob returns the JSON payload for persistence.
func (o Operator) Blob() []byte {
	b, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}
	return b
}

// Arity returns the slot count.
func (o Operator) Arity() int { return len(o.Slots) }

// Compat reports whether the molecule identity carries the slot's marker.
func (o Operator) Compat(mol domain.Molecule, arg int) bool {
	if arg < 0 || arg >= len(o.Slots) {
		return false
	}
	return strings.Contains(string(mol.UID()), o.Slots[arg])
}

// Codec rehydrates the fixture types from their JSON payloads.
func Codec() domain.Codec {
	return domain.Codec{
		Molecule: func(uid domain.Identifier, blob []byte) (domain.Molecule, error) {
			var m Molecule
			if err := json.Unmarshal(blob, &m); err != nil {
				return nil, err
			}
			if m.ID != uid {
				return nil, fmt.Errorf("molecule payload uid %s does not match record uid %s", m.ID, uid)
			}
			return m, nil
		},
		Operator: func(uid domain.Identifier, arity int, blob []byte) (domain.Operator, error) {
			var o Operator
			if err := json.Unmarshal(blob, &o); err != nil {
				return nil, err
			}
			if o.ID != uid {
				return nil, fmt.Errorf("operator payload uid %s does not match record uid %s", o.ID, uid)
			}
			if o.Arity() != arity {
				return nil, fmt.Errorf("operator %s arity %d does not match record arity %d", o.ID, o.Arity(), arity)
			}
			return o, nil
		},
	}
}

package meta

import "chemcore/pkg/domain"

// Update rewrites a reaction view's metadata using the network as context.
// Apply returns the updated view and whether anything changed.
type Update interface {
	Apply(rxn domain.ReactionView, net domain.Network) (domain.ReactionView, bool)
}

// UpdateFunc adapts a plain function to the Update interface.
type UpdateFunc func(rxn domain.ReactionView, net domain.Network) (domain.ReactionView, bool)

// Apply implements Update.
func (f UpdateFunc) Apply(rxn domain.ReactionView, net domain.Network) (domain.ReactionView, bool) {
	return f(rxn, net)
}

type multiUpdate struct {
	updates []Update
}

// CombineUpdates composes updates applied in order, each seeing its
// predecessors' result. Nested combinations are flattened.
func CombineUpdates(updates ...Update) Update {
	flat := make([]Update, 0, len(updates))
	for _, u := range updates {
		if m, ok := u.(multiUpdate); ok {
			flat = append(flat, m.updates...)
			continue
		}
		flat = append(flat, u)
	}
	return multiUpdate{updates: flat}
}

// Apply implements Update.
func (m multiUpdate) Apply(rxn domain.ReactionView, net domain.Network) (domain.ReactionView, bool) {
	cur := rxn
	changed := false
	for _, u := range m.updates {
		next, ok := u.Apply(cur, net)
		if ok {
			cur = next
			changed = true
		}
	}
	return cur, changed
}

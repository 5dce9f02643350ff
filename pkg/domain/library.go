package domain

// Library is a uid-keyed container of data units with add-if-absent
// semantics. Current implementations assume the library never shrinks.
type Library[T DataUnit] struct {
	order  []T
	lookup map[Identifier]T
}

// NewLibrary constructs a library seeded with the provided items.
func NewLibrary[T DataUnit](items ...T) *Library[T] {
	l := &Library[T]{lookup: make(map[Identifier]T, len(items))}
	l.Add(items...)
	return l
}

// Add inserts items whose identity is not already present. Items with a known
// identity are skipped.
func (l *Library[T]) Add(items ...T) {
	for _, item := range items {
		uid := item.UID()
		if _, ok := l.lookup[uid]; ok {
			continue
		}
		l.lookup[uid] = item
		l.order = append(l.order, item)
	}
}

// Contains reports whether an item with the given identity is present.
func (l *Library[T]) Contains(uid Identifier) bool {
	_, ok := l.lookup[uid]
	return ok
}

// Get returns the item with the given identity.
func (l *Library[T]) Get(uid Identifier) (T, bool) {
	item, ok := l.lookup[uid]
	return item, ok
}

// IDs returns the identities of all items in insertion order.
func (l *Library[T]) IDs() []Identifier {
	out := make([]Identifier, len(l.order))
	for i, item := range l.order {
		out[i] = item.UID()
	}
	return out
}

// Items returns all items in insertion order.
func (l *Library[T]) Items() []T {
	return append([]T(nil), l.order...)
}

// Len returns the number of items in the library.
func (l *Library[T]) Len() int {
	return len(l.order)
}

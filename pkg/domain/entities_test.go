package domain

import "testing"

func TestReactionKeyDistinguishesOrderAndRole(t *testing.T) {
	base := Reaction{Operator: 0, Reactants: []MolIndex{1, 2}, Products: []MolIndex{3}}
	cases := []struct {
		name  string
		other Reaction
	}{
		{"reactant order", Reaction{Operator: 0, Reactants: []MolIndex{2, 1}, Products: []MolIndex{3}}},
		{"operator", Reaction{Operator: 1, Reactants: []MolIndex{1, 2}, Products: []MolIndex{3}}},
		{"role swap", Reaction{Operator: 0, Reactants: []MolIndex{3}, Products: []MolIndex{1, 2}}},
		{"boundary shift", Reaction{Operator: 0, Reactants: []MolIndex{1}, Products: []MolIndex{2, 3}}},
	}
	for _, tc := range cases {
		if base.Key() == tc.other.Key() {
			t.Fatalf("%s: key collision between %+v and %+v", tc.name, base, tc.other)
		}
		if base.Equal(tc.other) {
			t.Fatalf("%s: reactions compare equal", tc.name)
		}
	}
	same := Reaction{Operator: 0, Reactants: []MolIndex{1, 2}, Products: []MolIndex{3}}
	if base.Key() != same.Key() || !base.Equal(same) {
		t.Fatalf("identical reactions must share key and compare equal")
	}
}

func TestReactionCloneIsIndependent(t *testing.T) {
	orig := Reaction{Operator: 2, Reactants: []MolIndex{0, 1}, Products: []MolIndex{4}}
	cp := orig.Clone()
	cp.Reactants[0] = 9
	cp.Products[0] = 9
	if orig.Reactants[0] != 0 || orig.Products[0] != 4 {
		t.Fatalf("clone shares backing arrays with original: %+v", orig)
	}
}

func TestMetadataClone(t *testing.T) {
	var nilMeta Metadata
	if nilMeta.Clone() != nil {
		t.Fatalf("nil metadata must clone to nil")
	}
	md := Metadata{"mass": 1.5}
	cp := md.Clone()
	cp["mass"] = 2.0
	if md["mass"] != 1.5 {
		t.Fatalf("clone mutated original: %v", md)
	}
}

type fakeUnit struct {
	id Identifier
}

func (f fakeUnit) UID() Identifier { return f.id }
func (f fakeUnit) Blob() []byte    { return []byte(f.id) }

func TestLibraryAddIfAbsent(t *testing.T) {
	lib := NewLibrary(fakeUnit{"a"}, fakeUnit{"b"})
	lib.Add(fakeUnit{"a"}, fakeUnit{"c"})
	if lib.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", lib.Len())
	}
	ids := lib.IDs()
	want := []Identifier{"a", "b", "c"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("insertion order broken: got %v want %v", ids, want)
		}
	}
	if !lib.Contains("b") {
		t.Fatalf("library missing item b")
	}
	if _, ok := lib.Get("z"); ok {
		t.Fatalf("unexpected item z")
	}
	items := lib.Items()
	items[0] = fakeUnit{"mutated"}
	if got := lib.IDs()[0]; got != "a" {
		t.Fatalf("Items must return a copy, library now starts with %s", got)
	}
}

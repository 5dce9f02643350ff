package meta

import (
	"testing"

	"chemcore/pkg/domain"
)

func maxResolver(a, b any) any {
	if a.(float64) >= b.(float64) {
		return a
	}
	return b
}

func sumResolver(a, b any) any { return a.(float64) + b.(float64) }

func molState(key string, r Resolver, vals map[domain.MolIndex]any) *PropertyState {
	s := NewPropertyState()
	s.setMol(key, vals, r)
	return s
}

func TestMergeResolvesOverlaps(t *testing.T) {
	a := molState("mass", maxResolver, map[domain.MolIndex]any{0: 1.0, 1: 5.0})
	b := molState("mass", maxResolver, map[domain.MolIndex]any{1: 2.0, 2: 3.0})
	merged := a.Merge(b)
	for idx, want := range map[domain.MolIndex]float64{0: 1.0, 1: 5.0, 2: 3.0} {
		got, ok := merged.MolValue("mass", idx)
		if !ok || got != want {
			t.Fatalf("mol %d: got %v want %v", idx, got, want)
		}
	}
}

func TestMergeEmptySideLoses(t *testing.T) {
	empty := molState("mass", sumResolver, map[domain.MolIndex]any{})
	full := molState("mass", maxResolver, map[domain.MolIndex]any{0: 4.0, 1: 6.0})
	probe := molState("mass", maxResolver, map[domain.MolIndex]any{0: 9.0})

	// The non-empty side's resolver must survive the merge with an empty
	// fragment, in either direction.
	merged := empty.Merge(full).Merge(probe)
	if got, _ := merged.MolValue("mass", 0); got != 9.0 {
		t.Fatalf("resolver replaced by empty side: got %v", got)
	}

	full2 := molState("mass", maxResolver, map[domain.MolIndex]any{0: 4.0})
	empty2 := molState("mass", sumResolver, map[domain.MolIndex]any{})
	merged2 := full2.Merge(empty2).Merge(molState("mass", maxResolver, map[domain.MolIndex]any{0: 7.0}))
	if got, _ := merged2.MolValue("mass", 0); got != 7.0 {
		t.Fatalf("resolver replaced by trailing empty side: got %v", got)
	}
}

func TestMergeGroupingIndependent(t *testing.T) {
	mk := func() (a, b, c *PropertyState) {
		a = molState("mass", sumResolver, map[domain.MolIndex]any{0: 1.0})
		b = molState("mass", sumResolver, map[domain.MolIndex]any{0: 2.0})
		c = molState("mass", sumResolver, map[domain.MolIndex]any{0: 4.0})
		return
	}
	a1, b1, c1 := mk()
	left := a1.Merge(b1).Merge(c1)
	a2, b2, c2 := mk()
	right := a2.Merge(b2.Merge(c2))

	lv, _ := left.MolValue("mass", 0)
	rv, _ := right.MolValue("mass", 0)
	if lv != 7.0 || rv != 7.0 {
		t.Fatalf("grouping changed outcome: left=%v right=%v", lv, rv)
	}
}

func TestMergeDisjointKeysAndPartitions(t *testing.T) {
	a := molState("mass", maxResolver, map[domain.MolIndex]any{0: 1.0})
	c := NewPropertyState()
	c.setRxn("rate", map[domain.RxnIndex]any{3: 0.5}, maxResolver)
	merged := a.Merge(c)
	if _, ok := merged.MolValue("mass", 0); !ok {
		t.Fatalf("molecule partition lost")
	}
	if v, ok := merged.RxnValue("rate", 3); !ok || v != 0.5 {
		t.Fatalf("reaction partition lost: %v %v", v, ok)
	}
	if _, ok := merged.RxnValue("rate", 4); ok {
		t.Fatalf("phantom reaction value")
	}
}

func TestPivotToMetadata(t *testing.T) {
	s := molState("mass", maxResolver, map[domain.MolIndex]any{0: 1.0, 2: 3.0})
	s.setMol("hue", map[domain.MolIndex]any{0: "red"}, func(a, _ any) any { return a })
	info := s.MolInfo()
	if md := info[0]; md["mass"] != 1.0 || md["hue"] != "red" {
		t.Fatalf("mol 0 metadata: %v", md)
	}
	if md := info[2]; md["mass"] != 3.0 {
		t.Fatalf("mol 2 metadata: %v", md)
	}
	if _, ok := info[1]; ok {
		t.Fatalf("mol 1 should have no metadata")
	}
}

package core

import (
	"context"
	"testing"

	"chemcore/pkg/domain"
	"chemcore/pkg/meta"
	"chemcore/testutil"
)

// analyzeFixture registers the two-slot scenario plus two reactions:
// r1 = O: am1 -> abm2 and r2 = O: bm3 -> abm2.
func analyzeFixture(t *testing.T) (*Service, domain.RxnIndex, domain.RxnIndex) {
	t.Helper()
	svc := NewInMemoryService(nil)
	ctx := context.Background()
	for _, m := range []testutil.Molecule{
		{ID: "am1", Mass: 1.0},
		{ID: "abm2", Mass: 2.0},
		{ID: "bm3", Mass: 3.0},
	} {
		if _, err := svc.AddMolecule(ctx, m, nil); err != nil {
			t.Fatalf("add molecule: %v", err)
		}
	}
	op, err := svc.AddOperator(ctx, testutil.Operator{ID: "O", Slots: []string{"a", "b"}}, nil)
	if err != nil {
		t.Fatalf("add operator: %v", err)
	}
	r1, err := svc.AddReaction(ctx, op, []domain.MolIndex{0}, []domain.MolIndex{1}, nil)
	if err != nil {
		t.Fatalf("add r1: %v", err)
	}
	r2, err := svc.AddReaction(ctx, op, []domain.MolIndex{2}, []domain.MolIndex{1}, nil)
	if err != nil {
		t.Fatalf("add r2: %v", err)
	}
	return svc, r1, r2
}

func massCalc() meta.MolCalc {
	return meta.NewMolCalc("mass", meta.KeySet{}, func(a, b any) any {
		if a.(float64) >= b.(float64) {
			return a
		}
		return b
	}, func(pkt domain.MolPacket, prev any) (any, bool) {
		if prev != nil {
			return prev, true
		}
		return pkt.Item.(testutil.Molecule).Mass, true
	})
}

func TestAnalyzeCommitsAnnotations(t *testing.T) {
	svc, r1, r2 := analyzeFixture(t)
	ctx := context.Background()

	// Fail every reaction consuming bm3, then annotate masses.
	filter := meta.NewFilterStep(meta.FilterFunc(func(rxn domain.ReactionView) bool {
		return rxn.Reactants[0].Index != 2
	}))
	annotate := meta.NewAnnotateStep(meta.NewMolCompositor(massCalc()))

	out, err := svc.Analyze(ctx, meta.Then(filter, annotate), []domain.RxnIndex{r1, r2})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("stream shrank: %d items", len(out))
	}
	if !out[0].Passing || out[1].Passing {
		t.Fatalf("pass flags wrong: %v %v", out[0].Passing, out[1].Passing)
	}

	store := svc.Store()
	// Only molecules touched by the passing reaction carry mass.
	if got := store.MoleculeMeta(0)["mass"]; got != 1.0 {
		t.Fatalf("mass of am1: %v", got)
	}
	if got := store.MoleculeMeta(1)["mass"]; got != 2.0 {
		t.Fatalf("mass of abm2: %v", got)
	}
	if _, ok := store.MoleculeMeta(2)["mass"]; ok {
		t.Fatalf("failed reaction contributed to aggregate")
	}
	// The failed reaction's view still received the shared annotation.
	if out[1].Reaction.Products[0].Meta["mass"] != 2.0 {
		t.Fatalf("projection skipped failed item: %+v", out[1].Reaction.Products[0].Meta)
	}
}

func TestAnalyzeExistingMetadataWins(t *testing.T) {
	svc, r1, _ := analyzeFixture(t)
	ctx := context.Background()
	if err := svc.Store().SetMoleculeMeta(0, "mass", 10.0); err != nil {
		t.Fatalf("seed meta: %v", err)
	}
	annotate := meta.NewAnnotateStep(meta.NewMolCompositor(massCalc()))
	if _, err := svc.Analyze(ctx, annotate, []domain.RxnIndex{r1}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := svc.Store().MoleculeMeta(0)["mass"]; got != 10.0 {
		t.Fatalf("existing metadata overwritten: %v", got)
	}
}

func TestAnalyzeUnknownReaction(t *testing.T) {
	svc, _, _ := analyzeFixture(t)
	step := meta.NewFilterStep(meta.FilterFunc(func(domain.ReactionView) bool { return true }))
	if _, err := svc.Analyze(context.Background(), step, []domain.RxnIndex{42}); err == nil {
		t.Fatalf("analyze of unknown handle succeeded")
	}
}

func TestApplyUpdates(t *testing.T) {
	svc, r1, r2 := analyzeFixture(t)
	ctx := context.Background()

	tag := meta.UpdateFunc(func(rxn domain.ReactionView, _ domain.Network) (domain.ReactionView, bool) {
		out := rxn.Clone()
		if out.Meta == nil {
			out.Meta = domain.Metadata{}
		}
		out.Meta["reviewed"] = true
		return out, true
	})
	noop := meta.UpdateFunc(func(rxn domain.ReactionView, _ domain.Network) (domain.ReactionView, bool) {
		return rxn, false
	})

	views, err := svc.Views(ctx, r1, r2)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	if err := svc.ApplyUpdates(ctx, meta.CombineUpdates(noop, tag), views); err != nil {
		t.Fatalf("apply updates: %v", err)
	}
	for _, r := range []domain.RxnIndex{r1, r2} {
		if got := svc.Store().ReactionMeta(r)["reviewed"]; got != true {
			t.Fatalf("reaction %d not tagged: %v", r, got)
		}
	}
}

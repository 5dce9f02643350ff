package blob

import (
	"context"
	"errors"
	"testing"

	"chemcore/internal/core"
	"chemcore/pkg/domain"
	"chemcore/testutil"
)

func TestArchiveRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	net := core.NewNetwork()
	if _, err := net.AddMolecule(testutil.Molecule{ID: "am1", Mass: 1.0}, domain.Metadata{"mass": 1.0}); err != nil {
		t.Fatalf("add molecule: %v", err)
	}
	op, err := net.AddOperator(testutil.Operator{ID: "O", Slots: []string{"a"}}, nil)
	if err != nil {
		t.Fatalf("add operator: %v", err)
	}
	if _, err := net.AddReaction(op, []domain.MolIndex{0}, []domain.MolIndex{0}, nil); err != nil {
		t.Fatalf("add reaction: %v", err)
	}

	store := NewMemory()
	info, err := Archive(ctx, store, "nets/run-1", net)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if info.ContentType != archiveContentType || info.Size == 0 {
		t.Fatalf("archive info: %+v", info)
	}

	restored, err := Restore(ctx, store, "nets/run-1", testutil.Codec())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.MoleculeCount() != 1 || restored.OperatorCount() != 1 || restored.ReactionCount() != 1 {
		t.Fatalf("restored sizes: %d %d %d",
			restored.MoleculeCount(), restored.OperatorCount(), restored.ReactionCount())
	}
	if got := restored.MoleculeMeta(0)["mass"]; got != 1.0 {
		t.Fatalf("restored metadata: %v", got)
	}
}

func TestArchiveKeysAreImmutable(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	net := core.NewNetwork()
	if _, err := Archive(ctx, store, "nets/run-1", net); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := Archive(ctx, store, "nets/run-1", net); !errors.Is(err, ErrExists) {
		t.Fatalf("overwrite allowed: %v", err)
	}
}

func TestRestoreMissingArchive(t *testing.T) {
	if _, err := Restore(context.Background(), NewMemory(), "nets/none", testutil.Codec()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing archive: %v", err)
	}
}

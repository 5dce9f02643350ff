package core

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"testing"

	"chemcore/pkg/domain"
	"chemcore/testutil"
)

func buildSampleNetwork(t *testing.T) *Network {
	t.Helper()
	n := NewNetwork()
	mustMol(t, n, "am1", 1.0)
	mustMol(t, n, "abm2", 2.0)
	mustMol(t, n, "bm3", 3.0)
	op := mustOp(t, n, "O", "a", "b")
	if _, err := n.AddReaction(op, []domain.MolIndex{0, 2}, []domain.MolIndex{1}, domain.Metadata{"rate": 0.25}); err != nil {
		t.Fatalf("add reaction: %v", err)
	}
	if err := n.SetMoleculeMeta(0, "mass", 1.0); err != nil {
		t.Fatalf("set meta: %v", err)
	}
	if err := n.SetOperatorMeta(op, "family", "condensation"); err != nil {
		t.Fatalf("set meta: %v", err)
	}
	return n
}

func TestSerializeRoundTrip(t *testing.T) {
	n := buildSampleNetwork(t)
	blob, err := n.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	restored, err := Deserialize(blob, testutil.Codec())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if restored.MoleculeCount() != n.MoleculeCount() ||
		restored.OperatorCount() != n.OperatorCount() ||
		restored.ReactionCount() != n.ReactionCount() {
		t.Fatalf("registry sizes differ after round trip")
	}
	if idx, ok := restored.MoleculeIndex("abm2"); !ok || idx != 1 {
		t.Fatalf("identity lookup after round trip: %d %v", idx, ok)
	}
	if got := restored.Compatibility(0, 1); !equalMolIndices(got, []domain.MolIndex{1, 2}) {
		t.Fatalf("compat after round trip: %v", got)
	}
	if got := restored.Producers(1); !equalRxnIndices(got, []domain.RxnIndex{0}) {
		t.Fatalf("producers not rederived: %v", got)
	}
	if got := restored.Consumers(2); !equalRxnIndices(got, []domain.RxnIndex{0}) {
		t.Fatalf("consumers not rederived: %v", got)
	}
	if got := restored.MoleculeMeta(0)["mass"]; got != 1.0 {
		t.Fatalf("molecule metadata lost: %v", got)
	}
	if got := restored.OperatorMeta(0)["family"]; got != "condensation" {
		t.Fatalf("operator metadata lost: %v", got)
	}
	if got := restored.ReactionMeta(0)["rate"]; got != 0.25 {
		t.Fatalf("reaction metadata lost: %v", got)
	}
	mol, ok := restored.Molecule(0)
	if !ok || mol.(testutil.Molecule).Mass != 1.0 {
		t.Fatalf("payload not rehydrated: %+v", mol)
	}
}

func TestDeserializeCorruptBlob(t *testing.T) {
	if _, err := Deserialize([]byte("not gzip"), testutil.Codec()); !errors.Is(err, domain.ErrCorruptSnapshot) {
		t.Fatalf("corrupt blob: got %v", err)
	}
}

func TestDeserializeRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(snapshotEnvelope{Version: snapshotVersion + 1}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := Deserialize(buf.Bytes(), testutil.Codec()); !errors.Is(err, domain.ErrCorruptSnapshot) {
		t.Fatalf("version mismatch: got %v", err)
	}
}

func TestImportStateRequiresCodec(t *testing.T) {
	n := NewNetwork()
	if err := n.ImportState(domain.Snapshot{}, domain.Codec{}); err == nil {
		t.Fatalf("nil codec accepted")
	}
}

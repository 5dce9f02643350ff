package domain

import (
	"strings"
	"testing"
)

func TestRangeErrorMessage(t *testing.T) {
	err := RangeError{Entity: EntityOperator, Index: 7, Size: 3}
	msg := err.Error()
	for _, want := range []string{"operator", "7", "3"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("range error %q missing %q", msg, want)
		}
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := ErrNotFound{Entity: EntityMolecule, ID: "water"}
	msg := err.Error()
	if !strings.Contains(msg, "molecule") || !strings.Contains(msg, "water") {
		t.Fatalf("not found error %q missing entity or id", msg)
	}
}

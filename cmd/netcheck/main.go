// Command netcheck validates a serialized reaction network archive: envelope
// version, duplicate identities, reaction handle bounds, and compatibility
// table shape. It exits non-zero when the archive is unusable.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chemcore/internal/core"
	"chemcore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("netcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var snapshotPath string
	fs.StringVar(&snapshotPath, "snapshot", "chemcore.net.gz", "path to serialized network archive")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(snapshotPath); err != nil {
		fmt.Fprintf(stderr, "Archive validation failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Archive validation passed.")
	return 0
}

// validatePath rejects empty and path-traversing references.
func validatePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path")
	}
	clean := filepath.Clean(p)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", p)
	}
	return clean, nil
}

func run(snapshotPath string) error {
	safePath, err := validatePath(snapshotPath)
	if err != nil {
		return err
	}
	blob, err := os.ReadFile(safePath) // #nosec G304: path validated by validatePath
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	snap, err := core.DecodeSnapshot(blob)
	if err != nil {
		return err
	}
	return checkSnapshot(snap)
}

func checkSnapshot(snap domain.Snapshot) error {
	if err := checkIdentities(snap); err != nil {
		return err
	}
	if err := checkReactions(snap); err != nil {
		return err
	}
	return checkCompat(snap)
}

// checkIdentities verifies every registry keys its entries by a unique
// non-empty identity.
func checkIdentities(snap domain.Snapshot) error {
	seenMols := make(map[domain.Identifier]int, len(snap.Molecules))
	for i, rec := range snap.Molecules {
		if rec.UID == "" {
			return fmt.Errorf("molecules[%d]: missing uid", i)
		}
		if prev, dup := seenMols[rec.UID]; dup {
			return fmt.Errorf("molecules[%d]: duplicate uid %q (first at %d)", i, rec.UID, prev)
		}
		seenMols[rec.UID] = i
	}
	seenOps := make(map[domain.Identifier]int, len(snap.Operators))
	for i, rec := range snap.Operators {
		if rec.UID == "" {
			return fmt.Errorf("operators[%d]: missing uid", i)
		}
		if prev, dup := seenOps[rec.UID]; dup {
			return fmt.Errorf("operators[%d]: duplicate uid %q (first at %d)", i, rec.UID, prev)
		}
		if rec.Arity < 0 {
			return fmt.Errorf("operators[%d]: negative arity %d", i, rec.Arity)
		}
		seenOps[rec.UID] = i
	}
	seenRxns := make(map[domain.ReactionKey]int, len(snap.Reactions))
	for i, rec := range snap.Reactions {
		key := rec.Reaction.Key()
		if prev, dup := seenRxns[key]; dup {
			return fmt.Errorf("reactions[%d]: structural duplicate of reactions[%d]", i, prev)
		}
		seenRxns[key] = i
	}
	return nil
}

// checkReactions verifies every reaction handle points into its registry.
func checkReactions(snap domain.Snapshot) error {
	nMols := domain.MolIndex(len(snap.Molecules))
	nOps := domain.OpIndex(len(snap.Operators))
	for i, rec := range snap.Reactions {
		rxn := rec.Reaction
		if rxn.Operator < 0 || rxn.Operator >= nOps {
			return fmt.Errorf("reactions[%d]: operator handle %d out of range (%d operators)", i, rxn.Operator, nOps)
		}
		for _, m := range rxn.Reactants {
			if m < 0 || m >= nMols {
				return fmt.Errorf("reactions[%d]: reactant handle %d out of range (%d molecules)", i, m, nMols)
			}
		}
		for _, m := range rxn.Products {
			if m < 0 || m >= nMols {
				return fmt.Errorf("reactions[%d]: product handle %d out of range (%d molecules)", i, m, nMols)
			}
		}
	}
	return nil
}

// checkCompat verifies the compatibility table has one row per operator,
// one slot per operator argument, and molecule handles in range.
func checkCompat(snap domain.Snapshot) error {
	if len(snap.Compat) != len(snap.Operators) {
		return fmt.Errorf("compat: %d rows for %d operators", len(snap.Compat), len(snap.Operators))
	}
	nMols := domain.MolIndex(len(snap.Molecules))
	for op, row := range snap.Compat {
		if len(row) != snap.Operators[op].Arity {
			return fmt.Errorf("compat[%d]: %d argument slots for arity %d", op, len(row), snap.Operators[op].Arity)
		}
		for arg, mols := range row {
			for _, m := range mols {
				if m < 0 || m >= nMols {
					return fmt.Errorf("compat[%d][%d]: molecule handle %d out of range (%d molecules)", op, arg, m, nMols)
				}
			}
		}
	}
	return nil
}

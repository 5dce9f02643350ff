// Package sqlite persists the in-memory network to a single SQLite table as
// JSON buckets, snapshotting the full state after every successful mutation.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"chemcore/internal/core"
	"chemcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.Network = (*Store)(nil)

// Store wraps the in-memory network with SQLite snapshot persistence.
type Store struct {
	*core.Network
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) a SQLite-backed network store at path,
// hydrating from any existing snapshot via the codec.
func NewStore(path string, codec domain.Codec) (*Store, error) {
	if path == "" {
		path = "chemcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Network: core.NewNetwork(), db: db, path: path}
	if err := s.load(codec); err != nil {
		return nil, err
	}
	return s, nil
}

var sqliteBuckets = []string{"molecules", "operators", "reactions", "compat"}

func (s *Store) load(codec domain.Codec) error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	payloads := map[string][]byte{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		payloads[bucket] = payload
	}
	if len(payloads) == 0 {
		return nil
	}
	var snapshot domain.Snapshot
	for bucket, payload := range payloads {
		var err error
		switch bucket {
		case "molecules":
			err = json.Unmarshal(payload, &snapshot.Molecules)
		case "operators":
			err = json.Unmarshal(payload, &snapshot.Operators)
		case "reactions":
			err = json.Unmarshal(payload, &snapshot.Reactions)
		case "compat":
			err = json.Unmarshal(payload, &snapshot.Compat)
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	return s.Network.ImportState(snapshot, codec)
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.Network.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case "molecules":
			data, err = json.Marshal(snapshot.Molecules)
		case "operators":
			data, err = json.Marshal(snapshot.Operators)
		case "reactions":
			data, err = json.Marshal(snapshot.Reactions)
		case "compat":
			data, err = json.Marshal(snapshot.Compat)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// AddMolecule registers a molecule and snapshots state on success.
func (s *Store) AddMolecule(mol domain.Molecule, meta domain.Metadata) (domain.MolIndex, error) {
	idx, err := s.Network.AddMolecule(mol, meta)
	if err != nil {
		return idx, err
	}
	return idx, s.persist()
}

// AddOperator registers an operator and snapshots state on success.
func (s *Store) AddOperator(op domain.Operator, meta domain.Metadata) (domain.OpIndex, error) {
	idx, err := s.Network.AddOperator(op, meta)
	if err != nil {
		return idx, err
	}
	return idx, s.persist()
}

// AddReaction registers a reaction and snapshots state on success.
func (s *Store) AddReaction(op domain.OpIndex, reactants, products []domain.MolIndex, meta domain.Metadata) (domain.RxnIndex, error) {
	idx, err := s.Network.AddReaction(op, reactants, products, meta)
	if err != nil {
		return idx, err
	}
	return idx, s.persist()
}

// SetMoleculeMeta writes a molecule metadata key and snapshots state.
func (s *Store) SetMoleculeMeta(i domain.MolIndex, key string, value any) error {
	if err := s.Network.SetMoleculeMeta(i, key, value); err != nil {
		return err
	}
	return s.persist()
}

// SetOperatorMeta writes an operator metadata key and snapshots state.
func (s *Store) SetOperatorMeta(i domain.OpIndex, key string, value any) error {
	if err := s.Network.SetOperatorMeta(i, key, value); err != nil {
		return err
	}
	return s.persist()
}

// SetReactionMeta writes a reaction metadata key and snapshots state.
func (s *Store) SetReactionMeta(i domain.RxnIndex, key string, value any) error {
	if err := s.Network.SetReactionMeta(i, key, value); err != nil {
		return err
	}
	return s.persist()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

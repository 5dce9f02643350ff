// Package postgres provides a Postgres-backed network store that mirrors the
// in-memory semantics while snapshotting the serialized network after every
// successful mutation.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"chemcore/internal/core"
	"chemcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.Network = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/chemcore?sslmode=disable"
)

var sqlOpen = sql.Open

// OverrideSQLOpen swaps the database opener for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	prev := sqlOpen
	sqlOpen = fn
	return func() { sqlOpen = prev }
}

// Store persists serialized network snapshots to Postgres while reusing the
// in-memory implementation for all queries.
type Store struct {
	*core.Network
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the snapshot table exists, and hydrates the
// in-memory network from any existing snapshot via the codec.
func NewStore(dsn string, codec domain.Codec) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sqlOpen(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS network_state (
		id INTEGER PRIMARY KEY,
		payload BYTEA NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	net, err := loadSnapshot(ctx, db, codec)
	if err != nil {
		return nil, err
	}
	return &Store{Network: net, db: db}, nil
}

func loadSnapshot(ctx context.Context, db *sql.DB, codec domain.Codec) (*core.Network, error) {
	var payload []byte
	err := db.QueryRowContext(ctx, `SELECT payload FROM network_state WHERE id = 1`).Scan(&payload)
	switch {
	case err == sql.ErrNoRows:
		return core.NewNetwork(), nil
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	net, err := core.Deserialize(payload, codec)
	if err != nil {
		return nil, fmt.Errorf("hydrate snapshot: %w", err)
	}
	return net, nil
}

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := s.Network.Serialize()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(context.Background(),
		`INSERT INTO network_state(id, payload) VALUES(1, $1)
		 ON CONFLICT (id) DO UPDATE SET payload = excluded.payload`, payload)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
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

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

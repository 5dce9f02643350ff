package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"chemcore/pkg/domain"
	"chemcore/testutil"
)

// stubState is the shared backing store of the stub driver: the single
// snapshot row plus a log of executed statements.
type stubState struct {
	mu      sync.Mutex
	payload []byte
	execs   []string
}

type stubConnector struct{ state *stubState }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{state: c.state}, nil
}
func (c stubConnector) Driver() driver.Driver { return stubDriver{state: c.state} }

type stubDriver struct{ state *stubState }

func (d stubDriver) Open(string) (driver.Conn, error) { return &stubConn{state: d.state}, nil }

type stubConn struct{ state *stubState }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported by stub")
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return nil, errors.New("transactions not supported by stub") }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.execs = append(c.state.execs, query)
	if strings.Contains(query, "INSERT INTO network_state") && len(args) == 1 {
		if b, ok := args[0].Value.([]byte); ok {
			c.state.payload = append([]byte(nil), b...)
		}
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if strings.Contains(query, "SELECT payload") {
		if c.state.payload == nil {
			return &stubRows{}, nil
		}
		return &stubRows{rows: [][]driver.Value{{append([]byte(nil), c.state.payload...)}}}, nil
	}
	return &stubRows{}, nil
}

type stubRows struct {
	rows [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"payload"} }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func newStubDB() (*sql.DB, *stubState) {
	state := &stubState{}
	return sql.OpenDB(stubConnector{state: state}), state
}

func openStubStore(t *testing.T, db *sql.DB) *Store {
	t.Helper()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	s, err := NewStore("", testutil.Codec())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestNewStoreCreatesTable(t *testing.T) {
	db, state := newStubDB()
	openStubStore(t, db)
	state.mu.Lock()
	defer state.mu.Unlock()
	sawDDL := false
	for _, stmt := range state.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("snapshot table DDL not applied: %v", state.execs)
	}
}

func TestMutationsSnapshotAndReload(t *testing.T) {
	db, state := newStubDB()
	s := openStubStore(t, db)

	if _, err := s.AddMolecule(testutil.Molecule{ID: "am1", Mass: 1.0}, nil); err != nil {
		t.Fatalf("add molecule: %v", err)
	}
	op, err := s.AddOperator(testutil.Operator{ID: "O", Slots: []string{"a"}}, nil)
	if err != nil {
		t.Fatalf("add operator: %v", err)
	}
	if _, err := s.AddReaction(op, []domain.MolIndex{0}, []domain.MolIndex{0}, domain.Metadata{"rate": 0.5}); err != nil {
		t.Fatalf("add reaction: %v", err)
	}
	if err := s.SetMoleculeMeta(0, "mass", 1.0); err != nil {
		t.Fatalf("set meta: %v", err)
	}

	state.mu.Lock()
	hasSnapshot := state.payload != nil
	state.mu.Unlock()
	if !hasSnapshot {
		t.Fatalf("mutations did not persist a snapshot")
	}

	// A second store over the same backing row hydrates the same network.
	reloaded := openStubStore(t, sql.OpenDB(stubConnector{state: state}))
	if reloaded.MoleculeCount() != 1 || reloaded.OperatorCount() != 1 || reloaded.ReactionCount() != 1 {
		t.Fatalf("reloaded sizes: %d %d %d",
			reloaded.MoleculeCount(), reloaded.OperatorCount(), reloaded.ReactionCount())
	}
	if v := reloaded.MoleculeMeta(0)["mass"]; v != 1.0 {
		t.Fatalf("metadata after reload: %v", v)
	}
	if compat := reloaded.Compatibility(op, 0); len(compat) != 1 {
		t.Fatalf("compat after reload: %v", compat)
	}
}

func TestFailedMutationSkipsSnapshot(t *testing.T) {
	db, state := newStubDB()
	s := openStubStore(t, db)
	if _, err := s.AddReaction(5, nil, nil, nil); err == nil {
		t.Fatalf("out-of-range reaction accepted")
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.payload != nil {
		t.Fatalf("failed mutation persisted a snapshot")
	}
}

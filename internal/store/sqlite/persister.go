// Package sqlite persists the application state in a local SQLite file for
// single machine installs without PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/usman-global/usman-books/internal/store"
)

const stateRowID = 1

const schema = `CREATE TABLE IF NOT EXISTS app_state (
	id INTEGER PRIMARY KEY,
	version INTEGER NOT NULL,
	state TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// Persister stores the aggregate in a single app_state row.
type Persister struct {
	db *sql.DB
}

// Open opens path (or ":memory:") and creates the state table.
func Open(ctx context.Context, path string) (*Persister, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store/sqlite: ensure schema: %w", err)
	}
	return &Persister{db: db}, nil
}

// Close releases the database handle.
func (p *Persister) Close() error {
	return p.db.Close()
}

// Load returns the stored state or nil when nothing was saved yet.
func (p *Persister) Load(ctx context.Context) (*store.State, error) {
	var (
		version int64
		raw     string
	)
	err := p.db.QueryRowContext(ctx, `SELECT version, state FROM app_state WHERE id = ?`, stateRowID).Scan(&version, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: load: %w", err)
	}
	var st store.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("store/sqlite: decode state: %w", err)
	}
	st.Version = version
	return &st, nil
}

// Save writes st when the stored version equals prev.
func (p *Persister) Save(ctx context.Context, st *store.State, prev int64) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("store/sqlite: encode state: %w", err)
	}
	if prev == 0 {
		res, err := p.db.ExecContext(ctx,
			`INSERT INTO app_state (id, version, state) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			stateRowID, st.Version, string(raw))
		if err != nil {
			return fmt.Errorf("store/sqlite: insert: %w", err)
		}
		return requireOneRow(res)
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE app_state SET version = ?, state = ?, updated_at = datetime('now') WHERE id = ? AND version = ?`,
		st.Version, string(raw), stateRowID, prev)
	if err != nil {
		return fmt.Errorf("store/sqlite: update: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store/sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrVersionConflict
	}
	return nil
}

// Package postgres persists the application state as a single versioned
// JSONB row.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/usman-global/usman-books/internal/platform/db"
	"github.com/usman-global/usman-books/internal/store"
)

const stateRowID = 1

const schema = `CREATE TABLE IF NOT EXISTS app_state (
	id SMALLINT PRIMARY KEY,
	version BIGINT NOT NULL,
	state JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Persister stores the aggregate in the app_state table.
type Persister struct {
	pool *pgxpool.Pool
}

// NewPersister constructs a persister on pool.
func NewPersister(pool *pgxpool.Pool) *Persister {
	return &Persister{pool: pool}
}

// EnsureSchema creates the state table when missing.
func (p *Persister) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("store/postgres: ensure schema: %w", err)
	}
	return nil
}

// Load returns the stored state or nil when the row does not exist.
func (p *Persister) Load(ctx context.Context) (*store.State, error) {
	var (
		version int64
		raw     []byte
	)
	err := p.pool.QueryRow(ctx, `SELECT version, state FROM app_state WHERE id = $1`, stateRowID).Scan(&version, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store/postgres: load: %w", err)
	}
	var st store.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("store/postgres: decode state: %w", err)
	}
	st.Version = version
	return &st, nil
}

// Save writes st when the stored version equals prev. A first save uses
// prev 0 and fails with ErrVersionConflict if another process won the race.
func (p *Persister) Save(ctx context.Context, st *store.State, prev int64) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("store/postgres: encode state: %w", err)
	}
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		var current int64
		err := tx.QueryRow(ctx, `SELECT version FROM app_state WHERE id = $1 FOR UPDATE`, stateRowID).Scan(&current)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if prev != 0 {
				return store.ErrVersionConflict
			}
			tag, err := tx.Exec(ctx,
				`INSERT INTO app_state (id, version, state, updated_at) VALUES ($1, $2, $3, now()) ON CONFLICT (id) DO NOTHING`,
				stateRowID, st.Version, raw)
			if err != nil {
				return fmt.Errorf("store/postgres: insert: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return store.ErrVersionConflict
			}
			return nil
		case err != nil:
			return fmt.Errorf("store/postgres: lock: %w", err)
		}
		if current != prev {
			return fmt.Errorf("%w: stored %d, expected %d", store.ErrVersionConflict, current, prev)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE app_state SET version = $2, state = $3, updated_at = now() WHERE id = $1`,
			stateRowID, st.Version, raw); err != nil {
			return fmt.Errorf("store/postgres: update: %w", err)
		}
		return nil
	})
}

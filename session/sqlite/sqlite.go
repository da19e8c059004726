// Package sqlite provides a durable session.Store backed by SQLite via the
// pure-Go modernc.org/sqlite driver. State snapshots are stored as JSON under
// their namespaced key; the table is created on open.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hupe1980/agentrelay/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS agent_state (
	key        TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// Store is a session.Store persisting state snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists. WAL mode and a busy timeout keep single-writer contention
// tolerable; the pool is capped at one connection because SQLite allows only
// one writer.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=5000", path,
	))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &Store{db: db}, nil
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, key string) (session.State, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM agent_state WHERE key = ?`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return session.State{}, false, nil
	}
	if err != nil {
		return session.State{}, false, fmt.Errorf("load state %q: %w", key, err)
	}
	var state session.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return session.State{}, false, fmt.Errorf("decode state %q: %w", key, err)
	}
	return state, true, nil
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, key string, state session.State) error {
	state.Updated = time.Now().UTC()
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_state (key, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		key, string(raw), state.Updated,
	)
	if err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/pocket-calendar/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store implements persistence.KVStore on a single SQLite table. The calendar
// keeps its whole event collection under one key, so the schema is a plain
// key/value table with a bookkeeping timestamp.
type Store struct {
	db *sql.DB
}

// Open establishes a connection to the SQLite database described by dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}

	// A single writer avoids SQLITE_BUSY on concurrent upserts of the blob.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the key-value table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", mapError(err))
	}
	return nil
}

// Get returns the value stored under key, or persistence.ErrNotFound when the
// key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, persistence.ErrNotFound
		}
		return nil, mapError(err)
	}
	return value, nil
}

// Set durably replaces the value stored under key. The upsert runs in its own
// transaction so a failed write never leaves a partial entry behind.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", mapError(err))
	}

	const upsert = `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert, key, value, time.Now().UTC().Format(time.RFC3339)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: set %s failed (rollback error: %v): %w", key, rbErr, mapError(err))
		}
		return fmt.Errorf("sqlite: set %s: %w", key, mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit set %s: %w", key, mapError(err))
	}
	return nil
}

// mapError normalizes driver errors into stable messages callers can match on.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked"):
		return fmt.Errorf("database locked: %w", err)
	case strings.Contains(msg, "disk is full") || strings.Contains(msg, "database or disk is full"):
		return fmt.Errorf("storage full: %w", err)
	}
	return err
}

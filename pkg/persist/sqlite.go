package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// SQLite stores payloads in a single key/value table.
type SQLite struct {
	db *sql.DB
}

var _ Persister = (*SQLite)(nil)

// NewSQLite opens (or creates) the database at dsn and runs the migration.
// Use ":memory:" for an ephemeral database.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("persist: open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS form_state (
		storage_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("persist: migrate sqlite: %w", err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, key string) (*schema.FormData, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM form_state WHERE storage_key = ?`, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: load %s: %w", key, err)
	}
	return Decode([]byte(payload))
}

func (s *SQLite) Save(ctx context.Context, key string, data *schema.FormData) error {
	payload, err := Encode(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO form_state (storage_key, payload, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(storage_key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("persist: save %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM form_state WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("persist: clear %s: %w", key, err)
	}
	return nil
}

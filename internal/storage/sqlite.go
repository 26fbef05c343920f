package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite implements Adapter on a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path. On the
// first ever run (neither the patients nor the incidents collection exists)
// it materializes the seed data set before returning, so the store always
// starts from a non-empty, internally consistent snapshot.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLite{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedIfFirstRun(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name       TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// seedIfFirstRun writes the seed data when both canonical collections are
// absent. Absence of both keys is the designated first-run signal; if either
// exists the store has prior data and nothing is written.
func (s *SQLite) seedIfFirstRun(ctx context.Context) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collections WHERE name IN (?, ?)`,
		CollectionPatients, CollectionIncidents).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	now := time.Now().UTC()
	if err := s.Save(ctx, CollectionPatients, seedPatients(now)); err != nil {
		return err
	}
	if err := s.Save(ctx, CollectionIncidents, seedIncidents(now)); err != nil {
		return err
	}
	users, err := seedUsers()
	if err != nil {
		return err
	}
	return s.Save(ctx, CollectionUsers, users)
}

// Load decodes the stored document for name into dest.
func (s *SQLite) Load(ctx context.Context, name string, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Save overwrites the stored document for name with the JSON encoding of v.
func (s *SQLite) Save(ctx context.Context, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, string(b), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Delete removes the stored document for name.
func (s *SQLite) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

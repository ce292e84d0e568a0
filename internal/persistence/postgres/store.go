// Package postgres provides a PostgreSQL-backed catalog store. Writes go
// through the in-memory store and then snapshot the full state into a
// single JSONB-keyed table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"metabocore/internal/persistence/memory"
	"metabocore/pkg/kegg"
)

const defaultDriver = "pgx"

var (
	openMu  sync.Mutex
	sqlOpen = sql.Open
)

// OverrideSQLOpen swaps the sql.Open hook for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driver, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// Store persists catalog state to PostgreSQL.
type Store struct {
	*memory.Store
	db  *sql.DB
	mu  sync.Mutex
	dsn string
}

var buckets = []string{"enzymes", "reactions", "organisms"}

// NewStore connects to PostgreSQL, ensures the state table exists, and
// hydrates the in-memory state from any existing snapshot.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = "postgres://localhost:5432/metabocore?sslmode=disable"
	}
	openMu.Lock()
	open := sqlOpen
	openMu.Unlock()
	db, err := open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, dsn: dsn}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var snapshot memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		var target any
		switch bucket {
		case "enzymes":
			target = &snapshot.Enzymes
		case "reactions":
			target = &snapshot.Reactions
		case "organisms":
			target = &snapshot.Organisms
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case "enzymes":
			data, err = json.Marshal(snapshot.Enzymes)
		case "reactions":
			data, err = json.Marshal(snapshot.Reactions)
		case "organisms":
			data, err = json.Marshal(snapshot.Organisms)
		}
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReplaceEnzymes updates the in-memory state and snapshots it to PostgreSQL.
func (s *Store) ReplaceEnzymes(ctx context.Context, enzymes []*kegg.Enzyme) error {
	if err := s.Store.ReplaceEnzymes(ctx, enzymes); err != nil {
		return err
	}
	return s.persist(ctx)
}

// ReplaceReactions updates the in-memory state and snapshots it to PostgreSQL.
func (s *Store) ReplaceReactions(ctx context.Context, reactions []*kegg.Reaction) error {
	if err := s.Store.ReplaceReactions(ctx, reactions); err != nil {
		return err
	}
	return s.persist(ctx)
}

// ReplaceOrganisms updates the in-memory state and snapshots it to PostgreSQL.
func (s *Store) ReplaceOrganisms(ctx context.Context, organisms []*kegg.Organism) error {
	if err := s.Store.ReplaceOrganisms(ctx, organisms); err != nil {
		return err
	}
	return s.persist(ctx)
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// DSN returns the configured connection string.
func (s *Store) DSN() string { return s.dsn }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

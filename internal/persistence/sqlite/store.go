// Package sqlite provides a SQLite-backed catalog store. The in-memory
// store remains the source of truth; the full state is snapshotted to a
// single table as JSON after every successful write.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"metabocore/internal/persistence/memory"
	"metabocore/pkg/kegg"
)

// Store persists catalog state to a SQLite database.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var buckets = []string{"enzymes", "reactions", "organisms"}

// NewStore constructs a snapshotting SQLite-backed store, hydrating the
// in-memory state from any existing snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "metabocore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
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
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
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

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
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
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// ReplaceEnzymes updates the in-memory state and snapshots it to SQLite.
func (s *Store) ReplaceEnzymes(ctx context.Context, enzymes []*kegg.Enzyme) error {
	if err := s.Store.ReplaceEnzymes(ctx, enzymes); err != nil {
		return err
	}
	return s.persist()
}

// ReplaceReactions updates the in-memory state and snapshots it to SQLite.
func (s *Store) ReplaceReactions(ctx context.Context, reactions []*kegg.Reaction) error {
	if err := s.Store.ReplaceReactions(ctx, reactions); err != nil {
		return err
	}
	return s.persist()
}

// ReplaceOrganisms updates the in-memory state and snapshots it to SQLite.
func (s *Store) ReplaceOrganisms(ctx context.Context, organisms []*kegg.Organism) error {
	if err := s.Store.ReplaceOrganisms(ctx, organisms); err != nil {
		return err
	}
	return s.persist()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

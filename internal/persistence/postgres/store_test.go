package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"metabocore/internal/persistence/memory"
	"metabocore/pkg/kegg"
)

func overrideOpen(t *testing.T) *stubConn {
	t.Helper()
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("unexpected driver %q", driverName)
		}
		return db, nil
	})
	t.Cleanup(restore)
	return conn
}

func TestStorePersistsSnapshot(t *testing.T) {
	conn := overrideOpen(t)
	ctx := context.Background()
	store, err := NewStore(ctx, "postgres://test")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.ReplaceEnzymes(ctx, []*kegg.Enzyme{{EC: "1.1.1.1", Names: []string{"alcohol dehydrogenase"}}}); err != nil {
		t.Fatalf("ReplaceEnzymes: %v", err)
	}
	if _, ok := conn.state["enzymes"]; !ok {
		t.Fatal("enzymes bucket not persisted")
	}
	if got := string(conn.state["enzymes"]); !strings.Contains(got, "1.1.1.1") {
		t.Fatalf("enzymes payload missing record: %s", got)
	}
	// All buckets snapshot on every write.
	for _, bucket := range buckets {
		if _, ok := conn.state[bucket]; !ok {
			t.Fatalf("bucket %s not persisted", bucket)
		}
	}

	var sawCreate, sawUpsert bool
	for _, q := range conn.execs {
		up := strings.ToUpper(q)
		if strings.Contains(up, "CREATE TABLE IF NOT EXISTS STATE") {
			sawCreate = true
		}
		if strings.Contains(up, "ON CONFLICT(BUCKET)") {
			sawUpsert = true
		}
	}
	if !sawCreate || !sawUpsert {
		t.Fatalf("missing expected statements, got %v", conn.execs)
	}
}

func TestStoreHydratesFromSnapshot(t *testing.T) {
	conn := overrideOpen(t)
	ctx := context.Background()
	first, err := NewStore(ctx, "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := first.ReplaceOrganisms(ctx, []*kegg.Organism{{TNumber: "T00007", Code: "eco", Name: "Escherichia coli K-12 MG1655"}}); err != nil {
		t.Fatalf("ReplaceOrganisms: %v", err)
	}

	// A second store over the same stub connection sees the snapshot.
	second := &Store{Store: memory.NewStore(), db: first.DB()}
	if err := second.load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	orgs := second.Organisms()
	if len(orgs) != 1 || orgs[0].Code != "eco" {
		t.Fatalf("unexpected organisms after hydrate: %+v", orgs)
	}
	if _, ok := conn.state["organisms"]; !ok {
		t.Fatal("organisms bucket missing from stub state")
	}
	_ = first.Close()
}

func TestNewStorePingFailure(t *testing.T) {
	conn := overrideOpen(t)
	conn.failPing = true
	if _, err := NewStore(context.Background(), "postgres://test"); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestReplaceRollsBackOnCommitFailure(t *testing.T) {
	conn := overrideOpen(t)
	ctx := context.Background()
	store, err := NewStore(ctx, "postgres://test")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()
	conn.failCommit = true
	if err := store.ReplaceReactions(ctx, []*kegg.Reaction{{RN: "R00299"}}); err == nil {
		t.Fatal("expected commit error")
	}
	// Memory state still advanced; persistence reports the failure.
	if len(store.Reactions()) != 1 {
		t.Fatal("in-memory state should reflect the write")
	}
}

func TestDSNDefault(t *testing.T) {
	overrideOpen(t)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()
	if !strings.Contains(store.DSN(), "metabocore") {
		t.Fatalf("unexpected default DSN %q", store.DSN())
	}
}

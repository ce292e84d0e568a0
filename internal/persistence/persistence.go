// Package persistence selects and wires the catalog store backends.
package persistence

import (
	"context"
	"fmt"
	"os"
	"strings"

	"metabocore/internal/persistence/memory"
	"metabocore/internal/persistence/postgres"
	"metabocore/internal/persistence/sqlite"
	"metabocore/pkg/kegg"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Environment variables read by Open.
const (
	EnvDriver      = "METABOCORE_DB_DRIVER"
	EnvSQLitePath  = "METABOCORE_SQLITE_PATH"
	EnvPostgresDSN = "METABOCORE_POSTGRES_DSN"
)

// Store is the catalog persistence contract. Replace operations swap the
// full set for a record kind; readers receive copies.
type Store interface {
	ReplaceEnzymes(ctx context.Context, enzymes []*kegg.Enzyme) error
	ReplaceReactions(ctx context.Context, reactions []*kegg.Reaction) error
	ReplaceOrganisms(ctx context.Context, organisms []*kegg.Organism) error
	Enzymes() []*kegg.Enzyme
	Reactions() []*kegg.Reaction
	Organisms() []*kegg.Organism
	Close() error
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// Open constructs the store selected by METABOCORE_DB_DRIVER. The memory
// driver is the default.
func Open(ctx context.Context) (Store, error) {
	driver := strings.TrimSpace(os.Getenv(EnvDriver))
	switch driver {
	case "", DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		return sqlite.NewStore(os.Getenv(EnvSQLitePath))
	case DriverPostgres:
		return postgres.NewStore(ctx, os.Getenv(EnvPostgresDSN))
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", driver)
	}
}

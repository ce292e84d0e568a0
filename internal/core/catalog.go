// Package core wires the KEGG databases to persistence, archival, and
// observability. The Service owns one database per record kind; the
// persistence store receives a full snapshot after every mutating
// operation.
package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"metabocore/internal/blob"
	"metabocore/internal/metrics"
	"metabocore/internal/persistence"
	"metabocore/pkg/kegg"
)

// Default backing file names for the flat-file databases.
const (
	DefaultEnzymeFile   = "enzyme.db"
	DefaultReactionFile = "reaction.db"
	DefaultOrganismFile = "organism.db"
)

// RecordFetcher is the subset of the web client used to fetch enzyme and
// reaction records by id.
type RecordFetcher interface {
	Enzymes(ctx context.Context, ids []string) ([]*kegg.Enzyme, error)
	Reactions(ctx context.Context, ids []string) ([]*kegg.Reaction, error)
}

var _ RecordFetcher = (*kegg.Client)(nil)

// Config carries the database file locations. Zero values select the
// defaults in the working directory.
type Config struct {
	EnzymeFile   string
	ReactionFile string
	OrganismFile string
}

// Service exposes the catalog operations: import, download, export,
// reconciliation, archival, and state restore.
type Service struct {
	store   persistence.Store
	archive blob.Store
	logger  *log.Logger
	metrics metrics.Recorder

	enzymes   *kegg.EnzymeDatabase
	reactions *kegg.ReactionDatabase
	organisms *kegg.OrganismDatabase
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder sets the operation metrics recorder.
func WithMetricsRecorder(rec metrics.Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithArchive attaches a document archive used by ArchiveDocument.
func WithArchive(store blob.Store) Option {
	return func(s *Service) { s.archive = store }
}

// NewService constructs a catalog service over the given persistence
// store, hydrating the databases from any state the store already holds.
func NewService(store persistence.Store, cfg Config, opts ...Option) *Service {
	if cfg.EnzymeFile == "" {
		cfg.EnzymeFile = DefaultEnzymeFile
	}
	if cfg.ReactionFile == "" {
		cfg.ReactionFile = DefaultReactionFile
	}
	if cfg.OrganismFile == "" {
		cfg.OrganismFile = DefaultOrganismFile
	}
	s := &Service{
		store:     store,
		logger:    log.New(os.Stderr),
		metrics:   metrics.NopRecorder{},
		enzymes:   kegg.NewEnzymeDatabase(cfg.EnzymeFile),
		reactions: kegg.NewReactionDatabase(cfg.ReactionFile),
		organisms: kegg.NewOrganismDatabase(cfg.OrganismFile),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

// restore hydrates the databases from the persistence store.
func (s *Service) restore() {
	for _, enzyme := range s.store.Enzymes() {
		s.enzymes.Update(enzyme)
	}
	for _, reaction := range s.store.Reactions() {
		s.reactions.Update(reaction)
	}
	for _, organism := range s.store.Organisms() {
		s.organisms.Update(organism)
	}
	s.organisms.RebuildCodeIndex()
}

// observe runs fn and records its outcome.
func (s *Service) observe(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.logger.Error("catalog operation failed", "operation", operation, "err", err)
		return err
	}
	s.logger.Debug("catalog operation", "operation", operation, "duration", duration)
	return nil
}

// EnzymeDB returns the enzyme database. The Service retains ownership.
func (s *Service) EnzymeDB() *kegg.EnzymeDatabase { return s.enzymes }

// ReactionDB returns the reaction database.
func (s *Service) ReactionDB() *kegg.ReactionDatabase { return s.reactions }

// OrganismDB returns the organism database.
func (s *Service) OrganismDB() *kegg.OrganismDatabase { return s.organisms }

// ImportEnzymes reads enzyme records from r into the database and saves
// the new state. Returns the number of records read.
func (s *Service) ImportEnzymes(ctx context.Context, r io.Reader) (int, error) {
	before := s.enzymes.Size()
	err := s.observe(ctx, "import_enzymes", func() error {
		if err := s.enzymes.ReadFrom(r); err != nil {
			return err
		}
		return s.store.ReplaceEnzymes(ctx, s.enzymes.All())
	})
	return s.enzymes.Size() - before, err
}

// ImportReactions reads reaction records from r into the database and
// saves the new state. Returns the number of records read.
func (s *Service) ImportReactions(ctx context.Context, r io.Reader) (int, error) {
	before := s.reactions.Size()
	err := s.observe(ctx, "import_reactions", func() error {
		if err := s.reactions.ReadFrom(r); err != nil {
			return err
		}
		return s.store.ReplaceReactions(ctx, s.reactions.All())
	})
	return s.reactions.Size() - before, err
}

// ImportOrganisms reads tab-delimited organism lines from r into the
// database and saves the new state. Returns the number of records read.
func (s *Service) ImportOrganisms(ctx context.Context, r io.Reader) (int, error) {
	before := s.organisms.Size()
	err := s.observe(ctx, "import_organisms", func() error {
		if err := s.organisms.ReadFrom(r); err != nil {
			return err
		}
		return s.store.ReplaceOrganisms(ctx, s.organisms.All())
	})
	return s.organisms.Size() - before, err
}

// FetchEnzymes downloads enzyme records by EC number, upserts them, and
// saves the new state.
func (s *Service) FetchEnzymes(ctx context.Context, client RecordFetcher, ids []string) error {
	return s.observe(ctx, "fetch_enzymes", func() error {
		enzymes, err := client.Enzymes(ctx, ids)
		if err != nil {
			return err
		}
		for _, enzyme := range enzymes {
			s.enzymes.Update(enzyme)
		}
		return s.store.ReplaceEnzymes(ctx, s.enzymes.All())
	})
}

// FetchReactions downloads reaction records by R number, upserts them,
// and saves the new state.
func (s *Service) FetchReactions(ctx context.Context, client RecordFetcher, ids []string) error {
	return s.observe(ctx, "fetch_reactions", func() error {
		reactions, err := client.Reactions(ctx, ids)
		if err != nil {
			return err
		}
		for _, reaction := range reactions {
			s.reactions.Update(reaction)
		}
		return s.store.ReplaceReactions(ctx, s.reactions.All())
	})
}

// DownloadOrganisms fills an empty organism database from the list
// operation and saves the new state.
func (s *Service) DownloadOrganisms(ctx context.Context, client kegg.Lister) error {
	return s.observe(ctx, "download_organisms", func() error {
		if err := s.organisms.Download(ctx, client); err != nil {
			return err
		}
		return s.store.ReplaceOrganisms(ctx, s.organisms.All())
	})
}

// Reconcile matches an OTU representative table against the organism
// database, flags the representatives, and saves the new state. The
// returned rows report the match outcome per table entry.
func (s *Service) Reconcile(ctx context.Context, table io.Reader) ([]kegg.ReconciliationRow, error) {
	var rows []kegg.ReconciliationRow
	err := s.observe(ctx, "reconcile_organisms", func() error {
		var err error
		rows, err = s.organisms.SetRepresentatives(table)
		if err != nil {
			return err
		}
		return s.store.ReplaceOrganisms(ctx, s.organisms.All())
	})
	return rows, err
}

// ExportEnzymes writes the enzyme records to w sorted by EC number.
func (s *Service) ExportEnzymes(ctx context.Context, w io.Writer) error {
	return s.observe(ctx, "export_enzymes", func() error {
		return s.enzymes.WriteTo(w)
	})
}

// ExportReactions writes the reaction records to w sorted by R number.
func (s *Service) ExportReactions(ctx context.Context, w io.Writer) error {
	return s.observe(ctx, "export_reactions", func() error {
		return s.reactions.WriteTo(w)
	})
}

// ExportOrganisms writes the organism records to w sorted by T number.
func (s *Service) ExportOrganisms(ctx context.Context, w io.Writer) error {
	return s.observe(ctx, "export_organisms", func() error {
		return s.organisms.WriteTo(w)
	})
}

// ArchiveDocument stores a downloaded source document in the configured
// archive. Fails when no archive is attached.
func (s *Service) ArchiveDocument(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	var info blob.Info
	err := s.observe(ctx, "archive_document", func() error {
		if s.archive == nil {
			return fmt.Errorf("no document archive configured")
		}
		var err error
		info, err = s.archive.Put(ctx, key, r, opts)
		return err
	})
	return info, err
}

// Close releases the persistence store.
func (s *Service) Close() error { return s.store.Close() }

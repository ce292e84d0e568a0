// Command metabocore manages the KEGG catalog: importing and exporting
// flat-file databases, downloading records from the web service, and
// reconciling OTU representatives. The persistence backend and document
// archive are selected through METABOCORE_* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"metabocore/internal/blob"
	"metabocore/internal/core"
	"metabocore/internal/metrics"
	"metabocore/internal/persistence"
	"metabocore/pkg/kegg"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: metabocore <command> [flags]

commands:
  import     read records from a flat file into the catalog
  export     write a record kind to a flat file
  download   fetch the organism list from the web service
  fetch      fetch enzyme or reaction records by id
  reconcile  flag OTU representatives from a membership table
  archive    store a source document in the archive`)
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	logger := log.New(os.Stderr)
	ctx := context.Background()

	store, err := persistence.Open(ctx)
	if err != nil {
		logger.Error("open persistence store", "err", err)
		return 1
	}
	opts := []core.Option{core.WithLogger(logger), core.WithMetricsRecorder(metrics.NewExpvarRecorder("metabocore"))}
	if args[0] == "archive" {
		archive, err := blob.Open(ctx)
		if err != nil {
			logger.Error("open document archive", "err", err)
			return 1
		}
		opts = append(opts, core.WithArchive(archive))
	}
	svc := core.NewService(store, core.Config{}, opts...)
	defer func() { _ = svc.Close() }()

	if err := dispatch(ctx, svc, logger, args[0], args[1:]); err != nil {
		logger.Error("command failed", "command", args[0], "err", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, svc *core.Service, logger *log.Logger, command string, args []string) error {
	switch command {
	case "import":
		return runImport(ctx, svc, logger, args)
	case "export":
		return runExport(ctx, svc, args)
	case "download":
		return svc.DownloadOrganisms(ctx, kegg.NewClient(kegg.Config{}))
	case "fetch":
		return runFetch(ctx, svc, args)
	case "reconcile":
		return runReconcile(ctx, svc, logger, args)
	case "archive":
		return runArchive(ctx, svc, logger, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runImport(ctx context.Context, svc *core.Service, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	kind := fs.String("kind", "", "record kind: enzyme, reaction, or organism")
	file := fs.String("file", "", "flat file to read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	handle, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()

	var n int
	switch *kind {
	case "enzyme":
		n, err = svc.ImportEnzymes(ctx, handle)
	case "reaction":
		n, err = svc.ImportReactions(ctx, handle)
	case "organism":
		n, err = svc.ImportOrganisms(ctx, handle)
	default:
		return fmt.Errorf("unknown record kind %q", *kind)
	}
	if err != nil {
		return err
	}
	logger.Info("imported records", "kind", *kind, "count", n)
	return nil
}

func runExport(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	kind := fs.String("kind", "", "record kind: enzyme, reaction, or organism")
	file := fs.String("file", "", "flat file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	handle, err := os.Create(*file)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()

	switch *kind {
	case "enzyme":
		return svc.ExportEnzymes(ctx, handle)
	case "reaction":
		return svc.ExportReactions(ctx, handle)
	case "organism":
		return svc.ExportOrganisms(ctx, handle)
	default:
		return fmt.Errorf("unknown record kind %q", *kind)
	}
}

func runFetch(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	kind := fs.String("kind", "", "record kind: enzyme or reaction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids := fs.Args()
	if len(ids) == 0 {
		return fmt.Errorf("no record ids given")
	}
	client := kegg.NewClient(kegg.Config{})
	switch *kind {
	case "enzyme":
		return svc.FetchEnzymes(ctx, client, ids)
	case "reaction":
		return svc.FetchReactions(ctx, client, ids)
	default:
		return fmt.Errorf("unknown record kind %q", *kind)
	}
}

func runReconcile(ctx context.Context, svc *core.Service, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	table := fs.String("table", "", "tab-delimited OTU membership table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	handle, err := os.Open(*table)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()

	rows, err := svc.Reconcile(ctx, handle)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.Result == kegg.MatchNotFound || row.Result == kegg.MatchNoMatch {
			logger.Warn("reconciliation", "name", row.RepresentativeName, "result", row.Result)
		}
	}
	logger.Info("reconciled representatives", "rows", len(rows),
		"flagged", svc.OrganismDB().NumRepresentatives())
	return nil
}

func runArchive(ctx context.Context, svc *core.Service, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	key := fs.String("key", "", "archive key")
	file := fs.String("file", "", "document to store")
	contentType := fs.String("content-type", "application/octet-stream", "document content type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	handle, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()

	info, err := svc.ArchiveDocument(ctx, *key, handle, blob.PutOptions{ContentType: *contentType})
	if err != nil {
		return err
	}
	logger.Info("archived document", "key", info.Key, "size", info.Size)
	return nil
}

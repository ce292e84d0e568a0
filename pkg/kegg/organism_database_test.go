package kegg

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const organismFixture = "T00001\teco\tEscherichia coli K-12 MG1655\tProkaryotes;Bacteria;Gammaproteobacteria\t0\n" +
	"T00002\thin\tHaemophilus influenzae Rd KW20 (serotype d)\tProkaryotes;Bacteria;Gammaproteobacteria\t0\n" +
	"T00016\tmja\tMethanocaldococcus jannaschii DSM 2661\tProkaryotes;Archaea;Euryarchaeota\t0\n" +
	"T01001\thsa\tHomo sapiens (human)\tEukaryotes;Animals;Vertebrates\t0\n"

func loadOrganisms(t *testing.T) *OrganismDatabase {
	t.Helper()
	db := NewOrganismDatabase(filepath.Join(t.TempDir(), "organisms.db"))
	if err := db.ReadFrom(strings.NewReader(organismFixture)); err != nil {
		t.Fatalf("read: %v", err)
	}
	return db
}

func TestOrganismDatabaseCodeIndex(t *testing.T) {
	db := loadOrganisms(t)
	for _, organism := range db.All() {
		got, err := db.GetByCode(organism.Code)
		if err != nil {
			t.Fatalf("GetByCode(%s): %v", organism.Code, err)
		}
		if got != organism {
			t.Errorf("GetByCode(%s) returned %s, want %s", organism.Code, got.TNumber, organism.TNumber)
		}
	}
	if db.HasCode("xyz") {
		t.Error("HasCode(xyz) = true")
	}
	if _, err := db.GetByCode("xyz"); err == nil {
		t.Error("GetByCode(xyz) succeeded")
	}
}

// Update does not refresh the code index; callers must rebuild explicitly.
// This mirrors the flat-file database contract rather than fixing it.
func TestOrganismDatabaseCodeIndexStaleAfterUpdate(t *testing.T) {
	db := loadOrganisms(t)
	organism, err := db.GetByID("T00001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	renamed := *organism
	renamed.Code = "eck"
	db.Update(&renamed)

	if db.HasCode("eck") {
		t.Error("index refreshed by Update; expected stale index")
	}
	db.RebuildCodeIndex()
	if !db.HasCode("eck") {
		t.Error("RebuildCodeIndex did not pick up new code")
	}
	if db.HasCode("eco") {
		t.Error("old code still resolves after rebuild")
	}
}

func TestOrganismDatabaseCounts(t *testing.T) {
	db := loadOrganisms(t)
	if got := db.NumProkaryotes(); got != 3 {
		t.Errorf("NumProkaryotes = %d, want 3", got)
	}
	if got := db.NumEukaryotes(); got != 1 {
		t.Errorf("NumEukaryotes = %d, want 1", got)
	}
	if got := db.NumBacteria(); got != 2 {
		t.Errorf("NumBacteria = %d, want 2", got)
	}
	if got := db.NumArchaea(); got != 1 {
		t.Errorf("NumArchaea = %d, want 1", got)
	}
	if got := db.NumRepresentatives(); got != 0 {
		t.Errorf("NumRepresentatives = %d, want 0", got)
	}
}

type fakeLister struct {
	lines []string
	err   error
}

func (f fakeLister) List(_ context.Context, database string) ([]string, error) {
	if database != "organism" {
		return nil, QueryError{URL: database, StatusCode: 400}
	}
	return f.lines, f.err
}

func TestOrganismDatabaseDownload(t *testing.T) {
	db := NewOrganismDatabase(filepath.Join(t.TempDir(), "organisms.db"))
	lister := fakeLister{lines: []string{
		"T00001\teco\tEscherichia coli K-12 MG1655\tProkaryotes;Bacteria;Gammaproteobacteria",
		"T01001\thsa\tHomo sapiens (human)\tEukaryotes;Animals;Vertebrates",
	}}
	if err := db.Download(context.Background(), lister); err != nil {
		t.Fatalf("download: %v", err)
	}
	if db.Size() != 2 {
		t.Fatalf("Size = %d, want 2", db.Size())
	}
	organism, err := db.GetByCode("eco")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	// Downloaded organisms default to not representative.
	if organism.IsRepresentative() {
		t.Error("downloaded organism marked representative")
	}

	// Second download must fail: database is no longer empty.
	err = db.Download(context.Background(), lister)
	if !errors.Is(err, ErrNotEmpty) {
		t.Errorf("second download err = %v, want ErrNotEmpty", err)
	}
	if db.Size() != 2 {
		t.Errorf("failed download mutated database: Size = %d", db.Size())
	}
}

func TestSetRepresentativesEmptyDatabase(t *testing.T) {
	db := NewOrganismDatabase("organisms.db")
	_, err := db.SetRepresentatives(strings.NewReader(""))
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func TestSetRepresentativesExactMatch(t *testing.T) {
	db := loadOrganisms(t)
	// Exact match against the search name (ratio 100 >= cutoff 97).
	otu := "1\t1\t83333.1\tEscherichia coli K-12 MG1655\n"
	report, err := db.SetRepresentatives(strings.NewReader(otu))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("report rows = %d, want 1", len(report))
	}
	row := report[0]
	if row.Result != MatchSelected {
		t.Errorf("Result = %q, want selected", row.Result)
	}
	if row.TNumber != "T00001" || row.Ratio != 100 {
		t.Errorf("row = %+v", row)
	}
	organism, _ := db.GetByID("T00001")
	if !organism.IsRepresentative() {
		t.Error("matched organism not flagged")
	}
	if db.NumRepresentatives() != 1 {
		t.Errorf("NumRepresentatives = %d, want 1", db.NumRepresentatives())
	}
}

func TestSetRepresentativesAmbiguousBucket(t *testing.T) {
	db := NewOrganismDatabase("organisms.db")
	fixture := "T00001\teco\tEscherichia coli K-12 MG1655\tProkaryotes;Bacteria;Gammaproteobacteria\t0\n" +
		"T00007\tecj\tEscherichia coli K-12 W3110\tProkaryotes;Bacteria;Gammaproteobacteria\t0\n"
	if err := db.ReadFrom(strings.NewReader(fixture)); err != nil {
		t.Fatalf("read: %v", err)
	}
	otu := "5\t1\t83333.1\tEscherichia coli K-12 MG1655\n"
	report, err := db.SetRepresentatives(strings.NewReader(otu))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("report rows = %d, want 2 (one per candidate)", len(report))
	}
	results := map[string]MatchResult{}
	for _, row := range report {
		results[row.TNumber] = row.Result
	}
	if results["T00001"] != MatchSelected {
		t.Errorf("T00001 = %q, want selected", results["T00001"])
	}
	if results["T00007"] != MatchSkipped {
		t.Errorf("T00007 = %q, want skipped", results["T00007"])
	}
}

func TestSetRepresentativesSoleCandidateDefault(t *testing.T) {
	db := NewOrganismDatabase("organisms.db")
	fixture := "T00002\thin\tHaemophilus influenzae Rd KW20\tProkaryotes;Bacteria;Gammaproteobacteria\t0\n"
	if err := db.ReadFrom(strings.NewReader(fixture)); err != nil {
		t.Fatalf("read: %v", err)
	}
	// The name shares the genus-species key but is too different for any
	// similarity method; the lone bucket candidate wins by default.
	otu := "9\t1\t71421.1\tHaemophilus influenzae unrelated descriptive suffix words\n"
	report, err := db.SetRepresentatives(strings.NewReader(otu))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report) != 1 || report[0].Result != MatchSelected {
		t.Fatalf("report = %+v, want sole candidate selected", report)
	}
	organism, _ := db.GetByID("T00002")
	if !organism.IsRepresentative() {
		t.Error("sole candidate not flagged")
	}
}

func TestSetRepresentativesNoMatch(t *testing.T) {
	db := loadOrganisms(t)
	otu := "2\t1\t1234.5\tZymomonas mobilis\n" + // no bucket for this genus
		"3\t0\t999.9\tEscherichia coli K-12 MG1655\n" // non-representative row ignored
	report, err := db.SetRepresentatives(strings.NewReader(otu))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("report rows = %d, want 1", len(report))
	}
	if report[0].Result != MatchNoMatch {
		t.Errorf("Result = %q, want no match", report[0].Result)
	}
	if db.NumRepresentatives() != 0 {
		t.Errorf("NumRepresentatives = %d, want 0", db.NumRepresentatives())
	}
}

func TestSetRepresentativesResetsFlags(t *testing.T) {
	db := loadOrganisms(t)
	organism, _ := db.GetByID("T01001")
	organism.OTURepresentative = 1
	otu := "1\t1\t83333.1\tEscherichia coli K-12 MG1655\n"
	if _, err := db.SetRepresentatives(strings.NewReader(otu)); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if organism.IsRepresentative() {
		t.Error("previous representative flag not reset")
	}
}

func TestSetRepresentativesMalformedTable(t *testing.T) {
	db := loadOrganisms(t)
	_, err := db.SetRepresentatives(strings.NewReader("1\t1\tmissing-name\n"))
	var formatErr FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("err = %v, want FormatError", err)
	}
}

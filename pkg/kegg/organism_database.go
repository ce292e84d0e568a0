package kegg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// MatchCutoff is the minimum similarity ratio (0-100 scale) for a fuzzy
// name comparison to count as a good match during OTU reconciliation.
const MatchCutoff = 97

// MatchResult classifies one (representative, candidate) pairing in an OTU
// reconciliation report.
type MatchResult string

const (
	// MatchSelected marks the candidate chosen as the OTU representative.
	MatchSelected MatchResult = "selected"
	// MatchAlternate marks a candidate that was a good match but not chosen.
	MatchAlternate MatchResult = "alternate"
	// MatchSkipped marks a candidate that was considered and not chosen.
	MatchSkipped MatchResult = "skipped"
	// MatchNotFound marks candidates when no good match exists in an
	// ambiguous bucket.
	MatchNotFound MatchResult = "not found"
	// MatchNoMatch marks a representative with no candidate bucket at all.
	MatchNoMatch MatchResult = "no match"
)

// ReconciliationRow is one row of the OTU reconciliation report: a
// representative name from the membership table paired with one database
// candidate and the similarity scores that classified it.
type ReconciliationRow struct {
	RepresentativeName string
	RepresentativeID   string
	Name               string
	TNumber            string
	Ratio              int
	PartialRatio       int
	TokenSetRatio      int
	Result             MatchResult
}

// OrganismDatabase manages a KEGG organism flat-file database. Each record
// is one tab-delimited line, so loading bypasses the record scanner. The
// code index is rebuilt wholesale after Load and Download; it is NOT
// refreshed by Update, so callers that change an organism's code must call
// RebuildCodeIndex before relying on GetByCode.
type OrganismDatabase struct {
	Database[*Organism]
	codeToID map[string]string
}

// NewOrganismDatabase returns an empty organism database backed by filename.
func NewOrganismDatabase(filename string) *OrganismDatabase {
	return &OrganismDatabase{
		Database: newDatabase[*Organism](filename, "organism", nil),
		codeToID: make(map[string]string),
	}
}

// Load reads the organism database from its backing file, one organism per
// line, and rebuilds the code index.
func (db *OrganismDatabase) Load() error {
	handle, err := os.Open(db.Filename())
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()
	return db.ReadFrom(handle)
}

// ReadFrom reads tab-delimited organism lines from r and rebuilds the code
// index.
func (db *OrganismDatabase) ReadFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		organism, err := ParseOrganism(line)
		if err != nil {
			return err
		}
		if err := db.append(organism); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	db.RebuildCodeIndex()
	return nil
}

// Lister is the subset of the web client needed to download the organism
// list.
type Lister interface {
	List(ctx context.Context, database string) ([]string, error)
}

// Download fills the database from the KEGG list operation, the only way to
// obtain taxonomic information for organisms from the web service. The
// database must be empty; every downloaded organism starts as not an OTU
// representative.
func (db *OrganismDatabase) Download(ctx context.Context, client Lister) error {
	if db.Size() > 0 {
		return fmt.Errorf("download organism database: %w", ErrNotEmpty)
	}
	lines, err := client.List(ctx, "organism")
	if err != nil {
		return err
	}
	for _, line := range lines {
		organism, err := ParseOrganism(line + "\t0")
		if err != nil {
			return err
		}
		if err := db.append(organism); err != nil {
			return err
		}
	}
	db.RebuildCodeIndex()
	return nil
}

// RebuildCodeIndex recomputes the code-to-id secondary index from the
// current records.
func (db *OrganismDatabase) RebuildCodeIndex() {
	db.codeToID = make(map[string]string, db.Size())
	for _, organism := range db.All() {
		db.codeToID[organism.Code] = organism.TNumber
	}
}

// HasCode reports whether an organism code exists in the index.
func (db *OrganismDatabase) HasCode(code string) bool {
	_, ok := db.codeToID[code]
	return ok
}

// GetByCode returns the organism with the given code.
func (db *OrganismDatabase) GetByCode(code string) (*Organism, error) {
	id, ok := db.codeToID[code]
	if !ok {
		return nil, NotFoundError{Kind: "organism code", ID: code}
	}
	return db.GetByID(id)
}

// NumRepresentatives counts organisms flagged as OTU representatives.
func (db *OrganismDatabase) NumRepresentatives() int {
	return db.count((*Organism).IsRepresentative)
}

// NumProkaryotes counts prokaryote organisms.
func (db *OrganismDatabase) NumProkaryotes() int {
	return db.count((*Organism).IsProkaryote)
}

// NumEukaryotes counts eukaryote organisms.
func (db *OrganismDatabase) NumEukaryotes() int {
	return db.count((*Organism).IsEukaryote)
}

// NumBacteria counts bacteria organisms.
func (db *OrganismDatabase) NumBacteria() int {
	return db.count((*Organism).IsBacteria)
}

// NumArchaea counts archaea organisms.
func (db *OrganismDatabase) NumArchaea() int {
	return db.count((*Organism).IsArchaea)
}

func (db *OrganismDatabase) count(pred func(*Organism) bool) int {
	n := 0
	for _, organism := range db.All() {
		if pred(organism) {
			n++
		}
	}
	return n
}

// candidate pairs an organism with the similarity scores computed against
// one representative name.
type candidate struct {
	organism      *Organism
	ratio         int
	partialRatio  int
	tokenSetRatio int
	possible      bool
}

// SetRepresentatives maps an external OTU membership table onto the loaded
// organisms by approximate name matching and sets the representative flag
// on the best match for each representative row.
//
// The table is tab-delimited with four fields per line: OTU number, a
// representative flag ("1" means true), an accession id, and the
// scientific name. Matching restricts candidates to prokaryotes sharing
// the first two words of the name (three for Candidatus names), scores
// them with a similarity ratio, and falls back to a partial-substring
// ratio and then a token-set ratio when no candidate clears the cutoff. A
// bucket with a single candidate and no similarity match selects that
// candidate by default. When several candidates tie at the best score the
// first in bucket order wins; the report marks the others alternate.
func (db *OrganismDatabase) SetRepresentatives(table io.Reader) ([]ReconciliationRow, error) {
	if db.Size() == 0 {
		return nil, fmt.Errorf("set representatives: %w", ErrEmpty)
	}
	for _, organism := range db.All() {
		organism.OTURepresentative = 0
	}

	names, accessions, err := readRepresentatives(table)
	if err != nil {
		return nil, err
	}

	// Bucket prokaryotes by the genus-and-species portion of the name so
	// similarity ratios are only computed for plausible candidates.
	lookup := make(map[string][]*Organism)
	for _, organism := range db.All() {
		if organism.IsProkaryote() {
			key := lookupKey(organism.Name)
			lookup[key] = append(lookup[key], organism)
		}
	}

	var report []ReconciliationRow
	for _, name := range names {
		bucket, ok := lookup[lookupKey(name)]
		if !ok {
			report = append(report, ReconciliationRow{
				RepresentativeName: name,
				RepresentativeID:   accessions[name],
				Name:               string(MatchNoMatch),
				TNumber:            string(MatchNoMatch),
				Result:             MatchNoMatch,
			})
			continue
		}
		report = append(report, db.matchBucket(name, accessions[name], bucket)...)
	}
	return report, nil
}

// matchBucket scores one representative name against its candidate bucket,
// flags the selected organism, and returns the report rows.
func (db *OrganismDatabase) matchBucket(name, accession string, bucket []*Organism) []ReconciliationRow {
	matches := make([]*candidate, len(bucket))
	for i, organism := range bucket {
		matches[i] = &candidate{
			organism: organism,
			ratio:    fuzzy.Ratio(name, organism.SearchName),
		}
	}

	// Best matches first; the stable sort keeps bucket order for ties.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ratio > matches[j].ratio })

	var possible []*candidate
	maxRatio := matches[0].ratio
	if maxRatio >= MatchCutoff {
		for _, match := range matches {
			if match.ratio == maxRatio {
				match.possible = true
				possible = append(possible, match)
			}
		}
	}
	if len(possible) == 0 {
		for _, match := range matches {
			match.partialRatio = fuzzy.PartialRatio(name, match.organism.SearchName)
			if match.partialRatio >= MatchCutoff {
				match.possible = true
				possible = append(possible, match)
			}
		}
	}
	if len(possible) == 0 {
		for _, match := range matches {
			match.tokenSetRatio = fuzzy.TokenSetRatio(name, match.organism.Name)
			if match.tokenSetRatio == 100 {
				match.possible = true
				possible = append(possible, match)
			}
		}
	}

	noneSelected := false
	switch {
	case len(possible) > 0:
		possible[0].organism.OTURepresentative = 1
	case len(bucket) == 1:
		// A lone candidate is close enough to select by default.
		bucket[0].OTURepresentative = 1
	default:
		noneSelected = true
		logger.Warn("no good match for OTU representative", "name", name, "candidates", len(bucket))
	}

	rows := make([]ReconciliationRow, 0, len(matches))
	for _, match := range matches {
		organism := match.organism
		var result MatchResult
		switch {
		case noneSelected:
			result = MatchNotFound
		case organism.IsRepresentative():
			result = MatchSelected
		case len(possible) > 1 && match.possible:
			result = MatchAlternate
		default:
			result = MatchSkipped
		}
		rows = append(rows, ReconciliationRow{
			RepresentativeName: name,
			RepresentativeID:   accession,
			Name:               organism.Name,
			TNumber:            organism.TNumber,
			Ratio:              match.ratio,
			PartialRatio:       match.partialRatio,
			TokenSetRatio:      match.tokenSetRatio,
			Result:             result,
		})
	}
	return rows
}

// readRepresentatives extracts the representative rows (flag "1") from the
// OTU membership table in file order. Literal "substr." and "str."
// markers are removed from names to match the KEGG naming style.
func readRepresentatives(table io.Reader) ([]string, map[string]string, error) {
	var names []string
	accessions := make(map[string]string)
	scanner := bufio.NewScanner(table)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, nil, FormatError{Kind: "otu", Line: line, Msg: "expected 4 tab-separated fields"}
		}
		if fields[1] != "1" {
			continue
		}
		name := strings.ReplaceAll(strings.ReplaceAll(fields[3], "substr.", ""), "str.", "")
		if _, ok := accessions[name]; !ok {
			names = append(names, name)
		}
		accessions[name] = fields[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return names, accessions, nil
}

// lookupKey returns the leading words of a scientific name used to bucket
// candidate organisms: two words, or three when the name carries the
// Candidatus prefix.
func lookupKey(name string) string {
	numWords := 2
	if strings.HasPrefix(name, "Candidatus") {
		numWords = 3
	}
	words := strings.Fields(name)
	if len(words) > numWords {
		words = words[:numWords]
	}
	return strings.Join(words, " ")
}

package kegg

import (
	"regexp"
	"strconv"
	"strings"
)

// parenRe matches a trailing parenthetical (usually the common name) with
// any leading spaces, anchored at the end of the scientific name.
var parenRe = regexp.MustCompile(` *\(.*\)$`)

// Organism is one record from the KEGG organism database. Unlike the other
// record types an organism record is a single tab-delimited line with five
// fields and no terminator.
type Organism struct {
	// TNumber is the unique entry identifier, "T" followed by five digits.
	TNumber string
	// Code is the 3-4 character organism code used to identify genes in
	// complete genomes. Unique within a database; secondary lookup key.
	Code string
	// Name is the scientific name, common name in parenthesis.
	Name string
	// Taxonomy is the ordered domain-to-species path.
	Taxonomy []string
	// OTURepresentative is 1 when the organism represents its OTU.
	OTURepresentative int
	// SearchName is Name with any trailing parenthetical removed; the
	// reconciliation scores fuzzy matches against it.
	SearchName string
}

// ID returns the database key for the organism.
func (o *Organism) ID() string { return o.TNumber }

// ParseOrganism builds an organism from one tab-delimited line.
func ParseOrganism(line string) (*Organism, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, FormatError{Kind: "organism", Line: line, Msg: "expected 5 tab-separated fields"}
	}
	flag, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, FormatError{Kind: "organism", Line: line, Msg: "OTU representative flag must be an integer"}
	}
	return &Organism{
		TNumber:           fields[0],
		Code:              fields[1],
		Name:              fields[2],
		Taxonomy:          strings.Split(fields[3], ";"),
		OTURepresentative: flag,
		SearchName:        parenRe.ReplaceAllString(fields[2], ""),
	}, nil
}

// Record serializes the organism back into its single flat-file line.
func (o *Organism) Record() []string {
	line := strings.Join([]string{
		o.TNumber,
		o.Code,
		o.Name,
		strings.Join(o.Taxonomy, ";"),
		strconv.Itoa(o.OTURepresentative),
	}, "\t")
	return []string{line}
}

// IsProkaryote reports whether the first taxonomy level is Prokaryotes.
func (o *Organism) IsProkaryote() bool {
	return len(o.Taxonomy) > 0 && o.Taxonomy[0] == "Prokaryotes"
}

// IsEukaryote reports whether the first taxonomy level is Eukaryotes.
func (o *Organism) IsEukaryote() bool {
	return len(o.Taxonomy) > 0 && o.Taxonomy[0] == "Eukaryotes"
}

// IsBacteria reports whether the second taxonomy level is Bacteria.
func (o *Organism) IsBacteria() bool {
	return len(o.Taxonomy) > 1 && o.Taxonomy[1] == "Bacteria"
}

// IsArchaea reports whether the second taxonomy level is Archaea.
func (o *Organism) IsArchaea() bool {
	return len(o.Taxonomy) > 1 && o.Taxonomy[1] == "Archaea"
}

// IsRepresentative reports whether the organism represents its OTU.
func (o *Organism) IsRepresentative() bool {
	return o.OTURepresentative != 0
}

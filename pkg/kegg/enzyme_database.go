package kegg

import (
	"regexp"
	"strings"
)

// ecNumberRe extracts EC numbers (digits or dashes) from transfer and
// deletion notes on obsolete enzymes.
var ecNumberRe = regexp.MustCompile(`([\d\-]+\.[\d\-]+\.[\d\-]+\.[\d\-]+)`)

// EnzymeDatabase manages a KEGG enzyme flat-file database.
type EnzymeDatabase struct {
	Database[*Enzyme]
}

// NewEnzymeDatabase returns an empty enzyme database backed by filename.
func NewEnzymeDatabase(filename string) *EnzymeDatabase {
	return &EnzymeDatabase{Database: newDatabase(filename, "enzyme", ParseEnzyme)}
}

// ValidationReport summarizes the obsolete-enzyme cross-reference check.
type ValidationReport struct {
	NumObsolete    int
	NumTransferred int
	NumDeleted     int
	// MissingEnzymes lists EC numbers referenced by transfer or deletion
	// notes that are absent from the database.
	MissingEnzymes []string
}

// Validate checks that obsolete enzymes link to enzymes present in the
// database. An obsolete entry must either be "Transferred to" another
// enzyme (first name) or be a "Deleted entry" (first comment); anything
// else is a data-quality anomaly reported as a warning, not an error.
func (db *EnzymeDatabase) Validate() ValidationReport {
	var report ValidationReport
	for _, enzyme := range db.All() {
		if !enzyme.Obsolete {
			continue
		}
		report.NumObsolete++
		if len(enzyme.Names) > 1 {
			logger.Warn("obsolete enzyme has more than one name", "ec", enzyme.EC, "names", enzyme.Names)
		}
		switch {
		case len(enzyme.Names) > 0 && strings.HasPrefix(enzyme.Names[0], "Transferred to "):
			report.NumTransferred++
			report.MissingEnzymes = append(report.MissingEnzymes, db.missingRefs(enzyme.Names[0])...)
		case len(enzyme.Comments) > 0 && strings.HasPrefix(enzyme.Comments[0], "Deleted entry: "):
			report.NumDeleted++
			report.MissingEnzymes = append(report.MissingEnzymes, db.missingRefs(enzyme.Comments[0])...)
		default:
			logger.Warn("obsolete enzyme has not been transferred or deleted", "ec", enzyme.EC)
		}
	}
	return report
}

func (db *EnzymeDatabase) missingRefs(text string) []string {
	var missing []string
	for _, ec := range ecNumberRe.FindAllString(text, -1) {
		if !db.HasID(ec) {
			missing = append(missing, ec)
		}
	}
	return missing
}

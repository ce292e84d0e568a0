package kegg

import (
	"fmt"
	"sort"
	"strings"
)

// Enzyme is one record from the KEGG enzyme database. The record id is the
// EC number assigned by the IUBMB Nomenclature Committee; obsolete entries
// keep their number and point at a replacement through the name or comment
// field.
type Enzyme struct {
	// EC number, digits or dashes separated by periods (for example
	// "1.1.1.1" or "1.14.-.-").
	EC string
	// Obsolete is set when the ENTRY line carries the Obsolete marker.
	Obsolete bool
	// Names holds the accepted name followed by alternative names.
	Names []string
	// Classes holds the class, subclass, and sub-subclass strings.
	Classes []string
	// SysName is the systematic name, empty when absent.
	SysName string
	// Reactions holds the IUBMB reaction descriptions; ReactionIDs holds
	// the R numbers cross-referenced from [RN:...] markers in them.
	Reactions   []string
	ReactionIDs []string
	// AllReactions holds the REACTION(all) lines listing every KEGG
	// reaction linked to this EC number.
	AllReactions []string
	Substrates   []string
	Products     []string
	Comments     []string
	// Pathways and Orthologies are ordered (id, name) pairs.
	Pathways    [][2]string
	Orthologies [][2]string
	// Genes maps a lower-cased organism code to its gene identifiers.
	Genes map[string][]string
}

// ID returns the database key for the enzyme.
func (e *Enzyme) ID() string { return e.EC }

// ParseEnzyme builds an enzyme from the lines of one flat-file record. An
// unparseable ENTRY line returns a FormatError; unrecognized field tags are
// skipped with a warning so new upstream fields do not break the load.
func ParseEnzyme(record []string) (*Enzyme, error) {
	enzyme := &Enzyme{Genes: make(map[string][]string)}
	var field string
	for _, line := range record {
		if strings.HasPrefix(line, terminator) {
			break
		}
		tag, value, tagged := fieldLine(line)
		if tagged {
			field = tag
		}
		switch field {
		case "ENTRY":
			parts := strings.Fields(value)
			if len(parts) < 2 || parts[0] != "EC" {
				return nil, FormatError{Kind: "enzyme", Line: line, Msg: "expected ENTRY EC <number>"}
			}
			enzyme.EC = parts[1]
			if len(parts) > 2 && parts[2] == "Obsolete" {
				enzyme.Obsolete = true
			}
		case "NAME":
			enzyme.Names = append(enzyme.Names, strings.TrimSuffix(value, ";"))
		case "CLASS":
			enzyme.Classes = append(enzyme.Classes, strings.TrimSuffix(value, ";"))
		case "SYSNAME":
			enzyme.SysName = value
		case "REACTION":
			v := strings.TrimSuffix(value, ";")
			if start := strings.Index(v, "[RN:"); start >= 0 {
				ids := strings.TrimSuffix(v[start+4:], "]")
				enzyme.ReactionIDs = append(enzyme.ReactionIDs, strings.Fields(ids)...)
			}
			enzyme.Reactions = append(enzyme.Reactions, v)
		case "ALL_REAC":
			enzyme.AllReactions = append(enzyme.AllReactions, strings.TrimSuffix(value, ";"))
		case "SUBSTRATE":
			enzyme.Substrates = append(enzyme.Substrates, strings.TrimSuffix(value, ";"))
		case "PRODUCT":
			enzyme.Products = append(enzyme.Products, strings.TrimSuffix(value, ";"))
		case "COMMENT":
			enzyme.Comments = append(enzyme.Comments, value)
		case "PATHWAY":
			id, name := subField(value, pathwayIDWidth, pathwayNameStart)
			enzyme.Pathways = append(enzyme.Pathways, [2]string{id, name})
		case "ORTHOLOGY":
			id, name := subField(value, orthologyIDWidth, orthologyNameStart)
			enzyme.Orthologies = append(enzyme.Orthologies, [2]string{id, name})
		case "GENES":
			pos := strings.Index(value, ":")
			if pos < 0 {
				return nil, FormatError{Kind: "enzyme", Line: line, Msg: "expected GENES <code>: <genes>"}
			}
			code := strings.ToLower(value[:pos])
			enzyme.Genes[code] = strings.Fields(value[pos+1:])
		default:
			logger.Warn("skipping unrecognized field", "record", "enzyme", "field", field, "value", value)
		}
	}
	if enzyme.EC == "" {
		return nil, FormatError{Kind: "enzyme", Msg: "record has no ENTRY field"}
	}
	return enzyme, nil
}

// Record serializes the enzyme back into flat-file lines, terminator
// included. The ENTRY line pads the EC number to column 30 before
// "Obsolete  Enzyme" or to column 40 before "Enzyme"; downstream consumers
// parse those columns, so the padding is part of the wire format.
func (e *Enzyme) Record() []string {
	entry := "ENTRY       EC " + e.EC
	if e.Obsolete {
		entry = pad(entry, 30) + "Obsolete  Enzyme"
	} else {
		entry = pad(entry, 40) + "Enzyme"
	}
	record := []string{entry}
	record = appendWrapped(record, "NAME", e.Names)
	record = appendWrapped(record, "CLASS", e.Classes)
	if e.SysName != "" {
		record = append(record, padTag("SYSNAME")+e.SysName)
	}
	record = appendWrapped(record, "REACTION", e.Reactions)
	record = appendWrapped(record, "ALL_REAC", e.AllReactions)
	record = appendWrapped(record, "SUBSTRATE", e.Substrates)
	record = appendWrapped(record, "PRODUCT", e.Products)
	record = appendPlain(record, "COMMENT", e.Comments)
	record = appendPairs(record, "PATHWAY", e.Pathways)
	record = appendPairs(record, "ORTHOLOGY", e.Orthologies)
	if len(e.Genes) > 0 {
		codes := make([]string, 0, len(e.Genes))
		for code := range e.Genes {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for i, code := range codes {
			prefix := continuation
			if i == 0 {
				prefix = padTag("GENES")
			}
			record = append(record, fmt.Sprintf("%s%s: %s", prefix, code, strings.Join(e.Genes[code], " ")))
		}
	}
	return append(record, terminator)
}

func pad(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

package kegg

import "strings"

// Reaction is one record from the KEGG reaction database, keyed by R number.
type Reaction struct {
	// RN is the R number, for example "R00754".
	RN string
	// Names holds the accepted and alternative reaction names.
	Names []string
	// Definition is the human-readable equation; Equation the machine form
	// with C numbers. Either may be empty.
	Definition string
	Equation   string
	Remark     string
	Comments   []string
	// Pairs and Classes hold whitespace-split RPAIR / RCLASS tuples: the
	// first token is the id, the rest auxiliary descriptors.
	Pairs   [][]string
	Classes [][]string
	// Enzymes holds the EC numbers of catalyzing enzymes.
	Enzymes []string
	// Pathways, Orthologies, and Modules are ordered (id, name) pairs.
	Pathways    [][2]string
	Orthologies [][2]string
	Modules     [][2]string
	References  []string
}

// ID returns the database key for the reaction.
func (r *Reaction) ID() string { return r.RN }

// ParseReaction builds a reaction from the lines of one flat-file record.
func ParseReaction(record []string) (*Reaction, error) {
	reaction := &Reaction{}
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
			if len(parts) == 0 {
				return nil, FormatError{Kind: "reaction", Line: line, Msg: "empty ENTRY field"}
			}
			reaction.RN = parts[0]
		case "NAME":
			reaction.Names = append(reaction.Names, strings.TrimSuffix(value, ";"))
		case "DEFINITION":
			reaction.Definition = value
		case "EQUATION":
			reaction.Equation = value
		case "REMARK":
			reaction.Remark = value
		case "COMMENT":
			reaction.Comments = append(reaction.Comments, value)
		case "RPAIR":
			reaction.Pairs = append(reaction.Pairs, strings.Fields(value))
		case "RCLASS":
			reaction.Classes = append(reaction.Classes, strings.Fields(value))
		case "ENZYME":
			// Multiple enzymes are listed on the same line.
			reaction.Enzymes = append(reaction.Enzymes, strings.Fields(value)...)
		case "PATHWAY":
			id, name := subField(value, pathwayIDWidth, pathwayNameStart)
			reaction.Pathways = append(reaction.Pathways, [2]string{id, name})
		case "ORTHOLOGY":
			id, name := subField(value, orthologyIDWidth, orthologyNameStart)
			reaction.Orthologies = append(reaction.Orthologies, [2]string{id, name})
		case "REFERENCE":
			reaction.References = append(reaction.References, value)
		case "MODULE":
			id, name := subField(value, moduleIDWidth, moduleNameStart)
			reaction.Modules = append(reaction.Modules, [2]string{id, name})
		default:
			logger.Warn("skipping unrecognized field", "record", "reaction", "field", field, "value", value)
		}
	}
	if reaction.RN == "" {
		return nil, FormatError{Kind: "reaction", Msg: "record has no ENTRY field"}
	}
	return reaction, nil
}

// Record serializes the reaction back into flat-file lines, terminator
// included.
func (r *Reaction) Record() []string {
	record := []string{padTag("ENTRY") + r.RN + strings.Repeat(" ", 22) + "Reaction"}
	record = appendWrapped(record, "NAME", r.Names)
	if r.Definition != "" {
		record = append(record, padTag("DEFINITION")+r.Definition)
	}
	if r.Equation != "" {
		record = append(record, padTag("EQUATION")+r.Equation)
	}
	if r.Remark != "" {
		record = append(record, padTag("REMARK")+r.Remark)
	}
	record = appendPlain(record, "COMMENT", r.Comments)
	record = appendTuples(record, "RPAIR", r.Pairs)
	record = appendTuples(record, "RCLASS", r.Classes)
	if len(r.Enzymes) > 0 {
		record = append(record, padTag("ENZYME")+strings.Join(r.Enzymes, "       "))
	}
	record = appendPairs(record, "PATHWAY", r.Pathways)
	record = appendPairs(record, "ORTHOLOGY", r.Orthologies)
	record = appendPlain(record, "REFERENCE", r.References)
	record = appendPairs(record, "MODULE", r.Modules)
	return append(record, terminator)
}

// appendTuples writes RPAIR / RCLASS tuples: id, two spaces, then the
// auxiliary descriptors joined by single spaces.
func appendTuples(record []string, tag string, tuples [][]string) []string {
	for i, tuple := range tuples {
		prefix := continuation
		if i == 0 {
			prefix = padTag(tag)
		}
		line := prefix
		if len(tuple) > 0 {
			line += tuple[0] + "  " + strings.Join(tuple[1:], " ")
		}
		record = append(record, line)
	}
	return record
}

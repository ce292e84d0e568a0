// Package translate rewrites model ids from one namespace to another
// using cross-reference tables. A cross-reference table is a
// tab-delimited file whose header row names the namespaces and whose
// data rows map one id per namespace column.
package translate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"metabocore/pkg/model"
)

// UnknownNamespaceError reports a namespace absent from a
// cross-reference table header.
type UnknownNamespaceError struct {
	Namespace string
	File      string
}

func (e UnknownNamespaceError) Error() string {
	return fmt.Sprintf("namespace %s not found in cross reference file %s", e.Namespace, e.File)
}

// xref holds one cross-reference table: header namespaces and rows of
// ids, indexed lazily per namespace pair.
type xref struct {
	file       string
	namespaces map[string]int
	rows       [][]string
}

// Translator rewrites reaction and metabolite ids using a pair of
// cross-reference tables.
type Translator struct {
	reactions   *xref
	metabolites *xref
}

// NewTranslator loads the reaction and metabolite cross-reference files.
func NewTranslator(reactionXrefFile, metaboliteXrefFile string) (*Translator, error) {
	reactions, err := loadXref(reactionXrefFile)
	if err != nil {
		return nil, err
	}
	metabolites, err := loadXref(metaboliteXrefFile)
	if err != nil {
		return nil, err
	}
	return &Translator{reactions: reactions, metabolites: metabolites}, nil
}

func loadXref(path string) (*xref, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cross reference file: %w", err)
	}
	defer f.Close()
	x, err := readXref(f, path)
	if err != nil {
		return nil, err
	}
	return x, nil
}

func readXref(r io.Reader, name string) (*xref, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("cross reference file %s is empty", name)
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
	namespaces := make(map[string]int, len(header))
	for i, namespace := range header {
		namespaces[namespace] = i
	}
	x := &xref{file: name, namespaces: namespaces}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, fmt.Errorf("cross reference file %s has a row with %d fields, want %d", name, len(fields), len(header))
		}
		x.rows = append(x.rows, fields)
	}
	return x, scanner.Err()
}

// mapping builds a from-id to to-id map for a namespace pair. Rows with
// an empty id in either column are skipped.
func (x *xref) mapping(from, to string) (map[string]string, error) {
	fromCol, ok := x.namespaces[from]
	if !ok {
		return nil, UnknownNamespaceError{Namespace: from, File: x.file}
	}
	toCol, ok := x.namespaces[to]
	if !ok {
		return nil, UnknownNamespaceError{Namespace: to, File: x.file}
	}
	ids := make(map[string]string, len(x.rows))
	for _, row := range x.rows {
		if row[fromCol] == "" || row[toCol] == "" {
			continue
		}
		ids[row[fromCol]] = row[toCol]
	}
	return ids, nil
}

// Apply returns a copy of the model with reaction and metabolite ids
// translated from one namespace to another. Compartment suffixes
// (everything from the last underscore) are preserved on metabolites.
// Ids without a mapping are kept as-is.
func (t *Translator) Apply(m *model.Model, from, to string) (*model.Model, error) {
	reactionIDs, err := t.reactions.mapping(from, to)
	if err != nil {
		return nil, err
	}
	metaboliteIDs, err := t.metabolites.mapping(from, to)
	if err != nil {
		return nil, err
	}

	out := model.New(m.MID, m.Name)
	for id, name := range m.Compartments {
		out.SetCompartment(id, name)
	}
	for key, value := range m.Notes {
		out.Note(key, value)
	}

	rename := make(map[string]string, m.Metabolites.Len())
	for _, met := range m.Metabolites.All() {
		translated := translateID(met.MID, metaboliteIDs)
		rename[met.MID] = translated
		clone := *met
		clone.MID = translated
		if err := out.AddMetabolites(&clone); err != nil {
			return nil, err
		}
	}
	for _, rxn := range m.Reactions.All() {
		clone := *rxn
		clone.RID = translateID(rxn.RID, reactionIDs)
		clone.Stoichiometry = make(map[string]float64, len(rxn.Stoichiometry))
		for id, coefficient := range rxn.Stoichiometry {
			clone.Stoichiometry[rename[id]] = coefficient
		}
		if err := out.AddReactions(&clone); err != nil {
			return nil, err
		}
	}
	for _, gene := range m.Genes.All() {
		clone := *gene
		if err := out.Genes.Add(&clone); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// translateID maps an id, first as-is and then with its compartment
// suffix stripped and re-appended.
func translateID(id string, ids map[string]string) string {
	if translated, ok := ids[id]; ok {
		return translated
	}
	if i := strings.LastIndex(id, "_"); i > 0 {
		base, suffix := id[:i], id[i:]
		if translated, ok := ids[base]; ok {
			return translated + suffix
		}
	}
	return id
}

package translate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"metabocore/pkg/model"
)

const reactionXref = "vmh\tseed\tkegg\n" +
	"HEX1\trxn00216\tR00299\n" +
	"PGI\trxn00558\tR00771\n" +
	"ABSENT\t\tR99999\n"

const metaboliteXref = "vmh\tseed\tkegg\n" +
	"glc_D\tcpd00027\tC00031\n" +
	"g6p\tcpd00079\tC00668\n"

func writeXrefs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	reactions := filepath.Join(dir, "reactions.tsv")
	metabolites := filepath.Join(dir, "metabolites.tsv")
	if err := os.WriteFile(reactions, []byte(reactionXref), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(metabolites, []byte(metaboliteXref), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return reactions, metabolites
}

func testModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("test", "Test model")
	m.SetCompartment("c", "cytosol")
	err := m.AddMetabolites(
		&model.Metabolite{MID: "glc_D_c", Name: "D-Glucose", Compartment: "c"},
		&model.Metabolite{MID: "g6p_c", Name: "D-Glucose 6-phosphate", Compartment: "c"},
		&model.Metabolite{MID: "unmapped_c", Compartment: "c"},
	)
	if err != nil {
		t.Fatalf("metabolites: %v", err)
	}
	hex := &model.Reaction{
		RID: "HEX1", Name: "Hexokinase", GeneRule: "b2388",
		Stoichiometry: map[string]float64{"glc_D_c": -1, "g6p_c": 1},
		UpperBound:    1000,
	}
	orphan := &model.Reaction{
		RID:           "ORPHAN",
		Stoichiometry: map[string]float64{"unmapped_c": -1},
		UpperBound:    1000,
	}
	if err := m.AddReactions(hex, orphan); err != nil {
		t.Fatalf("reactions: %v", err)
	}
	if err := m.Genes.Add(&model.Gene{GID: "b2388", Name: "glk"}); err != nil {
		t.Fatalf("genes: %v", err)
	}
	return m
}

func TestApply(t *testing.T) {
	reactions, metabolites := writeXrefs(t)
	translator, err := NewTranslator(reactions, metabolites)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	translated, err := translator.Apply(testModel(t), "vmh", "seed")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !translated.Reactions.HasID("rxn00216") {
		t.Fatal("HEX1 should translate to rxn00216")
	}
	if !translated.Reactions.HasID("ORPHAN") {
		t.Fatal("unmapped reaction id should be preserved")
	}
	hex, _ := translated.Reactions.GetByID("rxn00216")
	if hex.Name != "Hexokinase" || hex.GeneRule != "b2388" {
		t.Fatalf("attributes lost: %+v", hex)
	}
	if hex.Stoichiometry["cpd00027_c"] != -1 || hex.Stoichiometry["cpd00079_c"] != 1 {
		t.Fatalf("stoichiometry not renamed: %v", hex.Stoichiometry)
	}
	met, ok := translated.Metabolites.GetByID("cpd00027_c")
	if !ok || met.Name != "D-Glucose" || met.Compartment != "c" {
		t.Fatalf("metabolite = %+v ok %v", met, ok)
	}
	if !translated.Metabolites.HasID("unmapped_c") {
		t.Fatal("unmapped metabolite id should be preserved")
	}
	if translated.Genes.Len() != 1 || translated.Compartments["c"] != "cytosol" {
		t.Fatal("genes and compartments should carry over")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	reactions, metabolites := writeXrefs(t)
	translator, err := NewTranslator(reactions, metabolites)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	original := testModel(t)
	if _, err := translator.Apply(original, "vmh", "seed"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !original.Reactions.HasID("HEX1") || !original.Metabolites.HasID("glc_D_c") {
		t.Fatal("input model was mutated")
	}
}

func TestApplyRoundTrip(t *testing.T) {
	reactions, metabolites := writeXrefs(t)
	translator, err := NewTranslator(reactions, metabolites)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	there, err := translator.Apply(testModel(t), "vmh", "seed")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	back, err := translator.Apply(there, "seed", "vmh")
	if err != nil {
		t.Fatalf("apply back: %v", err)
	}
	for _, id := range []string{"HEX1", "ORPHAN"} {
		if !back.Reactions.HasID(id) {
			t.Fatalf("round trip lost reaction %s", id)
		}
	}
	for _, id := range []string{"glc_D_c", "g6p_c", "unmapped_c"} {
		if !back.Metabolites.HasID(id) {
			t.Fatalf("round trip lost metabolite %s", id)
		}
	}
}

func TestUnknownNamespace(t *testing.T) {
	reactions, metabolites := writeXrefs(t)
	translator, err := NewTranslator(reactions, metabolites)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = translator.Apply(testModel(t), "vmh", "bigg")
	var unknown UnknownNamespaceError
	if !errors.As(err, &unknown) || unknown.Namespace != "bigg" {
		t.Fatalf("error = %v, want UnknownNamespaceError for bigg", err)
	}
}

func TestMissingXrefFile(t *testing.T) {
	reactions, _ := writeXrefs(t)
	_, err := NewTranslator(reactions, filepath.Join(t.TempDir(), "missing.tsv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestEmptyColumnRowsSkipped(t *testing.T) {
	reactions, metabolites := writeXrefs(t)
	translator, err := NewTranslator(reactions, metabolites)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ids, err := translator.reactions.mapping("vmh", "seed")
	if err != nil {
		t.Fatalf("mapping: %v", err)
	}
	if _, ok := ids["ABSENT"]; ok {
		t.Fatal("row with empty target column should be skipped")
	}
}

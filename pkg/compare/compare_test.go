package compare

import (
	"bytes"
	"strings"
	"testing"

	"metabocore/pkg/model"
)

func intPtr(v int) *int { return &v }

func buildModel(t *testing.T, id string, mutate func(*model.Model)) *model.Model {
	t.Helper()
	m := model.New(id, "")
	err := m.AddMetabolites(
		&model.Metabolite{MID: "glc__D_c", Name: "D-Glucose", Formula: "C6H12O6", Charge: intPtr(0), Compartment: "c"},
		&model.Metabolite{MID: "atp_c", Name: "ATP", Formula: "C10H12N5O13P3", Charge: intPtr(-4), Compartment: "c"},
		&model.Metabolite{MID: "g6p_c", Name: "D-Glucose 6-phosphate", Compartment: "c"},
		&model.Metabolite{MID: "adp_c", Name: "ADP", Compartment: "c"},
	)
	if err != nil {
		t.Fatalf("metabolites: %v", err)
	}
	hex := &model.Reaction{
		RID: "HEX1", Name: "Hexokinase", GeneRule: "b2388",
		Stoichiometry: map[string]float64{"glc__D_c": -1, "atp_c": -1, "g6p_c": 1, "adp_c": 1},
		UpperBound:    1000,
	}
	pts := &model.Reaction{
		RID: "GLCpts", Name: "Glucose PTS",
		Stoichiometry: map[string]float64{"glc__D_c": -1, "g6p_c": 1},
		UpperBound:    1000,
	}
	if err := m.AddReactions(hex, pts); err != nil {
		t.Fatalf("reactions: %v", err)
	}
	if mutate != nil {
		mutate(m)
	}
	return m
}

func TestModelsIdentical(t *testing.T) {
	first := buildModel(t, "m1", nil)
	second := buildModel(t, "m2", nil)
	result := Models(first, second)
	if result.ReactionsMatched != 2 || result.MetabolitesMatched != 4 {
		t.Fatalf("matched = %d/%d", result.ReactionsMatched, result.MetabolitesMatched)
	}
	if len(result.ReactionsOnlyInFirst) != 0 || len(result.MetabolitesOnlyInSecond) != 0 {
		t.Fatal("identical models should have no exclusive entries")
	}
	if len(result.ReactionNameDiffs)+len(result.ReactionBoundsDiffs)+len(result.ReactionDefinitionDiffs)+len(result.ReactionGeneDiffs) != 0 {
		t.Fatal("identical models should have no reaction diffs")
	}
}

func TestModelsDifferences(t *testing.T) {
	first := buildModel(t, "m1", func(m *model.Model) {
		extra := &model.Reaction{RID: "PGI", Stoichiometry: map[string]float64{"g6p_c": -1}, UpperBound: 1000}
		if err := m.AddReactions(extra); err != nil {
			t.Fatalf("extra reaction: %v", err)
		}
	})
	second := buildModel(t, "m2", func(m *model.Model) {
		hex, _ := m.Reactions.GetByID("HEX1")
		hex.Name = "Hexokinase (D-glucose:ATP)"
		hex.SetBounds(-1000, 1000)
		hex.GeneRule = "b2388 or b0001"
		pts, _ := m.Reactions.GetByID("GLCpts")
		pts.AddMetabolite("adp_c", 1)
		atp, _ := m.Metabolites.GetByID("atp_c")
		atp.Name = "Adenosine triphosphate"
		atp.Formula = "C10H13N5O13P3"
		atp.Charge = intPtr(-3)
		atp.Compartment = "e"
	})

	result := Models(first, second)
	if result.ReactionsMatched != 2 {
		t.Fatalf("reactions matched = %d", result.ReactionsMatched)
	}
	if len(result.ReactionsOnlyInFirst) != 1 || result.ReactionsOnlyInFirst[0].RID != "PGI" {
		t.Fatalf("only in first = %+v", result.ReactionsOnlyInFirst)
	}
	if len(result.ReactionsOnlyInSecond) != 0 {
		t.Fatalf("only in second = %+v", result.ReactionsOnlyInSecond)
	}
	if len(result.ReactionNameDiffs) != 1 || result.ReactionNameDiffs[0].First.RID != "HEX1" {
		t.Fatalf("name diffs = %+v", result.ReactionNameDiffs)
	}
	if len(result.ReactionBoundsDiffs) != 1 || len(result.ReactionGeneDiffs) != 1 {
		t.Fatalf("bounds/gene diffs = %d/%d", len(result.ReactionBoundsDiffs), len(result.ReactionGeneDiffs))
	}
	if len(result.ReactionDefinitionDiffs) != 1 || result.ReactionDefinitionDiffs[0].First.RID != "GLCpts" {
		t.Fatalf("definition diffs = %+v", result.ReactionDefinitionDiffs)
	}

	if result.MetabolitesMatched != 4 {
		t.Fatalf("metabolites matched = %d", result.MetabolitesMatched)
	}
	if len(result.MetaboliteNameDiffs) != 1 || len(result.MetaboliteFormulaDiffs) != 1 {
		t.Fatalf("metabolite name/formula diffs = %d/%d", len(result.MetaboliteNameDiffs), len(result.MetaboliteFormulaDiffs))
	}
	if len(result.MetaboliteChargeDiffs) != 1 || len(result.MetaboliteCompartmentDiffs) != 1 {
		t.Fatalf("metabolite charge/compartment diffs = %d/%d", len(result.MetaboliteChargeDiffs), len(result.MetaboliteCompartmentDiffs))
	}

	// PGI is a single-metabolite reaction, so a boundary reaction.
	if result.BoundaryInFirst != 1 || result.BoundaryInSecond != 0 {
		t.Fatalf("boundary = %d/%d", result.BoundaryInFirst, result.BoundaryInSecond)
	}
}

func TestWriteReport(t *testing.T) {
	first := buildModel(t, "m1", func(m *model.Model) {
		extra := &model.Reaction{RID: "PGI", Stoichiometry: map[string]float64{"g6p_c": -1}, UpperBound: 1000}
		if err := m.AddReactions(extra); err != nil {
			t.Fatalf("extra reaction: %v", err)
		}
	})
	second := buildModel(t, "m2", func(m *model.Model) {
		hex, _ := m.Reactions.GetByID("HEX1")
		hex.Name = "Hexokinase (D-glucose:ATP)"
	})
	result := Models(first, second)

	var buf bytes.Buffer
	opts := Options{Details: []Detail{DetailReactionID, DetailReactionName}, Boundary: true}
	if err := Write(&buf, result, opts); err != nil {
		t.Fatalf("write: %v", err)
	}
	report := buf.String()
	for _, want := range []string{
		"3 reactions in m1",
		"2 reactions in m2",
		"2 reactions in both m1 and m2",
		"1 reactions only in m1",
		"PGI",
		"1 reactions with different names",
		"Hexokinase (D-glucos",
		"4 metabolites in both m1 and m2",
		"system boundary reactions in m1",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestFormatLongString(t *testing.T) {
	if got := formatLongString("short", 20); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := formatLongString("a very long reaction name indeed", 10); got != "a very ..." {
		t.Fatalf("got %q", got)
	}
}

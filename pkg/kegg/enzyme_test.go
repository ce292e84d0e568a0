package kegg

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseEnzymeMinimal(t *testing.T) {
	record := []string{
		"ENTRY       EC 1.1.1.1                 Enzyme",
		"NAME        alcohol dehydrogenase",
		"REACTION    R00754",
		"///",
	}
	enzyme, err := ParseEnzyme(record)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if enzyme.EC != "1.1.1.1" {
		t.Errorf("EC = %q, want 1.1.1.1", enzyme.EC)
	}
	if enzyme.Obsolete {
		t.Error("Obsolete = true, want false")
	}
	if !reflect.DeepEqual(enzyme.Names, []string{"alcohol dehydrogenase"}) {
		t.Errorf("Names = %v", enzyme.Names)
	}
	if !reflect.DeepEqual(enzyme.Reactions, []string{"R00754"}) {
		t.Errorf("Reactions = %v", enzyme.Reactions)
	}
	if len(enzyme.ReactionIDs) != 0 {
		t.Errorf("ReactionIDs = %v, want empty", enzyme.ReactionIDs)
	}
}

func TestParseEnzymeFull(t *testing.T) {
	record := []string{
		"ENTRY       EC 1.1.1.1                 Enzyme",
		"NAME        alcohol dehydrogenase;",
		"            aldehyde reductase",
		"CLASS       Oxidoreductases;",
		"            Acting on the CH-OH group of donors;",
		"            With NAD+ or NADP+ as acceptor",
		"SYSNAME     alcohol:NAD+ oxidoreductase",
		"REACTION    an alcohol + NAD+ = an aldehyde + NADH + H+ [RN:R07326 R07327]",
		"ALL_REAC    R07326 R07327;",
		"            (other) R00623",
		"SUBSTRATE   alcohol [CPD:C00069];",
		"            NAD+ [CPD:C00003]",
		"PRODUCT     aldehyde [CPD:C00071];",
		"            NADH [CPD:C00004]",
		"COMMENT     A zinc protein.",
		"            Acts on primary or secondary alcohols.",
		"PATHWAY     ec00010  Glycolysis / Gluconeogenesis",
		"            ec00071  Fatty acid degradation",
		"ORTHOLOGY   K00001  alcohol dehydrogenase",
		"GENES       HSA: 124 125 126",
		"            eco: b0356 b1241",
		"///",
	}
	enzyme, err := ParseEnzyme(record)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(enzyme.Names) != 2 || enzyme.Names[1] != "aldehyde reductase" {
		t.Errorf("Names = %v", enzyme.Names)
	}
	if len(enzyme.Classes) != 3 || enzyme.Classes[0] != "Oxidoreductases" {
		t.Errorf("Classes = %v", enzyme.Classes)
	}
	if enzyme.SysName != "alcohol:NAD+ oxidoreductase" {
		t.Errorf("SysName = %q", enzyme.SysName)
	}
	if !reflect.DeepEqual(enzyme.ReactionIDs, []string{"R07326", "R07327"}) {
		t.Errorf("ReactionIDs = %v", enzyme.ReactionIDs)
	}
	wantPathways := [][2]string{
		{"ec00010", "Glycolysis / Gluconeogenesis"},
		{"ec00071", "Fatty acid degradation"},
	}
	if !reflect.DeepEqual(enzyme.Pathways, wantPathways) {
		t.Errorf("Pathways = %v", enzyme.Pathways)
	}
	if !reflect.DeepEqual(enzyme.Orthologies, [][2]string{{"K00001", "alcohol dehydrogenase"}}) {
		t.Errorf("Orthologies = %v", enzyme.Orthologies)
	}
	// Organism codes are lower-cased on parse.
	if !reflect.DeepEqual(enzyme.Genes["hsa"], []string{"124", "125", "126"}) {
		t.Errorf("Genes[hsa] = %v", enzyme.Genes["hsa"])
	}
	if !reflect.DeepEqual(enzyme.Genes["eco"], []string{"b0356", "b1241"}) {
		t.Errorf("Genes[eco] = %v", enzyme.Genes["eco"])
	}
}

func TestParseEnzymeObsolete(t *testing.T) {
	record := []string{
		"ENTRY       EC 1.1.1.5       Obsolete  Enzyme",
		"NAME        Transferred to EC 1.1.1.303 and EC 1.1.1.304",
		"///",
	}
	enzyme, err := ParseEnzyme(record)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !enzyme.Obsolete {
		t.Error("Obsolete = false, want true")
	}
	if enzyme.EC != "1.1.1.5" {
		t.Errorf("EC = %q", enzyme.EC)
	}
}

func TestParseEnzymeBadEntry(t *testing.T) {
	for _, record := range [][]string{
		{"ENTRY       1.1.1.1", "///"},
		{"ENTRY       EC", "///"},
		{"NAME        orphan field", "///"},
	} {
		if _, err := ParseEnzyme(record); err == nil {
			t.Errorf("ParseEnzyme(%q) succeeded, want FormatError", record[0])
		}
	}
}

func TestParseEnzymeUnknownFieldWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(log.New(&buf))
	defer SetLogger(nil)

	record := []string{
		"ENTRY       EC 1.1.1.1                 Enzyme",
		"HISTORY     EC 1.1.1.1 created 1961",
		"NAME        alcohol dehydrogenase",
		"///",
	}
	enzyme, err := ParseEnzyme(record)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(enzyme.Names) != 1 {
		t.Errorf("recognized field lost: Names = %v", enzyme.Names)
	}
	if got := strings.Count(buf.String(), "unrecognized field"); got != 1 {
		t.Errorf("got %d warnings, want exactly 1:\n%s", got, buf.String())
	}
}

func TestEnzymeEntryLinePadding(t *testing.T) {
	current := &Enzyme{EC: "1.1.1.1"}
	line := current.Record()[0]
	if !strings.HasPrefix(line, "ENTRY       EC 1.1.1.1") {
		t.Errorf("entry line = %q", line)
	}
	// Non-obsolete entries pad to column 40 before the Enzyme suffix.
	if idx := strings.Index(line, "Enzyme"); idx != 40 {
		t.Errorf("Enzyme suffix at column %d, want 40: %q", idx, line)
	}

	obsolete := &Enzyme{EC: "1.1.1.5", Obsolete: true}
	line = obsolete.Record()[0]
	// Obsolete entries pad to column 30 before the Obsolete marker.
	if idx := strings.Index(line, "Obsolete  Enzyme"); idx != 30 {
		t.Errorf("Obsolete suffix at column %d, want 30: %q", idx, line)
	}
}

func TestEnzymeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		enzyme *Enzyme
	}{
		{"minimal", &Enzyme{EC: "1.1.1.1", Genes: map[string][]string{}}},
		{"single values", &Enzyme{
			EC:      "1.1.1.1",
			Names:   []string{"alcohol dehydrogenase"},
			SysName: "alcohol:NAD+ oxidoreductase",
			Genes:   map[string][]string{},
		}},
		{"multi values", &Enzyme{
			EC:           "1.1.1.1",
			Names:        []string{"alcohol dehydrogenase", "aldehyde reductase", "ADH"},
			Classes:      []string{"Oxidoreductases", "Acting on the CH-OH group of donors"},
			SysName:      "alcohol:NAD+ oxidoreductase",
			Reactions:    []string{"an alcohol + NAD+ = an aldehyde + NADH + H+ [RN:R07326]"},
			ReactionIDs:  []string{"R07326"},
			AllReactions: []string{"R07326 R07327", "(other) R00623"},
			Substrates:   []string{"alcohol [CPD:C00069]", "NAD+ [CPD:C00003]"},
			Products:     []string{"aldehyde [CPD:C00071]", "NADH [CPD:C00004]"},
			Comments:     []string{"A zinc protein.", "Acts on primary or secondary alcohols."},
			Pathways:     [][2]string{{"ec00010", "Glycolysis / Gluconeogenesis"}, {"ec00071", "Fatty acid degradation"}},
			Orthologies:  [][2]string{{"K00001", "alcohol dehydrogenase"}},
			Genes: map[string][]string{
				"hsa": {"124", "125", "126"},
				"eco": {"b0356"},
			},
		}},
		{"obsolete", &Enzyme{
			EC:       "1.1.1.5",
			Obsolete: true,
			Names:    []string{"Transferred to EC 1.1.1.303 and EC 1.1.1.304"},
			Genes:    map[string][]string{},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseEnzyme(tt.enzyme.Record())
			if err != nil {
				t.Fatalf("re-parse: %v", err)
			}
			if !reflect.DeepEqual(parsed, tt.enzyme) {
				t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", parsed, tt.enzyme)
			}
		})
	}
}

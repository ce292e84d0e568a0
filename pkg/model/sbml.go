package model

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// sbmlDocument covers the subset of SBML Level 3 with the fbc package that
// the AGORA and BiGG model exports use. Identifier prefixes added by the
// exporters (M_, R_, G_) are stripped on read.
type sbmlDocument struct {
	XMLName xml.Name  `xml:"sbml"`
	Model   sbmlModel `xml:"model"`
}

type sbmlModel struct {
	ID           string            `xml:"id,attr"`
	Name         string            `xml:"name,attr"`
	Compartments []sbmlCompartment `xml:"listOfCompartments>compartment"`
	Species      []sbmlSpecies     `xml:"listOfSpecies>species"`
	Parameters   []sbmlParameter   `xml:"listOfParameters>parameter"`
	Reactions    []sbmlReaction    `xml:"listOfReactions>reaction"`
	GeneProducts []sbmlGeneProduct `xml:"listOfGeneProducts>geneProduct"`
}

type sbmlCompartment struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type sbmlSpecies struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Compartment string `xml:"compartment,attr"`
	Formula     string `xml:"chemicalFormula,attr"`
	Charge      string `xml:"charge,attr"`
}

type sbmlParameter struct {
	ID    string  `xml:"id,attr"`
	Value float64 `xml:"value,attr"`
}

type sbmlReaction struct {
	ID         string           `xml:"id,attr"`
	Name       string           `xml:"name,attr"`
	Reversible string           `xml:"reversible,attr"`
	LowerRef   string           `xml:"lowerFluxBound,attr"`
	UpperRef   string           `xml:"upperFluxBound,attr"`
	Reactants  []sbmlSpeciesRef `xml:"listOfReactants>speciesReference"`
	Products   []sbmlSpeciesRef `xml:"listOfProducts>speciesReference"`
	GeneRule   sbmlGeneRule     `xml:"geneProductAssociation"`
}

type sbmlSpeciesRef struct {
	Species       string  `xml:"species,attr"`
	Stoichiometry float64 `xml:"stoichiometry,attr"`
}

type sbmlGeneRule struct {
	Raw string `xml:",innerxml"`
}

type sbmlGeneProduct struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"label,attr"`
}

// Default bounds applied when a reaction carries no flux bound parameters.
const (
	defaultLowerBound = -1000.0
	defaultUpperBound = 1000.0
)

// ReadSBML decodes a model from an SBML stream.
func ReadSBML(r io.Reader) (*Model, error) {
	var doc sbmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sbml: %w", err)
	}
	sm := doc.Model
	m := New(sm.ID, sm.Name)
	for _, compartment := range sm.Compartments {
		m.SetCompartment(compartment.ID, compartment.Name)
	}

	parameters := make(map[string]float64, len(sm.Parameters))
	for _, parameter := range sm.Parameters {
		parameters[parameter.ID] = parameter.Value
	}

	for _, species := range sm.Species {
		metabolite := &Metabolite{
			MID:         stripPrefix(species.ID, "M_"),
			Name:        species.Name,
			Formula:     species.Formula,
			Compartment: species.Compartment,
		}
		if species.Charge != "" {
			if charge, err := strconv.Atoi(species.Charge); err == nil {
				metabolite.Charge = &charge
			}
		}
		if err := m.AddMetabolites(metabolite); err != nil {
			return nil, err
		}
	}

	genes := make(map[string]string, len(sm.GeneProducts))
	for _, gp := range sm.GeneProducts {
		id := stripPrefix(gp.ID, "G_")
		genes[gp.ID] = id
		if !m.Genes.HasID(id) {
			if err := m.Genes.Add(&Gene{GID: id, Name: gp.Label}); err != nil {
				return nil, err
			}
		}
	}

	for _, sr := range sm.Reactions {
		reaction := &Reaction{
			RID:           stripPrefix(sr.ID, "R_"),
			Name:          sr.Name,
			Stoichiometry: make(map[string]float64),
		}
		for _, ref := range sr.Reactants {
			reaction.AddMetabolite(stripPrefix(ref.Species, "M_"), -ref.Stoichiometry)
		}
		for _, ref := range sr.Products {
			reaction.AddMetabolite(stripPrefix(ref.Species, "M_"), ref.Stoichiometry)
		}
		lower, upper := sbmlBounds(sr, parameters)
		reaction.SetBounds(lower, upper)
		reaction.GeneRule = geneRuleFromAssociation(sr.GeneRule.Raw, genes)
		if err := m.AddReactions(reaction); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func sbmlBounds(sr sbmlReaction, parameters map[string]float64) (float64, float64) {
	lower := defaultLowerBound
	upper := defaultUpperBound
	if sr.Reversible == "false" {
		lower = 0
	}
	if value, ok := parameters[sr.LowerRef]; ok {
		lower = value
	}
	if value, ok := parameters[sr.UpperRef]; ok {
		upper = value
	}
	return lower, upper
}

type sbmlAssociation struct {
	XMLName     xml.Name
	GeneProduct string            `xml:"geneProduct,attr"`
	Children    []sbmlAssociation `xml:",any"`
}

// geneRuleFromAssociation flattens an fbc geneProductAssociation subtree
// into a boolean gene rule string. Nested and/or elements become
// parenthesized "and"/"or" expressions.
func geneRuleFromAssociation(raw string, genes map[string]string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var root sbmlAssociation
	if err := xml.Unmarshal([]byte("<association>"+raw+"</association>"), &root); err != nil {
		return ""
	}
	if len(root.Children) == 0 {
		return ""
	}
	return flattenAssociation(root.Children[0], genes, true)
}

func flattenAssociation(node sbmlAssociation, genes map[string]string, top bool) string {
	switch node.XMLName.Local {
	case "geneProductRef":
		if mapped, ok := genes[node.GeneProduct]; ok {
			return mapped
		}
		return stripPrefix(node.GeneProduct, "G_")
	case "and", "or":
		terms := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			if term := flattenAssociation(child, genes, false); term != "" {
				terms = append(terms, term)
			}
		}
		rule := strings.Join(terms, " "+node.XMLName.Local+" ")
		if !top && len(terms) > 1 {
			rule = "(" + rule + ")"
		}
		return rule
	}
	return ""
}

func stripPrefix(id, prefix string) string {
	return strings.TrimPrefix(id, prefix)
}

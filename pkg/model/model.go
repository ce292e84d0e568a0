package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Metabolite is a chemical species in a model, identified by an id carrying
// a compartment suffix.
type Metabolite struct {
	MID         string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Formula     string         `json:"formula,omitempty"`
	Charge      *int           `json:"charge,omitempty"`
	Compartment string         `json:"compartment,omitempty"`
	Notes       map[string]any `json:"notes,omitempty"`
}

// ID returns the metabolite id.
func (m *Metabolite) ID() string { return m.MID }

// Note stores a key-value annotation on the metabolite.
func (m *Metabolite) Note(key string, value any) {
	if m.Notes == nil {
		m.Notes = make(map[string]any)
	}
	m.Notes[key] = value
}

// Reaction is a stoichiometric conversion between metabolites with flux
// bounds. Stoichiometry maps metabolite id to coefficient; reactants are
// negative, products positive.
type Reaction struct {
	RID           string             `json:"id"`
	Name          string             `json:"name,omitempty"`
	Stoichiometry map[string]float64 `json:"metabolites"`
	LowerBound    float64            `json:"lower_bound"`
	UpperBound    float64            `json:"upper_bound"`
	GeneRule      string             `json:"gene_reaction_rule"`
	Notes         map[string]any     `json:"notes,omitempty"`
}

// ID returns the reaction id.
func (r *Reaction) ID() string { return r.RID }

// Bounds returns the lower and upper flux bounds.
func (r *Reaction) Bounds() (float64, float64) { return r.LowerBound, r.UpperBound }

// SetBounds sets the lower and upper flux bounds.
func (r *Reaction) SetBounds(lower, upper float64) {
	r.LowerBound = lower
	r.UpperBound = upper
}

// Note stores a key-value annotation on the reaction.
func (r *Reaction) Note(key string, value any) {
	if r.Notes == nil {
		r.Notes = make(map[string]any)
	}
	r.Notes[key] = value
}

// AddMetabolite adds delta to the stoichiometric coefficient of a
// metabolite id.
func (r *Reaction) AddMetabolite(id string, coefficient float64) {
	if r.Stoichiometry == nil {
		r.Stoichiometry = make(map[string]float64)
	}
	r.Stoichiometry[id] += coefficient
}

// Boundary reports whether the reaction is a system boundary: a single
// metabolite exchanged with the environment.
func (r *Reaction) Boundary() bool { return len(r.Stoichiometry) == 1 }

// Reversible reports whether flux may run backwards.
func (r *Reaction) Reversible() bool { return r.LowerBound < 0 }

// Equation renders the stoichiometry as a canonical equation string with
// metabolite ids sorted within each side.
func (r *Reaction) Equation() string {
	var reactants, products []string
	ids := make([]string, 0, len(r.Stoichiometry))
	for id := range r.Stoichiometry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		coefficient := r.Stoichiometry[id]
		term := id
		if abs := absFloat(coefficient); abs != 1 {
			term = strconv.FormatFloat(abs, 'g', -1, 64) + " " + id
		}
		if coefficient < 0 {
			reactants = append(reactants, term)
		} else {
			products = append(products, term)
		}
	}
	arrow := " --> "
	if r.Reversible() {
		arrow = " <=> "
	}
	return strings.Join(reactants, " + ") + arrow + strings.Join(products, " + ")
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Gene is a gene referenced by reaction gene rules.
type Gene struct {
	GID  string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ID returns the gene id.
func (g *Gene) ID() string { return g.GID }

// Model is a metabolic model: uniquely-keyed ordered collections of
// metabolites, reactions, and genes plus compartment definitions and
// free-form notes.
type Model struct {
	MID          string
	Name         string
	Metabolites  DictList[*Metabolite]
	Reactions    DictList[*Reaction]
	Genes        DictList[*Gene]
	Compartments map[string]string
	Notes        map[string]any
}

// ID returns the model id.
func (m *Model) ID() string { return m.MID }

// New creates an empty model.
func New(id, name string) *Model {
	return &Model{
		MID:          id,
		Name:         name,
		Compartments: make(map[string]string),
		Notes:        make(map[string]any),
	}
}

// AddMetabolites adds metabolites to the model, rejecting duplicate ids.
func (m *Model) AddMetabolites(metabolites ...*Metabolite) error {
	return m.Metabolites.Add(metabolites...)
}

// AddReactions adds reactions to the model. Every metabolite referenced by
// a reaction must already be present.
func (m *Model) AddReactions(reactions ...*Reaction) error {
	for _, reaction := range reactions {
		for id := range reaction.Stoichiometry {
			if !m.Metabolites.HasID(id) {
				return fmt.Errorf("reaction %s references unknown metabolite %s", reaction.RID, id)
			}
		}
	}
	return m.Reactions.Add(reactions...)
}

// SetCompartment records a compartment id and its name, keeping the first
// name seen for an id.
func (m *Model) SetCompartment(id, name string) {
	if _, ok := m.Compartments[id]; !ok {
		m.Compartments[id] = name
	}
}

// Note stores a key-value annotation on the model.
func (m *Model) Note(key string, value any) {
	if m.Notes == nil {
		m.Notes = make(map[string]any)
	}
	m.Notes[key] = value
}

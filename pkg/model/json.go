package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonModel mirrors the cobra JSON schema closely enough that models
// downloaded from BiGG decode directly.
type jsonModel struct {
	ID           string            `json:"id"`
	Name         string            `json:"name,omitempty"`
	Metabolites  []*Metabolite     `json:"metabolites"`
	Reactions    []*Reaction       `json:"reactions"`
	Genes        []*Gene           `json:"genes"`
	Compartments map[string]string `json:"compartments,omitempty"`
	Notes        map[string]any    `json:"notes,omitempty"`
	Version      int               `json:"version,omitempty"`
}

// ReadJSON decodes a model from its JSON representation.
func ReadJSON(r io.Reader) (*Model, error) {
	var doc jsonModel
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode model json: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("decode model json: missing model id")
	}
	m := New(doc.ID, doc.Name)
	if err := m.AddMetabolites(doc.Metabolites...); err != nil {
		return nil, err
	}
	if err := m.AddReactions(doc.Reactions...); err != nil {
		return nil, err
	}
	if err := m.Genes.Add(doc.Genes...); err != nil {
		return nil, err
	}
	for id, name := range doc.Compartments {
		m.SetCompartment(id, name)
	}
	for key, value := range doc.Notes {
		m.Note(key, value)
	}
	return m, nil
}

// WriteJSON encodes the model as JSON.
func WriteJSON(w io.Writer, m *Model) error {
	doc := jsonModel{
		ID:           m.MID,
		Name:         m.Name,
		Metabolites:  m.Metabolites.All(),
		Reactions:    m.Reactions.All(),
		Genes:        m.Genes.All(),
		Compartments: m.Compartments,
		Notes:        m.Notes,
		Version:      1,
	}
	if doc.Metabolites == nil {
		doc.Metabolites = []*Metabolite{}
	}
	if doc.Reactions == nil {
		doc.Reactions = []*Reaction{}
	}
	if doc.Genes == nil {
		doc.Genes = []*Gene{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(doc)
}

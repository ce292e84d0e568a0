// Package memory implements the authoritative in-memory catalog store.
// Persistent backends embed it and snapshot its state after every
// successful write.
package memory

import (
	"context"
	"sync"

	"metabocore/pkg/kegg"
)

// Snapshot is the full catalog state as one JSON-serializable document.
type Snapshot struct {
	Enzymes   []*kegg.Enzyme   `json:"enzymes"`
	Reactions []*kegg.Reaction `json:"reactions"`
	Organisms []*kegg.Organism `json:"organisms"`
}

// Store holds parsed catalog records in memory.
type Store struct {
	mu        sync.RWMutex
	enzymes   []*kegg.Enzyme
	reactions []*kegg.Reaction
	organisms []*kegg.Organism
}

// NewStore returns an empty in-memory store.
func NewStore() *Store { return &Store{} }

// ReplaceEnzymes swaps the stored enzyme records.
func (s *Store) ReplaceEnzymes(_ context.Context, enzymes []*kegg.Enzyme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enzymes = append([]*kegg.Enzyme(nil), enzymes...)
	return nil
}

// ReplaceReactions swaps the stored reaction records.
func (s *Store) ReplaceReactions(_ context.Context, reactions []*kegg.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = append([]*kegg.Reaction(nil), reactions...)
	return nil
}

// ReplaceOrganisms swaps the stored organism records.
func (s *Store) ReplaceOrganisms(_ context.Context, organisms []*kegg.Organism) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organisms = append([]*kegg.Organism(nil), organisms...)
	return nil
}

// Enzymes returns a copy of the stored enzyme records.
func (s *Store) Enzymes() []*kegg.Enzyme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*kegg.Enzyme(nil), s.enzymes...)
}

// Reactions returns a copy of the stored reaction records.
func (s *Store) Reactions() []*kegg.Reaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*kegg.Reaction(nil), s.reactions...)
}

// Organisms returns a copy of the stored organism records.
func (s *Store) Organisms() []*kegg.Organism {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*kegg.Organism(nil), s.organisms...)
}

// ExportState returns the full state as a snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Enzymes:   append([]*kegg.Enzyme(nil), s.enzymes...),
		Reactions: append([]*kegg.Reaction(nil), s.reactions...),
		Organisms: append([]*kegg.Organism(nil), s.organisms...),
	}
}

// ImportState replaces the full state from a snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enzymes = append([]*kegg.Enzyme(nil), snapshot.Enzymes...)
	s.reactions = append([]*kegg.Reaction(nil), snapshot.Reactions...)
	s.organisms = append([]*kegg.Organism(nil), snapshot.Organisms...)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

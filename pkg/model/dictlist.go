package model

import (
	"fmt"
	"sort"
)

// Identifier is implemented by everything a DictList can hold.
type Identifier interface {
	ID() string
}

// DictList is an ordered collection with unique ids and O(1) lookup by id.
// The zero value is ready to use.
type DictList[T Identifier] struct {
	items []T
	index map[string]int
}

// Len returns the number of items.
func (l *DictList[T]) Len() int { return len(l.items) }

// At returns the item at position i.
func (l *DictList[T]) At(i int) T { return l.items[i] }

// All returns the items in collection order. The slice is shared; callers
// must not reorder it.
func (l *DictList[T]) All() []T { return l.items }

// HasID reports whether an item with the given id exists.
func (l *DictList[T]) HasID(id string) bool {
	_, ok := l.index[id]
	return ok
}

// GetByID returns the item with the given id.
func (l *DictList[T]) GetByID(id string) (T, bool) {
	if i, ok := l.index[id]; ok {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Add appends items, rejecting duplicate ids.
func (l *DictList[T]) Add(items ...T) error {
	for _, item := range items {
		if l.HasID(item.ID()) {
			return fmt.Errorf("duplicate id %s", item.ID())
		}
		if l.index == nil {
			l.index = make(map[string]int)
		}
		l.index[item.ID()] = len(l.items)
		l.items = append(l.items, item)
	}
	return nil
}

// ReplaceOnID swaps the stored item sharing the new item's id, preserving
// its position, or appends when the id is new.
func (l *DictList[T]) ReplaceOnID(item T) {
	if i, ok := l.index[item.ID()]; ok {
		l.items[i] = item
		return
	}
	_ = l.Add(item)
}

// Remove deletes the item with the given id and reports whether it existed.
func (l *DictList[T]) Remove(id string) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	delete(l.index, id)
	for j := i; j < len(l.items); j++ {
		l.index[l.items[j].ID()] = j
	}
	return true
}

// Query returns the items satisfying the predicate, in collection order.
func (l *DictList[T]) Query(pred func(T) bool) []T {
	var out []T
	for _, item := range l.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortByID orders the collection by id ascending.
func (l *DictList[T]) SortByID() {
	sort.SliceStable(l.items, func(i, j int) bool { return l.items[i].ID() < l.items[j].ID() })
	for i, item := range l.items {
		l.index[item.ID()] = i
	}
}

package kegg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Entity is the capability set shared by the record types: identified by a
// unique id and serializable back to flat-file lines.
type Entity interface {
	ID() string
	Record() []string
}

// Database is an ordered, uniquely-keyed collection of records backed by a
// flat file. The zero value is not usable; construct through one of the
// typed database constructors. A Database is exclusively owned by its
// caller and is not safe for concurrent mutation.
type Database[E Entity] struct {
	filename string
	kind     string
	parse    func([]string) (E, error)
	records  []E
	index    map[string]int
}

func newDatabase[E Entity](filename, kind string, parse func([]string) (E, error)) Database[E] {
	return Database[E]{
		filename: filename,
		kind:     kind,
		parse:    parse,
		index:    make(map[string]int),
	}
}

// Filename returns the backing file path.
func (db *Database[E]) Filename() string { return db.filename }

// Size returns the number of records in the database.
func (db *Database[E]) Size() int { return len(db.records) }

// HasID reports whether a record with the given id exists.
func (db *Database[E]) HasID(id string) bool {
	_, ok := db.index[id]
	return ok
}

// GetByID returns the record with the given id.
func (db *Database[E]) GetByID(id string) (E, error) {
	if i, ok := db.index[id]; ok {
		return db.records[i], nil
	}
	var zero E
	return zero, NotFoundError{Kind: db.kind, ID: id}
}

// All returns the records in database order. The slice is shared; callers
// must not reorder it.
func (db *Database[E]) All() []E { return db.records }

// Update adds a new record or replaces an existing one with the same id.
// Replacement preserves the record's ordinal position; a miss appends.
func (db *Database[E]) Update(entity E) {
	if i, ok := db.index[entity.ID()]; ok {
		db.records[i] = entity
		return
	}
	db.index[entity.ID()] = len(db.records)
	db.records = append(db.records, entity)
}

// append adds a record in load order, rejecting duplicate ids.
func (db *Database[E]) append(entity E) error {
	if _, ok := db.index[entity.ID()]; ok {
		return fmt.Errorf("duplicate %s id %s", db.kind, entity.ID())
	}
	db.index[entity.ID()] = len(db.records)
	db.records = append(db.records, entity)
	return nil
}

// Load reads all records from the backing file in file order. A failed
// load may leave the database populated with the records appended before
// the failure.
func (db *Database[E]) Load() error {
	handle, err := os.Open(db.filename)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()
	return db.ReadFrom(handle)
}

// ReadFrom reads records from r and appends them in stream order.
func (db *Database[E]) ReadFrom(r io.Reader) error {
	scanner := NewRecordScanner(r)
	for scanner.Scan() {
		entity, err := db.parse(scanner.Record())
		if err != nil {
			return err
		}
		if err := db.append(entity); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Store writes all records to the backing file sorted by id ascending.
// The sort is lexicographic on the id string, so EC numbers and R numbers
// do not sort numerically. A failure mid-store leaves a truncated file.
func (db *Database[E]) Store() error {
	return db.StoreAs(db.filename)
}

// StoreAs writes all records to the given path sorted by id ascending.
func (db *Database[E]) StoreAs(filename string) (retErr error) {
	handle, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := handle.Close(); retErr == nil {
			retErr = cerr
		}
	}()
	return db.WriteTo(handle)
}

// WriteTo writes all records to w sorted by id ascending. Sorting reorders
// the database in place and rebuilds the id index.
func (db *Database[E]) WriteTo(w io.Writer) error {
	db.sortByID()
	buf := bufio.NewWriter(w)
	for _, entity := range db.records {
		for _, line := range entity.Record() {
			if _, err := buf.WriteString(line + "\n"); err != nil {
				return err
			}
		}
	}
	return buf.Flush()
}

func (db *Database[E]) sortByID() {
	sort.SliceStable(db.records, func(i, j int) bool {
		return db.records[i].ID() < db.records[j].ID()
	})
	for i, entity := range db.records {
		db.index[entity.ID()] = i
	}
}

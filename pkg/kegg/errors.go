package kegg

import (
	"errors"
	"fmt"
)

// ErrNotEmpty is returned when an operation requires an empty database.
var ErrNotEmpty = errors.New("database must be empty")

// ErrEmpty is returned when an operation requires a populated database.
var ErrEmpty = errors.New("database is empty")

// NotFoundError is returned when a record lookup misses.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// FormatError is returned when a record line cannot be parsed into the
// expected shape. It aborts the load in progress; no guarantee is made
// about records appended before the failure.
type FormatError struct {
	Kind string
	Line string
	Msg  string
}

func (e FormatError) Error() string {
	return fmt.Sprintf("malformed %s record %q: %s", e.Kind, e.Line, e.Msg)
}

// QueryError is returned when a KEGG web service request fails with a
// non-2xx status. There is no retry: a failed request aborts the whole
// operation.
type QueryError struct {
	URL        string
	StatusCode int
}

func (e QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %s", e.URL, e.reason())
}

func (e QueryError) reason() string {
	switch e.StatusCode {
	case 400:
		return "bad request (syntax error, wrong database name, etc.)"
	case 404:
		return "not found"
	default:
		return fmt.Sprintf("unknown (%d)", e.StatusCode)
	}
}

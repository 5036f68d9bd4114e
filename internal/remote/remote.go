// Package remote defines the persistence contract for reusable blocks and
// the stores implementing it.
//
// The contract is deliberately narrow: fetch everything, fetch one, save
// one. Handlers depend on nothing else, so the HTTP collection client, the
// SQLite-backed local collection, and the in-memory test store are fully
// interchangeable.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// Record is the wire shape of one stored reusable block. Content holds a
// single comment-delimited block fragment.
type Record struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Store is the whole persistence surface the reusable-block gateway sees.
type Store interface {
	// FetchAll returns every record in collection order.
	FetchAll(ctx context.Context) ([]Record, error)

	// FetchOne returns the record with the given id.
	FetchOne(ctx context.Context, id string) (Record, error)

	// Save persists one record, replacing any previous version with the
	// same id.
	Save(ctx context.Context, rec Record) error
}

// Error is the structured error envelope collection APIs return: a
// machine code plus a human-readable message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeNotFound marks fetches for ids absent from the collection.
const CodeNotFound = "not_found"

// NotFound builds the standard missing-record error.
func NotFound(id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("No reusable block with id %q.", id),
	}
}

// AsError extracts the structured envelope when err carries one. Plain
// transport errors return false; callers fall back to their generic
// failure shape.
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

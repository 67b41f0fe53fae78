package store

import (
	"context"
	"errors"
)

// Common store errors.
var (
	// ErrNotFound indicates that no record matched the query.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidQuery indicates a query without a record type.
	ErrInvalidQuery = errors.New("query requires a record type")
)

// Record is a schemaless structured entity. Every persisted record
// carries an "id" field.
type Record map[string]any

// ID returns the record's identifier, or "" when unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Query selects records of one type, optionally filtered by field
// equality.
type Query struct {
	// Type is the record type to query. Required.
	Type string

	// Where filters records by field equality. Nested fields use
	// dotted paths.
	Where map[string]any

	// Limit caps the number of returned records. Zero means no limit.
	Limit int
}

// Store is the record persistence interface.
type Store interface {
	// Query returns the records matching q in insertion order.
	Query(ctx context.Context, q Query) ([]Record, error)

	// Insert persists a new record of the given type and returns it
	// with its assigned identifier.
	Insert(ctx context.Context, recordType string, rec Record) (Record, error)

	// Update applies the field map to every identified record and
	// returns the number of records updated.
	Update(ctx context.Context, recordType string, ids []string, fields map[string]any) (int, error)

	// Delete removes the identified records and returns the number of
	// records deleted.
	Delete(ctx context.Context, recordType string, ids []string) (int, error)

	// Close releases the underlying connection.
	Close() error
}

// Package store describes record queries and the stores that execute them.
// A Query is plain data so callers can inspect and rewrite it before it
// reaches a Store.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by First when no record matches.
var ErrNotFound = errors.New("record not found")

// ErrUnknownEntity is returned for an entity the schema does not declare.
var ErrUnknownEntity = errors.New("unknown entity")

// Record is one row keyed by column name.
type Record map[string]any

// Clone returns a copy of r; string slices are copied too. An empty slice
// stays empty rather than becoming nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		if ss, ok := v.([]string); ok && ss != nil {
			v = append([]string{}, ss...)
		}
		out[k] = v
	}
	return out
}

// Filter constrains rows by column equality; a slice value matches any element.
type Filter map[string]any

// Clone returns a shallow copy of f.
func (f Filter) Clone() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Query is a store operation description.
type Query struct {
	Entity  string
	Where   Filter
	Data    Record // values for Create and Update
	OrderBy string // "column" or "column desc"
	Limit   int
	Offset  int
}

// Store executes queries against one backing database.
type Store interface {
	Find(ctx context.Context, q Query) ([]Record, error)
	First(ctx context.Context, q Query) (Record, error)
	Count(ctx context.Context, q Query) (int64, error)
	Create(ctx context.Context, q Query) (Record, error)
	Update(ctx context.Context, q Query) (int64, error)
	Delete(ctx context.Context, q Query) (int64, error)
	Close() error
}

// Well-known columns maintained by every store.
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// Package docstore is a small schemaless document store abstraction:
// named collections of documents keyed by a store-assigned id, with
// equality-filtered queries and partial-field updates.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
)

// Collection names used by the application.
const (
	Folders = "folders"
	Links   = "links"
	Users   = "users"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Fields holds the values of a document. Values are JSON scalars
// (string, bool, float64) or nil.
type Fields map[string]any

// Document is a stored document with its id.
type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// String returns the named field as a string, or "" if absent.
func (d Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

// OptionalString returns the named field as a string pointer,
// nil when the field is absent or null.
func (d Document) OptionalString(field string) *string {
	s, ok := d.Fields[field].(string)
	if !ok {
		return nil
	}
	return &s
}

// Filter is an equality condition. A nil Value matches documents where
// the field is null or missing.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Store is implemented by every backend.
type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores a new document and returns its assigned id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Update sets only the named fields, leaving others untouched.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Query returns all documents matching every filter, in store order.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Close() error
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkFields rejects field names that cannot be embedded in a query path.
func checkFields(filters []Filter) error {
	for _, f := range filters {
		if !fieldName.MatchString(f.Field) {
			return fmt.Errorf("invalid field name %q", f.Field)
		}
	}
	return nil
}

// matches reports whether fields satisfies every filter.
func matches(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if f.Value == nil {
			if ok && v != nil {
				return false
			}
			continue
		}
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func cloneFields(f Fields) Fields {
	if f == nil {
		return Fields{}
	}
	return maps.Clone(f)
}

// Package store declares the document store capability the handlers depend on.
package store

import (
	"context"
	"encoding/json"
)

// Filter narrows a Query. Equals matches a field exactly; AnyOf matches when the
// stored field shares at least one value with the given list.
type Filter struct {
	Equals map[string]string
	AnyOf  map[string][]string
}

// Document is a stored document together with the id assigned by the store.
type Document struct {
	ID     string
	Source json.RawMessage
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Source, v)
}

// Store creates and queries documents by collection name.
type Store interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Query(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
}

// Inspector is implemented by stores that can report diagnostics.
type Inspector interface {
	Ping(ctx context.Context) error
	Collections(ctx context.Context) ([]string, error)
}

// Backend is a Store that can also report diagnostics.
type Backend interface {
	Store
	Inspector
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Memory is an in-process Store for local runs and tests. Documents are kept
// in insertion order per collection.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string][]Document
	nextID int
}

var _ Store = (*Memory)(nil)
var _ Inspector = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]Document)}
}

// Create stores doc and returns a sequential id.
func (m *Memory) Create(_ context.Context, collection string, doc any) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal doc: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := strconv.Itoa(m.nextID)
	m.docs[collection] = append(m.docs[collection], Document{ID: id, Source: payload})
	return id, nil
}

// Query scans the collection and returns up to limit matches.
func (m *Memory) Query(_ context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0)
	for _, doc := range m.docs[collection] {
		if limit > 0 && len(out) >= limit {
			break
		}
		var fields map[string]any
		if err := json.Unmarshal(doc.Source, &fields); err != nil {
			return nil, fmt.Errorf("decode doc %s: %w", doc.ID, err)
		}
		if matches(fields, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Collections returns the names of non-empty collections, sorted.
func (m *Memory) Collections(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func matches(fields map[string]any, filter Filter) bool {
	for field, want := range filter.Equals {
		got, ok := fields[field].(string)
		if !ok || got != want {
			return false
		}
	}
	for field, want := range filter.AnyOf {
		if len(want) == 0 {
			continue
		}
		if !overlaps(fields[field], want) {
			return false
		}
	}
	return true
}

func overlaps(value any, want []string) bool {
	set := make(map[string]struct{}, len(want))
	for _, w := range want {
		set[w] = struct{}{}
	}

	switch v := value.(type) {
	case string:
		_, ok := set[v]
		return ok
	case []any:
		for _, el := range v {
			if s, ok := el.(string); ok {
				if _, hit := set[s]; hit {
					return true
				}
			}
		}
	}
	return false
}

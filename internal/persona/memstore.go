package persona

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using a Go map. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	personas map[string]Persona
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{personas: make(map[string]Persona)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Put stores a persona keyed by ID.
func (m *MemStore) Put(_ context.Context, p Persona) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ReasoningStyle = ParseStyle(string(p.ReasoningStyle))
	m.personas[p.ID] = p
	return nil
}

// Get returns the persona with the given ID, or nil if not found.
func (m *MemStore) Get(_ context.Context, id string) (*Persona, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.personas[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// List returns all personas ordered by ID.
func (m *MemStore) List(_ context.Context) ([]Persona, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Persona, 0, len(m.personas))
	for _, p := range m.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ByStyle returns personas with the given style ordered by ID.
func (m *MemStore) ByStyle(ctx context.Context, style Style) ([]Persona, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	style = ParseStyle(string(style))
	var out []Persona
	for _, p := range all {
		if p.ReasoningStyle == style {
			out = append(out, p)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

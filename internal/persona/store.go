package persona

import (
	"context"
	"io"
)

// Store is the interface for persona storage backends.
// Implementations: KuzuStore (persistent, requires cgo), MemStore (in-process).
type Store interface {
	io.Closer

	// InitSchema is called once before any persona is written.
	InitSchema(ctx context.Context) error

	// Put inserts or replaces a persona keyed by ID.
	Put(ctx context.Context, p Persona) error

	// Get returns the persona with the given ID, or nil if absent.
	Get(ctx context.Context, id string) (*Persona, error)

	// List returns all personas ordered by ID.
	List(ctx context.Context) ([]Persona, error)

	// ByStyle returns the personas tagged with style, ordered by ID.
	ByStyle(ctx context.Context, style Style) ([]Persona, error)
}

// Seed writes every persona into store after initializing its schema.
func Seed(ctx context.Context, store Store, personas []Persona) error {
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	for _, p := range personas {
		if err := store.Put(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

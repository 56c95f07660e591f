//go:build cgo

package persona

import "context"

// OpenStore opens the persistent persona database at dbPath and seeds it
// with seed when it is empty.
func OpenStore(ctx context.Context, dbPath string, seed []Persona) (Store, error) {
	store, err := NewKuzuFileStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	existing, err := store.List(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if len(existing) == 0 {
		if err := Seed(ctx, store, seed); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}

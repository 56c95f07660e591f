//go:build !cgo

package persona

import (
	"context"
	"fmt"
)

// OpenStore needs the cgo KuzuDB driver; without cgo only MemStore is
// available.
func OpenStore(_ context.Context, dbPath string, _ []Persona) (Store, error) {
	return nil, fmt.Errorf("persona database %s: built without cgo, KuzuDB unavailable", dbPath)
}

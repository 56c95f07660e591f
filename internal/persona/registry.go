package persona

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// Registry is an immutable, display-ordered snapshot of the available
// personas.
type Registry struct {
	personas []Persona
	byID     map[string]int
}

// NewRegistry validates personas and orders them by SortOrder, then ID.
// Persona IDs must be non-empty and unique.
func NewRegistry(personas []Persona) (*Registry, error) {
	r := &Registry{
		personas: make([]Persona, 0, len(personas)),
		byID:     make(map[string]int, len(personas)),
	}
	for _, p := range personas {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("persona registry: persona with empty id")
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("persona registry: duplicate persona id %q", p.ID)
		}
		p.ReasoningStyle = ParseStyle(string(p.ReasoningStyle))
		if p.ReasoningStyle == "" {
			return nil, fmt.Errorf("persona registry: persona %q has no reasoning style", p.ID)
		}
		r.byID[p.ID] = -1
		r.personas = append(r.personas, p)
	}

	sort.SliceStable(r.personas, func(i, j int) bool {
		if r.personas[i].SortOrder != r.personas[j].SortOrder {
			return r.personas[i].SortOrder < r.personas[j].SortOrder
		}
		return r.personas[i].ID < r.personas[j].ID
	})
	for i, p := range r.personas {
		r.byID[p.ID] = i
	}
	return r, nil
}

// LoadRegistry builds a Registry from everything in store.
func LoadRegistry(ctx context.Context, store Store) (*Registry, error) {
	personas, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("persona registry: list: %w", err)
	}
	return NewRegistry(personas)
}

// All returns every persona in display order.
func (r *Registry) All() []Persona {
	return append([]Persona(nil), r.personas...)
}

// Active returns the active personas in display order.
func (r *Registry) Active() []Persona {
	var out []Persona
	for _, p := range r.personas {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the persona with the given id.
func (r *Registry) Get(id string) (Persona, error) {
	i, ok := r.byID[id]
	if !ok {
		return Persona{}, opinion.Errorf(opinion.KindNotFound, "persona %q", id)
	}
	return r.personas[i], nil
}

// SelectPair chooses the two personas for a dual opinion from the active set.
// One persona is taken per preferred style, in the order given; remaining
// slots are filled by the first active personas of styles not yet chosen,
// and finally by any remaining active persona. Fewer than two active personas
// is an InsufficientPersonas error.
func (r *Registry) SelectPair(preferred []Style) (Persona, Persona, error) {
	active := r.Active()
	if len(active) < 2 {
		return Persona{}, Persona{}, opinion.Errorf(opinion.KindInsufficientPersonas,
			"need 2 active personas, have %d", len(active))
	}

	var picked []Persona
	used := make(map[string]bool)
	styles := make(map[Style]bool)
	take := func(p Persona) {
		picked = append(picked, p)
		used[p.ID] = true
		styles[p.ReasoningStyle] = true
	}

	for _, want := range preferred {
		want = ParseStyle(string(want))
		if len(picked) == 2 || styles[want] {
			continue
		}
		for _, p := range active {
			if p.ReasoningStyle == want && !used[p.ID] {
				take(p)
				break
			}
		}
	}
	for _, p := range active {
		if len(picked) == 2 {
			break
		}
		if !used[p.ID] && !styles[p.ReasoningStyle] {
			take(p)
		}
	}
	for _, p := range active {
		if len(picked) == 2 {
			break
		}
		if !used[p.ID] {
			take(p)
		}
	}
	return picked[0], picked[1], nil
}

package generator

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/persona"
)

const defaultCacheSize = 256

// Cache wraps a Generator with an LRU of finished opinions keyed by persona
// and normalized query. Generation is deterministic, so entries never go
// stale. Errors are not cached.
type Cache struct {
	delegate Generator
	cache    *lru.Cache[string, opinion.Opinion]
}

var _ Generator = (*Cache)(nil)

// NewCache wraps delegate. A non-positive size falls back to 256 entries.
func NewCache(delegate Generator, size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	// lru.New only errors on a non-positive size, which is guarded above.
	c, _ := lru.New[string, opinion.Opinion](size)
	return &Cache{delegate: delegate, cache: c}
}

// Generate returns a copy of the cached opinion or delegates and stores it.
func (c *Cache) Generate(query string, p persona.Persona) (opinion.Opinion, error) {
	key := cacheKey(query, p)
	if op, ok := c.cache.Get(key); ok {
		out := op.Clone()
		out.Query = strings.TrimSpace(query)
		return out, nil
	}
	op, err := c.delegate.Generate(query, p)
	if err != nil {
		return opinion.Opinion{}, err
	}
	c.cache.Add(key, op.Clone())
	return op, nil
}

// Len reports the number of cached opinions.
func (c *Cache) Len() int {
	return c.cache.Len()
}

func cacheKey(query string, p persona.Persona) string {
	return strings.Join([]string{p.ID, string(persona.ParseStyle(string(p.ReasoningStyle))), opinion.NormalizeLabel(query)}, "\x00")
}

package orchestrator

import (
	"github.com/dusk-indust/dualopinion/internal/persona"
	"github.com/dusk-indust/dualopinion/internal/reconcile"
)

// Config holds runtime configuration for a Pipeline.
type Config struct {
	// PreferredStyles orders the reasoning styles used to pick the two
	// personas. Empty means the registry's display order decides.
	PreferredStyles []persona.Style

	// Merge holds the merge thresholds.
	Merge reconcile.Config

	// MaxSessions bounds the session store. Zero uses the default.
	MaxSessions int
}

// DefaultConfig prefers one evidence-based and one contextual persona and
// uses the default merge thresholds.
func DefaultConfig() Config {
	return Config{
		PreferredStyles: []persona.Style{persona.StyleEvidenceBased, persona.StyleContextual},
		Merge:           reconcile.DefaultConfig(),
	}
}

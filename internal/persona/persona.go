// Package persona holds the reasoning-style configurations that each side of
// a dual opinion is generated from. Personas are created by an external
// administrator and are read-only to the engine.
package persona

import "github.com/dusk-indust/dualopinion/internal/opinion"

// Style tags a persona's reasoning style. The set is open: adding a style only
// requires registering a generation policy for it.
type Style string

const (
	StyleEvidenceBased Style = "evidence-based"
	StyleContextual    Style = "contextual"
)

// ParseStyle canonicalizes a style tag ("Evidence Based" -> "evidence-based").
func ParseStyle(s string) Style {
	label := opinion.NormalizeLabel(s)
	out := make([]rune, 0, len(label))
	for _, r := range label {
		if r == ' ' || r == '_' {
			r = '-'
		}
		out = append(out, r)
	}
	return Style(out)
}

// Persona is one reasoning-style configuration.
type Persona struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	ReasoningStyle Style  `json:"reasoningStyle" yaml:"reasoningStyle"`
	Active         bool   `json:"active" yaml:"active"`
	// SortOrder only affects display ordering and pair selection order.
	SortOrder int `json:"sortOrder" yaml:"sortOrder"`
}

// DisplayName returns Name, falling back to ID.
func (p Persona) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

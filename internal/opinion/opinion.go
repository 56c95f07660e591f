// Package opinion defines the structured, comparable representation of a
// persona's answer to a user query, together with the diff and consolidated
// shapes produced when two opinions are reconciled.
package opinion

import "fmt"

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities; unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the declared priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority accepts a priority name in any case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(NormalizeLabel(s))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Finding is one observation an opinion makes about a topic.
type Finding struct {
	Topic  string `json:"topic"`
	Detail string `json:"detail"`
	// Confidence is the generator's self-reported certainty in [0,1]. It is
	// not calibrated against ground truth.
	Confidence float64 `json:"confidence"`
}

// Recommendation is an action the opinion suggests for one of its topics.
type Recommendation struct {
	Topic     string   `json:"topic"`
	Action    string   `json:"action"`
	Priority  Priority `json:"priority"`
	Rationale string   `json:"rationale,omitempty"`
}

// Opinion is the structured answer one persona gives to one query.
// Opinions are never mutated after creation.
type Opinion struct {
	ID              string           `json:"id"`
	PersonaID       string           `json:"personaId"`
	Style           string           `json:"style,omitempty"`
	Query           string           `json:"query,omitempty"`
	Summary         string           `json:"summary"`
	Findings        []Finding        `json:"findings"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Clone returns a deep copy so callers can hand out opinions without sharing
// backing arrays.
func (o Opinion) Clone() Opinion {
	c := o
	c.Findings = append([]Finding(nil), o.Findings...)
	c.Recommendations = append([]Recommendation(nil), o.Recommendations...)
	return c
}

// FindingFor returns the finding whose canonical topic equals key.
func (o Opinion) FindingFor(key string) (Finding, bool) {
	for _, f := range o.Findings {
		if NormalizeLabel(f.Topic) == key {
			return f, true
		}
	}
	return Finding{}, false
}

// RecommendationsFor returns the recommendations whose canonical topic equals
// key, in their original order.
func (o Opinion) RecommendationsFor(key string) []Recommendation {
	var out []Recommendation
	for _, r := range o.Recommendations {
		if NormalizeLabel(r.Topic) == key {
			out = append(out, r)
		}
	}
	return out
}

// TopicKeys returns the canonical topic of each finding in finding order.
func (o Opinion) TopicKeys() []string {
	keys := make([]string, 0, len(o.Findings))
	for _, f := range o.Findings {
		keys = append(keys, NormalizeLabel(f.Topic))
	}
	return keys
}

package report

import (
	"fmt"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// Goal is one actionable item handed to a goal tracker.
type Goal struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Topic     string           `json:"topic"`
	Priority  opinion.Priority `json:"priority"`
	Source    opinion.Source   `json:"source,omitempty"`
	Rationale string           `json:"rationale,omitempty"`
}

// Goals converts a consolidated opinion into one goal per recommendation, in
// recommendation order. IDs are stable within the opinion.
func Goals(c opinion.Consolidated) []Goal {
	goals := make([]Goal, len(c.Recommendations))
	for i, r := range c.Recommendations {
		goals[i] = Goal{
			ID:        fmt.Sprintf("%s-%02d", shortID(c.ID), i+1),
			Title:     r.Action,
			Topic:     r.Topic,
			Priority:  r.Priority,
			Source:    c.SourceOf(i),
			Rationale: r.Rationale,
		}
	}
	return goals
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "goal"
	}
	return id
}

// Package orchestrator coordinates a dual-opinion exchange: it selects two
// personas, generates their opinions in parallel, diffs them and merges them
// on the user's choice. The core packages stay pure; this package owns the
// only state (sessions) and the logging.
package orchestrator

import (
	"context"

	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/persona"
)

// Comparison is the result of asking two personas the same question.
type Comparison struct {
	Query    string          `json:"query"`
	PersonaA persona.Persona `json:"personaA"`
	PersonaB persona.Persona `json:"personaB"`
	A        opinion.Opinion `json:"opinionA"`
	B        opinion.Opinion `json:"opinionB"`
	Diff     opinion.Diff    `json:"diff"`

	// Issues are the points of disagreement worth surfacing to the user.
	Issues []CoherenceIssue `json:"issues,omitempty"`
}

// ProgressEvent is emitted while a persona's opinion is being generated.
type ProgressEvent struct {
	Persona string
	Style   persona.Style
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of one persona's generation.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Orchestrator runs the compare-then-merge flow.
type Orchestrator interface {
	// Compare generates both opinions for query and diffs them.
	Compare(ctx context.Context, query string) (*Comparison, error)

	// Merge consolidates a comparison according to pref.
	Merge(c *Comparison, pref opinion.Preference) (opinion.Consolidated, error)
}

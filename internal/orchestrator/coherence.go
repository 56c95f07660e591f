package orchestrator

import (
	"fmt"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// IssueKind classifies a coherence issue.
type IssueKind string

const (
	// IssueConflict is a topic the two personas advise on differently.
	IssueConflict IssueKind = "conflict"
	// IssueActionsDiffer is a topic with different actions at equal priority.
	IssueActionsDiffer IssueKind = "actions-differ"
	// IssuePriorityDiffers is a topic with the same action ranked differently.
	IssuePriorityDiffers IssueKind = "priority-differs"
)

// CoherenceIssue is a disagreement between the two opinions of a comparison.
type CoherenceIssue struct {
	Topic       string    `json:"topic"`
	Kind        IssueKind `json:"kind"`
	Description string    `json:"description"`
}

// CheckCoherence scans a diff for the disagreements a user should see before
// choosing how to merge. Conflicts come first, then qualified agreements,
// each in the diff's topic order. Plain agreements and unique topics are not
// issues.
func CheckCoherence(d opinion.Diff) []CoherenceIssue {
	var issues []CoherenceIssue
	for _, c := range d.Conflicts {
		issues = append(issues, CoherenceIssue{
			Topic: c.Topic,
			Kind:  IssueConflict,
			Description: fmt.Sprintf("%q: opinion A says %q (%s) but opinion B says %q (%s)",
				c.Topic, c.ActionA, c.PriorityA, c.ActionB, c.PriorityB),
		})
	}
	for _, a := range d.Agreements {
		switch a.Note {
		case opinion.NoteActionsDiffer:
			issues = append(issues, CoherenceIssue{
				Topic: a.Topic,
				Kind:  IssueActionsDiffer,
				Description: fmt.Sprintf("%q: both rank it %s but suggest %q and %q",
					a.Topic, a.PriorityA, a.ActionA, a.ActionB),
			})
		case opinion.NotePriorityDiffers:
			issues = append(issues, CoherenceIssue{
				Topic: a.Topic,
				Kind:  IssuePriorityDiffers,
				Description: fmt.Sprintf("%q: both suggest %q but rank it %s and %s",
					a.Topic, a.ActionA, a.PriorityA, a.PriorityB),
			})
		}
	}
	return issues
}

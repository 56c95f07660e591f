package opinion

import (
	"fmt"
	"strings"
)

// Preference is the user's choice of how to consolidate two opinions.
type Preference string

const (
	PreferA     Preference = "A"
	PreferB     Preference = "B"
	PreferMerge Preference = "merge"
)

// ParsePreference accepts "a", "b" or "merge" in any case.
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return PreferA, nil
	case "b":
		return PreferB, nil
	case "merge":
		return PreferMerge, nil
	default:
		return "", Errorf(KindInvalidInput, "unknown preference %q (want A, B or merge)", s)
	}
}

// Source records which opinion contributed a consolidated recommendation.
type Source string

const (
	SourceA    Source = "A"
	SourceB    Source = "B"
	SourceBoth Source = "both"
)

// ResolutionReason explains why a conflict was settled the way it was.
type ResolutionReason string

const (
	ReasonPriority   ResolutionReason = "higher-priority"
	ReasonConfidence ResolutionReason = "higher-confidence"
	ReasonTieBreak   ResolutionReason = "tie-break-a"
)

// Resolution records the outcome of one conflict during a merge.
type Resolution struct {
	Topic  string           `json:"topic"`
	Winner Source           `json:"winner"`
	Reason ResolutionReason `json:"reason"`
}

// Dropped is a unique topic left out of a merge for low confidence.
type Dropped struct {
	Side    Source  `json:"side"`
	Finding Finding `json:"finding"`
}

// Consolidated is the single opinion produced from a user's merge choice.
// Provenance is parallel to Recommendations.
type Consolidated struct {
	Opinion
	Preference           Preference   `json:"preference"`
	Provenance           []Source     `json:"provenance"`
	Resolutions          []Resolution `json:"resolutions,omitempty"`
	DroppedLowConfidence []Dropped    `json:"droppedLowConfidence,omitempty"`
}

// SourceOf returns the provenance of the i-th recommendation.
func (c Consolidated) SourceOf(i int) Source {
	if i < 0 || i >= len(c.Provenance) {
		return ""
	}
	return c.Provenance[i]
}

// String renders a one-line description of a provenance entry.
func (s Source) String() string {
	switch s {
	case SourceA, SourceB:
		return fmt.Sprintf("opinion %s", string(s))
	case SourceBoth:
		return "both opinions"
	default:
		return "unknown"
	}
}

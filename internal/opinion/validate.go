package opinion

import (
	"fmt"
	"strings"
)

// NormalizeLabel maps a topic or action to its canonical form: lower case,
// surrounding space trimmed, inner whitespace runs collapsed to one space.
// Every string has exactly one canonical form.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Validate checks the structural invariants of a well-formed opinion and
// returns a MalformedOpinion error describing every violation found.
func Validate(o Opinion) error {
	var problems []string

	if strings.TrimSpace(o.PersonaID) == "" {
		problems = append(problems, "persona id is empty")
	}
	if len(o.Findings) == 0 {
		problems = append(problems, "no findings")
	}
	if len(o.Recommendations) == 0 {
		problems = append(problems, "no recommendations")
	}

	topics := make(map[string]bool, len(o.Findings))
	for i, f := range o.Findings {
		key := NormalizeLabel(f.Topic)
		if key == "" {
			problems = append(problems, fmt.Sprintf("finding %d has an empty topic", i))
			continue
		}
		if topics[key] {
			problems = append(problems, fmt.Sprintf("topic %q appears in more than one finding", key))
		}
		topics[key] = true
		if f.Confidence < 0 || f.Confidence > 1 || f.Confidence != f.Confidence {
			problems = append(problems, fmt.Sprintf("finding %q confidence %v outside [0,1]", key, f.Confidence))
		}
	}

	covered := make(map[string]bool, len(topics))
	for i, r := range o.Recommendations {
		key := NormalizeLabel(r.Topic)
		if !topics[key] {
			problems = append(problems, fmt.Sprintf("recommendation %d references unknown topic %q", i, r.Topic))
		}
		if NormalizeLabel(r.Action) == "" {
			problems = append(problems, fmt.Sprintf("recommendation %d has an empty action", i))
		}
		if !r.Priority.Valid() {
			problems = append(problems, fmt.Sprintf("recommendation %d has invalid priority %q", i, r.Priority))
		}
		covered[key] = true
	}
	for _, f := range o.Findings {
		key := NormalizeLabel(f.Topic)
		if key != "" && !covered[key] {
			problems = append(problems, fmt.Sprintf("topic %q has no recommendation", key))
		}
	}

	if len(problems) > 0 {
		return Errorf(KindMalformedOpinion, "opinion %q: %s", o.ID, strings.Join(problems, "; "))
	}
	return nil
}

// Package reconcile compares two opinions and consolidates them according to
// a user's preference. Both operations are pure: they never log, never
// mutate their inputs and return the same result for the same arguments.
package reconcile

import (
	"sort"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// side is the per-topic view of one opinion.
type side struct {
	finding opinion.Finding
	recs    []opinion.Recommendation
	lead    opinion.Recommendation
	actions []string
}

// index maps canonical topics to their per-topic view.
func index(o opinion.Opinion) map[string]side {
	out := make(map[string]side, len(o.Findings))
	for _, f := range o.Findings {
		key := opinion.NormalizeLabel(f.Topic)
		recs := o.RecommendationsFor(key)
		out[key] = side{
			finding: f,
			recs:    recs,
			lead:    leadOf(recs),
			actions: actionSet(recs),
		}
	}
	return out
}

// leadOf returns the first recommendation with the highest priority.
func leadOf(recs []opinion.Recommendation) opinion.Recommendation {
	var lead opinion.Recommendation
	for i, r := range recs {
		if i == 0 || r.Priority.Rank() > lead.Priority.Rank() {
			lead = r
		}
	}
	return lead
}

// actionSet returns the sorted, de-duplicated canonical actions.
func actionSet(recs []opinion.Recommendation) []string {
	seen := make(map[string]bool, len(recs))
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		a := opinion.NormalizeLabel(r.Action)
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func rationale(s side) string {
	if s.lead.Rationale != "" {
		return s.lead.Rationale
	}
	return s.finding.Detail
}

// Diff classifies every canonical topic of a and b into exactly one bucket.
// Both opinions must be well formed; otherwise a MalformedOpinion error is
// returned and no partial diff is produced.
//
// For a topic both opinions cover, matching action sets are an agreement
// (noted priority-differs when the lead priorities differ), differing actions
// at the same lead priority are an agreement noted actions-differ, and
// anything else is a conflict. Every list is ordered by canonical topic, so
// Diff(b, a) equals Diff(a, b).Swap().
func Diff(a, b opinion.Opinion) (opinion.Diff, error) {
	if err := opinion.Validate(a); err != nil {
		return opinion.Diff{}, err
	}
	if err := opinion.Validate(b); err != nil {
		return opinion.Diff{}, err
	}

	ia, ib := index(a), index(b)
	keys := make([]string, 0, len(ia)+len(ib))
	for k := range ia {
		keys = append(keys, k)
	}
	for k := range ib {
		if _, ok := ia[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	d := opinion.Diff{
		Agreements: []opinion.Agreement{},
		Conflicts:  []opinion.Conflict{},
		UniqueToA:  []opinion.UniqueTopic{},
		UniqueToB:  []opinion.UniqueTopic{},
	}
	for _, key := range keys {
		sa, inA := ia[key]
		sb, inB := ib[key]
		switch {
		case inA && !inB:
			d.UniqueToA = append(d.UniqueToA, opinion.UniqueTopic{Topic: key, Finding: sa.finding, Recommendations: sa.recs})
		case inB && !inA:
			d.UniqueToB = append(d.UniqueToB, opinion.UniqueTopic{Topic: key, Finding: sb.finding, Recommendations: sb.recs})
		default:
			samePriority := sa.lead.Priority == sb.lead.Priority
			switch {
			case sameSet(sa.actions, sb.actions):
				note := opinion.NoteNone
				if !samePriority {
					note = opinion.NotePriorityDiffers
				}
				d.Agreements = append(d.Agreements, agreement(key, sa, sb, note))
			case samePriority:
				d.Agreements = append(d.Agreements, agreement(key, sa, sb, opinion.NoteActionsDiffer))
			default:
				d.Conflicts = append(d.Conflicts, opinion.Conflict{
					Topic:      key,
					ActionA:    sa.lead.Action,
					ActionB:    sb.lead.Action,
					PriorityA:  sa.lead.Priority,
					PriorityB:  sb.lead.Priority,
					RationaleA: rationale(sa),
					RationaleB: rationale(sb),
				})
			}
		}
	}
	return d, nil
}

func agreement(key string, sa, sb side, note opinion.AgreementNote) opinion.Agreement {
	return opinion.Agreement{
		Topic:     key,
		ActionA:   sa.lead.Action,
		ActionB:   sb.lead.Action,
		PriorityA: sa.lead.Priority,
		PriorityB: sb.lead.Priority,
		Note:      note,
	}
}

// sameClassification reports whether two diffs place the same topics in the
// same buckets. It ignores payload, so a diff that went through a wire
// format still matches the one computed from the opinions.
func sameClassification(got, want opinion.Diff) bool {
	topics := want.Topics()
	if len(got.Topics()) != len(topics) {
		return false
	}
	for _, t := range topics {
		wc, _ := want.Classify(t)
		gc, ok := got.Classify(opinion.NormalizeLabel(t))
		if !ok || gc != wc {
			return false
		}
	}
	return true
}

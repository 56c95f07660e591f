package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// DefaultMinConfidence is the confidence below which a topic only one
// opinion raised is left out of a merge.
const DefaultMinConfidence = 0.35

// consolidatedNamespace seeds deterministic IDs for merged opinions.
var consolidatedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dusk-indust/dualopinion/consolidated"))

// Config holds the merge thresholds.
type Config struct {
	// MinConfidence drops unique topics whose finding confidence is below
	// it. Zero keeps every unique topic.
	MinConfidence float64
}

// DefaultConfig returns the shipped thresholds.
func DefaultConfig() Config {
	return Config{MinConfidence: DefaultMinConfidence}
}

// Resolver consolidates two opinions. It is immutable and safe for
// concurrent use.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver. MinConfidence is clamped to [0, 1].
func NewResolver(cfg Config) *Resolver {
	if cfg.MinConfidence < 0 || cfg.MinConfidence != cfg.MinConfidence {
		cfg.MinConfidence = 0
	}
	if cfg.MinConfidence > 1 {
		cfg.MinConfidence = 1
	}
	return &Resolver{cfg: cfg}
}

// Config returns the resolver's thresholds.
func (r *Resolver) Config() Config { return r.cfg }

// Merge consolidates a and b with the default thresholds.
func Merge(a, b opinion.Opinion, d opinion.Diff, pref opinion.Preference) (opinion.Consolidated, error) {
	return NewResolver(DefaultConfig()).Merge(a, b, d, pref)
}

// Merge builds the consolidated opinion for pref. PreferA and PreferB return
// that opinion verbatim. PreferMerge keeps agreements (A's wording, provenance
// both), settles conflicts by lead priority, then finding confidence, then in
// favor of A, and keeps unique topics at or above MinConfidence.
//
// The opinions must be well formed and d must classify their topics the way
// Diff does; otherwise a MalformedOpinion error is returned.
func (r *Resolver) Merge(a, b opinion.Opinion, d opinion.Diff, pref opinion.Preference) (opinion.Consolidated, error) {
	switch pref {
	case opinion.PreferA, opinion.PreferB, opinion.PreferMerge:
	default:
		return opinion.Consolidated{}, opinion.Errorf(opinion.KindInvalidInput,
			"unknown preference %q (want A, B or merge)", pref)
	}

	want, err := Diff(a, b)
	if err != nil {
		return opinion.Consolidated{}, err
	}
	if !sameClassification(d, want) {
		return opinion.Consolidated{}, opinion.Errorf(opinion.KindMalformedOpinion,
			"diff does not describe opinions %q and %q", a.ID, b.ID)
	}

	switch pref {
	case opinion.PreferA:
		return verbatim(a, pref, opinion.SourceA), nil
	case opinion.PreferB:
		return verbatim(b, pref, opinion.SourceB), nil
	default:
		return r.combine(a, b, want), nil
	}
}

func verbatim(o opinion.Opinion, pref opinion.Preference, src opinion.Source) opinion.Consolidated {
	c := opinion.Consolidated{
		Opinion:    o.Clone(),
		Preference: pref,
		Provenance: make([]opinion.Source, len(o.Recommendations)),
	}
	for i := range c.Provenance {
		c.Provenance[i] = src
	}
	return c
}

// entry is a recommendation on its way into the merged opinion.
type entry struct {
	rec    opinion.Recommendation
	src    opinion.Source
	order  int // first appearance of the topic, A's findings before B's
	offset int // position within the topic on its own side
}

func (r *Resolver) combine(a, b opinion.Opinion, d opinion.Diff) opinion.Consolidated {
	ia, ib := index(a), index(b)

	order := make(map[string]int, len(ia)+len(ib))
	for _, k := range a.TopicKeys() {
		order[k] = len(order)
	}
	for _, k := range b.TopicKeys() {
		if _, ok := order[k]; !ok {
			order[k] = len(order)
		}
	}

	out := opinion.Consolidated{Preference: opinion.PreferMerge}
	findings := make(map[string]opinion.Finding, len(order))
	var entries []entry
	keep := func(key string, s side, src opinion.Source) {
		findings[key] = s.finding
		for i, rec := range s.recs {
			entries = append(entries, entry{rec: rec, src: src, order: order[key], offset: i})
		}
	}

	for _, ag := range d.Agreements {
		keep(ag.Topic, ia[ag.Topic], opinion.SourceBoth)
	}
	for _, c := range d.Conflicts {
		res := resolveConflict(c.Topic, ia[c.Topic], ib[c.Topic])
		out.Resolutions = append(out.Resolutions, res)
		if res.Winner == opinion.SourceB {
			keep(c.Topic, ib[c.Topic], opinion.SourceB)
		} else {
			keep(c.Topic, ia[c.Topic], opinion.SourceA)
		}
	}

	var dropped []opinion.Dropped
	unique := func(us []opinion.UniqueTopic, idx map[string]side, src opinion.Source) {
		for _, u := range us {
			s := idx[u.Topic]
			if s.finding.Confidence < r.cfg.MinConfidence {
				dropped = append(dropped, opinion.Dropped{Side: src, Finding: s.finding})
				continue
			}
			keep(u.Topic, s, src)
		}
	}
	unique(d.UniqueToA, ia, opinion.SourceA)
	unique(d.UniqueToB, ib, opinion.SourceB)

	// Dropping every topic would leave nothing to act on, so the threshold
	// only applies while something else survives.
	if len(entries) == 0 && len(dropped) > 0 {
		for _, dr := range dropped {
			key := opinion.NormalizeLabel(dr.Finding.Topic)
			if dr.Side == opinion.SourceA {
				keep(key, ia[key], opinion.SourceA)
			} else {
				keep(key, ib[key], opinion.SourceB)
			}
		}
		dropped = nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ei, ej := entries[i], entries[j]
		if ri, rj := ei.rec.Priority.Rank(), ej.rec.Priority.Rank(); ri != rj {
			return ri > rj
		}
		if ei.order != ej.order {
			return ei.order < ej.order
		}
		return ei.offset < ej.offset
	})

	keys := make([]string, 0, len(findings))
	for k := range findings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })

	out.ID = uuid.NewSHA1(consolidatedNamespace, []byte(a.ID+"\x00"+b.ID)).String()
	out.PersonaID = a.PersonaID + "+" + b.PersonaID
	out.Style = "merged"
	out.Query = a.Query
	for _, k := range keys {
		out.Findings = append(out.Findings, findings[k])
	}
	out.Recommendations = make([]opinion.Recommendation, len(entries))
	out.Provenance = make([]opinion.Source, len(entries))
	for i, e := range entries {
		out.Recommendations[i] = e.rec
		out.Provenance[i] = e.src
	}
	sort.SliceStable(dropped, func(i, j int) bool {
		return order[opinion.NormalizeLabel(dropped[i].Finding.Topic)] < order[opinion.NormalizeLabel(dropped[j].Finding.Topic)]
	})
	out.DroppedLowConfidence = dropped
	out.Summary = summarize(d, out)
	return out
}

// resolveConflict picks the side whose lead recommendation has the higher
// priority, then the side whose finding is more confident, then A.
func resolveConflict(topic string, sa, sb side) opinion.Resolution {
	res := opinion.Resolution{Topic: topic}
	pa, pb := sa.lead.Priority.Rank(), sb.lead.Priority.Rank()
	ca, cb := sa.finding.Confidence, sb.finding.Confidence
	switch {
	case pa != pb:
		res.Reason = opinion.ReasonPriority
		res.Winner = opinion.SourceA
		if pb > pa {
			res.Winner = opinion.SourceB
		}
	case ca != cb:
		res.Reason = opinion.ReasonConfidence
		res.Winner = opinion.SourceA
		if cb > ca {
			res.Winner = opinion.SourceB
		}
	default:
		res.Reason = opinion.ReasonTieBreak
		res.Winner = opinion.SourceA
	}
	return res
}

func summarize(d opinion.Diff, c opinion.Consolidated) string {
	var parts []string
	if n := len(d.Agreements); n > 0 {
		parts = append(parts, fmt.Sprintf("both opinions agree on %s", plural(n, "topic")))
	}
	if n := len(c.Resolutions); n > 0 {
		parts = append(parts, fmt.Sprintf("%s settled in favor of the stronger recommendation", plural(n, "disagreement")))
	}
	if n := len(d.UniqueToA) + len(d.UniqueToB) - len(c.DroppedLowConfidence); n > 0 {
		parts = append(parts, fmt.Sprintf("%s raised by only one opinion", plural(n, "topic")))
	}
	if n := len(c.DroppedLowConfidence); n > 0 {
		parts = append(parts, fmt.Sprintf("%s left out for low confidence", plural(n, "topic")))
	}
	lead := "Combined opinion"
	if len(c.Recommendations) > 0 {
		lead = fmt.Sprintf("Combined opinion led by: %s", c.Recommendations[0].Action)
	}
	if len(parts) == 0 {
		return lead + "."
	}
	return lead + ". In short, " + strings.Join(parts, "; ") + "."
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

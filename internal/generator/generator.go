// Package generator turns a query and a persona into a structured Opinion.
// Generation is a pure, deterministic classification of the query against a
// fixed topic catalog, weighted by the persona's reasoning-style policy.
package generator

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/persona"
	"github.com/google/uuid"
)

// Generator produces one opinion for one persona. Implementations must be
// deterministic and safe for concurrent use.
type Generator interface {
	Generate(query string, p persona.Persona) (opinion.Opinion, error)
}

// FallbackTopic is the single finding returned when no topic matches.
const FallbackTopic = "insufficient specificity"

// FallbackConfidence is the confidence of the fallback finding.
const FallbackConfidence = 0.2

const (
	directBase      = 0.6
	directPerHit    = 0.1
	directCap       = 0.9
	relatedFactor   = 0.6
	confidenceFloor = 0.05
)

// opinionNamespace seeds deterministic opinion IDs.
var opinionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dusk-indust/dualopinion/opinion"))

// Compile-time check.
var _ Generator = (*Engine)(nil)

// Engine dispatches generation to the policy registered for a persona's
// style. It holds no mutable state after construction.
type Engine struct {
	policies map[persona.Style]Policy
}

// New creates an Engine from policies. With no policies, DefaultPolicies is
// used. A later policy for the same style replaces an earlier one.
func New(policies ...Policy) *Engine {
	if len(policies) == 0 {
		policies = DefaultPolicies()
	}
	e := &Engine{policies: make(map[persona.Style]Policy, len(policies))}
	for _, p := range policies {
		e.policies[persona.ParseStyle(string(p.Style()))] = p
	}
	return e
}

// Styles returns the styles the engine can generate for, sorted.
func (e *Engine) Styles() []persona.Style {
	out := make([]persona.Style, 0, len(e.policies))
	for s := range e.policies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// match is a topic selected for an opinion.
type match struct {
	topic      Topic
	order      int
	confidence float64
	words      []string
	via        string
}

// Generate classifies query for persona p. An empty or whitespace-only query
// is an InvalidInput error. A query no topic matches yields a single
// low-confidence "insufficient specificity" finding.
func (e *Engine) Generate(query string, p persona.Persona) (opinion.Opinion, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return opinion.Opinion{}, opinion.Errorf(opinion.KindInvalidInput, "query is empty")
	}
	policy, ok := e.policies[persona.ParseStyle(string(p.ReasoningStyle))]
	if !ok {
		return opinion.Opinion{}, opinion.Errorf(opinion.KindNotFound,
			"no generation policy for style %q (persona %q)", p.ReasoningStyle, p.ID)
	}

	tokens := tokenize(trimmed)
	matches := classify(policy, tokens)

	op := opinion.Opinion{
		ID:        OpinionID(p.ID, trimmed),
		PersonaID: p.ID,
		Style:     string(persona.ParseStyle(string(p.ReasoningStyle))),
		Query:     trimmed,
	}

	if len(matches) == 0 {
		op.Findings = []opinion.Finding{{
			Topic:      FallbackTopic,
			Detail:     "The question does not mention a symptom, habit or situation specific enough to assess.",
			Confidence: FallbackConfidence,
		}}
		op.Recommendations = []opinion.Recommendation{{
			Topic:     FallbackTopic,
			Action:    "Describe when it happens, how long it has been going on and what changed recently",
			Priority:  opinion.PriorityLow,
			Rationale: op.Findings[0].Detail,
		}}
		op.Summary = "There is not enough detail in the question to form a confident opinion yet."
		return op, nil
	}

	for _, m := range matches {
		f := opinion.Finding{
			Topic:      m.topic.Label,
			Detail:     policy.Explain(m.topic, m.words, m.via),
			Confidence: m.confidence,
		}
		op.Findings = append(op.Findings, f)
		for _, r := range policy.Recommend(m.topic) {
			r.Topic = m.topic.Label
			if r.Rationale == "" {
				r.Rationale = f.Detail
			}
			op.Recommendations = append(op.Recommendations, r)
		}
	}
	op.Summary = policy.Summarize(op.Findings)

	if err := opinion.Validate(op); err != nil {
		return opinion.Opinion{}, err
	}
	return op, nil
}

// OpinionID derives a stable identifier from the persona and the query, so
// regenerating the same opinion yields the same ID.
func OpinionID(personaID, query string) string {
	key := personaID + "\x00" + opinion.NormalizeLabel(query)
	return uuid.NewSHA1(opinionNamespace, []byte(key)).String()
}

// classify scores catalog topics against the tokens, then adds the topics the
// policy infers from direct matches. The result is ordered by descending
// confidence, then catalog order.
func classify(policy Policy, tokens []string) []match {
	selected := make(map[string]*match)

	for i, t := range Catalog {
		w := policy.Weight(t.Category)
		if w < policy.MinWeight() {
			continue
		}
		words := matchedWords(t, tokens)
		if len(words) == 0 {
			continue
		}
		conf := math.Min(directCap, directBase+directPerHit*float64(len(words)-1)) * w
		selected[t.Label] = &match{topic: t, order: i, confidence: round2(conf), words: words}
	}

	var direct []*match
	for _, m := range selected {
		direct = append(direct, m)
	}
	sortMatches(direct)

	for _, parent := range direct {
		for _, label := range policy.Related(parent.topic.Label) {
			t, ok := LookupTopic(label)
			if !ok {
				continue
			}
			w := policy.Weight(t.Category)
			if w < policy.MinWeight() {
				continue
			}
			conf := round2(math.Max(confidenceFloor, parent.confidence*relatedFactor*w))
			if existing, ok := selected[label]; ok {
				if existing.via == "" || existing.confidence >= conf {
					continue
				}
			}
			selected[label] = &match{topic: t, order: topicIndex[label], confidence: conf, via: parent.topic.Label}
		}
	}

	out := make([]*match, 0, len(selected))
	for _, m := range selected {
		out = append(out, m)
	}
	sortMatches(out)

	result := make([]match, len(out))
	for i, m := range out {
		result[i] = *m
	}
	return result
}

func sortMatches(ms []*match) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].confidence != ms[j].confidence {
			return ms[i].confidence > ms[j].confidence
		}
		return ms[i].order < ms[j].order
	})
}

// matchedWords returns the distinct query tokens that start with one of the
// topic's keywords, in query order.
func matchedWords(t Topic, tokens []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		for _, kw := range t.Keywords {
			if strings.HasPrefix(tok, kw) {
				out = append(out, tok)
				seen[tok] = true
				break
			}
		}
	}
	return out
}

// tokenize lower-cases s and splits it on anything that is not a letter or
// digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

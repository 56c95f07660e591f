package generator

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/persona"
)

// Policy is the generation behavior of one reasoning style. Diff and merge
// never see policies; they only see the Opinion a policy produced.
type Policy interface {
	// Style is the persona style this policy serves.
	Style() persona.Style

	// Weight scales matches in a category; categories weighted below
	// MinWeight are ignored.
	Weight(c Category) float64
	MinWeight() float64

	// Related lists the topics this style infers from a matched topic.
	Related(label string) []string

	// Recommend returns at least one recommendation for the topic.
	Recommend(t Topic) []opinion.Recommendation

	// Explain writes the finding detail for a topic. matched holds the query
	// words that hit it; via is the parent label for inferred topics.
	Explain(t Topic, matched []string, via string) string

	// Summarize writes the opinion summary from the ordered findings.
	Summarize(findings []opinion.Finding) string
}

// Advice is one recommended action at a priority.
type Advice struct {
	Action   string
	Priority opinion.Priority
}

// RulePolicy is a table-driven Policy.
type RulePolicy struct {
	Tag       persona.Style
	Weights   map[Category]float64
	Threshold float64
	Relations map[string][]string
	Actions   map[string][]Advice

	// DirectDetail and RelatedDetail are fmt templates. DirectDetail gets
	// the quoted matched words and the topic label; RelatedDetail gets the
	// topic label and the parent label.
	DirectDetail  string
	RelatedDetail string

	// SummaryLead prefixes the list of leading topics in the summary.
	SummaryLead string
}

var _ Policy = (*RulePolicy)(nil)

func (p *RulePolicy) Style() persona.Style { return p.Tag }

func (p *RulePolicy) Weight(c Category) float64 { return p.Weights[c] }

func (p *RulePolicy) MinWeight() float64 { return p.Threshold }

func (p *RulePolicy) Related(label string) []string { return p.Relations[label] }

func (p *RulePolicy) Recommend(t Topic) []opinion.Recommendation {
	advice := p.Actions[t.Label]
	if len(advice) == 0 {
		advice = []Advice{{
			Action:   fmt.Sprintf("Track your %s for one week and look for a pattern", t.Label),
			Priority: opinion.PriorityLow,
		}}
	}
	recs := make([]opinion.Recommendation, 0, len(advice))
	for _, a := range advice {
		recs = append(recs, opinion.Recommendation{
			Topic:    t.Label,
			Action:   a.Action,
			Priority: a.Priority,
		})
	}
	return recs
}

func (p *RulePolicy) Explain(t Topic, matched []string, via string) string {
	if via != "" {
		return fmt.Sprintf(p.RelatedDetail, t.Label, via)
	}
	quoted := make([]string, len(matched))
	for i, m := range matched {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf(p.DirectDetail, strings.Join(quoted, ", "), t.Label)
}

func (p *RulePolicy) Summarize(findings []opinion.Finding) string {
	labels := make([]string, 0, 3)
	for _, f := range findings {
		if len(labels) == 3 {
			break
		}
		labels = append(labels, f.Topic)
	}
	return fmt.Sprintf("%s %s.", p.SummaryLead, joinList(labels))
}

// joinList renders "a", "a and b" or "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// EvidencePolicy favors physiological and nutritional causes.
func EvidencePolicy() *RulePolicy {
	return &RulePolicy{
		Tag: persona.StyleEvidenceBased,
		Weights: map[Category]float64{
			CategoryPhysiological: 1.0,
			CategoryNutritional:   0.9,
			CategoryPsychological: 0.5,
			CategoryLifestyle:     0.4,
			CategoryBehavioral:    0.3,
		},
		Threshold: 0.5,
		Relations: map[string][]string{
			"energy":    {"hydration", "nutrition"},
			"stress":    {"sleep"},
			"mood":      {"sleep"},
			"digestion": {"nutrition"},
			"sleep":     {"energy"},
		},
		Actions: map[string][]Advice{
			"energy":    {{"Rebalance lunch toward protein and fiber and drink water through the afternoon", opinion.PriorityHigh}},
			"sleep":     {{"Keep a fixed sleep and wake time, including weekends", opinion.PriorityHigh}},
			"hydration": {{"Drink a glass of water with each meal and one mid-afternoon", opinion.PriorityMedium}},
			"nutrition": {{"Swap refined carbohydrates at lunch for whole grains and protein", opinion.PriorityMedium}},
			"digestion": {{"Keep a food and symptom diary for two weeks", opinion.PriorityMedium}},
			"stress":    {{"Ask a clinician whether a basic blood panel is warranted", opinion.PriorityMedium}},
			"mood":      {{"Complete a validated mood questionnaire and review it with a clinician", opinion.PriorityHigh}},
			"exercise":  {{"Build toward 150 minutes of moderate activity per week", opinion.PriorityMedium}},
		},
		DirectDetail:  "You mentioned %s, a pattern commonly traced to %s with a measurable cause.",
		RelatedDetail: "Research links %s to %s; it is worth ruling out.",
		SummaryLead:   "From an evidence-based view, the most likely drivers are",
	}
}

// ContextualPolicy favors routine, behavior and surroundings.
func ContextualPolicy() *RulePolicy {
	return &RulePolicy{
		Tag: persona.StyleContextual,
		Weights: map[Category]float64{
			CategoryBehavioral:    1.0,
			CategoryLifestyle:     1.0,
			CategoryPsychological: 0.9,
			CategoryPhysiological: 0.6,
			CategoryNutritional:   0.5,
		},
		Threshold: 0.5,
		Relations: map[string][]string{
			"energy":        {"stress"},
			"daily routine": {"screen time", "work schedule"},
			"sleep":         {"screen time"},
			"stress":        {"work schedule", "social life"},
			"mood":          {"social life", "exercise"},
			"nutrition":     {"daily routine"},
		},
		Actions: map[string][]Advice{
			"energy":        {{"Move demanding work to the morning and take a short walk after lunch", opinion.PriorityMedium}},
			"sleep":         {{"Keep a fixed sleep and wake time, including weekends", opinion.PriorityMedium}},
			"daily routine": {{"Add a ten-minute break away from your desk each afternoon", opinion.PriorityHigh}},
			"work schedule": {{"Block a recovery slot after long meetings", opinion.PriorityMedium}},
			"screen time":   {{"Put the phone away during lunch and the hour after it", opinion.PriorityMedium}},
			"stress":        {{"Name the main afternoon stressor and plan one change for it", opinion.PriorityMedium}},
			"mood":          {{"Plan one enjoyable activity with someone each week", opinion.PriorityMedium}},
			"social life":   {{"Schedule a regular catch-up with a friend", opinion.PriorityLow}},
			"exercise":      {{"Build toward 150 minutes of moderate activity per week", opinion.PriorityMedium}},
			"nutrition":     {{"Eat lunch away from your desk at a regular time", opinion.PriorityLow}},
			"hydration":     {{"Keep a water bottle within reach while you work", opinion.PriorityLow}},
			"digestion":     {{"Note which situations come before stomach trouble", opinion.PriorityLow}},
		},
		DirectDetail:  "You mentioned %s, which suggests your %s is shaped by routine and surroundings.",
		RelatedDetail: "In day-to-day life %s often sits behind %s.",
		SummaryLead:   "Looking at your routine and context, the main themes are",
	}
}

// DefaultPolicies returns the built-in policy for each shipped style.
func DefaultPolicies() []Policy {
	return []Policy{EvidencePolicy(), ContextualPolicy()}
}

package opinion

// AgreementNote qualifies an agreement whose two sides are not identical.
type AgreementNote string

const (
	// NoteNone marks identical actions at identical priority.
	NoteNone AgreementNote = ""
	// NotePriorityDiffers marks identical actions at different priorities.
	NotePriorityDiffers AgreementNote = "priority-differs"
	// NoteActionsDiffer marks different actions at the same priority.
	NoteActionsDiffer AgreementNote = "actions-differ"
)

// Agreement is a topic both opinions cover with compatible recommendations.
type Agreement struct {
	Topic     string        `json:"topic"`
	ActionA   string        `json:"actionA"`
	ActionB   string        `json:"actionB"`
	PriorityA Priority      `json:"priorityA"`
	PriorityB Priority      `json:"priorityB"`
	Note      AgreementNote `json:"note,omitempty"`
}

// Conflict is a topic both opinions cover where action and priority disagree.
// Rationales are copied verbatim from the lead recommendations, or from the
// findings when a recommendation carries none.
type Conflict struct {
	Topic      string   `json:"topic"`
	ActionA    string   `json:"actionA"`
	ActionB    string   `json:"actionB"`
	PriorityA  Priority `json:"priorityA"`
	PriorityB  Priority `json:"priorityB"`
	RationaleA string   `json:"rationaleA"`
	RationaleB string   `json:"rationaleB"`
}

// UniqueTopic is a topic only one opinion raised.
type UniqueTopic struct {
	Topic           string           `json:"topic"`
	Finding         Finding          `json:"finding"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Diff classifies every canonical topic of two opinions into exactly one of
// agreements, conflicts, uniqueToA or uniqueToB. Each list is ordered by
// canonical topic.
type Diff struct {
	Agreements []Agreement   `json:"agreements"`
	Conflicts  []Conflict    `json:"conflicts"`
	UniqueToA  []UniqueTopic `json:"uniqueToA"`
	UniqueToB  []UniqueTopic `json:"uniqueToB"`
}

// Swap returns the diff as it reads with the two opinions exchanged.
func (d Diff) Swap() Diff {
	out := Diff{
		Agreements: make([]Agreement, len(d.Agreements)),
		Conflicts:  make([]Conflict, len(d.Conflicts)),
		UniqueToA:  make([]UniqueTopic, len(d.UniqueToB)),
		UniqueToB:  make([]UniqueTopic, len(d.UniqueToA)),
	}
	copy(out.UniqueToA, d.UniqueToB)
	copy(out.UniqueToB, d.UniqueToA)
	for i, a := range d.Agreements {
		out.Agreements[i] = Agreement{
			Topic:     a.Topic,
			ActionA:   a.ActionB,
			ActionB:   a.ActionA,
			PriorityA: a.PriorityB,
			PriorityB: a.PriorityA,
			Note:      a.Note,
		}
	}
	for i, c := range d.Conflicts {
		out.Conflicts[i] = Conflict{
			Topic:      c.Topic,
			ActionA:    c.ActionB,
			ActionB:    c.ActionA,
			PriorityA:  c.PriorityB,
			PriorityB:  c.PriorityA,
			RationaleA: c.RationaleB,
			RationaleB: c.RationaleA,
		}
	}
	return out
}

// Topics returns every canonical topic the diff classifies.
func (d Diff) Topics() []string {
	n := len(d.Agreements) + len(d.Conflicts) + len(d.UniqueToA) + len(d.UniqueToB)
	out := make([]string, 0, n)
	for _, a := range d.Agreements {
		out = append(out, a.Topic)
	}
	for _, c := range d.Conflicts {
		out = append(out, c.Topic)
	}
	for _, u := range d.UniqueToA {
		out = append(out, u.Topic)
	}
	for _, u := range d.UniqueToB {
		out = append(out, u.Topic)
	}
	return out
}

// Classification names the bucket a topic was placed in.
type Classification string

const (
	ClassAgreement Classification = "agreement"
	ClassConflict  Classification = "conflict"
	ClassUniqueToA Classification = "unique-to-a"
	ClassUniqueToB Classification = "unique-to-b"
)

// Classify returns the bucket for a canonical topic, or false when the diff
// does not mention it.
func (d Diff) Classify(topic string) (Classification, bool) {
	for _, a := range d.Agreements {
		if a.Topic == topic {
			return ClassAgreement, true
		}
	}
	for _, c := range d.Conflicts {
		if c.Topic == topic {
			return ClassConflict, true
		}
	}
	for _, u := range d.UniqueToA {
		if u.Topic == topic {
			return ClassUniqueToA, true
		}
	}
	for _, u := range d.UniqueToB {
		if u.Topic == topic {
			return ClassUniqueToB, true
		}
	}
	return "", false
}

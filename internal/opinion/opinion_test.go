package opinion

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOpinion() Opinion {
	return Opinion{
		ID:        "op-1",
		PersonaID: "evidence",
		Summary:   "Energy dips look physiological.",
		Findings: []Finding{
			{Topic: "Energy", Detail: "Afternoon fatigue", Confidence: 0.7},
			{Topic: "hydration", Detail: "Low fluid intake", Confidence: 0.4},
		},
		Recommendations: []Recommendation{
			{Topic: "energy", Action: "Rebalance lunch", Priority: PriorityHigh},
			{Topic: "Hydration", Action: "Drink water", Priority: PriorityMedium},
		},
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Energy", "energy"},
		{"  Screen   Time ", "screen time"},
		{"screen\ttime\n", "screen time"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), "NormalizeLabel(%q)", tt.in)
	}
}

func TestValidate_WellFormed(t *testing.T) {
	require.NoError(t, Validate(sampleOpinion()))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Opinion)
		want   string
	}{
		{"no findings", func(o *Opinion) { o.Findings = nil }, "no findings"},
		{"no recommendations", func(o *Opinion) { o.Recommendations = nil }, "no recommendations"},
		{"empty persona", func(o *Opinion) { o.PersonaID = " " }, "persona id is empty"},
		{"duplicate topic", func(o *Opinion) { o.Findings[1].Topic = " ENERGY " }, "more than one finding"},
		{"confidence above one", func(o *Opinion) { o.Findings[0].Confidence = 1.2 }, "outside [0,1]"},
		{"confidence NaN", func(o *Opinion) { o.Findings[0].Confidence = math.NaN() }, "outside [0,1]"},
		{"orphan recommendation", func(o *Opinion) { o.Recommendations[1].Topic = "sleep" }, "unknown topic"},
		{"bad priority", func(o *Opinion) { o.Recommendations[0].Priority = "urgent" }, "invalid priority"},
		{"empty action", func(o *Opinion) { o.Recommendations[0].Action = "  " }, "empty action"},
		{"finding without recommendation", func(o *Opinion) { o.Recommendations = o.Recommendations[:1] }, "has no recommendation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := sampleOpinion().Clone()
			tt.mutate(&o)
			err := Validate(o)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedOpinion)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpinion_CloneDoesNotShare(t *testing.T) {
	o := sampleOpinion()
	c := o.Clone()
	c.Findings[0].Topic = "changed"
	c.Recommendations[0].Action = "changed"
	assert.Equal(t, "Energy", o.Findings[0].Topic)
	assert.Equal(t, "Rebalance lunch", o.Recommendations[0].Action)
}

func TestOpinion_TopicLookups(t *testing.T) {
	o := sampleOpinion()
	assert.Equal(t, []string{"energy", "hydration"}, o.TopicKeys())

	f, ok := o.FindingFor("hydration")
	require.True(t, ok)
	assert.Equal(t, "Low fluid intake", f.Detail)

	_, ok = o.FindingFor("sleep")
	assert.False(t, ok)

	recs := o.RecommendationsFor("energy")
	require.Len(t, recs, 1)
	assert.Equal(t, "Rebalance lunch", recs[0].Action)
}

func TestPriority(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.False(t, Priority("urgent").Valid())

	p, err := ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestParsePreference(t *testing.T) {
	for in, want := range map[string]Preference{"a": PreferA, "B": PreferB, " Merge ": PreferMerge} {
		got, err := ParsePreference(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePreference("both")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDiff_SwapTwiceIsIdentity(t *testing.T) {
	d := Diff{
		Agreements: []Agreement{{Topic: "sleep", ActionA: "x", ActionB: "y", PriorityA: PriorityHigh, PriorityB: PriorityLow}},
		Conflicts:  []Conflict{{Topic: "energy", ActionA: "a", ActionB: "b", RationaleA: "ra", RationaleB: "rb"}},
		UniqueToA:  []UniqueTopic{{Topic: "hydration"}},
		UniqueToB:  []UniqueTopic{{Topic: "stress"}},
	}
	s := d.Swap()
	assert.Equal(t, "b", s.Conflicts[0].ActionA)
	assert.Equal(t, "rb", s.Conflicts[0].RationaleA)
	assert.Equal(t, "stress", s.UniqueToA[0].Topic)
	assert.Equal(t, d, s.Swap())

	class, ok := d.Classify("stress")
	require.True(t, ok)
	assert.Equal(t, ClassUniqueToB, class)
	_, ok = d.Classify("mood")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"sleep", "energy", "hydration", "stress"}, d.Topics())
}

func TestError_KindMatching(t *testing.T) {
	err := fmt.Errorf("generate: %w", Errorf(KindInvalidInput, "query is empty"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrMalformedOpinion)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	cause := errors.New("disk full")
	wrapped := Wrap(KindNotFound, cause, "load personas")
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "not_found: load personas: disk full", wrapped.Error())
}

func TestUserMessage_IsNonTechnical(t *testing.T) {
	kinds := []Kind{KindInvalidInput, KindMalformedOpinion, KindInsufficientPersonas, KindNotReady, KindNotFound}
	for _, k := range kinds {
		msg := UserMessage(&Error{Kind: k, Msg: "internal detail"})
		assert.NotEmpty(t, msg)
		assert.NotContains(t, msg, string(k))
		assert.NotContains(t, msg, "internal detail")
	}
	assert.Empty(t, UserMessage(nil))
	assert.NotEmpty(t, UserMessage(errors.New("boom")))
}

func TestConsolidated_SourceOf(t *testing.T) {
	c := Consolidated{Provenance: []Source{SourceA, SourceBoth}}
	assert.Equal(t, SourceBoth, c.SourceOf(1))
	assert.Equal(t, Source(""), c.SourceOf(5))
	assert.Equal(t, "both opinions", SourceBoth.String())
	assert.Equal(t, "opinion A", SourceA.String())
}

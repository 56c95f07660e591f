package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/dualopinion/internal/generator"
	"github.com/dusk-indust/dualopinion/internal/metrics"
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/persona"
)

// mockGenerator implements generator.Generator with a configurable function.
type mockGenerator struct {
	generate func(query string, p persona.Persona) (opinion.Opinion, error)
}

func (m *mockGenerator) Generate(query string, p persona.Persona) (opinion.Opinion, error) {
	return m.generate(query, p)
}

var _ generator.Generator = (*mockGenerator)(nil)

func testPersonas() []persona.Persona {
	return []persona.Persona{
		{ID: "evidence-clinician", Name: "Dr. Evidence", ReasoningStyle: persona.StyleEvidenceBased, Active: true, SortOrder: 10},
		{ID: "context-coach", Name: "Coach Context", ReasoningStyle: persona.StyleContextual, Active: true, SortOrder: 20},
	}
}

func stubOpinion(p persona.Persona) opinion.Opinion {
	return opinion.Opinion{
		ID:              "op-" + p.ID,
		PersonaID:       p.ID,
		Findings:        []opinion.Finding{{Topic: "energy", Confidence: 0.5}},
		Recommendations: []opinion.Recommendation{{Topic: "energy", Action: "rest", Priority: opinion.PriorityLow}},
	}
}

// eventRecorder collects progress events from concurrent goroutines.
type eventRecorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *eventRecorder) record(ev ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) statuses(personaID string) []ProgressStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ProgressStatus
	for _, ev := range r.events {
		if ev.Persona == personaID {
			out = append(out, ev.Status)
		}
	}
	return out
}

func TestFanOut_AllPersonasSucceed(t *testing.T) {
	gen := &mockGenerator{generate: func(_ string, p persona.Persona) (opinion.Opinion, error) {
		return stubOpinion(p), nil
	}}
	rec := &eventRecorder{}
	fanout := NewFanOut(gen, rec.record, nil)

	personas := testPersonas()
	results, err := fanout.Run(context.Background(), "tired", personas)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, res := range results {
		assert.Equal(t, personas[i].ID, res.Persona.ID)
		assert.Equal(t, personas[i].ID, res.Opinion.PersonaID, "results keep persona order")
		assert.NoError(t, res.Err)
		assert.Equal(t, []ProgressStatus{ProgressPending, ProgressWorking, ProgressComplete}, rec.statuses(personas[i].ID))
	}
}

func TestFanOut_OneFails_ReturnsError(t *testing.T) {
	boom := opinion.Errorf(opinion.KindInvalidInput, "query is empty")
	gen := &mockGenerator{generate: func(_ string, p persona.Persona) (opinion.Opinion, error) {
		if p.ID == "context-coach" {
			return opinion.Opinion{}, boom
		}
		return stubOpinion(p), nil
	}}
	rec := &eventRecorder{}
	fanout := NewFanOut(gen, rec.record, nil)

	results, err := fanout.Run(context.Background(), "tired", testPersonas())
	require.Error(t, err)
	assert.ErrorIs(t, err, opinion.ErrInvalidInput)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[1].Err, boom)

	statuses := rec.statuses("context-coach")
	assert.Equal(t, ProgressFailed, statuses[len(statuses)-1])
}

func TestFanOut_CanceledContext_SkipsGeneration(t *testing.T) {
	var calls atomic.Int32
	gen := &mockGenerator{generate: func(_ string, p persona.Persona) (opinion.Opinion, error) {
		calls.Add(1)
		return stubOpinion(p), nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewFanOut(gen, nil, nil).Run(ctx, "tired", testPersonas())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestFanOut_RunsConcurrently(t *testing.T) {
	// Each generation waits until both have started; a sequential fan-out
	// would deadlock.
	var started sync.WaitGroup
	started.Add(2)
	gen := &mockGenerator{generate: func(_ string, p persona.Persona) (opinion.Opinion, error) {
		started.Done()
		started.Wait()
		return stubOpinion(p), nil
	}}

	_, err := NewFanOut(gen, nil, nil).Run(context.Background(), "tired", testPersonas())
	require.NoError(t, err)
}

func TestFanOut_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	_, err := NewFanOut(generator.New(), nil, m).Run(context.Background(), "tired", testPersonas())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerateOutcome.WithLabelValues("evidence-based", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerateOutcome.WithLabelValues("contextual", "ok")))
}

func TestFanOut_NilProgressIsSafe(t *testing.T) {
	gen := &mockGenerator{generate: func(_ string, p persona.Persona) (opinion.Opinion, error) {
		return opinion.Opinion{}, errors.New("down")
	}}
	assert.NotPanics(t, func() {
		_, _ = NewFanOut(gen, nil, nil).Run(context.Background(), "tired", testPersonas())
	})
}

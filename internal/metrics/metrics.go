// Package metrics exposes Prometheus instrumentation for opinion generation,
// diffing and merging. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// Metrics provides observability for the opinion engine.
type Metrics struct {
	// Generation latency by reasoning style
	GenerateLatency *prometheus.HistogramVec

	// Generation outcomes by style and result ("ok" or an error kind)
	GenerateOutcome *prometheus.CounterVec

	// Diff entries by classification
	DiffTopics *prometheus.CounterVec

	// Merges by preference
	Merges *prometheus.CounterVec

	// Unique topics left out of merges for low confidence
	Dropped prometheus.Counter

	// Sessions started
	Sessions prometheus.Counter
}

// New registers the engine metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		GenerateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dualopinion_generate_duration_seconds",
			Help:    "Duration of opinion generation by reasoning style",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"style"}),

		GenerateOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dualopinion_generate_total",
			Help: "Total opinion generations by reasoning style and outcome",
		}, []string{"style", "outcome"}),

		DiffTopics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dualopinion_diff_topics_total",
			Help: "Total topics classified by diffs, by classification",
		}, []string{"class"}),

		Merges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dualopinion_merges_total",
			Help: "Total merges by preference",
		}, []string{"preference"}),

		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "dualopinion_merge_dropped_topics_total",
			Help: "Total unique topics dropped from merges for low confidence",
		}),

		Sessions: f.NewCounter(prometheus.CounterOpts{
			Name: "dualopinion_sessions_total",
			Help: "Total conversation sessions started",
		}),
	}
}

// ObserveGenerate records one generation. A nil err counts as "ok".
func (m *Metrics) ObserveGenerate(style string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind, ok := opinion.KindOf(err); ok {
			outcome = string(kind)
		}
	}
	m.GenerateLatency.WithLabelValues(style).Observe(d.Seconds())
	m.GenerateOutcome.WithLabelValues(style, outcome).Inc()
}

// ObserveDiff counts a diff's entries per classification.
func (m *Metrics) ObserveDiff(d opinion.Diff) {
	if m == nil {
		return
	}
	m.DiffTopics.WithLabelValues(string(opinion.ClassAgreement)).Add(float64(len(d.Agreements)))
	m.DiffTopics.WithLabelValues(string(opinion.ClassConflict)).Add(float64(len(d.Conflicts)))
	m.DiffTopics.WithLabelValues(string(opinion.ClassUniqueToA)).Add(float64(len(d.UniqueToA)))
	m.DiffTopics.WithLabelValues(string(opinion.ClassUniqueToB)).Add(float64(len(d.UniqueToB)))
}

// ObserveMerge records a finished merge.
func (m *Metrics) ObserveMerge(c opinion.Consolidated) {
	if m == nil {
		return
	}
	m.Merges.WithLabelValues(string(c.Preference)).Inc()
	m.Dropped.Add(float64(len(c.DroppedLowConfidence)))
}

// IncrementSessions records a new session.
func (m *Metrics) IncrementSessions() {
	if m != nil {
		m.Sessions.Inc()
	}
}

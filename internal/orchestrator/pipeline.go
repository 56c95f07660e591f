package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dusk-indust/dualopinion/internal/generator"
	"github.com/dusk-indust/dualopinion/internal/logging"
	"github.com/dusk-indust/dualopinion/internal/metrics"
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/persona"
	"github.com/dusk-indust/dualopinion/internal/reconcile"
)

// Compile-time interface check.
var _ Orchestrator = (*Pipeline)(nil)

// Pipeline implements Orchestrator. It picks the persona pair from a
// registry, delegates parallel generation to a FanOut and reconciliation to
// the reconcile package. A Pipeline holds no per-conversation state and is
// safe for concurrent use.
type Pipeline struct {
	cfg      Config
	registry *persona.Registry
	resolver *reconcile.Resolver
	fanout   *FanOut
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	metrics    *metrics.Metrics
	onProgress func(ProgressEvent)
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records generation, diff and merge metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithProgress receives a ProgressEvent for every persona state change,
// typically ProgressReporter.Emit.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(o *options) { o.onProgress = fn }
}

// NewPipeline creates a Pipeline wired with a FanOut over gen.
func NewPipeline(cfg Config, registry *persona.Registry, gen generator.Generator, opts ...Option) *Pipeline {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{
		cfg:      cfg,
		registry: registry,
		resolver: reconcile.NewResolver(cfg.Merge),
		fanout:   NewFanOut(gen, o.onProgress, o.metrics),
		logger:   logging.OrNop(o.logger),
		metrics:  o.metrics,
	}
}

// Registry returns the persona registry the pipeline selects from.
func (p *Pipeline) Registry() *persona.Registry {
	return p.registry
}

// Compare asks the selected persona pair the same question and diffs their
// opinions. Input validation and persona selection both happen before any
// opinion is generated, so a failing call never produces half a comparison.
func (p *Pipeline) Compare(ctx context.Context, query string) (*Comparison, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, opinion.Errorf(opinion.KindInvalidInput, "query is empty")
	}

	a, b, err := p.registry.SelectPair(p.cfg.PreferredStyles)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("generating opinions",
		zap.String("persona_a", a.ID),
		zap.String("persona_b", b.ID),
	)

	results, err := p.fanout.Run(ctx, query, []persona.Persona{a, b})
	if err != nil {
		return nil, fmt.Errorf("compare: generate: %w", err)
	}

	d, err := reconcile.Diff(results[0].Opinion, results[1].Opinion)
	if err != nil {
		return nil, fmt.Errorf("compare: diff: %w", err)
	}
	p.metrics.ObserveDiff(d)

	// Disagreements are reported, not blocking.
	issues := CheckCoherence(d)
	for _, issue := range issues {
		p.logger.Warn("opinions disagree",
			zap.String("topic", issue.Topic),
			zap.String("kind", string(issue.Kind)),
			zap.String("description", issue.Description),
		)
	}

	p.logger.Info("comparison ready",
		zap.Int("agreements", len(d.Agreements)),
		zap.Int("conflicts", len(d.Conflicts)),
		zap.Int("unique_to_a", len(d.UniqueToA)),
		zap.Int("unique_to_b", len(d.UniqueToB)),
	)

	return &Comparison{
		Query:    query,
		PersonaA: a,
		PersonaB: b,
		A:        results[0].Opinion,
		B:        results[1].Opinion,
		Diff:     d,
		Issues:   issues,
	}, nil
}

// Merge consolidates c according to pref.
func (p *Pipeline) Merge(c *Comparison, pref opinion.Preference) (opinion.Consolidated, error) {
	if c == nil {
		return opinion.Consolidated{}, opinion.Errorf(opinion.KindNotReady, "no opinions to merge yet")
	}
	out, err := p.resolver.Merge(c.A, c.B, c.Diff, pref)
	if err != nil {
		return opinion.Consolidated{}, fmt.Errorf("merge: %w", err)
	}
	p.metrics.ObserveMerge(out)

	for _, r := range out.Resolutions {
		p.logger.Debug("conflict resolved",
			zap.String("topic", r.Topic),
			zap.String("winner", string(r.Winner)),
			zap.String("reason", string(r.Reason)),
		)
	}
	for _, d := range out.DroppedLowConfidence {
		p.logger.Info("topic dropped for low confidence",
			zap.String("topic", d.Finding.Topic),
			zap.String("side", string(d.Side)),
			zap.Float64("confidence", d.Finding.Confidence),
		)
	}
	return out, nil
}

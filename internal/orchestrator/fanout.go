package orchestrator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/dualopinion/internal/generator"
	"github.com/dusk-indust/dualopinion/internal/metrics"
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/persona"
)

// PersonaResult holds the outcome of one persona's generation after fan-out.
type PersonaResult struct {
	Persona persona.Persona
	Opinion opinion.Opinion

	// Err is non-nil if generation failed or was abandoned.
	Err error
}

// FanOut generates one opinion per persona in parallel. If any generation
// fails, the derived context is canceled so generations that have not
// started yet are skipped.
type FanOut struct {
	gen        generator.Generator
	onProgress func(ProgressEvent)
	metrics    *metrics.Metrics
}

// NewFanOut creates a FanOut that generates with gen. onProgress is called
// synchronously from each goroutine; it and m may be nil.
func NewFanOut(gen generator.Generator, onProgress func(ProgressEvent), m *metrics.Metrics) *FanOut {
	return &FanOut{
		gen:        gen,
		onProgress: onProgress,
		metrics:    m,
	}
}

// Run generates an opinion for every persona, emitting progress events for
// each. Results are returned in persona order regardless of whether an error
// occurred. The returned error is the first non-nil error from the errgroup.
func (f *FanOut) Run(ctx context.Context, query string, personas []persona.Persona) ([]PersonaResult, error) {
	results := make([]PersonaResult, len(personas))
	g, gctx := errgroup.WithContext(ctx)

	for i, p := range personas {
		f.emit(ProgressEvent{
			Persona: p.ID,
			Style:   p.ReasoningStyle,
			Status:  ProgressPending,
		})

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = PersonaResult{Persona: p, Err: err}
				f.emit(ProgressEvent{Persona: p.ID, Style: p.ReasoningStyle, Status: ProgressFailed, Message: err.Error()})
				return err
			}

			f.emit(ProgressEvent{
				Persona: p.ID,
				Style:   p.ReasoningStyle,
				Status:  ProgressWorking,
			})

			start := time.Now()
			op, err := f.gen.Generate(query, p)
			f.metrics.ObserveGenerate(string(p.ReasoningStyle), time.Since(start), err)
			if err != nil {
				results[i] = PersonaResult{Persona: p, Err: err}
				f.emit(ProgressEvent{
					Persona: p.ID,
					Style:   p.ReasoningStyle,
					Status:  ProgressFailed,
					Message: err.Error(),
				})
				return err // cancels the context for the other goroutines
			}

			results[i] = PersonaResult{Persona: p, Opinion: op}
			f.emit(ProgressEvent{
				Persona: p.ID,
				Style:   p.ReasoningStyle,
				Status:  ProgressComplete,
			})
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// emit sends a progress event if a callback is registered.
func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}

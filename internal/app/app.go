// Package app assembles the engine from a project configuration. The CLI,
// the MCP server and the HTTP API all run on an Engine built here.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dusk-indust/dualopinion/internal/config"
	"github.com/dusk-indust/dualopinion/internal/generator"
	"github.com/dusk-indust/dualopinion/internal/httpapi"
	"github.com/dusk-indust/dualopinion/internal/logging"
	"github.com/dusk-indust/dualopinion/internal/mcptools"
	"github.com/dusk-indust/dualopinion/internal/metrics"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/persona"
)

// Options are the process-level collaborators of an Engine.
type Options struct {
	Logger *zap.Logger
	// Registry receives the engine's metrics. Nil uses a fresh registry so
	// that several engines can live in one process.
	Registry *prometheus.Registry
	// Progress receives per-persona progress events of every comparison.
	Progress func(orchestrator.ProgressEvent)
}

// Engine is a fully wired dual-opinion engine.
type Engine struct {
	Config    *config.ProjectConfig
	Registry  *persona.Registry
	Generator *generator.Cache
	Pipeline  *orchestrator.Pipeline
	Sessions  *orchestrator.SessionStore
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger

	store persona.Store
}

// Build loads personas and wires the generator, pipeline and session store.
// The caller must Close the engine.
func Build(ctx context.Context, cfg *config.ProjectConfig, opts Options) (*Engine, error) {
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.OrNop(opts.Logger)
	promReg := opts.Registry
	if promReg == nil {
		promReg = prometheus.NewRegistry()
	}

	store, err := openPersonaStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registry, err := persona.LoadRegistry(ctx, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load personas: %w", err)
	}
	logger.Debug("personas loaded",
		zap.Int("total", len(registry.All())),
		zap.Int("active", len(registry.Active())),
	)

	m := metrics.New(promReg)
	gen := generator.NewCache(generator.New(), cfg.CacheSize)
	orchCfg := cfg.Orchestrator()

	pipelineOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithMetrics(m),
	}
	if opts.Progress != nil {
		pipelineOpts = append(pipelineOpts, orchestrator.WithProgress(opts.Progress))
	}
	pipeline := orchestrator.NewPipeline(orchCfg, registry, gen, pipelineOpts...)

	return &Engine{
		Config:    cfg,
		Registry:  registry,
		Generator: gen,
		Pipeline:  pipeline,
		Sessions:  orchestrator.NewSessionStore(pipeline, orchCfg.MaxSessions, logger, m.IncrementSessions),
		Metrics:   m,
		Gatherer:  promReg,
		Logger:    logger,
		store:     store,
	}, nil
}

// openPersonaStore returns the Kuzu store when a database path is set and an
// in-memory store otherwise. Both are seeded from the personas file or the
// built-in defaults; a Kuzu database is only seeded while empty.
func openPersonaStore(ctx context.Context, cfg *config.ProjectConfig) (persona.Store, error) {
	seed := persona.Defaults()
	if cfg.PersonasFile != "" {
		var err error
		if seed, err = persona.LoadFile(cfg.PersonasFile); err != nil {
			return nil, err
		}
	}

	if cfg.PersonaDB != "" {
		store, err := persona.OpenStore(ctx, cfg.PersonaDB, seed)
		if err != nil {
			return nil, fmt.Errorf("open persona database: %w", err)
		}
		return store, nil
	}

	store := persona.NewMemStore()
	if err := persona.Seed(ctx, store, seed); err != nil {
		return nil, fmt.Errorf("seed personas: %w", err)
	}
	return store, nil
}

// MCPServer returns an MCP server exposing the engine's tools.
func (e *Engine) MCPServer() *mcp.Server {
	svc := mcptools.NewOpinionService(e.Pipeline, e.Generator, e.Sessions, e.Config.Orchestrator().Merge)
	return mcptools.NewOpinionMCPServer(svc)
}

// HTTPHandler returns the JSON API router including /metrics.
func (e *Engine) HTTPHandler() http.Handler {
	h := httpapi.New(e.Pipeline, e.Generator, e.Sessions, e.Config.Orchestrator().Merge, e.Logger)
	return httpapi.NewRouter(h, e.Gatherer)
}

// Close releases the persona store.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Package httpapi exposes the dual-opinion engine as a JSON HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dusk-indust/dualopinion/internal/generator"
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/reconcile"
	"github.com/dusk-indust/dualopinion/internal/report"
)

// Handler wires the engine's operations to HTTP endpoints.
type Handler struct {
	pipeline *orchestrator.Pipeline
	gen      generator.Generator
	sessions *orchestrator.SessionStore
	resolver *reconcile.Resolver
	logger   *zap.Logger
	now      func() time.Time
}

// New constructs a Handler. gen should be the generator the pipeline was
// built with.
func New(pipeline *orchestrator.Pipeline, gen generator.Generator, sessions *orchestrator.SessionStore, cfg reconcile.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		pipeline: pipeline,
		gen:      gen,
		sessions: sessions,
		resolver: reconcile.NewResolver(cfg),
		logger:   logger,
		now:      time.Now,
	}
}

// Register mounts the API endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/personas", h.HandleListPersonas)
		r.Post("/opinions", h.HandleGenerate)
		r.Post("/diff", h.HandleDiff)
		r.Post("/merge", h.HandleMerge)

		r.Post("/sessions", h.HandleStartSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/ask", h.HandleAsk)
			r.Post("/merge", h.HandleSessionMerge)
			r.Get("/report", h.HandleReport)
		})
	})
}

// NewRouter builds the full router: API endpoints, a health check and the
// Prometheus endpoint for gatherer. A nil gatherer uses the default registry.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) chi.Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	h.Register(r)
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// HandleListPersonas handles GET /v1/personas. ?active=true limits the list
// to personas eligible for opinions.
func (h *Handler) HandleListPersonas(w http.ResponseWriter, r *http.Request) {
	reg := h.pipeline.Registry()
	personas := reg.All()
	if r.URL.Query().Get("active") == "true" {
		personas = reg.Active()
	}
	writeJSON(w, http.StatusOK, PersonasResponse{Personas: personas})
}

// HandleGenerate handles POST /v1/opinions.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decode[GenerateRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.pipeline.Registry().Get(req.PersonaID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !p.Active {
		writeError(w, opinion.Errorf(opinion.KindInvalidInput, "persona %q is not active", p.ID))
		return
	}
	op, err := h.gen.Generate(req.Query, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

// HandleDiff handles POST /v1/diff.
func (h *Handler) HandleDiff(w http.ResponseWriter, r *http.Request) {
	req, err := decode[DiffRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := reconcile.Diff(req.A, req.B)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleMerge handles POST /v1/merge. The diff is computed when omitted.
func (h *Handler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	req, err := decode[MergeRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	pref, err := opinion.ParsePreference(req.Preference)
	if err != nil {
		writeError(w, err)
		return
	}
	var d opinion.Diff
	if req.Diff != nil {
		d = *req.Diff
	} else if d, err = reconcile.Diff(req.A, req.B); err != nil {
		writeError(w, err)
		return
	}
	merged, err := h.resolver.Merge(req.A, req.B, d, pref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// HandleStartSession handles POST /v1/sessions.
func (h *Handler) HandleStartSession(w http.ResponseWriter, _ *http.Request) {
	s := h.sessions.Start()
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: s.ID(), State: s.State()})
}

// HandleAsk handles POST /v1/sessions/{id}/ask.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := decode[AskRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.Ask(r.Context(), req.Query)
	if err != nil {
		h.logger.Info("ask failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("session", s.ID()),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleSessionMerge handles POST /v1/sessions/{id}/merge.
func (h *Handler) HandleSessionMerge(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := decode[PreferenceRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	pref, err := opinion.ParsePreference(req.Preference)
	if err != nil {
		writeError(w, err)
		return
	}
	merged, err := s.Merge(pref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// HandleReport handles GET /v1/sessions/{id}/report. ?format=markdown
// returns the rendered report; the default is the JSON export.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.Comparison()
	if err != nil {
		writeError(w, err)
		return
	}
	var merged *opinion.Consolidated
	if m, ok := s.Consolidated(); ok {
		merged = &m
	}

	if r.URL.Query().Get("format") == "markdown" {
		body := report.RenderComparison(c)
		if merged != nil {
			body += "\n" + report.Render(*merged)
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
		return
	}

	exp, err := report.Export(s.ID(), c, merged, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

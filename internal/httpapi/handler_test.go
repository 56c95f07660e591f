package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/dualopinion/internal/generator"
	"github.com/dusk-indust/dualopinion/internal/metrics"
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/persona"
	"github.com/dusk-indust/dualopinion/internal/reconcile"
	"github.com/dusk-indust/dualopinion/internal/report"
)

const tiredQuery = "I feel tired every afternoon"

func newTestRouter(t *testing.T, personas []persona.Persona) http.Handler {
	t.Helper()
	reg, err := persona.NewRegistry(personas)
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	gen := generator.New()
	pipeline := orchestrator.NewPipeline(orchestrator.DefaultConfig(), reg, gen, orchestrator.WithMetrics(m))
	sessions := orchestrator.NewSessionStore(pipeline, 8, nil, m.IncrementSessions)

	h := New(pipeline, gen, sessions, reconcile.DefaultConfig(), nil)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return NewRouter(h, promReg)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestListPersonas(t *testing.T) {
	personas := append(persona.Defaults(), persona.Persona{
		ID: "retired", ReasoningStyle: persona.StyleContextual, SortOrder: 99,
	})
	router := newTestRouter(t, personas)

	rec := do(t, router, http.MethodGet, "/v1/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[PersonasResponse](t, rec).Personas, 3)

	rec = do(t, router, http.MethodGet, "/v1/personas?active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decodeBody[PersonasResponse](t, rec).Personas
	require.Len(t, active, 2)
	assert.Equal(t, "evidence-clinician", active[0].ID)
}

func TestGenerate(t *testing.T) {
	router := newTestRouter(t, persona.Defaults())

	rec := do(t, router, http.MethodPost, "/v1/opinions", GenerateRequest{Query: tiredQuery, PersonaID: "context-coach"})
	require.Equal(t, http.StatusOK, rec.Code)
	op := decodeBody[opinion.Opinion](t, rec)
	assert.Equal(t, "context-coach", op.PersonaID)
	assert.Equal(t, "daily routine", op.Findings[0].Topic)
}

func TestGenerate_Errors(t *testing.T) {
	router := newTestRouter(t, persona.Defaults())

	tests := []struct {
		name     string
		body     any
		raw      string
		status   int
		wantKind string
	}{
		{name: "blank query", body: GenerateRequest{Query: " ", PersonaID: "context-coach"}, status: http.StatusBadRequest, wantKind: "invalid_input"},
		{name: "unknown persona", body: GenerateRequest{Query: tiredQuery, PersonaID: "ghost"}, status: http.StatusNotFound, wantKind: "not_found"},
		{name: "unknown field", raw: `{"query":"x","personaId":"context-coach","extra":1}`, status: http.StatusBadRequest, wantKind: "invalid_input"},
		{name: "empty body", raw: ``, status: http.StatusBadRequest, wantKind: "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.body != nil {
				rec = do(t, router, http.MethodPost, "/v1/opinions", tt.body)
			} else {
				req := httptest.NewRequest(http.MethodPost, "/v1/opinions", strings.NewReader(tt.raw))
				rec = httptest.NewRecorder()
				router.ServeHTTP(rec, req)
			}
			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody[errorResponse](t, rec)
			assert.Equal(t, tt.wantKind, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestDiffAndMerge(t *testing.T) {
	router := newTestRouter(t, persona.Defaults())

	a := decodeBody[opinion.Opinion](t, do(t, router, http.MethodPost, "/v1/opinions", GenerateRequest{Query: tiredQuery, PersonaID: "evidence-clinician"}))
	b := decodeBody[opinion.Opinion](t, do(t, router, http.MethodPost, "/v1/opinions", GenerateRequest{Query: tiredQuery, PersonaID: "context-coach"}))

	rec := do(t, router, http.MethodPost, "/v1/diff", DiffRequest{A: a, B: b})
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeBody[opinion.Diff](t, rec)
	want, err := reconcile.Diff(a, b)
	require.NoError(t, err)
	assert.Equal(t, want.Topics(), d.Topics())

	rec = do(t, router, http.MethodPost, "/v1/merge", MergeRequest{A: a, B: b, Preference: "merge"})
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decodeBody[opinion.Consolidated](t, rec)
	assert.Equal(t, opinion.PreferMerge, merged.Preference)
	assert.Len(t, merged.Provenance, len(merged.Recommendations))
	assert.Len(t, merged.DroppedLowConfidence, 2)

	rec = do(t, router, http.MethodPost, "/v1/merge", MergeRequest{A: a, B: b, Diff: &d, Preference: "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, a.Recommendations, decodeBody[opinion.Consolidated](t, rec).Recommendations)
}

func TestMerge_Errors(t *testing.T) {
	router := newTestRouter(t, persona.Defaults())
	a := decodeBody[opinion.Opinion](t, do(t, router, http.MethodPost, "/v1/opinions", GenerateRequest{Query: tiredQuery, PersonaID: "evidence-clinician"}))

	rec := do(t, router, http.MethodPost, "/v1/merge", MergeRequest{A: a, B: a, Preference: "neither"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	broken := a.Clone()
	broken.Findings[0].Confidence = 2
	rec = do(t, router, http.MethodPost, "/v1/merge", MergeRequest{A: a, B: broken, Preference: "merge"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "malformed_opinion", decodeBody[errorResponse](t, rec).Error)
}

func TestSessionFlow(t *testing.T) {
	router := newTestRouter(t, persona.Defaults())

	rec := do(t, router, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decodeBody[SessionResponse](t, rec)
	require.NotEmpty(t, sess.SessionID)
	assert.Equal(t, orchestrator.StateAwaitingOpinions, sess.State)
	base := "/v1/sessions/" + sess.SessionID

	rec = do(t, router, http.MethodPost, base+"/merge", PreferenceRequest{Preference: "merge"})
	assert.Equal(t, http.StatusConflict, rec.Code, "merge before ask")
	rec = do(t, router, http.MethodGet, base+"/report", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "report before ask")

	rec = do(t, router, http.MethodPost, base+"/ask", AskRequest{Query: tiredQuery})
	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeBody[orchestrator.Comparison](t, rec)
	assert.Equal(t, "evidence-clinician", c.A.PersonaID)
	assert.NotEmpty(t, c.Diff.Conflicts)

	rec = do(t, router, http.MethodPost, base+"/merge", PreferenceRequest{Preference: "merge"})
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decodeBody[opinion.Consolidated](t, rec)
	assert.Equal(t, "energy", merged.Recommendations[0].Topic)

	rec = do(t, router, http.MethodGet, base+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exp := decodeBody[report.SessionExport](t, rec)
	assert.Equal(t, sess.SessionID, exp.SessionID)
	assert.Equal(t, "2026-03-01T12:00:00Z", exp.ExportedAt)
	require.NotNil(t, exp.Consolidated)
	assert.Len(t, exp.Goals, len(merged.Recommendations))

	rec = do(t, router, http.MethodGet, base+"/report?format=markdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "## Opinion A: Dr. Evidence")
	assert.Contains(t, rec.Body.String(), "# Consolidated opinion")
}

func TestSession_NotFoundAndInsufficient(t *testing.T) {
	router := newTestRouter(t, persona.Defaults()[:1])

	rec := do(t, router, http.MethodPost, "/v1/sessions/missing/ask", AskRequest{Query: tiredQuery})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	sess := decodeBody[SessionResponse](t, do(t, router, http.MethodPost, "/v1/sessions", nil))
	rec = do(t, router, http.MethodPost, "/v1/sessions/"+sess.SessionID+"/ask", AskRequest{Query: tiredQuery})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_personas", decodeBody[errorResponse](t, rec).Error)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, persona.Defaults())

	rec := do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, router, http.MethodPost, "/v1/sessions", nil)
	rec = do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dualopinion_sessions_total 1")
}

func TestWriteError_Untyped(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "internal_error", body.Error)
	assert.Empty(t, body.ErrorDescription)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(opinion.KindInvalidInput))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(opinion.KindMalformedOpinion))
	assert.Equal(t, http.StatusConflict, statusFor(opinion.KindInsufficientPersonas))
	assert.Equal(t, http.StatusConflict, statusFor(opinion.KindNotReady))
	assert.Equal(t, http.StatusNotFound, statusFor(opinion.KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(opinion.Kind("other")))
}

package httpapi

import (
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/persona"
)

// GenerateRequest is the body of POST /v1/opinions.
type GenerateRequest struct {
	Query     string `json:"query"`
	PersonaID string `json:"personaId"`
}

// DiffRequest is the body of POST /v1/diff.
type DiffRequest struct {
	A opinion.Opinion `json:"a"`
	B opinion.Opinion `json:"b"`
}

// MergeRequest is the body of POST /v1/merge.
type MergeRequest struct {
	A          opinion.Opinion `json:"a"`
	B          opinion.Opinion `json:"b"`
	Diff       *opinion.Diff   `json:"diff,omitempty"`
	Preference string          `json:"preference"`
}

// AskRequest is the body of POST /v1/sessions/{id}/ask.
type AskRequest struct {
	Query string `json:"query"`
}

// PreferenceRequest is the body of POST /v1/sessions/{id}/merge.
type PreferenceRequest struct {
	Preference string `json:"preference"`
}

// PersonasResponse is the reply of GET /v1/personas.
type PersonasResponse struct {
	Personas []persona.Persona `json:"personas"`
}

// SessionResponse is the reply of POST /v1/sessions.
type SessionResponse struct {
	SessionID string             `json:"sessionId"`
	State     orchestrator.State `json:"state"`
}

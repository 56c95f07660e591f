package mcptools

import (
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/persona"
	"github.com/dusk-indust/dualopinion/internal/report"
)

// --- MCP Tool Input/Output Types ---
// The MCP Go SDK auto-generates JSON schemas from these structs. Fields
// without omitempty are required.

// ListPersonasInput is the input for the list_personas MCP tool.
type ListPersonasInput struct {
	ActiveOnly bool `json:"activeOnly,omitempty" jsonschema:"only list personas eligible for opinions"`
}

// ListPersonasOutput is the result of the list_personas MCP tool.
type ListPersonasOutput struct {
	Personas []persona.Persona `json:"personas"`
}

// GenerateOpinionInput is the input for the generate_opinion MCP tool.
type GenerateOpinionInput struct {
	Query     string `json:"query" jsonschema:"the user's question"`
	PersonaID string `json:"personaId" jsonschema:"id of an active persona (see list_personas)"`
}

// GenerateOpinionOutput is the result of the generate_opinion MCP tool.
type GenerateOpinionOutput struct {
	Opinion opinion.Opinion `json:"opinion"`
}

// DualOpinionInput is the input for the dual_opinion MCP tool.
type DualOpinionInput struct {
	Query     string `json:"query" jsonschema:"the user's question"`
	SessionID string `json:"sessionId,omitempty" jsonschema:"continue an existing session; a new one is started when empty"`
}

// DualOpinionOutput is the result of the dual_opinion MCP tool.
type DualOpinionOutput struct {
	SessionID  string                   `json:"sessionId"`
	Comparison *orchestrator.Comparison `json:"comparison"`
	Report     string                   `json:"report"`
}

// DiffOpinionsInput is the input for the diff_opinions MCP tool.
type DiffOpinionsInput struct {
	A opinion.Opinion `json:"a" jsonschema:"opinion A as returned by generate_opinion"`
	B opinion.Opinion `json:"b" jsonschema:"opinion B as returned by generate_opinion"`
}

// DiffOpinionsOutput is the result of the diff_opinions MCP tool.
type DiffOpinionsOutput struct {
	Diff opinion.Diff `json:"diff"`
}

// MergeOpinionsInput is the input for the merge_opinions MCP tool. Either
// SessionID or both opinions must be given.
type MergeOpinionsInput struct {
	Preference string           `json:"preference" jsonschema:"A, B or merge"`
	SessionID  string           `json:"sessionId,omitempty" jsonschema:"merge the comparison of a dual_opinion session"`
	A          *opinion.Opinion `json:"a,omitempty" jsonschema:"opinion A when no session is given"`
	B          *opinion.Opinion `json:"b,omitempty" jsonschema:"opinion B when no session is given"`
	Diff       *opinion.Diff    `json:"diff,omitempty" jsonschema:"diff of A and B; computed when omitted"`
}

// MergeOpinionsOutput is the result of the merge_opinions MCP tool.
type MergeOpinionsOutput struct {
	Consolidated ConsolidatedView `json:"consolidated"`
	Goals        []report.Goal    `json:"goals"`
	Report       string           `json:"report"`
}

// ConsolidatedView flattens opinion.Consolidated for schema generation.
type ConsolidatedView struct {
	Opinion              opinion.Opinion      `json:"opinion"`
	Preference           opinion.Preference   `json:"preference"`
	Provenance           []opinion.Source     `json:"provenance"`
	Resolutions          []opinion.Resolution `json:"resolutions,omitempty"`
	DroppedLowConfidence []opinion.Dropped    `json:"droppedLowConfidence,omitempty"`
}

func viewOf(c opinion.Consolidated) ConsolidatedView {
	return ConsolidatedView{
		Opinion:              c.Opinion,
		Preference:           c.Preference,
		Provenance:           c.Provenance,
		Resolutions:          c.Resolutions,
		DroppedLowConfidence: c.DroppedLowConfidence,
	}
}

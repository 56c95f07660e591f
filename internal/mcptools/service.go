package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/dualopinion/internal/generator"
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/reconcile"
	"github.com/dusk-indust/dualopinion/internal/report"
)

// OpinionService handles MCP tool calls. Stateless tools go straight to the
// generator and the reconcile package; dual_opinion and session merges go
// through the session store.
type OpinionService struct {
	pipeline *orchestrator.Pipeline
	gen      generator.Generator
	sessions *orchestrator.SessionStore
	resolver *reconcile.Resolver
}

// NewOpinionService creates an OpinionService. gen is used for single
// opinions and should be the generator the pipeline was built with.
func NewOpinionService(pipeline *orchestrator.Pipeline, gen generator.Generator, sessions *orchestrator.SessionStore, cfg reconcile.Config) *OpinionService {
	return &OpinionService{
		pipeline: pipeline,
		gen:      gen,
		sessions: sessions,
		resolver: reconcile.NewResolver(cfg),
	}
}

// toolError keeps the typed error for errors.Is while leading with a
// sentence a user can act on.
func toolError(err error) error {
	return fmt.Errorf("%s (%w)", opinion.UserMessage(err), err)
}

// ListPersonas returns the registry's personas in display order.
func (s *OpinionService) ListPersonas(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListPersonasInput,
) (*mcp.CallToolResult, ListPersonasOutput, error) {
	reg := s.pipeline.Registry()
	personas := reg.All()
	if input.ActiveOnly {
		personas = reg.Active()
	}
	return nil, ListPersonasOutput{Personas: personas}, nil
}

// GenerateOpinion produces one persona's opinion.
func (s *OpinionService) GenerateOpinion(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GenerateOpinionInput,
) (*mcp.CallToolResult, GenerateOpinionOutput, error) {
	p, err := s.pipeline.Registry().Get(input.PersonaID)
	if err != nil {
		return nil, GenerateOpinionOutput{}, toolError(err)
	}
	if !p.Active {
		return nil, GenerateOpinionOutput{}, toolError(
			opinion.Errorf(opinion.KindInvalidInput, "persona %q is not active", p.ID))
	}
	op, err := s.gen.Generate(input.Query, p)
	if err != nil {
		return nil, GenerateOpinionOutput{}, toolError(err)
	}
	return nil, GenerateOpinionOutput{Opinion: op}, nil
}

// DualOpinion asks the persona pair and returns both opinions with their diff.
func (s *OpinionService) DualOpinion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DualOpinionInput,
) (*mcp.CallToolResult, DualOpinionOutput, error) {
	var sess *orchestrator.Session
	if input.SessionID != "" {
		var err error
		if sess, err = s.sessions.Get(input.SessionID); err != nil {
			return nil, DualOpinionOutput{}, toolError(err)
		}
	} else {
		sess = s.sessions.Start()
	}

	c, err := sess.Ask(ctx, input.Query)
	if err != nil {
		return nil, DualOpinionOutput{SessionID: sess.ID()}, toolError(err)
	}
	return nil, DualOpinionOutput{
		SessionID:  sess.ID(),
		Comparison: c,
		Report:     report.RenderComparison(c),
	}, nil
}

// DiffOpinions classifies the topics of two opinions.
func (s *OpinionService) DiffOpinions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DiffOpinionsInput,
) (*mcp.CallToolResult, DiffOpinionsOutput, error) {
	d, err := reconcile.Diff(input.A, input.B)
	if err != nil {
		return nil, DiffOpinionsOutput{}, toolError(err)
	}
	return nil, DiffOpinionsOutput{Diff: d}, nil
}

// MergeOpinions consolidates a session's comparison, or two explicit
// opinions, according to the user's preference.
func (s *OpinionService) MergeOpinions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input MergeOpinionsInput,
) (*mcp.CallToolResult, MergeOpinionsOutput, error) {
	pref, err := opinion.ParsePreference(input.Preference)
	if err != nil {
		return nil, MergeOpinionsOutput{}, toolError(err)
	}

	var merged opinion.Consolidated
	switch {
	case input.SessionID != "":
		sess, err := s.sessions.Get(input.SessionID)
		if err != nil {
			return nil, MergeOpinionsOutput{}, toolError(err)
		}
		if merged, err = sess.Merge(pref); err != nil {
			return nil, MergeOpinionsOutput{}, toolError(err)
		}
	case input.A != nil && input.B != nil:
		var d opinion.Diff
		if input.Diff != nil {
			d = *input.Diff
		} else if d, err = reconcile.Diff(*input.A, *input.B); err != nil {
			return nil, MergeOpinionsOutput{}, toolError(err)
		}
		if merged, err = s.resolver.Merge(*input.A, *input.B, d, pref); err != nil {
			return nil, MergeOpinionsOutput{}, toolError(err)
		}
	default:
		return nil, MergeOpinionsOutput{}, toolError(
			opinion.Errorf(opinion.KindInvalidInput, "give a sessionId or both opinions a and b"))
	}

	return nil, MergeOpinionsOutput{
		Consolidated: viewOf(merged),
		Goals:        report.Goals(merged),
		Report:       report.Render(merged),
	}, nil
}

package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewOpinionMCPServer creates an MCP server with the five opinion tools
// registered.
func NewOpinionMCPServer(svc *OpinionService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dualopinion",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_personas",
		Description: "List the personas that can give opinions, in display order, with their reasoning style and whether they are active.",
	}, svc.ListPersonas)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_opinion",
		Description: "Generate one persona's structured opinion (findings and prioritized recommendations) for a question. Deterministic for the same question and persona.",
	}, svc.GenerateOpinion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dual_opinion",
		Description: "Ask two personas with different reasoning styles the same question. Returns both opinions, their diff (agreements, conflicts, unique topics) and a markdown comparison. The returned sessionId can be passed to merge_opinions.",
	}, svc.DualOpinion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "diff_opinions",
		Description: "Classify every topic of two opinions as agreement, conflict, unique to A or unique to B. Symmetric: swapping the opinions swaps the sides.",
	}, svc.DiffOpinions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_opinions",
		Description: "Consolidate two opinions by the user's preference: A, B or merge. Merge keeps agreements, resolves conflicts by priority then confidence, and drops low-confidence unique topics, listing them. Returns provenance, goals and a markdown report.",
	}, svc.MergeOpinions)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts an HTTP server exposing the opinion MCP tools over the
// streamable HTTP transport.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

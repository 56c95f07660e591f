package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/dualopinion/internal/app"
	"github.com/dusk-indust/dualopinion/internal/mcptools"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine as a server",
	}
	cmd.AddCommand(newServeMCPCommand(c))
	cmd.AddCommand(newServeHTTPCommand(c))
	return cmd
}

func newServeMCPCommand(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the opinion tools over MCP (stdio, or streamable HTTP with --http)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := app.Build(ctx, c.cfg, app.Options{Logger: c.logger})
			if err != nil {
				return err
			}
			defer e.Close()

			server := e.MCPServer()
			if addr == "" {
				c.logger.Info("serving MCP on stdio")
				return mcptools.RunStdio(ctx, server)
			}
			c.logger.Info("serving MCP over HTTP", zap.String("addr", addr))
			return mcptools.RunHTTP(ctx, server, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "listen address for the streamable HTTP transport")
	return cmd
}

func newServeHTTPCommand(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the JSON API and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := app.Build(ctx, c.cfg, app.Options{Logger: c.logger})
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = c.cfg.Addr()
			}
			c.logger.Info("serving HTTP API", zap.String("addr", addr))
			return serveHTTP(ctx, addr, e.HTTPHandler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	return cmd
}

// serveHTTP blocks until ctx is cancelled, then drains in-flight requests.
func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

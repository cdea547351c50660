package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/vinodismyname/xlquery/internal/registry"
	"github.com/vinodismyname/xlquery/internal/runtime"
	"github.com/vinodismyname/xlquery/pkg/version"
)

var serveStdio bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workbook query tools over MCP",
	Long: `Serve the five workbook query tools to an MCP client.

Each tool call opens the workbook, answers the query and closes it again.
Failures are reported in-band ("Error: ...", -1 or []) so the agent's turn
continues; the error code is logged to stderr.

Examples:
  xlquery serve --stdio
  xlquery serve --stdio --allowed-dirs /data/reports`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "Run server over stdio transport")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if !serveStdio {
		return fmt.Errorf("no transport selected; use --stdio to run over stdio")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := a.logger.WithContext(cmd.Context())

	mw := runtime.NewMiddleware(a.ctrl)
	srv := server.NewMCPServer(
		"xlquery",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(a.hooks.ServerHooks()),
		server.WithToolHandlerMiddleware(mw.ToolMiddleware),
	)
	registry.RegisterMCP(srv, a.tools)

	limits := a.ctrl.LimitsSnapshot()
	a.logger.Info().
		Ctx(ctx).
		Str("version", version.Version()).
		Int("tools", len(a.tools.Descriptors())).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_open_workbooks", limits.MaxOpenWorkbooks).
		Dur("operation_timeout", limits.OperationTimeout).
		Int("model_context_size", a.tools.ModelContextSize(a.settings.LLM.Model)).
		Msg("server bootstrap configured")

	a.hooks.OnServerStart("stdio")
	defer a.hooks.OnServerStop()
	if err := server.ServeStdio(srv); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

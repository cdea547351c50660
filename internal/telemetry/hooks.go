package telemetry

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// Hooks logs server lifecycle and tool-call outcomes. Tool failures are
// turned into sentinel results before reaching the agent, so this is where
// their error code stays visible to operators.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// OnServerStart is called when the server begins accepting requests.
func (h *Hooks) OnServerStart(transport string) {
	h.logger.Info().Str("transport", transport).Msg("MCP server starting")
}

// OnServerStop is called during server shutdown.
func (h *Hooks) OnServerStop() {
	h.logger.Info().Msg("MCP server stopping")
}

// OnToolCall logs a tool invocation and its outcome.
func (h *Hooks) OnToolCall(ctx context.Context, tool string, duration time.Duration, err error) {
	if h == nil {
		return
	}
	if err != nil {
		h.logger.Warn().
			Ctx(ctx).
			Str("tool", tool).
			Dur("duration", duration).
			Str("code", string(mcperr.CodeOf(err))).
			Err(err).
			Msg("tool call failed")
		return
	}
	h.logger.Debug().Ctx(ctx).Str("tool", tool).Dur("duration", duration).Msg("tool call completed")
}

// ServerHooks builds mcp-go server hooks for session and request telemetry.
func (h *Hooks) ServerHooks() *server.Hooks {
	logger := h.logger
	hooks := &server.Hooks{}

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session registered")
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session unregistered")
	})

	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		logger.Info().Int("tools", len(res.Tools)).Msg("list_tools served")
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		evt := logger.Info().Str("tool", req.Params.Name)
		if res != nil && res.IsError {
			evt = logger.Warn().Str("tool", req.Params.Name).Bool("is_error", true)
		}
		evt.Msg("tool call served")
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}

package registry

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tmc/langchaingo/llms"

	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// LLMTools returns the full tool set as function definitions for a chat
// completion call, in Descriptors order.
func (r *Registry) LLMTools() []llms.Tool {
	out := make([]llms.Tool, 0, len(r.descs))
	for _, d := range r.descs {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  jsonSchema(d.Params),
			},
		})
	}
	return out
}

func jsonSchema(params []Param) map[string]any {
	props := make(map[string]any, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		props[p.Name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// RegisterMCP exposes every tool on s. Handlers render the tool's result,
// sentinels included, as text content.
func RegisterMCP(s *server.MCPServer, r *Registry) {
	for _, d := range r.descs {
		s.AddTool(mcpTool(d), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := r.Invoke(ctx, req.Params.Name, req.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(mcperr.Describe(err)), nil
			}
			text, err := Render(res)
			if err != nil {
				return mcp.NewToolResultError(mcperr.Describe(err)), nil
			}
			return mcp.NewToolResultText(text), nil
		})
	}
}

func mcpTool(d Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	for _, p := range d.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case TypeString:
			opts = append(opts, mcp.WithString(p.Name, props...))
		case TypeInteger:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case TypeBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		}
	}
	return mcp.NewTool(d.Name, opts...)
}

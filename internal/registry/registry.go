package registry

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/vinodismyname/xlquery/internal/query"
	"github.com/vinodismyname/xlquery/internal/telemetry"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// ParamType restricts tool arguments to primitives.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Param describes one tool argument for agent consumption.
type Param struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
	Type        ParamType `json:"type"`
}

// Descriptor names and documents a tool.
type Descriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
}

type entry struct {
	desc Descriptor
	call invoker
}

// Registry is the static tool table, built once by New and never mutated
// afterwards, so it is safe for concurrent use without locking.
type Registry struct {
	tools map[string]entry
	descs []Descriptor
	hooks *telemetry.Hooks
}

// New builds the registry over engine. hooks may be nil.
func New(engine *query.Engine, hooks *telemetry.Hooks) *Registry {
	r := &Registry{tools: map[string]entry{}, hooks: hooks}
	for _, e := range toolTable(engine) {
		r.tools[e.desc.Name] = e
		r.descs = append(r.descs, e.desc)
	}
	sort.Slice(r.descs, func(i, j int) bool { return r.descs[i].Name < r.descs[j].Name })
	return r
}

// Descriptors returns every tool, sorted by name. The slice is a copy.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descs))
	copy(out, r.descs)
	return out
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	e, ok := r.tools[name]
	return e.desc, ok
}

// Invoke runs the named tool. Tool failures never surface as errors: the
// result is the tool's sentinel ("Error: ..." text, -1, or an empty list)
// and the failure is logged with its code. The only error is an unknown
// tool name.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	e, ok := r.tools[name]
	if !ok {
		err := mcperr.Newf(mcperr.UnknownTool, "unknown tool %q", name)
		r.hooks.OnToolCall(ctx, name, 0, err)
		return nil, err
	}
	start := time.Now()
	res, err := e.call(ctx, Args(args))
	r.hooks.OnToolCall(ctx, name, time.Since(start), err)
	return res, nil
}

// Render encodes a tool result for a text channel: strings pass through,
// anything else is JSON.
func Render(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", mcperr.Wrap(mcperr.Internal, err, "encode tool result")
	}
	return string(b), nil
}

// ModelContextSize exposes the configured model's context window when available.
func (r *Registry) ModelContextSize(modelName string) int {
	return llms.GetModelContextSize(modelName)
}

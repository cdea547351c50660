// Package chat bridges an uploaded workbook and a free-text instruction to a
// tool-calling chat model. The upload is written under a fixed directory and
// its path is appended to the instruction so the model can pass it to tools.
//
// Uploads are not locked: a query running while the same filename is being
// re-uploaded may read a partial or stale file.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"

	"github.com/vinodismyname/xlquery/internal/registry"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// ErrTooManyToolRounds is returned when the model keeps requesting tools
// past the configured round limit.
var ErrTooManyToolRounds = errors.New("model exceeded the tool round limit")

// Bridge persists uploads and runs the tool-calling conversation.
type Bridge struct {
	Dir           string
	Model         llms.Model
	Tools         *registry.Registry
	MaxToolRounds int

	logger zerolog.Logger
}

// NewBridge constructs a Bridge.
func NewBridge(dir string, model llms.Model, tools *registry.Registry, maxToolRounds int, logger zerolog.Logger) *Bridge {
	return &Bridge{
		Dir:           dir,
		Model:         model,
		Tools:         tools,
		MaxToolRounds: maxToolRounds,
		logger:        logger,
	}
}

// Ask saves upload as Dir/<filename>, then asks the model to act on
// instruction with every registered tool available. It returns the model's
// final text verbatim. An empty upload fails with EmptyUpload and a failed
// write with IOFailure; neither reaches the model.
func (b *Bridge) Ask(ctx context.Context, upload io.Reader, filename, instruction string) (string, error) {
	logger := b.logger.With().Str("request_id", uuid.NewString()).Logger()

	path, err := b.Save(upload, filename)
	if err != nil {
		logger.Error().Err(err).Str("code", string(mcperr.CodeOf(err))).Msg("upload rejected")
		return "", err
	}
	logger.Info().Str("path", path).Msg("upload stored")

	prompt := instruction + "\n file path:" + path
	return b.converse(logger.WithContext(ctx), logger, prompt)
}

// Save writes upload verbatim to Dir/<base of filename>, replacing any
// previous file of that name.
func (b *Bridge) Save(upload io.Reader, filename string) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", mcperr.Newf(mcperr.IOFailure, "invalid upload filename %q", filename)
	}

	br := bufio.NewReader(upload)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return "", mcperr.New(mcperr.EmptyUpload, "uploaded file is empty")
		}
		return "", mcperr.Wrap(mcperr.IOFailure, err, "read upload")
	}

	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", mcperr.Wrapf(mcperr.IOFailure, err, "create upload dir %s", b.Dir)
	}
	path := filepath.Join(b.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", mcperr.Wrapf(mcperr.IOFailure, err, "create %s", path)
	}
	if _, err := io.Copy(f, br); err != nil {
		_ = f.Close()
		return "", mcperr.Wrapf(mcperr.IOFailure, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", mcperr.Wrapf(mcperr.IOFailure, err, "write %s", path)
	}
	return path, nil
}

func (b *Bridge) converse(ctx context.Context, logger zerolog.Logger, prompt string) (string, error) {
	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	tools := b.Tools.LLMTools()

	for round := 0; ; round++ {
		resp, err := b.Model.GenerateContent(ctx, messages, llms.WithTools(tools))
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return "", errors.New("chat completion: no choices returned")
		}
		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			logger.Info().Int("tool_rounds", round).Msg("chat completed")
			return choice.Content, nil
		}
		if round >= b.MaxToolRounds {
			return "", fmt.Errorf("%w (%d)", ErrTooManyToolRounds, b.MaxToolRounds)
		}

		call := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			call.Parts = append(call.Parts, llms.TextPart(choice.Content))
		}
		for _, tc := range choice.ToolCalls {
			call.Parts = append(call.Parts, tc)
		}
		messages = append(messages, call)

		for _, tc := range choice.ToolCalls {
			messages = append(messages, llms.MessageContent{
				Role:  llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{b.runTool(ctx, logger, tc)},
			})
		}
	}
}

// runTool executes one requested call. Every outcome, including malformed
// arguments and unknown tools, becomes text the model can read.
func (b *Bridge) runTool(ctx context.Context, logger zerolog.Logger, tc llms.ToolCall) llms.ToolCallResponse {
	out := llms.ToolCallResponse{ToolCallID: tc.ID}
	if tc.FunctionCall == nil {
		out.Content = "Error: tool call without a function"
		return out
	}
	out.Name = tc.FunctionCall.Name

	args := map[string]any{}
	if raw := tc.FunctionCall.Arguments; raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			out.Content = "Error: invalid arguments: " + err.Error()
			return out
		}
	}

	logger.Debug().Str("tool", out.Name).Msg("tool requested")
	res, err := b.Tools.Invoke(ctx, out.Name, args)
	if err != nil {
		out.Content = "Error: " + err.Error()
		return out
	}
	text, err := registry.Render(res)
	if err != nil {
		out.Content = "Error: " + err.Error()
		return out
	}
	out.Content = text
	return out
}

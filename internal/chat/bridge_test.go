package chat

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/xlquery/internal/query"
	"github.com/vinodismyname/xlquery/internal/registry"
	"github.com/vinodismyname/xlquery/internal/workbooks"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// scriptedModel replays a fixed sequence of responses and records what it
// was sent.
type scriptedModel struct {
	responses []*llms.ContentResponse
	calls     [][]llms.MessageContent
	tools     [][]llms.Tool
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}
	m.calls = append(m.calls, append([]llms.MessageContent(nil), messages...))
	m.tools = append(m.tools, opts.Tools)
	if len(m.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func text(s string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s}}}
}

func toolCall(id, name, args string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		ToolCalls: []llms.ToolCall{{ID: id, Type: "function", FunctionCall: &llms.FunctionCall{Name: name, Arguments: args}}},
	}}}
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"City", "Sales"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Oslo", 12}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Lima", 7}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func newBridge(t *testing.T, model llms.Model, rounds int) *Bridge {
	t.Helper()
	reg := registry.New(query.NewEngine(workbooks.NewManager(nil, nil)), nil)
	return NewBridge(filepath.Join(t.TempDir(), "uploads"), model, reg, rounds, zerolog.Nop())
}

func TestAsk_EmptyUpload(t *testing.T) {
	model := &scriptedModel{}
	b := newBridge(t, model, 4)

	_, err := b.Ask(context.Background(), strings.NewReader(""), "a.xlsx", "summarize")
	require.ErrorIs(t, err, mcperr.Kind(mcperr.EmptyUpload))
	require.Empty(t, model.calls)
	_, statErr := os.Stat(filepath.Join(b.Dir, "a.xlsx"))
	require.True(t, os.IsNotExist(statErr))
}

func TestAsk_PersistsAndAppendsPath(t *testing.T) {
	model := &scriptedModel{responses: []*llms.ContentResponse{text("done")}}
	b := newBridge(t, model, 4)
	data := workbookBytes(t)

	out, err := b.Ask(context.Background(), bytes.NewReader(data), "../../sales.xlsx", "Which city sold most?")
	require.NoError(t, err)
	require.Equal(t, "done", out)

	path := filepath.Join(b.Dir, "sales.xlsx")
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, stored)

	require.Len(t, model.calls, 1)
	prompt := model.calls[0][0].Parts[0].(llms.TextContent).Text
	require.Equal(t, "Which city sold most?\n file path:"+path, prompt)
	require.Len(t, model.tools[0], 5)
}

func TestAsk_RunsToolLoop(t *testing.T) {
	model := &scriptedModel{}
	b := newBridge(t, model, 4)
	path := filepath.Join(b.Dir, "sales.xlsx")
	model.responses = []*llms.ContentResponse{
		toolCall("call_1", "count_column_value_frequency", `{"file_path":"`+path+`","column":"city"}`),
		toolCall("call_2", "no_such_tool", `{}`),
		text("Oslo and Lima each appear once."),
	}

	out, err := b.Ask(context.Background(), bytes.NewReader(workbookBytes(t)), "sales.xlsx", "List cities")
	require.NoError(t, err)
	require.Equal(t, "Oslo and Lima each appear once.", out)
	require.Len(t, model.calls, 3)

	// Second request carries the AI tool call and the tool's answer.
	second := model.calls[1]
	require.Len(t, second, 3)
	require.Equal(t, llms.ChatMessageTypeAI, second[1].Role)
	resp := second[2].Parts[0].(llms.ToolCallResponse)
	require.Equal(t, "call_1", resp.ToolCallID)
	require.Equal(t, `[{"value":"Oslo","count":1},{"value":"Lima","count":1}]`, resp.Content)

	unknown := model.calls[2][4].Parts[0].(llms.ToolCallResponse)
	require.True(t, strings.HasPrefix(unknown.Content, "Error: "))
}

func TestAsk_BadArgumentsAreReportedToModel(t *testing.T) {
	model := &scriptedModel{responses: []*llms.ContentResponse{
		toolCall("c", "get_excel_metadata", `{not json`),
		text("sorry"),
	}}
	b := newBridge(t, model, 4)

	out, err := b.Ask(context.Background(), bytes.NewReader([]byte("x")), "f.xlsx", "meta")
	require.NoError(t, err)
	require.Equal(t, "sorry", out)
	resp := model.calls[1][2].Parts[0].(llms.ToolCallResponse)
	require.True(t, strings.HasPrefix(resp.Content, "Error: invalid arguments"))
}

func TestAsk_ToolRoundLimit(t *testing.T) {
	loop := toolCall("c", "get_excel_metadata", `{"file_path":"/nowhere.xlsx"}`)
	model := &scriptedModel{responses: []*llms.ContentResponse{loop, loop, loop}}
	b := newBridge(t, model, 2)

	_, err := b.Ask(context.Background(), bytes.NewReader([]byte("x")), "f.xlsx", "loop")
	require.ErrorIs(t, err, ErrTooManyToolRounds)
	require.Len(t, model.calls, 3)
}

func TestAsk_ModelError(t *testing.T) {
	b := newBridge(t, &scriptedModel{}, 2)
	_, err := b.Ask(context.Background(), bytes.NewReader([]byte("x")), "f.xlsx", "hi")
	require.ErrorContains(t, err, "script exhausted")
}

func TestSave_WriteFailureIsIOFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	b := &Bridge{Dir: filepath.Join(blocker, "sub")}
	_, err := b.Save(bytes.NewReader([]byte("data")), "a.xlsx")
	require.ErrorIs(t, err, mcperr.Kind(mcperr.IOFailure))
}

func TestSave_LastWriteWins(t *testing.T) {
	b := &Bridge{Dir: t.TempDir()}
	_, err := b.Save(strings.NewReader("first"), "same.xlsx")
	require.NoError(t, err)
	path, err := b.Save(strings.NewReader("second"), "same.xlsx")
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(got))
}

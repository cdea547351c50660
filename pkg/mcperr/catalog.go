package mcperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code defines a canonical error code used across query operations and tools.
type Code string

const (
	// Query & Input
	Validation     Code = "VALIDATION"
	SheetNotFound  Code = "SHEET_NOT_FOUND"
	ColumnNotFound Code = "COLUMN_NOT_FOUND"
	PatternError   Code = "PATTERN_ERROR"
	UnknownTool    Code = "UNKNOWN_TOOL"

	// Resource & Limits
	BusyResource Code = "BUSY_RESOURCE"
	Timeout      Code = "TIMEOUT"

	// IO & Formats
	IOFailure   Code = "IO_FAILURE"
	EmptyUpload Code = "EMPTY_UPLOAD"

	// Catch-all for failures that carry no code
	Internal Code = "INTERNAL"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

// catalog maps canonical codes to guidance for operators reading diagnostics.
var catalog = map[Code]Entry{
	Validation:     {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the arguments per the tool description and retry"}},
	SheetNotFound:  {Code: SheetNotFound, Message: "sheet not found", Retryable: true, NextSteps: []string{"Call get_excel_metadata to verify sheet names", "Sheet names are case-sensitive"}},
	ColumnNotFound: {Code: ColumnNotFound, Message: "column not found", Retryable: true, NextSteps: []string{"Call get_excel_metadata to list header names"}},
	PatternError:   {Code: PatternError, Message: "invalid regular expression", Retryable: true, NextSteps: []string{"Fix the pattern or disable regex matching"}},
	UnknownTool:    {Code: UnknownTool, Message: "tool not registered", Retryable: false, NextSteps: []string{"List tools and use a registered name"}},

	BusyResource: {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:      {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Retry with a smaller workbook or increase the timeout"}},

	IOFailure:   {Code: IOFailure, Message: "failed to open workbook", Retryable: false, NextSteps: []string{"Verify path, permissions, and that the file is an .xlsx container"}},
	EmptyUpload: {Code: EmptyUpload, Message: "uploaded file is empty", Retryable: false, NextSteps: []string{"Select a non-empty workbook and upload again"}},

	Internal: {Code: Internal, Message: "internal error", Retryable: false},
}

// Error is a coded failure propagated by query operations and bridges.
// Error() yields only the human message so it can be surfaced to an agent as-is;
// the code stays available through CodeOf for diagnostics.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = catalog[e.Code].Message
	}
	if e.Err == nil {
		return msg
	}
	if msg == "" {
		return e.Err.Error()
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can test
// errors.Is(err, mcperr.Kind(mcperr.SheetNotFound)).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New returns a coded error with a fixed message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Newf returns a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, err error, msg string) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Kind returns a bare error of the given code for use as an errors.Is target.
func Kind(code Code) error {
	return &Error{Code: code}
}

// CodeOf extracts the code from err, or Internal when err carries none.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// Lookup returns the catalog entry for code.
func Lookup(code Code) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// Describe builds a standard diagnostic string including next steps.
// Format: "CODE: message | nextSteps: a; b".
func Describe(err error) string {
	if err == nil {
		return ""
	}
	code := CodeOf(err)
	base := strings.TrimSpace(err.Error())
	e, ok := catalog[code]
	if !ok {
		return fmt.Sprintf("%s: %s", code, base)
	}
	if base == "" {
		base = e.Message
	}
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

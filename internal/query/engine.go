// Package query implements the read-only workbook queries exposed as tools:
// row dump, occurrence counting, row filtering, column frequency and
// workbook metadata. Each call opens its own workbook and closes it before
// returning; nothing is cached between calls.
package query

import (
	"context"
	"encoding/json"

	"github.com/vinodismyname/xlquery/internal/workbooks"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
	"github.com/vinodismyname/xlquery/pkg/validation"
)

// Engine runs queries against workbooks opened through Books.
type Engine struct {
	Books *workbooks.Manager
}

// NewEngine constructs an Engine over the given workbook manager.
func NewEngine(books *workbooks.Manager) *Engine {
	return &Engine{Books: books}
}

// withSheet validates in, opens path, resolves the sheet and runs fn.
func (e *Engine) withSheet(ctx context.Context, in any, path, sheet string, fn func(*workbooks.Sheet) error) error {
	if err := validation.Check(in); err != nil {
		return err
	}
	return e.Books.With(ctx, path, func(wb *workbooks.Workbook) error {
		sh, err := wb.Sheet(sheet)
		if err != nil {
			return err
		}
		return fn(sh)
	})
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", mcperr.Wrap(mcperr.Internal, err, "encode result")
	}
	return string(b), nil
}

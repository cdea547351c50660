package query

import (
	"context"
	"sort"
	"strings"

	"github.com/vinodismyname/xlquery/internal/cells"
	"github.com/vinodismyname/xlquery/internal/workbooks"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// ColumnData returns the native values of one column from row 1 onward,
// header at row 0. Absent rows are skipped; empty cells in present rows
// yield nil.
func (e *Engine) ColumnData(ctx context.Context, in ColumnInput) ([]any, error) {
	col, err := e.column(ctx, in)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(col))
	for i, c := range col {
		out[i] = cells.ValueOf(c)
	}
	return out, nil
}

// ColumnValueFrequency groups a column's trimmed text values and counts
// them, most frequent first. Blank values are dropped. Equal counts keep
// the order in which each value was first seen.
func (e *Engine) ColumnValueFrequency(ctx context.Context, in ColumnInput) ([]Frequency, error) {
	col, err := e.column(ctx, in)
	if err != nil {
		return nil, err
	}

	out := make([]Frequency, 0)
	pos := map[string]int{}
	for _, c := range col {
		v := strings.TrimSpace(cells.StringOf(c))
		if v == "" {
			continue
		}
		if i, ok := pos[v]; ok {
			out[i].Count++
			continue
		}
		pos[v] = len(out)
		out = append(out, Frequency{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (e *Engine) column(ctx context.Context, in ColumnInput) ([]cells.Cell, error) {
	col := make([]cells.Cell, 0)
	err := e.withSheet(ctx, in, in.Path, in.Sheet, func(sh *workbooks.Sheet) error {
		header := BuildHeader(sh, 0)
		if header == nil {
			return nil
		}
		idx, ok := header.Resolve(in.Column)
		if !ok {
			return columnNotFound(in.Column)
		}
		for r := 1; r <= sh.LastRowIndex(); r++ {
			row := sh.Row(r)
			if row.Absent() {
				continue
			}
			col = append(col, row.Cell(idx))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

func columnNotFound(name string) error {
	return mcperr.Newf(mcperr.ColumnNotFound, "Column '%s' not found", name)
}

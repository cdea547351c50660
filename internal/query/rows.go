package query

import (
	"context"
	"strings"

	"github.com/vinodismyname/xlquery/internal/cells"
	"github.com/vinodismyname/xlquery/internal/workbooks"
)

// SheetToJSON dumps every present row after the header row as a JSON array
// of objects keyed by header name with string values. Rows past the header
// that hold no cells are skipped. An absent header row yields "[]".
// Duplicate header names collapse onto the first position, last value wins.
func (e *Engine) SheetToJSON(ctx context.Context, in SheetToJSONInput) (string, error) {
	out := make([]*Record, 0)
	err := e.withSheet(ctx, in, in.Path, in.Sheet, func(sh *workbooks.Sheet) error {
		header := BuildHeader(sh, in.HeaderRow)
		if header == nil {
			return nil
		}
		for r := in.HeaderRow + 1; r <= sh.LastRowIndex(); r++ {
			row := sh.Row(r)
			if row.Absent() {
				continue
			}
			rec := newRecord()
			for _, col := range header {
				rec.Set(col.Name, cells.StringOf(row.Cell(col.Index)))
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return encode(out)
}

// FilterRows returns the data rows (row 1 onward, header at row 0) whose
// column cell equals value when both are compared as text, ignoring case.
// Each record maps header names to native cell values in column order and
// omits empty cells and cells without a header entry.
func (e *Engine) FilterRows(ctx context.Context, in FilterInput) ([]*Record, error) {
	out := make([]*Record, 0)
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
			if row.Absent() || !strings.EqualFold(cells.StringOf(row.Cell(idx)), in.Value) {
				continue
			}
			out = append(out, rowRecord(header, row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func rowRecord(header Header, row workbooks.Row) *Record {
	rec := newRecord()
	for i, c := range row {
		if c.IsEmpty() {
			continue
		}
		name, ok := header.nameAt(i)
		if !ok {
			continue
		}
		rec.Set(name, cells.ValueOf(c))
	}
	return rec
}

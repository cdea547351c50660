package query

import (
	"context"

	"github.com/vinodismyname/xlquery/internal/cells"
	"github.com/vinodismyname/xlquery/internal/workbooks"
	"github.com/vinodismyname/xlquery/pkg/validation"
)

// WorkbookMetadata describes every sheet as JSON:
// {"sheets":[{"name":..,"rows":..,"columns":[..]}]}. rows is the last row
// index plus one; columns is row 0 as text, empty when row 0 is absent.
func (e *Engine) WorkbookMetadata(ctx context.Context, in MetadataInput) (string, error) {
	if err := validation.Check(in); err != nil {
		return "", err
	}
	md := Metadata{Sheets: make([]SheetMetadata, 0)}
	err := e.Books.With(ctx, in.Path, func(wb *workbooks.Workbook) error {
		for i := range wb.SheetNames() {
			sh, err := wb.SheetAt(i)
			if err != nil {
				return err
			}
			cols := make([]string, 0)
			for _, c := range sh.Row(0) {
				cols = append(cols, cells.StringOf(c))
			}
			md.Sheets = append(md.Sheets, SheetMetadata{
				Name:    sh.Name,
				Rows:    sh.LastRowIndex() + 1,
				Columns: cols,
			})
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return encode(md)
}

package registry

import (
	"context"

	"github.com/vinodismyname/xlquery/internal/query"
)

const (
	paramPath      = "file_path"
	paramSheet     = "sheet_name"
	paramHeaderRow = "header_row"
	paramKeyword   = "keyword"
	paramUseRegex  = "use_regex"
	paramColumn    = "column"
	paramValue     = "value"
)

var (
	pathParam = Param{
		Name:        paramPath,
		Description: "Absolute path of the Excel workbook (.xlsx) on the server, as given in the conversation",
		Required:    true,
		Type:        TypeString,
	}
	sheetParam = Param{
		Name:        paramSheet,
		Description: "Exact, case-sensitive sheet name; omit to use the first sheet",
		Type:        TypeString,
	}
	columnParam = Param{
		Name:        paramColumn,
		Description: "Column header name from the first row, matched case-insensitively",
		Required:    true,
		Type:        TypeString,
	}
)

func toolTable(e *query.Engine) []entry {
	readSheet := Descriptor{
		Name:        "read_excel_sheet",
		Description: "Read every data row of a sheet and return them as a JSON array of objects keyed by the header row's column names. Use it to see the full content of a small sheet.",
		Params: []Param{
			pathParam,
			sheetParam,
			{Name: paramHeaderRow, Description: "0-based index of the row holding the column names; defaults to 0", Type: TypeInteger},
		},
	}
	count := Descriptor{
		Name:        "count_in_excel",
		Description: "Count how often a keyword appears in a sheet, header included. Without regex it counts cells containing the keyword (case-sensitive); with regex it counts every match. Returns -1 on failure.",
		Params: []Param{
			pathParam,
			sheetParam,
			{Name: paramKeyword, Description: "Text to look for, or a regular expression when use_regex is true", Required: true, Type: TypeString},
			{Name: paramUseRegex, Description: "Treat keyword as a regular expression; defaults to false", Type: TypeBoolean},
		},
	}
	filter := Descriptor{
		Name:        "filter_excel_rows",
		Description: "Return the rows whose value in the given column equals the given value, ignoring case. Each row is an object of column name to cell value. Returns an empty list when nothing matches or on failure.",
		Params: []Param{
			pathParam,
			sheetParam,
			columnParam,
			{Name: paramValue, Description: "Value to match, compared as text ignoring case", Required: true, Type: TypeString},
		},
	}
	frequency := Descriptor{
		Name:        "count_column_value_frequency",
		Description: "Count how many times each distinct value occurs in a column, most frequent first. Blank cells are ignored. Useful for distributions and top-N questions.",
		Params:      []Param{pathParam, sheetParam, columnParam},
	}
	metadata := Descriptor{
		Name:        "get_excel_metadata",
		Description: "Describe a workbook: every sheet's name, its row count including the header, and its column names. Call this first to learn sheet and column names.",
		Params:      []Param{pathParam},
	}

	return []entry{
		{readSheet, bind(readSheet, textSentinel, func(ctx context.Context, a Args) (string, error) {
			var in query.SheetToJSONInput
			if err := decode(a, &in.Path, &in.Sheet); err != nil {
				return "", err
			}
			row, err := a.Int(paramHeaderRow)
			if err != nil {
				return "", err
			}
			in.HeaderRow = row
			return e.SheetToJSON(ctx, in)
		})},
		{count, bind(count, countSentinel, func(ctx context.Context, a Args) (int, error) {
			var in query.CountInput
			if err := decode(a, &in.Path, &in.Sheet); err != nil {
				return 0, err
			}
			kw, err := a.String(paramKeyword)
			if err != nil {
				return 0, err
			}
			re, err := a.Bool(paramUseRegex)
			if err != nil {
				return 0, err
			}
			in.Keyword, in.UseRegex = kw, re
			return e.CountOccurrences(ctx, in)
		})},
		{filter, bind(filter, listSentinel[*query.Record], func(ctx context.Context, a Args) ([]*query.Record, error) {
			var in query.FilterInput
			if err := decode(a, &in.Path, &in.Sheet); err != nil {
				return nil, err
			}
			col, err := a.String(paramColumn)
			if err != nil {
				return nil, err
			}
			val, err := a.String(paramValue)
			if err != nil {
				return nil, err
			}
			in.Column, in.Value = col, val
			return e.FilterRows(ctx, in)
		})},
		{frequency, bind(frequency, listSentinel[query.Frequency], func(ctx context.Context, a Args) ([]query.Frequency, error) {
			var in query.ColumnInput
			if err := decode(a, &in.Path, &in.Sheet); err != nil {
				return nil, err
			}
			col, err := a.String(paramColumn)
			if err != nil {
				return nil, err
			}
			in.Column = col
			return e.ColumnValueFrequency(ctx, in)
		})},
		{metadata, bind(metadata, textSentinel, func(ctx context.Context, a Args) (string, error) {
			var in query.MetadataInput
			if err := decode(a, &in.Path, nil); err != nil {
				return "", err
			}
			return e.WorkbookMetadata(ctx, in)
		})},
	}
}

// decode reads the workbook address shared by every tool. sheet may be nil
// for tools that take no sheet.
func decode(a Args, path, sheet *string) error {
	p, err := a.String(paramPath)
	if err != nil {
		return err
	}
	*path = p
	if sheet == nil {
		return nil
	}
	s, err := a.String(paramSheet)
	if err != nil {
		return err
	}
	*sheet = s
	return nil
}

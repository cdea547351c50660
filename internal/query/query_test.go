package query

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/xlquery/internal/workbooks"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

type formula string

type sheetFixture struct {
	name  string
	cells map[string]any
}

// writeBook saves a workbook with the given sheets in order and returns its path.
func writeBook(t *testing.T, sheets ...sheetFixture) string {
	t.Helper()
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if s.name != "Sheet1" {
				require.NoError(t, f.SetSheetName("Sheet1", s.name))
			}
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for ref, v := range s.cells {
			if fx, ok := v.(formula); ok {
				require.NoError(t, f.SetCellFormula(s.name, ref, string(fx)))
				continue
			}
			require.NoError(t, f.SetCellValue(s.name, ref, v))
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func newEngine() *Engine {
	return NewEngine(workbooks.NewManager(nil, nil))
}

// peopleBook: header Name|Dept|Age, row 3 (index 3) absent.
func peopleBook(t *testing.T) string {
	return writeBook(t,
		sheetFixture{name: "People", cells: map[string]any{
			"A1": "Name", "B1": "Dept", "C1": "Age",
			"A2": "Alice", "B2": "Sales", "C2": 30,
			"A3": "Bob", "B3": "Ops", "C3": 41.5,
			"A5": "Carol", "B5": "SALES", "D5": "no header",
			"A6": "Dan", "B6": "sales", "C6": true,
		}},
		sheetFixture{name: "Other", cells: map[string]any{"A1": "x"}},
	)
}

func TestSheetToJSON(t *testing.T) {
	ctx := context.Background()
	path := writeBook(t, sheetFixture{name: "Data", cells: map[string]any{
		"A1": "Quarterly report",
		"A2": "Name", "B2": "Age", "C2": "Calc",
		"A3": "Alice", "B3": 30, "C3": formula("B3*2"),
		// row 4 absent
		"A5": "Bob", "B5": 41.5,
		"A6": "Eve", "B6": true, "D6": "ignored",
	}})

	out, err := newEngine().SheetToJSON(ctx, SheetToJSONInput{Path: path, Sheet: "Data", HeaderRow: 1})
	require.NoError(t, err)
	require.Equal(t,
		`[{"Name":"Alice","Age":"30","Calc":"B3*2"},{"Name":"Bob","Age":"41.5","Calc":""},{"Name":"Eve","Age":"true","Calc":""}]`,
		out)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	// last row index 5, header row 1, one absent row.
	require.Len(t, rows, 5-1-1)
}

func TestSheetToJSON_HeaderRowAbsent(t *testing.T) {
	path := peopleBook(t)
	e := newEngine()

	out, err := e.SheetToJSON(context.Background(), SheetToJSONInput{Path: path, HeaderRow: 3})
	require.NoError(t, err)
	require.Equal(t, "[]", out)

	out, err = e.SheetToJSON(context.Background(), SheetToJSONInput{Path: path, HeaderRow: 500})
	require.NoError(t, err)
	require.Equal(t, "[]", out)
}

func TestSheetToJSON_DuplicateHeaderLastWriteWins(t *testing.T) {
	path := writeBook(t, sheetFixture{name: "Dup", cells: map[string]any{
		"A1": "Key", "B1": "Other", "C1": "Key",
		"A2": "first", "B2": "mid", "C2": "second",
	}})
	out, err := newEngine().SheetToJSON(context.Background(), SheetToJSONInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, `[{"Key":"second","Other":"mid"}]`, out)
}

func TestSheetToJSON_RejectsNegativeHeaderRow(t *testing.T) {
	_, err := newEngine().SheetToJSON(context.Background(), SheetToJSONInput{Path: peopleBook(t), HeaderRow: -1})
	require.ErrorIs(t, err, mcperr.Kind(mcperr.Validation))
}

func TestCountOccurrences(t *testing.T) {
	ctx := context.Background()
	path := writeBook(t, sheetFixture{name: "S", cells: map[string]any{
		"A1": "x", "B1": "ax", "C1": "b", "D1": "X",
		"A3": 12.5,
	}})
	e := newEngine()

	n, err := e.CountOccurrences(ctx, CountInput{Path: path, Keyword: "x"})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = e.CountOccurrences(ctx, CountInput{Path: path, Keyword: "(?i)x", UseRegex: true})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// Regex counts every match inside a cell.
	n, err = e.CountOccurrences(ctx, CountInput{Path: path, Keyword: "a|x", UseRegex: true})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = e.CountOccurrences(ctx, CountInput{Path: path, Keyword: "2.5"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = e.CountOccurrences(ctx, CountInput{Path: path, Keyword: "(", UseRegex: true})
	require.ErrorIs(t, err, mcperr.Kind(mcperr.PatternError))
	require.Zero(t, n)
}

func TestFilterRows(t *testing.T) {
	ctx := context.Background()
	path := peopleBook(t)
	e := newEngine()

	recs, err := e.FilterRows(ctx, FilterInput{Path: path, Sheet: "People", Column: "dept", Value: "sales"})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	alice := recs[0]
	require.Equal(t, []string{"Name", "Dept", "Age"}, keys(alice))
	age, ok := alice.Get("Age")
	require.True(t, ok)
	require.Equal(t, 30.0, age)

	// Empty cells and cells without a header entry are omitted.
	require.Equal(t, []string{"Name", "Dept"}, keys(recs[1]))
	v, _ := recs[2].Get("Age")
	require.Equal(t, true, v)

	again, err := e.FilterRows(ctx, FilterInput{Path: path, Sheet: "People", Column: "dept", Value: "sales"})
	require.NoError(t, err)
	first, err := json.Marshal(recs)
	require.NoError(t, err)
	second, err := json.Marshal(again)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
	require.Equal(t,
		`[{"Name":"Alice","Dept":"Sales","Age":30},{"Name":"Carol","Dept":"SALES"},{"Name":"Dan","Dept":"sales","Age":true}]`,
		string(first))

	// Numbers match on their text form.
	recs, err = e.FilterRows(ctx, FilterInput{Path: path, Sheet: "People", Column: "Age", Value: "41.5"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestFilterRows_ColumnNotFound(t *testing.T) {
	recs, err := newEngine().FilterRows(context.Background(), FilterInput{Path: peopleBook(t), Column: "Salary", Value: "1"})
	require.ErrorIs(t, err, mcperr.Kind(mcperr.ColumnNotFound))
	require.Empty(t, recs)
}

func TestColumnValueFrequency(t *testing.T) {
	ctx := context.Background()
	path := writeBook(t, sheetFixture{name: "Tags", cells: map[string]any{
		"A1": "Tag",
		"A2": "a", "A3": "a", "A4": "b", "A5": "  ", "A6": "a",
	}})

	freq, err := newEngine().ColumnValueFrequency(ctx, ColumnInput{Path: path, Column: "TAG"})
	require.NoError(t, err)
	require.Equal(t, []Frequency{{Value: "a", Count: 3}, {Value: "b", Count: 1}}, freq)

	total := 0
	for _, f := range freq {
		total += f.Count
	}
	require.Equal(t, 4, total)
}

func TestColumnValueFrequency_TiesKeepFirstSeenOrder(t *testing.T) {
	path := writeBook(t, sheetFixture{name: "S", cells: map[string]any{
		"A1": "V",
		"A2": "e", "A3": " c", "A4": "d", "A5": "c ", "A6": "d", "A8": 7,
	}})
	freq, err := newEngine().ColumnValueFrequency(context.Background(), ColumnInput{Path: path, Column: "v"})
	require.NoError(t, err)
	require.Equal(t, []Frequency{{"c", 2}, {"d", 2}, {"e", 1}, {"7", 1}}, freq)
}

func TestColumnData(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	vals, err := e.ColumnData(ctx, ColumnInput{Path: peopleBook(t), Sheet: "People", Column: "age"})
	require.NoError(t, err)
	require.Equal(t, []any{30.0, 41.5, nil, true}, vals)

	// No header row: empty, not an error.
	empty := writeBook(t, sheetFixture{name: "S", cells: map[string]any{"A3": "orphan"}})
	vals, err = e.ColumnData(ctx, ColumnInput{Path: empty, Column: "age"})
	require.NoError(t, err)
	require.Empty(t, vals)
	require.NotNil(t, vals)
}

func TestWorkbookMetadata(t *testing.T) {
	path := writeBook(t,
		sheetFixture{name: "Sheet1", cells: map[string]any{
			"A1": "Name", "B1": "Age",
			"A2": "a", "B2": 1,
			"A3": "b", "B3": 2,
			"A4": "c", "B4": 3,
		}},
		sheetFixture{name: "Sheet2"},
	)
	out, err := newEngine().WorkbookMetadata(context.Background(), MetadataInput{Path: path})
	require.NoError(t, err)
	require.JSONEq(t,
		`{"sheets":[{"name":"Sheet1","rows":4,"columns":["Name","Age"]},{"name":"Sheet2","rows":0,"columns":[]}]}`,
		out)
}

func TestSheetNotFound_AllOperations(t *testing.T) {
	ctx := context.Background()
	path := peopleBook(t)
	e := newEngine()
	notFound := mcperr.Kind(mcperr.SheetNotFound)

	_, err := e.SheetToJSON(ctx, SheetToJSONInput{Path: path, Sheet: "people"})
	require.ErrorIs(t, err, notFound)
	_, err = e.CountOccurrences(ctx, CountInput{Path: path, Sheet: "Missing", Keyword: "x"})
	require.ErrorIs(t, err, notFound)
	_, err = e.FilterRows(ctx, FilterInput{Path: path, Sheet: "Missing", Column: "Name", Value: "x"})
	require.ErrorIs(t, err, notFound)
	_, err = e.ColumnValueFrequency(ctx, ColumnInput{Path: path, Sheet: "Missing", Column: "Name"})
	require.ErrorIs(t, err, notFound)
	_, err = e.ColumnData(ctx, ColumnInput{Path: path, Sheet: "Missing", Column: "Name"})
	require.ErrorIs(t, err, notFound)
}

func TestMissingFile_AllOperations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nope.xlsx")
	e := newEngine()
	ioFailure := mcperr.Kind(mcperr.IOFailure)

	s, err := e.SheetToJSON(ctx, SheetToJSONInput{Path: path})
	require.ErrorIs(t, err, ioFailure)
	require.Empty(t, s)

	n, err := e.CountOccurrences(ctx, CountInput{Path: path, Keyword: "x"})
	require.ErrorIs(t, err, ioFailure)
	require.Zero(t, n)

	recs, err := e.FilterRows(ctx, FilterInput{Path: path, Column: "a", Value: "b"})
	require.ErrorIs(t, err, ioFailure)
	require.Nil(t, recs)

	freq, err := e.ColumnValueFrequency(ctx, ColumnInput{Path: path, Column: "a"})
	require.ErrorIs(t, err, ioFailure)
	require.Nil(t, freq)

	md, err := e.WorkbookMetadata(ctx, MetadataInput{Path: path})
	require.ErrorIs(t, err, ioFailure)
	require.Empty(t, md)
}

func TestHeaderResolve(t *testing.T) {
	sh := workbooks.NewSheet("h", []workbooks.Row{nil})
	require.Nil(t, BuildHeader(sh, 0))

	h := Header{{0, "Id"}, {1, ""}, {2, "NAME"}, {3, "name"}}
	idx, ok := h.Resolve("name")
	require.True(t, ok)
	require.Equal(t, 2, idx)

	idx, ok = h.Resolve("")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = h.Resolve("missing")
	require.False(t, ok)
	require.Equal(t, []string{"Id", "", "NAME", "name"}, h.Names())
}

func keys(r *Record) []string {
	var out []string
	for p := r.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

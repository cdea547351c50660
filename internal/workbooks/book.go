package workbooks

import (
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/xlquery/internal/cells"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// Workbook is an open, read-only workbook. Obtain one through Manager.With.
type Workbook struct {
	Path string

	file    *excelize.File
	release func()

	once     sync.Once
	closed   bool
	closeErr error
}

// Close releases the file handle and the gate slot. Safe to call repeatedly;
// only the first call has an effect.
func (w *Workbook) Close() error {
	w.once.Do(func() {
		w.closeErr = w.file.Close()
		w.closed = true
		if w.release != nil {
			w.release()
		}
	})
	return w.closeErr
}

// Closed reports whether Close has run.
func (w *Workbook) Closed() bool {
	return w.closed
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Sheet resolves a sheet by exact, case-sensitive name. An empty name selects
// the first sheet. excelize's own index lookup folds case, so it is not used.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	names := w.SheetNames()
	if name == "" {
		if len(names) == 0 {
			return nil, mcperr.New(mcperr.SheetNotFound, "workbook has no sheets")
		}
		return w.load(names[0])
	}
	for _, n := range names {
		if n == name {
			return w.load(n)
		}
	}
	return nil, mcperr.Newf(mcperr.SheetNotFound, "Sheet '%s' not found", name)
}

// SheetAt resolves a sheet by 0-based ordinal.
func (w *Workbook) SheetAt(i int) (*Sheet, error) {
	names := w.SheetNames()
	if i < 0 || i >= len(names) {
		return nil, mcperr.Newf(mcperr.SheetNotFound, "no sheet at position %d", i)
	}
	return w.load(names[i])
}

func (w *Workbook) load(name string) (*Sheet, error) {
	grid, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, mcperr.Wrapf(mcperr.IOFailure, err, "read sheet '%s'", name)
	}

	rows := make([]Row, len(grid))
	for r, vals := range grid {
		if len(vals) == 0 {
			continue
		}
		row := make(Row, len(vals))
		present := false
		for c, raw := range vals {
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, mcperr.Wrapf(mcperr.IOFailure, err, "read sheet '%s'", name)
			}
			cell, err := w.readCell(name, ref, raw)
			if err != nil {
				return nil, mcperr.Wrapf(mcperr.IOFailure, err, "read cell %s!%s", name, ref)
			}
			row[c] = cell
			present = present || !cell.IsEmpty()
		}
		if present {
			rows[r] = row
		}
	}

	last := len(rows) - 1
	for last >= 0 && rows[last] == nil {
		last--
	}
	return &Sheet{Name: name, rows: rows[:last+1]}, nil
}

// readCell classifies one cell. A formula wins over its cached result; error
// cells (#DIV/0! and friends) load as empty.
func (w *Workbook) readCell(sheet, ref, raw string) (cells.Cell, error) {
	formula, err := w.file.GetCellFormula(sheet, ref)
	if err != nil {
		return cells.Empty(), err
	}
	if formula != "" {
		return cells.Formula(formula), nil
	}
	if raw == "" {
		return cells.Empty(), nil
	}

	typ, err := w.file.GetCellType(sheet, ref)
	if err != nil {
		return cells.Empty(), err
	}
	switch typ {
	case excelize.CellTypeBool:
		return cells.Boolean(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeDate, excelize.CellTypeFormula:
		return cells.Str(raw), nil
	case excelize.CellTypeError:
		return cells.Empty(), nil
	}
	// Number or untyped: numeric when it parses.
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return cells.Num(v), nil
	}
	return cells.Str(raw), nil
}

// Sheet is a fully loaded grid of typed cells. Rows may be sparse: an absent
// row is nil.
type Sheet struct {
	Name string
	rows []Row
}

// NewSheet builds a Sheet from in-memory rows; nil entries are absent rows.
func NewSheet(name string, rows []Row) *Sheet {
	return &Sheet{Name: name, rows: rows}
}

// Row returns the row at 0-based index i, or nil when absent.
func (s *Sheet) Row(i int) Row {
	if i < 0 || i >= len(s.rows) {
		return nil
	}
	return s.rows[i]
}

// LastRowIndex is the index of the last present row, -1 for an empty sheet.
func (s *Sheet) LastRowIndex() int {
	return len(s.rows) - 1
}

// Row is a sparse sequence of cells indexed by 0-based column.
type Row []cells.Cell

// Cell returns the cell at column i, empty when out of range.
func (r Row) Cell(i int) cells.Cell {
	if i < 0 || i >= len(r) {
		return cells.Empty()
	}
	return r[i]
}

// Absent reports whether the row holds no cells.
func (r Row) Absent() bool {
	return len(r) == 0
}

package query

import (
	"strings"

	"github.com/vinodismyname/xlquery/internal/cells"
	"github.com/vinodismyname/xlquery/internal/workbooks"
)

// Column pairs a header name with its 0-based column index.
type Column struct {
	Index int
	Name  string
}

// Header is the ordered column list read from one header row.
type Header []Column

// BuildHeader reads every cell of the header row left to right. Unnamed
// columns keep an empty name. An absent header row yields a nil Header.
func BuildHeader(sheet *workbooks.Sheet, headerRow int) Header {
	row := sheet.Row(headerRow)
	if row.Absent() {
		return nil
	}
	h := make(Header, len(row))
	for i, c := range row {
		h[i] = Column{Index: i, Name: cells.StringOf(c)}
	}
	return h
}

// Resolve finds the first column whose name equals name, ignoring case.
func (h Header) Resolve(name string) (int, bool) {
	for _, c := range h {
		if strings.EqualFold(c.Name, name) {
			return c.Index, true
		}
	}
	return -1, false
}

// Names returns the column names in order.
func (h Header) Names() []string {
	names := make([]string, len(h))
	for i, c := range h {
		names[i] = c.Name
	}
	return names
}

// nameAt returns the header name for a column index and whether the column
// has a header entry.
func (h Header) nameAt(idx int) (string, bool) {
	if idx < 0 || idx >= len(h) {
		return "", false
	}
	return h[idx].Name, true
}

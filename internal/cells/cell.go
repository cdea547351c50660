// Package cells models a single spreadsheet cell as a tagged value and
// coerces it into the string and native shapes the query layer needs.
package cells

import "strconv"

// Kind tags which payload of a Cell is meaningful.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
	KindFormula
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindFormula:
		return "formula"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Cell is a discriminated spreadsheet value. The zero value is an empty cell,
// so a missing cell reference and an explicitly blank cell behave the same.
type Cell struct {
	kind Kind
	text string // string value or formula source
	num  float64
	b    bool
}

// Empty returns a cell with no value.
func Empty() Cell { return Cell{} }

// Str returns a string cell.
func Str(s string) Cell { return Cell{kind: KindString, text: s} }

// Num returns a numeric cell.
func Num(v float64) Cell { return Cell{kind: KindNumber, num: v} }

// Boolean returns a boolean cell.
func Boolean(v bool) Cell { return Cell{kind: KindBool, b: v} }

// Formula returns a formula cell holding its source text (no leading '=').
func Formula(src string) Cell { return Cell{kind: KindFormula, text: src} }

// Kind reports the cell's tag.
func (c Cell) Kind() Kind { return c.kind }

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// StringOf renders the cell as text. Numbers use the shortest decimal form
// that round-trips the float64 exactly; formulas yield their source text.
func StringOf(c Cell) string {
	switch c.kind {
	case KindEmpty:
		return ""
	case KindString, KindFormula:
		return c.text
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	}
	return ""
}

// ValueOf returns the cell's native value: string, float64, bool, the formula
// source as a string, or nil for an empty cell.
func ValueOf(c Cell) any {
	switch c.kind {
	case KindEmpty:
		return nil
	case KindString, KindFormula:
		return c.text
	case KindNumber:
		return c.num
	case KindBool:
		return c.b
	}
	return nil
}

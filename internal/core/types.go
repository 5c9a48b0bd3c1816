package core

import (
	"math"
	"strconv"
	"strings"
)

// FieldType represents the declared primitive type of a schema column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldDecimal
)

// String returns a human-readable name for a field type.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldDecimal:
		return "decimal"
	default:
		return "value"
	}
}

// FieldSpec declares a single schema column.
type FieldSpec struct {
	Name     string    // Column header name (must match CSV exactly)
	Type     FieldType // Declared type after normalization
	Nullable bool      // Missing values are allowed and become empty text
}

// ValueKind tells what a Value holds.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindText
	KindDecimal
)

// Value is a single table cell: missing, text, or a decimal number.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
}

// MissingValue returns the explicit "missing" marker.
func MissingValue() Value {
	return Value{Kind: KindMissing}
}

// TextValue returns a text cell.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// DecimalValue returns a decimal cell.
func DecimalValue(f float64) Value {
	return Value{Kind: KindDecimal, Number: f}
}

// IsMissing reports whether the cell holds the missing marker.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// String returns the text representation of the cell.
// Missing cells render as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindDecimal:
		return FormatDecimal(v.Number)
	default:
		return ""
	}
}

// FormatDecimal renders a decimal the way the aggregate file stores it:
// shortest round-trip digits, always with a fractional part ("5.0", "0.25"),
// switching to exponent form for very large or very small magnitudes.
func FormatDecimal(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Row is one data row of a table.
type Row struct {
	Source string  // File the row was read from
	Line   int     // 1-based line number in the source file
	Values []Value // One value per table column
}

// Table is an ordered set of named columns and rows.
type Table struct {
	Source  string   // File name the table was read from (empty for aggregates)
	Columns []string // Header column names, in order
	Rows    []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row i for the named column.
// Absent columns and short rows yield the missing marker.
func (t *Table) Cell(i int, column string) Value {
	pos := t.ColumnIndex(column)
	if pos < 0 || pos >= len(t.Rows[i].Values) {
		return MissingValue()
	}
	return t.Rows[i].Values[pos]
}

// Lines returns the source line numbers of the given rows.
func Lines(rows []Row) []int {
	lines := make([]int, len(rows))
	for i, r := range rows {
		lines[i] = r.Line
	}
	return lines
}

package core

// validation.go provides the required-value checks shared by the Collector
// and the Normalizer.
//
// A row is invalid when any required schema column is missing from it:
// the column is absent from the file, the row is shorter than the header,
// or the cell holds the missing marker.

import "fmt"

// ValidationError represents a value that could not be coerced to its
// declared type.
type ValidationError struct {
	Field   string // Column name
	Value   string // The invalid value
	Line    int    // Source line number
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// RowValidator checks rows of one table against the required columns of a
// schema.
type RowValidator struct {
	required []string
	pos      []int // Position of each required column in the table, -1 if absent
}

// NewRowValidator creates a validator for a table's header.
func NewRowValidator(schema *Schema, columns []string) *RowValidator {
	required := schema.Required()
	v := &RowValidator{
		required: required,
		pos:      make([]int, len(required)),
	}

	for i, name := range required {
		v.pos[i] = -1
		for j, c := range columns {
			if c == name {
				v.pos[i] = j
				break
			}
		}
	}

	return v
}

// MissingColumns returns required columns absent from the header.
func (v *RowValidator) MissingColumns() []string {
	var missing []string
	for i, p := range v.pos {
		if p < 0 {
			missing = append(missing, v.required[i])
		}
	}
	return missing
}

// MissingRequired reports whether a row lacks any required value.
func (v *RowValidator) MissingRequired(row Row) bool {
	for _, p := range v.pos {
		if p < 0 || p >= len(row.Values) || row.Values[p].IsMissing() {
			return true
		}
	}
	return false
}

// InvalidRows returns the rows of t missing at least one required value,
// in table order.
func InvalidRows(schema *Schema, t *Table) []Row {
	v := NewRowValidator(schema, t.Columns)

	var invalid []Row
	for _, row := range t.Rows {
		if v.MissingRequired(row) {
			invalid = append(invalid, row)
		}
	}
	return invalid
}

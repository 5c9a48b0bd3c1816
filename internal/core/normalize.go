package core

import (
	"context"
	"errors"

	"github.com/JonMunkholm/adcombiner/internal/logging"
)

// Normalizer transforms admitted tables into schema-conformant tables.
type Normalizer struct {
	schema *Schema
}

// NewNormalizer creates a normalizer for a schema.
func NewNormalizer(schema *Schema) *Normalizer {
	return &Normalizer{schema: schema}
}

// Normalize normalizes each table in order. A table whose values cannot be
// coerced to the schema types is left out and reported; the others are
// returned in input order.
func (n *Normalizer) Normalize(ctx context.Context, tables []*Table) ([]*Table, []Diagnostic) {
	logger := logging.FromContext(ctx)

	out := make([]*Table, 0, len(tables))
	var diags []Diagnostic

	for _, t := range tables {
		nt, err := n.NormalizeTable(t)
		if err != nil {
			logger.Debug("normalization failed", "file", t.Source, "error", err)
			d := NewDiagnostic(t.Source, ReasonCoercionFailed, err)
			var verr *ValidationError
			if errors.As(err, &verr) {
				d.Columns = t.Columns
				for _, row := range t.Rows {
					if row.Line == verr.Line {
						d.Rows = []Row{row}
						break
					}
				}
			}
			diags = append(diags, d)
			continue
		}

		logger.Debug("file normalized", "file", t.Source, "rows_in", t.Len(), "rows_out", nt.Len())
		out = append(out, nt)
	}

	return out, diags
}

// NormalizeTable applies, in order:
//
//  1. drop rows missing any required value
//  2. fill missing nullable values with empty text
//  3. project onto the schema columns in schema order
//  4. strip double quotes from required values
//  5. coerce every value to its declared type
//
// Columns absent from the source count as missing on every row. The input
// table is not modified. The result may have zero rows.
func (n *Normalizer) NormalizeTable(t *Table) (*Table, error) {
	fields := n.schema.Fields()
	v := NewRowValidator(n.schema, t.Columns)

	srcPos := make([]int, len(fields))
	for i, f := range fields {
		srcPos[i] = t.ColumnIndex(f.Name)
	}

	out := &Table{
		Source:  t.Source,
		Columns: n.schema.Columns(),
		Rows:    make([]Row, 0, t.Len()),
	}

	for _, row := range t.Rows {
		if v.MissingRequired(row) {
			continue
		}

		values := make([]Value, len(fields))
		for i, f := range fields {
			val := MissingValue()
			if p := srcPos[i]; p >= 0 && p < len(row.Values) {
				val = row.Values[p]
			}

			if val.IsMissing() {
				val = TextValue("")
			}

			if !f.Nullable {
				val = StripQuotes(val)
			}

			coerced, err := Coerce(val, f)
			if err != nil {
				return nil, &ValidationError{
					Field:   f.Name,
					Value:   val.String(),
					Line:    row.Line,
					Message: err.Error(),
				}
			}
			values[i] = coerced
		}

		out.Rows = append(out.Rows, Row{Source: row.Source, Line: row.Line, Values: values})
	}

	return out, nil
}

package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// Aggregator stacks normalized tables into a single table.
type Aggregator struct {
	schema *Schema
}

// NewAggregator creates an aggregator for a schema.
func NewAggregator(schema *Schema) *Aggregator {
	return &Aggregator{schema: schema}
}

// Aggregate concatenates the rows of all tables, first table first, keeping
// the row order within each table. Duplicate rows are kept.
// Returns ErrNoTables for an empty input and an error if a table's columns
// differ from the schema.
func (a *Aggregator) Aggregate(tables []*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	columns := a.schema.Columns()
	total := 0
	for _, t := range tables {
		if !slices.Equal(t.Columns, columns) {
			return nil, fmt.Errorf("aggregate %s: columns %v do not match schema %v", t.Source, t.Columns, columns)
		}
		total += t.Len()
	}

	combined := &Table{
		Columns: columns,
		Rows:    make([]Row, 0, total),
	}
	for _, t := range tables {
		combined.Rows = append(combined.Rows, t.Rows...)
	}

	return combined, nil
}

// WriteCSV serializes a table as CSV: one header row of column names, then
// one line per row. No index column is written.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			if i < len(row.Values) {
				record[i] = row.Values[i].String()
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write line %d of %s: %w", row.Line, row.Source, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteArtifact writes the table to path, replacing any existing file.
// The content is written to a temporary file in the same directory first
// and renamed into place.
func WriteArtifact(path string, t *Table) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".aggregate-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

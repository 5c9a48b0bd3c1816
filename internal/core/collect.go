package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/adcombiner/internal/logging"
)

// DefaultMaxFileSize is the default per-file size limit (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// FileSource opens input files by name.
type FileSource interface {
	Open(name string) (io.ReadCloser, error)
}

// DirSource opens files relative to a directory.
type DirSource struct {
	Dir string
}

// Open implements FileSource.
func (d DirSource) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.Dir, name))
}

// ListInputFiles returns the names of the regular files in dir, sorted by
// name. Subdirectories are ignored; dot-files are skipped unless
// includeHidden is set.
func ListInputFiles(dir string, includeHidden bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !includeHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Collector reads candidate files and applies the file-level admission checks.
type Collector struct {
	schema      *Schema
	source      FileSource
	maxFileSize int64
}

// NewCollector creates a collector. A maxFileSize of zero or less disables
// the size check.
func NewCollector(schema *Schema, source FileSource, maxFileSize int64) *Collector {
	return &Collector{
		schema:      schema,
		source:      source,
		maxFileSize: maxFileSize,
	}
}

// Collect parses each named file in order and returns the admitted tables
// plus diagnostics for every rejected or partially invalid file.
//
// A file is admitted when it parses, has at least one data row, and at least
// one row holds every required value. Admitted tables are returned unmodified,
// including their invalid rows; those are dropped by the Normalizer.
func (c *Collector) Collect(ctx context.Context, names []string) ([]*Table, []Diagnostic) {
	logger := logging.FromContext(ctx)

	var tables []*Table
	var diags []Diagnostic

	for _, name := range names {
		t, err := c.read(name)
		if err != nil {
			reason := ReasonInvalidFormat
			if errors.Is(err, ErrFileTooLarge) {
				reason = ReasonFileTooLarge
			}
			logger.Debug("file rejected", "file", name, "reason", reason, "error", err)
			diags = append(diags, NewDiagnostic(name, reason, err))
			continue
		}

		if t.Len() == 0 {
			logger.Debug("file rejected", "file", name, "reason", ReasonEmptyFile)
			diags = append(diags, NewDiagnostic(name, ReasonEmptyFile, nil))
			continue
		}

		invalid := InvalidRows(c.schema, t)

		if len(invalid) == t.Len() {
			var detail error
			if missing := NewRowValidator(c.schema, t.Columns).MissingColumns(); len(missing) > 0 {
				detail = fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
			}
			logger.Debug("file rejected", "file", name, "reason", ReasonAllRequiredMissing, "rows", t.Len())
			diags = append(diags, NewDiagnostic(name, ReasonAllRequiredMissing, detail))
			continue
		}

		if len(invalid) > 0 {
			d := NewDiagnostic(name, ReasonRowsDropped, nil)
			d.Columns = t.Columns
			d.Rows = invalid
			diags = append(diags, d)
		}

		logger.Debug("file admitted", "file", name, "rows", t.Len(), "invalid_rows", len(invalid))
		tables = append(tables, t)
	}

	return tables, diags
}

// read opens, parses and closes a single file.
func (c *Collector) read(name string) (*Table, error) {
	f, err := c.source.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	return ReadTable(name, f, c.maxFileSize)
}

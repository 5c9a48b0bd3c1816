// Package report turns run diagnostics into human-readable output: log
// entries with an aligned table of offending rows, and an optional YAML
// report file.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/adcombiner/internal/core"
	"github.com/JonMunkholm/adcombiner/internal/logging"
)

// MaxCellWidth caps the display width of a single cell in FormatRows.
var MaxCellWidth = 32

// Report is the serialized summary of a run.
type Report struct {
	RunID       string       `yaml:"run_id"`
	StartedAt   time.Time    `yaml:"started_at"`
	Duration    string       `yaml:"duration"`
	Phase       string       `yaml:"phase"`
	Files       int          `yaml:"files"`
	Admitted    int          `yaml:"admitted"`
	Normalized  int          `yaml:"normalized"`
	Rows        int          `yaml:"rows"`
	Output      string       `yaml:"output"`
	Written     bool         `yaml:"written"`
	Diagnostics []Diagnostic `yaml:"diagnostics,omitempty"`
}

// Diagnostic is the serialized form of a core.Diagnostic.
type Diagnostic struct {
	File    string `yaml:"file,omitempty"`
	Code    string `yaml:"code"`
	Reason  string `yaml:"reason"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
	Detail  string `yaml:"detail,omitempty"`
	Lines   []int  `yaml:"lines,omitempty"`
}

// New builds a report from a run result.
func New(res *core.RunResult) *Report {
	r := &Report{
		RunID:      res.RunID.String(),
		StartedAt:  res.StartedAt.UTC(),
		Duration:   res.Duration.Round(time.Millisecond).String(),
		Phase:      string(res.Phase),
		Files:      res.Files,
		Admitted:   res.Admitted,
		Normalized: res.Normalized,
		Rows:       res.Rows,
		Output:     res.OutputPath,
		Written:    res.Written,
	}

	for _, d := range res.Diagnostics {
		entry := Diagnostic{
			File:    d.Source,
			Code:    d.Message.Code,
			Reason:  string(d.Reason),
			Message: d.Message.Message,
			Action:  d.Message.Action,
			Detail:  d.Detail,
		}
		if len(d.Rows) > 0 {
			entry.Lines = core.Lines(d.Rows)
		}
		r.Diagnostics = append(r.Diagnostics, entry)
	}

	return r
}

// WriteYAML writes the report to path, creating parent directories.
func WriteYAML(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadYAML loads a report written by WriteYAML.
func ReadYAML(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}

// FormatRows renders rows as an aligned text table with a leading line
// number column. Missing cells are shown as NaN; wide cells are truncated
// to MaxCellWidth.
func FormatRows(columns []string, rows []core.Row) string {
	if len(rows) == 0 {
		return ""
	}

	header := append([]string{"line"}, columns...)
	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(header))
		line[0] = strconv.Itoa(row.Line)
		for j := range columns {
			v := core.MissingValue()
			if j < len(row.Values) {
				v = row.Values[j]
			}
			if v.IsMissing() {
				line[j+1] = "NaN"
			} else {
				line[j+1] = runewidth.Truncate(v.String(), MaxCellWidth, "...")
			}
		}
		cells[i] = line
	}

	widths := make([]int, len(header))
	for j, h := range header {
		widths[j] = runewidth.StringWidth(h)
	}
	for _, line := range cells {
		for j, c := range line {
			if w := runewidth.StringWidth(c); w > widths[j] {
				widths[j] = w
			}
		}
	}

	var b strings.Builder
	writeLine := func(line []string) {
		for j, c := range line {
			if j > 0 {
				b.WriteString("  ")
			}
			if j == len(line)-1 {
				b.WriteString(c)
			} else {
				b.WriteString(runewidth.FillRight(c, widths[j]))
			}
		}
		b.WriteByte('\n')
	}

	writeLine(header)
	for _, line := range cells {
		writeLine(line)
	}

	return b.String()
}

// LogDiagnostics writes one warning per diagnostic. Row subsets are attached
// as a rendered table under the "rows" key.
func LogDiagnostics(ctx context.Context, diags []core.Diagnostic) {
	for _, d := range diags {
		logger := logging.WithFields(ctx,
			"code", d.Message.Code,
			"reason", d.Reason,
		)
		if d.Source != "" {
			logger = logger.With("file", d.Source)
		}
		if d.Detail != "" {
			logger = logger.With("detail", d.Detail)
		}
		if len(d.Rows) > 0 {
			logger = logger.With("lines", core.Lines(d.Rows), "rows", "\n"+FormatRows(d.Columns, d.Rows))
		}
		logger.Warn(d.Message.Message)
	}
}

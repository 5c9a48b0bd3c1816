package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/adcombiner/internal/logging"
)

// RunPhase indicates the current stage of a run.
type RunPhase string

const (
	PhaseCollecting  RunPhase = "collecting"
	PhaseNormalizing RunPhase = "normalizing"
	PhaseAggregating RunPhase = "aggregating"
	PhaseWriting     RunPhase = "writing"
	PhaseComplete    RunPhase = "complete"
	PhaseNothing     RunPhase = "nothing_processed"
	PhaseFailed      RunPhase = "failed"
)

// RunResult contains the outcome of a single pipeline run.
type RunResult struct {
	RunID       uuid.UUID
	Phase       RunPhase
	Files       int // Candidate files
	Admitted    int // Tables that passed collection
	Normalized  int // Tables that passed normalization
	Rows        int // Rows in the aggregate
	Diagnostics []Diagnostic
	OutputPath  string
	Written     bool   // False when nothing was processed or the write failed
	Table       *Table // The aggregate, nil when nothing was processed
	StartedAt   time.Time
	Duration    time.Duration
}

// Excluded returns the diagnostics that removed a whole file.
func (r *RunResult) Excluded() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Source != "" && d.Excluded() {
			out = append(out, d)
		}
	}
	return out
}

// Pipeline runs Collector, Normalizer and Aggregator in sequence and writes
// the artifact.
type Pipeline struct {
	Collector  *Collector
	Normalizer *Normalizer
	Aggregator *Aggregator
	OutputPath string
}

// NewPipeline wires the three stages for a schema and file source.
func NewPipeline(schema *Schema, source FileSource, outputPath string, maxFileSize int64) *Pipeline {
	return &Pipeline{
		Collector:  NewCollector(schema, source, maxFileSize),
		Normalizer: NewNormalizer(schema),
		Aggregator: NewAggregator(schema),
		OutputPath: outputPath,
	}
}

// Run processes the named files once.
//
// Per-file problems are returned as diagnostics in the result. When no table
// survives, the result has Phase PhaseNothing, a RUN001 diagnostic, and no
// artifact is written; this is not an error. The only errors returned come
// from aggregating or writing the artifact.
func (p *Pipeline) Run(ctx context.Context, names []string) (*RunResult, error) {
	res := &RunResult{
		RunID:      uuid.New(),
		Files:      len(names),
		OutputPath: p.OutputPath,
		StartedAt:  time.Now(),
	}
	ctx = logging.WithRunID(ctx, res.RunID.String())
	logger := logging.FromContext(ctx)
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	logger.Info("run started", "files", len(names), "output", p.OutputPath)

	res.Phase = PhaseCollecting
	admitted, diags := p.Collector.Collect(ctx, names)
	res.Admitted = len(admitted)
	res.Diagnostics = append(res.Diagnostics, diags...)

	res.Phase = PhaseNormalizing
	normalized, diags := p.Normalizer.Normalize(ctx, admitted)
	res.Normalized = len(normalized)
	res.Diagnostics = append(res.Diagnostics, diags...)

	if len(normalized) == 0 {
		res.Phase = PhaseNothing
		res.Diagnostics = append(res.Diagnostics, NewDiagnostic("", ReasonNoFiles, nil))
		logger.Info("no files to process", "files", len(names), "diagnostics", len(res.Diagnostics))
		return res, nil
	}

	res.Phase = PhaseAggregating
	combined, err := p.Aggregator.Aggregate(normalized)
	if err != nil {
		res.Phase = PhaseFailed
		return res, fmt.Errorf("aggregate: %w", err)
	}
	res.Table = combined
	res.Rows = combined.Len()

	res.Phase = PhaseWriting
	if err := WriteArtifact(p.OutputPath, combined); err != nil {
		res.Phase = PhaseFailed
		return res, fmt.Errorf("write artifact: %w", err)
	}
	res.Written = true
	res.Phase = PhaseComplete

	logger.Info("run complete",
		"files", res.Files,
		"admitted", res.Admitted,
		"normalized", res.Normalized,
		"rows", res.Rows,
		"output", p.OutputPath,
	)

	return res, nil
}

// Package core provides the business logic for combining provider CSV exports.
//
// This package holds all domain logic independent of the CLI, the report
// writer and the optional database loader. It can be driven by the command,
// by tests with synthetic file sets, or by any other caller that supplies a
// list of file names and a [FileSource].
//
// # Architecture
//
// A run is a strictly sequential, single-pass pipeline:
//
//  1. [Collector] reads each named file, parses it as a UTF-8 CSV table and
//     applies the file-level admission checks (parseable, non-empty, at least
//     one row with every required value present).
//  2. [Normalizer] drops rows missing required values, fills missing nullable
//     values with empty text, projects every table onto the [Schema] column
//     order, strips stray double quotes from required text and coerces each
//     column to its declared type.
//  3. [Aggregator] stacks the normalized tables and [WriteArtifact] serializes
//     the result as a single CSV file.
//
// [Pipeline.Run] wires the three stages together and returns a [RunResult].
//
// # Schema
//
// The schema is an explicit ordered list of [FieldSpec] values built once
// with [NewSchema]:
//
//	schema := core.MustSchema(
//	    core.FieldSpec{Name: "CampaignID", Type: core.FieldText},
//	    core.FieldSpec{Name: "Cost Per Ad Click", Type: core.FieldDecimal},
//	    core.FieldSpec{Name: "Phone Number", Type: core.FieldText, Nullable: true},
//	)
//
// # Diagnostics
//
// Per-file problems never abort a run. They are returned as [Diagnostic]
// values alongside the results, each carrying a [Reason] and a support code:
//
//   - FILE001-FILE005: File errors (size, format, encoding, empty)
//   - VAL002-VAL003: Validation errors (decimal coercion, required values)
//   - RUN001: Nothing to process
//
// Only failures while writing the artifact are returned as errors.
package core

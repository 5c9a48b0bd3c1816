// Package core provides the business logic for combining provider CSV exports.
//
// # Diagnostic Codes Reference
//
// Every per-file problem is reported as a Diagnostic carrying a code that can
// be quoted when asking why a file did not make it into the aggregate.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Action: Split the export into smaller files
//
//	FILE002 - Invalid CSV: File is not a valid table format
//	          Action: Export the report as comma-separated values with a header row
//
//	FILE003 - Encoding error: File is not valid UTF-8
//	          Action: Save the file with UTF-8 encoding
//
//	FILE005 - Empty file: The file has no data rows
//	          Action: Check that the export contains campaigns
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL002 - Invalid number: A decimal column holds a non-numeric value
//	         Action: Fix the value; the whole file is left out until then
//
//	VAL003 - Required field: Rows are missing required values
//	         Action: Fill in the required columns; incomplete rows are dropped
//
// # Run Conditions (RUN001-RUN099)
//
//	RUN001 - No files: Nothing could be processed
//	         Action: Place properly formatted CSVs in the input directory
package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for file-level failures.
var (
	ErrInvalidFormat = errors.New("not a valid table format")
	ErrInvalidUTF8   = errors.New("encoding error: file is not valid UTF-8")
	ErrFileTooLarge  = errors.New("file too large")
	ErrNoTables      = errors.New("no tables to aggregate")
)

// Reason classifies a diagnostic.
type Reason string

const (
	ReasonInvalidFormat      Reason = "invalid_format"
	ReasonFileTooLarge       Reason = "file_too_large"
	ReasonEmptyFile          Reason = "empty_file"
	ReasonAllRequiredMissing Reason = "all_required_missing"
	ReasonRowsDropped        Reason = "rows_dropped"
	ReasonCoercionFailed     Reason = "coercion_failed"
	ReasonNoFiles            Reason = "no_files"
)

// UserMessage provides user-friendly information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Code for support reference
}

var reasonMessages = map[Reason]UserMessage{
	ReasonInvalidFormat: {
		Message: "File is not a valid table format",
		Action:  "Export the report as comma-separated values with a header row",
		Code:    "FILE002",
	},
	ReasonFileTooLarge: {
		Message: "File exceeds the configured size limit",
		Action:  "Split the export into smaller files",
		Code:    "FILE001",
	},
	ReasonEmptyFile: {
		Message: "The file is empty",
		Action:  "Check that the export contains campaigns",
		Code:    "FILE005",
	},
	ReasonAllRequiredMissing: {
		Message: "All rows have missing required values - file will not be processed",
		Action:  "Fill in the required columns",
		Code:    "VAL003",
	},
	ReasonRowsDropped: {
		Message: "Rows with empty required values will be dropped from the final result",
		Action:  "Fill in the required columns to keep these rows",
		Code:    "VAL003",
	},
	ReasonCoercionFailed: {
		Message: "A value does not match its column type - file will not be processed",
		Action:  "Fix the value; the whole file is left out until then",
		Code:    "VAL002",
	},
	ReasonNoFiles: {
		Message: "No files to process",
		Action:  "Make sure properly formatted CSVs are in the input directory",
		Code:    "RUN001",
	},
}

// encodingMessage overrides the format message for UTF-8 failures.
var encodingMessage = UserMessage{
	Message: "File is not valid UTF-8",
	Action:  "Save the file with UTF-8 encoding",
	Code:    "FILE003",
}

// MessageFor returns the user message for a reason.
func MessageFor(r Reason) UserMessage {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Check the logs for details",
		Code:    "ERR000",
	}
}

// Diagnostic records why a file was rejected or partially dropped.
// Diagnostics are observational: they never change what gets processed.
type Diagnostic struct {
	Source  string      // Input file name ("" for run-level diagnostics)
	Reason  Reason      // Classification
	Message UserMessage // User-facing text and code
	Detail  string      // Technical detail (wrapped error text)
	Columns []string    // Header for Rows
	Rows    []Row       // Optional offending row subset
}

// NewDiagnostic builds a diagnostic for a reason, attaching the error text
// as detail when err is non-nil.
func NewDiagnostic(source string, reason Reason, err error) Diagnostic {
	d := Diagnostic{
		Source:  source,
		Reason:  reason,
		Message: MessageFor(reason),
	}
	if err != nil {
		d.Detail = err.Error()
		if errors.Is(err, ErrInvalidUTF8) {
			d.Message = encodingMessage
		}
	}
	return d
}

// Excluded reports whether the diagnostic removed the whole file from the run.
func (d Diagnostic) Excluded() bool {
	return d.Reason != ReasonRowsDropped && d.Reason != ReasonNoFiles
}

// String formats the diagnostic as a single line.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Source != "" {
		fmt.Fprintf(&b, "%s: ", d.Source)
	}
	fmt.Fprintf(&b, "[%s] %s", d.Message.Code, d.Message.Message)
	if d.Detail != "" {
		fmt.Fprintf(&b, " (%s)", d.Detail)
	}
	if len(d.Rows) > 0 {
		fmt.Fprintf(&b, " lines %v", Lines(d.Rows))
	}
	return b.String()
}

// FilterDiagnostics returns the diagnostics with the given reason.
func FilterDiagnostics(diags []Diagnostic, reason Reason) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Reason == reason {
			out = append(out, d)
		}
	}
	return out
}

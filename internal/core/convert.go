package core

// convert.go provides cell-level conversions for provider CSV data.
//
// These functions handle the messy reality of exported ad-provider files:
//   - Missing-value tokens ("NA", "NULL", "#N/A", ...) in addition to empty cells
//   - Currency symbols and thousand separators in numbers
//   - Accounting format for negatives "(1.25)"
//   - Stray double quotes left behind by broken quoting
//

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// MissingTokens are cell contents treated as the missing marker when a file
// is parsed. Comparison is exact; an empty cell is always missing.
var MissingTokens = []string{
	"NA", "#NA", "N/A", "n/a", "#N/A", "#N/A N/A", "<NA>",
	"NULL", "null", "None",
	"NaN", "-NaN", "nan", "-nan",
	"1.#IND", "-1.#IND", "1.#QNAN", "-1.#QNAN",
}

// ParseCell converts a raw CSV field to a Value.
func ParseCell(s string) Value {
	if IsMissingToken(s) {
		return MissingValue()
	}
	return TextValue(s)
}

// IsMissingToken reports whether a raw field denotes a missing value.
func IsMissingToken(s string) bool {
	if s == "" {
		return true
	}
	for _, tok := range MissingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// cleanNumeric strips currency symbols and thousands separators, converts
// accounting negatives "(1.25)" to "-1.25", and reports whether the result
// is a plain decimal or scientific number.
func cleanNumeric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	return s, numericRegex.MatchString(s)
}

// ParseDecimal parses a numeric cell into a float64.
// Returns an error for empty or non-numeric input; no default is guessed.
func ParseDecimal(s string) (float64, error) {
	clean, ok := cleanNumeric(s)
	if !ok {
		return 0, fmt.Errorf("invalid number format %q", s)
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}

	return f, nil
}

// StripQuotes removes every double-quote character from the text
// representation of a value. Missing values are returned unchanged.
func StripQuotes(v Value) Value {
	if v.IsMissing() {
		return v
	}
	s := v.String()
	if !strings.Contains(s, `"`) {
		return v
	}
	return TextValue(strings.ReplaceAll(s, `"`, ""))
}

// Coerce converts a non-missing value to the declared type of a field.
// Text columns accept anything; decimal columns require a numeric value.
func Coerce(v Value, spec FieldSpec) (Value, error) {
	if v.IsMissing() {
		return v, fmt.Errorf("cannot coerce missing value to %s", spec.Type)
	}

	switch spec.Type {
	case FieldText:
		if v.Kind == KindText {
			return v, nil
		}
		return TextValue(v.String()), nil

	case FieldDecimal:
		if v.Kind == KindDecimal {
			return v, nil
		}
		f, err := ParseDecimal(v.Text)
		if err != nil {
			return v, err
		}
		return DecimalValue(f), nil

	default:
		return v, fmt.Errorf("unsupported field type %s", spec.Type)
	}
}

// DedupeHeaders makes header names unique by suffixing repeats with ".1",
// ".2", ... in order of appearance. The first occurrence keeps its name; a
// generated name that is already taken gets its own suffix ("A.1.1").
func DedupeHeaders(header []string) []string {
	out := make([]string, len(header))
	counts := make(map[string]int, len(header))

	for i, name := range header {
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = name + "." + strconv.Itoa(n)
			n = counts[name]
		}
		out[i] = name
		counts[name] = n + 1
	}

	return out
}

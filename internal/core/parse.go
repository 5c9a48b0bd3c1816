package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ReadTable parses a UTF-8 CSV stream with a header row into a Table.
//
// Blank lines are skipped and stray quotes inside fields are tolerated.
// Rows shorter than the header are padded with missing values; a row longer
// than the header, invalid UTF-8, or a stream without a header row make the
// whole input invalid. maxSize limits the raw byte count (0 disables it).
func ReadTable(source string, r io.Reader, maxSize int64) (*Table, error) {
	data, err := io.ReadAll(WrapForParsing(r, maxSize))
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, maxSize)
		}
		return nil, fmt.Errorf("read: %w", err)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %w at byte %d", ErrInvalidFormat, ErrInvalidUTF8, invalidUTF8Offset(data))
	}

	return parseCSV(source, data)
}

func parseCSV(source string, data []byte) (*Table, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no columns to parse", ErrInvalidFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	t := &Table{
		Source:  source,
		Columns: DedupeHeaders(header),
	}
	width := len(t.Columns)
	lastLine, lastCol := cr.FieldPos(len(header) - 1)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}

		line, _ := cr.FieldPos(0)
		if len(record) > width {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d",
				ErrInvalidFormat, line, width, len(record))
		}

		values := make([]Value, width)
		for i := range values {
			if i < len(record) {
				values[i] = ParseCell(record[i])
			} else {
				values[i] = MissingValue()
			}
		}

		t.Rows = append(t.Rows, Row{Source: source, Line: line, Values: values})
		lastLine, lastCol = cr.FieldPos(len(record) - 1)
	}

	// LazyQuotes lets an unclosed quoted field run to EOF; only the final
	// field of the final record can have done so.
	if unterminatedQuote(data, lastLine, lastCol) {
		return nil, fmt.Errorf("%w: line %d: unterminated quoted field", ErrInvalidFormat, lastLine)
	}

	return t, nil
}

// unterminatedQuote reports whether the field starting at line:col (1-based,
// as returned by csv.Reader.FieldPos) opens with a quote that is never closed.
// A quote closes a field when followed by a delimiter, a line break or EOF;
// "" is an escaped quote and any other bare quote is kept as text.
func unterminatedQuote(data []byte, line, col int) bool {
	off := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(data[off:], '\n')
		if i < 0 {
			return false
		}
		off += i + 1
	}
	off += col - 1
	if off < 0 || off >= len(data) || data[off] != '"' {
		return false
	}

	for i := off + 1; i < len(data); i++ {
		if data[i] != '"' {
			continue
		}
		if i+1 == len(data) {
			return false
		}
		switch data[i+1] {
		case '"':
			i++
		case ',', '\n', '\r':
			return false
		}
	}
	return true
}

// invalidUTF8Offset returns the byte offset of the first invalid sequence.
func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}

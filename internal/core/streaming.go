package core

// streaming.go provides io.Reader wrappers applied before CSV parsing:
//
//   - BOMSkippingReader: Removes the UTF-8 BOM (0xEF 0xBB 0xBF) added by Windows tools
//   - SizeLimitReader: Fails with ErrFileTooLarge once a byte budget is exceeded
//
// Use WrapForParsing to apply both in the correct order.

import (
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	pending    []byte // Bytes read during BOM detection not yet returned
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n < 3 || !bytes.Equal(buf[:], utf8BOM) {
			r.pending = append(r.pending, buf[:n]...)
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

// SizeLimitReader wraps an io.Reader and returns ErrFileTooLarge once more
// than Limit bytes have been read. A Limit of zero or less disables the check.
type SizeLimitReader struct {
	reader    io.Reader
	Limit     int64
	BytesRead int64
}

// NewSizeLimitReader creates a size-limited reader.
func NewSizeLimitReader(r io.Reader, limit int64) *SizeLimitReader {
	return &SizeLimitReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *SizeLimitReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, ErrFileTooLarge
	}
	return n, err
}

// WrapForParsing enforces the size limit on the raw bytes and strips a
// leading BOM.
func WrapForParsing(r io.Reader, limit int64) io.Reader {
	return NewBOMSkippingReader(NewSizeLimitReader(r, limit))
}

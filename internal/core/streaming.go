package core

// streaming.go prepares raw upload bytes for tokenizing without loading
// the whole file into memory:
//
//   - NewDecodingReader: strips a UTF-8 BOM and replaces invalid UTF-8
//     sequences with U+FFFD on the fly
//   - ProgressReader: tracks bytes read for progress reporting

import (
	"bytes"
	"io"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewDecodingReader wraps r so that a leading BOM is dropped and invalid
// UTF-8 is repaired before the tokenizer sees the text.
func NewDecodingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ProgressReader wraps an io.Reader to track bytes read.
// BytesRead is safe to call from other goroutines while reads are in flight.
type ProgressReader struct {
	reader io.Reader
	read   atomic.Int64
	total  int64 // 0 if unknown
}

// NewProgressReader creates a counting reader with an optional total size.
func NewProgressReader(r io.Reader, total int64) *ProgressReader {
	return &ProgressReader{reader: r, total: total}
}

// Read implements io.Reader.
func (r *ProgressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read.Add(int64(n))
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (r *ProgressReader) BytesRead() int64 {
	return r.read.Load()
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if the total is unknown.
func (r *ProgressReader) Progress() int {
	if r.total <= 0 {
		return 0
	}
	p := int(r.read.Load() * 100 / r.total)
	if p > 100 {
		p = 100
	}
	return p
}

// readHead reads at most limit bytes from r. truncated reports whether the
// source had more data. A truncated head is cut back to its last newline
// so a partial trailing row never reaches the tokenizer.
func readHead(r io.Reader, limit int) (head []byte, truncated bool, err error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, false, err
	}
	if len(buf) <= limit {
		return buf, false, nil
	}

	buf = buf[:limit]
	if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i+1]
	}
	return buf, true, nil
}

package core

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
)

// rowSource yields raw rows in file order. Next returns io.EOF once the
// input is exhausted or the row limit is reached.
type rowSource interface {
	Next(ctx context.Context) ([]string, error)
}

// csvTokenizer adapts encoding/csv to rowSource.
//
// Configuration mirrors what the pipeline expects of its tokenizer:
// empty and whitespace-only lines are skipped, fields are trimmed, '"' is
// both quote and escape, and an optional hard row limit stops reading early.
// BOM stripping happens upstream in NewDecodingReader.
type csvTokenizer struct {
	reader *csv.Reader
	limit  int // 0 = no limit
	rows   int
}

func newCSVTokenizer(r io.Reader, limit int) *csvTokenizer {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // short and long rows are not reconciled
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = false

	return &csvTokenizer{reader: cr, limit: limit}
}

// Next returns the next non-empty row with every field trimmed.
func (t *csvTokenizer) Next(ctx context.Context) ([]string, error) {
	if t.limit > 0 && t.rows >= t.limit {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := t.reader.Read()
		if err != nil {
			return nil, err
		}

		// A line of only blanks reads as a single empty field
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		t.rows++
		return rec, nil
	}
}

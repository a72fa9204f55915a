package core

// pipeline.go turns an ordered row stream into a PreviewResult.
//
// The pipeline pulls one row at a time from a rowSource. Row 0 is the
// header; rows 1..cap are stored, sampled and handed to the RowProcessor
// hooks; later rows are only counted. All per-call state lives in a
// rowAccumulator that is dropped when runPipeline returns.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyCSV is returned when the input holds no data rows.
var ErrEmptyCSV = errors.New("CSV file is empty")

// ErrFileRead is returned when the source could not be read (bounded mode).
var ErrFileRead = errors.New("failed to read file")

// ParseError reports malformed delimited text found by the tokenizer.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "failed to parse CSV: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ContextCheckInterval is how often (in rows) the pipeline checks for
// context cancellation between rows.
var ContextCheckInterval = 100

// rowAccumulator holds the running state of one ingestion call.
type rowAccumulator struct {
	cfg         pipelineConfig
	header      []string
	samples     map[string][]string
	previewRows [][]string
	rowCount    int
}

func newRowAccumulator(cfg pipelineConfig) *rowAccumulator {
	return &rowAccumulator{
		cfg:         cfg,
		samples:     make(map[string][]string),
		previewRows: make([][]string, 0),
	}
}

// add processes one trimmed row in arrival order.
func (a *rowAccumulator) add(ctx context.Context, row []string) error {
	row = trimFields(row)
	index := a.rowCount
	a.rowCount++

	if index == 0 {
		a.header = row
		if a.cfg.collectSamples {
			for _, h := range a.header {
				a.samples[h] = []string{}
			}
		}
		if p := a.cfg.processor; p != nil && p.OnHeader != nil {
			if err := p.OnHeader(ctx, a.header); err != nil {
				return fmt.Errorf("header: %w", err)
			}
		}
		return nil
	}

	if a.cfg.previewRows > 0 && index > a.cfg.previewRows {
		return nil
	}

	if !a.cfg.discardRows {
		a.previewRows = append(a.previewRows, row)
	}

	if a.cfg.collectSamples {
		for col, value := range row {
			// Excess fields have no header to be keyed by
			if col >= len(a.header) {
				break
			}
			name := a.header[col]
			a.samples[name] = append(a.samples[name], value)
		}
	}

	if p := a.cfg.processor; p != nil && p.OnRow != nil {
		if err := p.OnRow(ctx, row, a.header, index); err != nil {
			return fmt.Errorf("row %d: %w", index, err)
		}
	}
	return nil
}

// result assembles the final PreviewResult.
func (a *rowAccumulator) result() (*PreviewResult, error) {
	if a.rowCount < 2 {
		return nil, ErrEmptyCSV
	}

	columns := make([]ColumnPreview, len(a.header))
	for i, name := range a.header {
		col := ColumnPreview{
			Name:         name,
			Samples:      []string{},
			InferredType: TypeString,
		}
		if a.cfg.collectSamples {
			if s := a.samples[name]; s != nil {
				col.Samples = s
			}
			col.InferredType = InferColumnType(col.Samples)
		}
		columns[i] = col
	}

	return &PreviewResult{
		FileName:     a.cfg.fileName,
		Columns:      columns,
		PreviewRows:  a.previewRows,
		TotalColumns: len(a.header),
		RowsRead:     a.rowCount - 1,
	}, nil
}

// runPipeline drains src through a fresh accumulator. It produces exactly
// one outcome: a result or an error.
func runPipeline(ctx context.Context, src rowSource, cfg pipelineConfig) (*PreviewResult, error) {
	acc := newRowAccumulator(cfg)

	for {
		if ContextCheckInterval > 0 && acc.rowCount%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("operation cancelled at row %d: %w", acc.rowCount, err)
			}
		}

		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classifySourceError(ctx, err, acc.rowCount)
		}

		if err := acc.add(ctx, row); err != nil {
			return nil, err
		}
	}

	return acc.result()
}

// classifySourceError separates tokenizer errors from cancellation and
// plain I/O failures of the underlying reader.
func classifySourceError(ctx context.Context, err error, row int) error {
	var csvErr *csv.ParseError
	switch {
	case errors.As(err, &csvErr):
		return &ParseError{Err: err}
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return fmt.Errorf("operation cancelled at row %d: %w", row, err)
	default:
		return fmt.Errorf("read input: %w", err)
	}
}

// trimFields returns a trimmed copy of row.
func trimFields(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

package core

// importer.go turns CSV rows into dataset items.
//
// An import is a server-mode pass whose RowProcessor coerces the mapped
// columns of each row into a DatasetItem. Items are buffered and handed to
// an ItemWriter every BatchSize rows, so memory stays O(batch size) no
// matter how long the file is. Batches are written in row order; the final
// partial batch is written only after the whole file parsed cleanly.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// DefaultBatchSize is the number of items written per ItemWriter call.
const DefaultBatchSize = 500

var (
	// ErrInputMappingRequired is returned when no input column is mapped.
	ErrInputMappingRequired = errors.New("input column mapping is required")

	// ErrInvalidDatasetID is returned for an empty or oversized dataset ID.
	ErrInvalidDatasetID = errors.New("invalid dataset id")

	// ErrNoItemStore is returned when importing without a configured writer.
	ErrNoItemStore = errors.New("no item store configured")

	// ErrMissingColumn is returned when a mapped column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
)

// maxDatasetIDLen bounds dataset IDs accepted from callers.
const maxDatasetIDLen = 255

// ImportMapping names the CSV columns that feed each part of an item.
// A single column yields a scalar value, several yield a record keyed by
// column name.
type ImportMapping struct {
	Input          []string `json:"input"`
	ExpectedOutput []string `json:"expectedOutput,omitempty"`
	Metadata       []string `json:"metadata,omitempty"`
}

// Validate checks that at least one input column is mapped.
func (m ImportMapping) Validate() error {
	if len(m.Input) == 0 {
		return ErrInputMappingRequired
	}
	return nil
}

// columns returns every mapped column once, in mapping order.
func (m ImportMapping) columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, group := range [][]string{m.Input, m.ExpectedOutput, m.Metadata} {
		for _, c := range group {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// DatasetItem is one imported row.
type DatasetItem struct {
	ID             uuid.UUID `json:"id"`
	DatasetID      string    `json:"datasetId"`
	Input          any       `json:"input"`
	ExpectedOutput any       `json:"expectedOutput,omitempty"`
	Metadata       any       `json:"metadata,omitempty"`
	SourceRow      int       `json:"sourceRow"`
}

// ItemWriter persists dataset items. WriteItems returns the number of
// items stored.
type ItemWriter interface {
	WriteItems(ctx context.Context, items []DatasetItem) (int64, error)
}

// ImportRequest describes one file to import.
type ImportRequest struct {
	DatasetID string
	FileName  string
	Mapping   ImportMapping
	Reader    io.Reader
	Size      int64 // Source size for progress logging, 0 if unknown
}

// ImportResult summarises a completed import.
type ImportResult struct {
	ImportID   string   `json:"importId"`
	DatasetID  string   `json:"datasetId"`
	FileName   string   `json:"fileName,omitempty"`
	Imported   int64    `json:"imported"`
	Batches    int      `json:"batches"`
	RowsRead   int      `json:"rowsRead"`
	Columns    []string `json:"columns"`
	DurationMs int64    `json:"durationMs"`
}

// Importer streams CSV rows into an ItemWriter.
type Importer struct {
	Writer    ItemWriter
	BatchSize int
}

// NewImporter creates an Importer. batchSize <= 0 uses DefaultBatchSize.
func NewImporter(w ItemWriter, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{Writer: w, BatchSize: batchSize}
}

// itemBatcher is the per-import state behind the RowProcessor hooks.
type itemBatcher struct {
	importer  *Importer
	datasetID string
	mapping   ImportMapping
	progress  *ProgressReader

	index    HeaderIndex
	pending  []DatasetItem
	imported int64
	batches  int
}

func (b *itemBatcher) onHeader(ctx context.Context, header []string) error {
	b.index = MakeHeaderIndex(header)
	for _, col := range b.mapping.columns() {
		if _, ok := b.index[col]; !ok {
			return fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}
	return nil
}

func (b *itemBatcher) onRow(ctx context.Context, row []string, header []string, index int) error {
	item := DatasetItem{
		ID:        uuid.New(),
		DatasetID: b.datasetID,
		SourceRow: index,
	}

	var err error
	if item.Input, err = ParseColumns(b.mapping.Input, row, b.index); err != nil {
		return err
	}
	if item.ExpectedOutput, err = ParseColumns(b.mapping.ExpectedOutput, row, b.index); err != nil {
		return err
	}
	if item.Metadata, err = ParseColumns(b.mapping.Metadata, row, b.index); err != nil {
		return err
	}

	b.pending = append(b.pending, item)
	if len(b.pending) >= b.importer.BatchSize {
		return b.flush(ctx)
	}
	return nil
}

// flush hands pending items to the writer.
func (b *itemBatcher) flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	n, err := b.importer.Writer.WriteItems(ctx, b.pending)
	if err != nil {
		return fmt.Errorf("write batch %d: %w", b.batches+1, err)
	}
	b.imported += n
	b.batches++
	b.pending = make([]DatasetItem, 0, b.importer.BatchSize)

	logging.FromContext(ctx).Debug("batch written",
		"dataset_id", b.datasetID,
		"batch", b.batches,
		"items", n,
		"progress", b.progress.Progress(),
	)
	return nil
}

// Import reads req.Reader to the end and writes one item per data row.
// Items from batches written before a failure stay written.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if im.Writer == nil {
		return nil, ErrNoItemStore
	}
	if req.DatasetID == "" || len(req.DatasetID) > maxDatasetIDLen {
		return nil, ErrInvalidDatasetID
	}
	if err := req.Mapping.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	importID := uuid.New().String()
	logger := logging.WithFields(ctx,
		"import_id", importID,
		"dataset_id", req.DatasetID,
		"file", req.FileName,
	)

	progress := NewProgressReader(req.Reader, req.Size)
	batcher := &itemBatcher{
		importer:  im,
		datasetID: req.DatasetID,
		mapping:   req.Mapping,
		progress:  progress,
		pending:   make([]DatasetItem, 0, im.BatchSize),
	}

	logger.Info("import started", clientFields(ctx)...)

	result, err := ParseServerStream(ctx, progress, ServerOptions{
		FileName:    req.FileName,
		DiscardRows: true,
		Processor: &RowProcessor{
			OnHeader: batcher.onHeader,
			OnRow:    batcher.onRow,
		},
	})
	if err == nil {
		err = batcher.flush(ctx)
	}
	if err != nil {
		logger.Warn("import failed",
			"imported", batcher.imported,
			"bytes_read", progress.BytesRead(),
			"error", err,
		)
		return nil, err
	}

	columns := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		columns[i] = c.Name
	}

	out := &ImportResult{
		ImportID:   importID,
		DatasetID:  req.DatasetID,
		FileName:   req.FileName,
		Imported:   batcher.imported,
		Batches:    batcher.batches,
		RowsRead:   result.RowsRead,
		Columns:    columns,
		DurationMs: time.Since(start).Milliseconds(),
	}

	logger.Info("import completed",
		"imported", out.Imported,
		"batches", out.Batches,
		"bytes_read", progress.BytesRead(),
		"duration_ms", out.DurationMs,
	)
	return out, nil
}

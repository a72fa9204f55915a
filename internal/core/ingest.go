package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// ParseClient builds a bounded preview from the head of a file.
//
// Only the first opts.HeadBytes of r are read, so columns whose
// distinguishing values appear later in the file may be under-represented.
// The result is tagged with name.
func ParseClient(ctx context.Context, name string, r io.Reader, opts ClientOptions) (*PreviewResult, error) {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	if opts.HeadBytes <= 0 {
		opts.HeadBytes = DefaultHeadBytes
	}

	head, truncated, err := readHead(r, opts.HeadBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}

	cfg := pipelineConfig{
		previewRows:    opts.PreviewRows,
		collectSamples: opts.CollectSamples,
		fileName:       name,
	}

	result, err := ingest(ctx, bytes.NewReader(head), cfg)
	if err != nil {
		return nil, err
	}
	result.Truncated = truncated
	return result, nil
}

// ParseServer runs a full pass over a complete file held in memory.
func ParseServer(ctx context.Context, data []byte, opts ServerOptions) (*PreviewResult, error) {
	return ParseServerStream(ctx, bytes.NewReader(data), opts)
}

// ParseServerStream runs a full pass over r, visiting every row unless
// opts.PreviewRows sets a cap. Hooks in opts.Processor see each row in order.
func ParseServerStream(ctx context.Context, r io.Reader, opts ServerOptions) (*PreviewResult, error) {
	cfg := pipelineConfig{
		previewRows:    opts.PreviewRows,
		collectSamples: opts.CollectSamples,
		processor:      opts.Processor,
		discardRows:    opts.DiscardRows,
		fileName:       opts.FileName,
	}
	return ingest(ctx, r, cfg)
}

// ingest wires the decoding reader, tokenizer and pipeline for one call.
func ingest(ctx context.Context, r io.Reader, cfg pipelineConfig) (*PreviewResult, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	src := newCSVTokenizer(NewDecodingReader(r), cfg.rowLimit())
	result, err := runPipeline(ctx, src, cfg)
	if err != nil {
		logger.Debug("csv ingestion failed",
			"file", cfg.fileName,
			"error", err,
		)
		return nil, err
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "csv ingested",
		slog.String("file", cfg.fileName),
		slog.Int("rows", result.RowsRead),
		slog.Int("columns", result.TotalColumns),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return result, nil
}

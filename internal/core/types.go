package core

import "context"

// ColumnType is the inferred semantic type of a column or a single value.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
	TypeNull    ColumnType = "null"
	TypeJSON    ColumnType = "json"
	TypeArray   ColumnType = "array"
	TypeUnknown ColumnType = "unknown"
	TypeMixed   ColumnType = "mixed"
)

// ColumnPreview describes one header column of a parsed file.
type ColumnPreview struct {
	Name         string     `json:"name"`
	Samples      []string   `json:"samples"`
	InferredType ColumnType `json:"inferredType"`
}

// PreviewResult is the outcome of a single ingestion call.
type PreviewResult struct {
	FileName     string          `json:"fileName,omitempty"`
	Columns      []ColumnPreview `json:"columns"`
	PreviewRows  [][]string      `json:"previewRows"`
	TotalColumns int             `json:"totalColumns"`

	// RowsRead counts data rows seen by the pipeline. With a row cap the
	// tokenizer stops at the cap, so the count is exact only for uncapped passes.
	RowsRead int `json:"rowsRead"`

	// Truncated is set when the input was a head slice of a longer source.
	Truncated bool `json:"truncated,omitempty"`
}

// HeaderIndex maps header names to their position in a row.
type HeaderIndex map[string]int

// HeaderFunc is invoked once with the trimmed header row.
type HeaderFunc func(ctx context.Context, header []string) error

// RowFunc is invoked for each data row within the cap. index is the
// row's position in the file, the header being row 0.
type RowFunc func(ctx context.Context, row []string, header []string, index int) error

// RowProcessor holds optional hooks run while rows are processed.
// Hooks run on the ingesting goroutine, one row at a time, in file order.
type RowProcessor struct {
	OnHeader HeaderFunc
	OnRow    RowFunc
}

// Preview defaults for the bounded mode.
const (
	DefaultPreviewRows = 10
	DefaultHeadBytes   = 64 * 1024
)

// ClientOptions configures a bounded preview over the head of a file.
type ClientOptions struct {
	PreviewRows    int  // Row cap (0 falls back to DefaultPreviewRows)
	CollectSamples bool // Collect per-column samples for type inference
	HeadBytes      int  // Bytes read from the source (0 falls back to DefaultHeadBytes)
}

// DefaultClientOptions returns the options used for browser-style previews.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		PreviewRows:    DefaultPreviewRows,
		CollectSamples: true,
		HeadBytes:      DefaultHeadBytes,
	}
}

// ServerOptions configures a full pass over a complete file.
type ServerOptions struct {
	FileName       string // Tags the result
	CollectSamples bool
	PreviewRows    int // Optional row cap, 0 means every row
	Processor      *RowProcessor

	// DiscardRows hands rows to Processor without keeping them in the
	// result, so long imports do not hold the whole file in memory.
	DiscardRows bool
}

// pipelineConfig is the single configuration consumed by the row pipeline.
// Entry points build it explicitly.
type pipelineConfig struct {
	previewRows    int
	collectSamples bool
	processor      *RowProcessor
	fileName       string
	discardRows    bool
}

// rowLimit is the hard tokenizer limit for the config: the cap plus the header.
func (c pipelineConfig) rowLimit() int {
	if c.previewRows <= 0 {
		return 0
	}
	return c.previewRows + 1
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

// maxSamplesShown bounds the samples listed per column in table output.
const maxSamplesShown = 3

// maxCellWidth bounds preview cells in table output.
const maxCellWidth = 40

func renderReports(w io.Writer, cfg *Config, reports []fileReport) error {
	if cfg.Output == "json" {
		return renderJSON(w, reports)
	}

	for i, r := range reports {
		if r.Preview == nil {
			continue
		}
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		renderPreview(w, r.File, r.Preview, cfg.Rows)
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderPreview prints the column summary and up to maxRows preview rows.
func renderPreview(w io.Writer, file string, result *core.PreviewResult, maxRows int) {
	summary := fmt.Sprintf("%s: %d columns, %d rows read", file, result.TotalColumns, result.RowsRead)
	if result.Truncated {
		summary += " (head of file)"
	}
	_, _ = fmt.Fprintln(w, summary)

	cols := table.NewWriter()
	cols.SetOutputMirror(w)
	cols.SetStyle(table.StyleLight)
	cols.AppendHeader(table.Row{"#", "Column", "Type", "Samples"})
	for i, c := range result.Columns {
		cols.AppendRow(table.Row{i + 1, c.Name, string(c.InferredType), formatSamples(c.Samples)})
	}
	cols.Render()

	if len(result.PreviewRows) == 0 {
		return
	}

	rows := table.NewWriter()
	rows.SetOutputMirror(w)
	rows.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, c := range result.Columns {
		header[i] = c.Name
	}
	rows.AppendHeader(header)

	shown := result.PreviewRows
	if maxRows > 0 && len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	for _, row := range shown {
		out := make(table.Row, len(row))
		for i, cell := range row {
			out[i] = truncate(cell, maxCellWidth)
		}
		rows.AppendRow(out)
	}
	rows.Render()

	if hidden := len(result.PreviewRows) - len(shown); hidden > 0 {
		_, _ = fmt.Fprintf(w, "(%d more rows)\n", hidden)
	}
}

func formatSamples(samples []string) string {
	if len(samples) == 0 {
		return ""
	}
	shown := samples
	if len(shown) > maxSamplesShown {
		shown = shown[:maxSamplesShown]
	}
	quoted := make([]string, len(shown))
	for i, s := range shown {
		quoted[i] = fmt.Sprintf("%q", truncate(s, maxCellWidth))
	}
	out := strings.Join(quoted, ", ")
	if extra := len(samples) - len(shown); extra > 0 {
		out += fmt.Sprintf(" +%d", extra)
	}
	return out
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// renderImport prints an import summary.
func renderImport(w io.Writer, cfg *Config, result *core.ImportResult) error {
	if cfg.Output == "json" {
		return renderJSON(w, result)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Import", result.ImportID},
		{"Dataset", result.DatasetID},
		{"File", result.FileName},
		{"Items", result.Imported},
		{"Batches", result.Batches},
		{"Columns", strings.Join(result.Columns, ", ")},
		{"Duration", fmt.Sprintf("%dms", result.DurationMs)},
	})
	t.Render()
	return nil
}

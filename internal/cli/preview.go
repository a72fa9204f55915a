package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

// fileReport is the outcome of previewing one file.
type fileReport struct {
	File    string              `json:"file"`
	Preview *core.PreviewResult `json:"preview,omitempty"`
	Error   string              `json:"error,omitempty"`

	err error
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview FILE...",
		Short: "Show inferred column types and the first rows of CSV files",
		Long: `Preview reads the head of each file (see --head-bytes), infers a type for
every column from the sampled values and prints the first rows.

With --full the whole file is read, so types reflect every row and the
row count is exact. Files are previewed concurrently (see --parallel) and
reported in the order given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			reports := previewFiles(cmd.Context(), cfg, args)

			if err := renderReports(cmd.OutOrStdout(), cfg, reports); err != nil {
				return err
			}

			var failed int
			for _, r := range reports {
				if r.err != nil {
					failed++
					printError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", r.File, r.err))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be previewed", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().Bool("full", false, "Read whole files instead of the head")
	cmd.Flags().IntP("rows", "n", 0, "Number of rows to show (default 10)")
	cmd.Flags().Bool("samples", true, "Collect samples and infer column types")
	cmd.Flags().Int("head-bytes", 0, "Bytes read from each file without --full (default 65536)")
	cmd.Flags().IntP("parallel", "p", 0, "Files previewed at once (default 4)")

	return cmd
}

// previewFiles previews every path concurrently. Reports keep the order of
// paths; a failing file does not stop the others.
func previewFiles(ctx context.Context, cfg *Config, paths []string) []fileReport {
	reports := make([]fileReport, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)

	for i, path := range paths {
		g.Go(func() error {
			result, err := previewFile(gctx, cfg, path)
			reports[i] = fileReport{File: path, Preview: result, err: err}
			if err != nil {
				reports[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

func previewFile(ctx context.Context, cfg *Config, path string) (*core.PreviewResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)

	if !cfg.Full {
		return core.ParseClient(ctx, name, f, core.ClientOptions{
			PreviewRows:    cfg.Rows,
			CollectSamples: cfg.Samples,
			HeadBytes:      cfg.HeadBytes,
		})
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	progress := core.NewProgressReader(f, size)

	result, err := core.ParseServerStream(ctx, progress, core.ServerOptions{
		FileName:       name,
		CollectSamples: cfg.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("after %d bytes: %w", progress.BytesRead(), err)
	}
	return result, nil
}

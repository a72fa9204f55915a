package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/store"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import CSV rows as dataset items",
		Long: `Import reads FILE to the end and stores one dataset item per row in the
SQLite database given by --db.

--input names the columns that form an item's input. A single column gives
a plain value, several give a record keyed by column name. --expected and
--metadata work the same way and are optional.`,
		Example: `  csvpreview import qa.csv --dataset qa --input question --expected answer
  csvpreview import runs.csv --dataset runs --input prompt,context --metadata source`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			datasetID, _ := cmd.Flags().GetString("dataset")
			input, _ := cmd.Flags().GetStringSlice("input")
			expected, _ := cmd.Flags().GetStringSlice("expected")
			metadata, _ := cmd.Flags().GetStringSlice("metadata")

			result, err := importFile(cmd, cfg, args[0], datasetID, core.ImportMapping{
				Input:          input,
				ExpectedOutput: expected,
				Metadata:       metadata,
			})
			if err != nil {
				return err
			}
			return renderImport(cmd.OutOrStdout(), cfg, result)
		},
	}

	cmd.Flags().String("dataset", "", "Dataset the items belong to (required)")
	cmd.Flags().StringSlice("input", nil, "Columns forming the item input (required)")
	cmd.Flags().StringSlice("expected", nil, "Columns forming the expected output")
	cmd.Flags().StringSlice("metadata", nil, "Columns stored as item metadata")
	cmd.Flags().String("db", "", "SQLite database path (default csvpreview.db)")
	cmd.Flags().Int("batch-size", 0, "Items written per transaction (default 500)")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func importFile(cmd *cobra.Command, cfg *Config, path, datasetID string, mapping core.ImportMapping) (*core.ImportResult, error) {
	// Fail on a bad mapping before creating the database file
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	ctx := cmd.Context()
	st, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return core.NewImporter(st, cfg.BatchSize).Import(ctx, core.ImportRequest{
		DatasetID: datasetID,
		FileName:  filepath.Base(path),
		Mapping:   mapping,
		Reader:    f,
		Size:      size,
	})
}

// Package cli provides the csvpreview command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// Version information (set at build time).
var Version = "0.1.0"

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "csvpreview",
		Short: "Preview CSV files and import them as dataset items",
		Long: `csvpreview reads delimited text files, infers a type for every column
and shows the first rows. The import command turns each row into a dataset
item stored in a local SQLite database.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := LoadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, "text")
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewPreviewCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command with os.Args.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		return err
	}
	return nil
}

// printError writes err and, for known failures, its support code and action.
func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	if core.IsUserFacing(err) {
		_, _ = fmt.Fprintf(w, "  %s\n", core.FormatUserError(err))
	}
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	if cfg, err := LoadConfig(nil); err == nil {
		return cfg
	}
	return &Config{
		Rows:      core.DefaultPreviewRows,
		Samples:   true,
		HeadBytes: core.DefaultHeadBytes,
		Parallel:  DefaultParallel,
		Output:    DefaultOutput,
		DBPath:    DefaultDBPath,
		BatchSize: core.DefaultBatchSize,
		LogLevel:  DefaultLogLevel,
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display csvpreview version information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "csvpreview v%s\n", version)
		},
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

// EnvPrefix is the prefix of environment variables read by the CLI.
const EnvPrefix = "CSVPREVIEW_"

// Defaults for values with no core equivalent.
const (
	DefaultOutput   = "table"
	DefaultDBPath   = "csvpreview.db"
	DefaultParallel = 4
	DefaultLogLevel = "warn"
)

// Config holds the CLI settings shared by all commands.
type Config struct {
	Rows      int    `koanf:"rows"`
	Samples   bool   `koanf:"samples"`
	HeadBytes int    `koanf:"head_bytes"`
	Full      bool   `koanf:"full"`
	Parallel  int    `koanf:"parallel"`
	Output    string `koanf:"output"`
	DBPath    string `koanf:"db"`
	BatchSize int    `koanf:"batch_size"`
	LogLevel  string `koanf:"log_level"`
}

// LoadConfig layers defaults, CSVPREVIEW_* environment variables and
// explicitly set flags, in increasing priority.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"rows":       core.DefaultPreviewRows,
		"samples":    true,
		"head_bytes": core.DefaultHeadBytes,
		"full":       false,
		"parallel":   DefaultParallel,
		"output":     DefaultOutput,
		"db":         DefaultDBPath,
		"batch_size": core.DefaultBatchSize,
		"log_level":  DefaultLogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Environment: CSVPREVIEW_HEAD_BYTES -> head_bytes
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 3. Flags the user actually set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []string

	if c.Rows <= 0 {
		errs = append(errs, fmt.Sprintf("rows (%d) must be positive", c.Rows))
	}
	if c.HeadBytes <= 0 {
		errs = append(errs, fmt.Sprintf("head-bytes (%d) must be positive", c.HeadBytes))
	}
	if c.Parallel <= 0 {
		errs = append(errs, fmt.Sprintf("parallel (%d) must be positive", c.Parallel))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Sprintf("batch-size (%d) must be positive", c.BatchSize))
	}
	switch c.Output {
	case "table", "json":
	default:
		errs = append(errs, fmt.Sprintf("output (%q) must be one of: table, json", c.Output))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

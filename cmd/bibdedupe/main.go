// Package main provides the bibdedupe CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/bibdedupe/internal/config"
	"github.com/matsen/bibdedupe/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// configPath overrides the config file location
	configPath string
	// appConfig is loaded once per invocation by the root pre-run hook
	appConfig *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibdedupe",
	Short: "Find duplicate citations across bibliographic exports",
	Long: `bibdedupe parses bibliographic exports (RIS, PubMed/MEDLINE, EndNote XML,
CSV/TSV, JSON, Paperpile, PDF) into a common citation schema and finds
records that describe the same work.

Citations are exchanged as JSONL; duplicate groups can be indexed in SQLite.
All commands output JSON by default for scripting; use --human for a summary.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./config.yml)")
	rootCmd.Version = Version
}

// setup loads .env, the configuration, and the global logger.
func setup(cmd *cobra.Command, args []string) error {
	// Load .env if present (optional)
	_ = godotenv.Load()

	appConfig = mustLoadConfig()
	if err := config.InitLogger(appConfig.Log); err != nil {
		exitWithError(ExitConfigError, "initializing logger: %v", err)
	}
	zap.L().Debug("config loaded", zap.String("path", configPath), zap.String("version", Version))
	return nil
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(path string) *storage.DB {
	if path == "" {
		exitWithError(ExitConfigError, "no database path: pass --db or set storage.db_path")
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/bibdedupe/internal/config"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or show the configuration",
	Long: `Create or show the configuration.

Configuration is read from ./config.yml (or --config) and BIBDEDUPE_*
environment variables, e.g. BIBDEDUPE_DEDUPE_GROUP_BY_YEAR=false.

Usage:
  bibdedupe config init     # Write a config file with defaults
  bibdedupe config show     # Print the effective configuration`,
	// Loading is deferred to the subcommands so init works with a broken file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultFile
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
		}

		if err := config.Default().Save(path); err != nil {
			exitWithError(ExitError, "%v", err)
		}

		if humanOutput {
			fmt.Printf("Wrote %s\n", path)
		} else {
			outputJSON(StatusResponse{Status: "created", Path: path})
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()

		if humanOutput {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				exitWithError(ExitError, "encoding config: %v", err)
			}
			fmt.Print(string(data))
			return nil
		}
		outputJSON(cfg)
		return nil
	},
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goforwind/jacoco/pkg/config"
	"github.com/goforwind/jacoco/pkg/log"
)

var (
	// Global flags
	configPath   string
	databasePath string
	verbosity    string
	logDir       string

	// Root command
	rootCmd = &cobra.Command{
		Use:   "jacoco-report",
		Short: "Build the sessions page of a coverage report",
		Long: `jacoco-report collects coverage sessions and per-class execution data
into an SQLite database and renders the report page that lists them.

Run the subcommands in this order:

  1. import    Load sessions and execution data (JSON dumps or Go cover profiles).
  2. render    Write the sessions page into the report directory.
  3. bigquery  Optionally publish the same data to BigQuery.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an HCL configuration file")
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "coverage.db", "SQLite database holding imported data")
	rootCmd.PersistentFlags().StringVar(&verbosity, "verbosity", "info", "Log verbosity (error, info, debug, trace)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for log files (console only when empty)")
}

// loadConfig applies, in increasing precedence: defaults, the config file,
// flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("database") {
		cfg.Database = databasePath
	}
	if flags.Changed("verbosity") {
		cfg.LogLevel = verbosity
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = renderOutputDir
	}
	if flags.Changed("title") {
		cfg.Title = renderTitle
	}
	if flags.Changed("project") {
		cfg.BigQueryProject = bqProject
	}
	if flags.Changed("dataset") {
		cfg.BigQueryDataset = bqDataset
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createLogger creates a logger for the configured verbosity
func createLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger, err := log.New(level, cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goforwind/jacoco/pkg/data"
	"github.com/goforwind/jacoco/pkg/goprofile"
	"github.com/goforwind/jacoco/pkg/store"
)

var (
	importDumps    []string
	importProfiles []string
	importReset    bool

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Load sessions and execution data into the database",
		Long: `Append sessions and execution data to the database.

Sources are read in the order given: JSON dumps first, then Go coverage
profiles. A JSON dump has the form

  {"sessions": [{"id": "...", "start": <ms>, "dump": <ms>}],
   "executionData": [{"name": "...", "id": <int64>}]}

Each Go coverage profile becomes one session named after the file, with one
execution record per source file. Session order is preserved for rendering.`,
		Example: `  # Import a JSON dump into a fresh database
  jacoco-report import --dump exec.json --reset

  # Add two Go coverage profiles
  jacoco-report import --profile unit.out --profile e2e.out`,
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().StringArrayVar(&importDumps, "dump", nil, "JSON dump file (repeatable)")
	importCmd.Flags().StringArrayVar(&importProfiles, "profile", nil, "Go coverage profile (repeatable)")
	importCmd.Flags().BoolVar(&importReset, "reset", false, "Remove previously imported data first")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if len(importDumps) == 0 && len(importProfiles) == 0 {
		return fmt.Errorf("at least one --dump or --profile must be specified")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if importReset {
		logger.Debug("Clearing %s", cfg.Database)
		if err := st.Reset(ctx); err != nil {
			return fmt.Errorf("reset database: %w", err)
		}
	}

	type source struct {
		path string
		load func(string) (*data.Dump, error)
	}
	var sources []source
	for _, p := range importDumps {
		sources = append(sources, source{p, data.ReadDumpFile})
	}
	for _, p := range importProfiles {
		sources = append(sources, source{p, goprofile.Import})
	}

	for i, src := range sources {
		logger.Progress("[%d/%d] Importing %s", i+1, len(sources), src.path)
		dump, err := src.load(src.path)
		if err != nil {
			return fmt.Errorf("import %s: %w", src.path, err)
		}
		if err := st.AddSessions(ctx, src.path, dump.Sessions); err != nil {
			return fmt.Errorf("import %s: %w", src.path, err)
		}
		if err := st.AddExecutionData(ctx, src.path, dump.ExecutionData); err != nil {
			return fmt.Errorf("import %s: %w", src.path, err)
		}
		logger.Debug("  %d session(s), %d execution record(s)", len(dump.Sessions), len(dump.ExecutionData))
	}

	sessions, records, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	logger.Success("Database %s now holds %d session(s) and %d execution record(s)", cfg.Database, sessions, records)
	return nil
}

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goforwind/jacoco/pkg/bqexport"
	"github.com/goforwind/jacoco/pkg/store"
)

// BigQuery command flags
var (
	bqProject  string
	bqDataset  string
	bqReportID string
)

var bigqueryCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "BigQuery operations",
	Long:  `Export report data to Google BigQuery for cross-report analysis.`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest sessions and execution data into BigQuery",
	Long: `Ingest the sessions and execution data of the database into BigQuery.

Creates two tables in the specified dataset:
  - sessions:       One row per session, with its position on the page
  - execution_data: One row per class record, id in hex and integer form

The dataset and tables are created if they don't exist.`,
	Example: `  # Ingest using the database name as report id
  jacoco-report bigquery --project my-project --dataset coverage ingest

  # Ingest with an explicit report id
  jacoco-report bigquery --project my-project --dataset coverage \
    ingest --report-id nightly-2026-10-18`,
	RunE: runIngest,
}

func init() {
	bigqueryCmd.PersistentFlags().StringVar(&bqProject, "project", "", "GCP project ID")
	bigqueryCmd.PersistentFlags().StringVar(&bqDataset, "dataset", "", "BigQuery dataset name")

	ingestCmd.Flags().StringVar(&bqReportID, "report-id", "", "Report identifier (defaults to the database file name)")

	bigqueryCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(bigqueryCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.BigQueryProject == "" || cfg.BigQueryDataset == "" {
		return fmt.Errorf("--project and --dataset (or a bigquery block in the config file) are required")
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ingestionTime := time.Now().UTC()

	reportID := bqReportID
	if reportID == "" {
		reportID = strings.TrimSuffix(filepath.Base(cfg.Database), filepath.Ext(cfg.Database))
	}

	logger.Info("Ingesting report %s from %s", reportID, cfg.Database)
	logger.Info("BigQuery target: %s.%s", cfg.BigQueryProject, cfg.BigQueryDataset)
	logger.Info("Ingestion time: %s", ingestionTime.Format(time.RFC3339))

	st, err := store.OpenReadOnly(cfg.Database)
	if err != nil {
		return fmt.Errorf("%w (run 'import' first)", err)
	}
	defer st.Close()

	sessions, err := st.Sessions(ctx)
	if err != nil {
		return err
	}
	records, err := st.ExecutionData(ctx)
	if err != nil {
		return err
	}
	sessionRows, dataRows := bqexport.BuildRows(reportID, ingestionTime, sessions, records)

	exporter, err := bqexport.NewExporter(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, logger)
	if err != nil {
		return err
	}
	defer exporter.Close()

	if err := exporter.EnsureTables(ctx); err != nil {
		return fmt.Errorf("setup BigQuery: %w", err)
	}
	if err := exporter.Export(ctx, sessionRows, dataRows); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	logger.Success("Ingestion complete: %d session row(s), %d execution data row(s)", len(sessionRows), len(dataRows))
	return nil
}

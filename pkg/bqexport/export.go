// Package bqexport publishes the sessions and execution data behind a report
// to BigQuery so ids can be cross-referenced across reports.
package bqexport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/goforwind/jacoco/pkg/data"
	"github.com/goforwind/jacoco/pkg/htmlreport"
	"github.com/goforwind/jacoco/pkg/log"
)

const (
	SessionsTable      = "sessions"
	ExecutionDataTable = "execution_data"

	batchSize = 500
)

// SessionRow is one session of one ingested report
type SessionRow struct {
	IngestionTime time.Time `bigquery:"ingestion_time"`
	ReportID      string    `bigquery:"report_id"`
	Position      int       `bigquery:"position"`
	SessionID     string    `bigquery:"session_id"`
	StartTime     time.Time `bigquery:"start_time"`
	DumpTime      time.Time `bigquery:"dump_time"`
}

// ExecutionDataRow is one execution record of one ingested report
type ExecutionDataRow struct {
	IngestionTime time.Time `bigquery:"ingestion_time"`
	ReportID      string    `bigquery:"report_id"`
	ClassName     string    `bigquery:"class_name"`
	ClassID       string    `bigquery:"class_id"` // same hex form as the sessions page
	ClassIDInt    int64     `bigquery:"class_id_int"`
}

var sessionsSchema = bigquery.Schema{
	{Name: "ingestion_time", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "report_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "position", Type: bigquery.IntegerFieldType, Required: true},
	{Name: "session_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "start_time", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "dump_time", Type: bigquery.TimestampFieldType, Required: true},
}

var executionDataSchema = bigquery.Schema{
	{Name: "ingestion_time", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "report_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "class_name", Type: bigquery.StringFieldType, Required: true},
	{Name: "class_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "class_id_int", Type: bigquery.IntegerFieldType, Required: true},
}

// BuildRows converts report inputs into BigQuery rows. Sessions keep their
// order through Position; execution data keeps the given order.
func BuildRows(reportID string, ingestionTime time.Time, sessions []data.SessionInfo, records []data.ExecutionData) ([]SessionRow, []ExecutionDataRow) {
	sessionRows := make([]SessionRow, 0, len(sessions))
	for i, s := range sessions {
		sessionRows = append(sessionRows, SessionRow{
			IngestionTime: ingestionTime,
			ReportID:      reportID,
			Position:      i,
			SessionID:     s.ID,
			StartTime:     time.UnixMilli(s.StartTimeStamp).UTC(),
			DumpTime:      time.UnixMilli(s.DumpTimeStamp).UTC(),
		})
	}

	dataRows := make([]ExecutionDataRow, 0, len(records))
	for _, e := range records {
		dataRows = append(dataRows, ExecutionDataRow{
			IngestionTime: ingestionTime,
			ReportID:      reportID,
			ClassName:     e.Name,
			ClassID:       htmlreport.FormatID(e.ID),
			ClassIDInt:    e.ID,
		})
	}

	return sessionRows, dataRows
}

// warehouse is the subset of a BigQuery dataset the exporter writes through
type warehouse interface {
	CreateDataset(ctx context.Context) error
	CreateTable(ctx context.Context, table string, md *bigquery.TableMetadata) error
	Put(ctx context.Context, table string, rows interface{}) error
}

// datasetWarehouse talks to a live dataset
type datasetWarehouse struct {
	dataset *bigquery.Dataset
}

func (w datasetWarehouse) CreateDataset(ctx context.Context) error {
	return w.dataset.Create(ctx, &bigquery.DatasetMetadata{})
}

func (w datasetWarehouse) CreateTable(ctx context.Context, table string, md *bigquery.TableMetadata) error {
	return w.dataset.Table(table).Create(ctx, md)
}

func (w datasetWarehouse) Put(ctx context.Context, table string, rows interface{}) error {
	return w.dataset.Table(table).Inserter().Put(ctx, rows)
}

// Exporter writes rows into one BigQuery dataset
type Exporter struct {
	client  *bigquery.Client
	wh      warehouse
	project string
	dataset string
	logger  *log.Logger
}

// NewExporter creates a BigQuery client for project
func NewExporter(ctx context.Context, project, dataset string, logger *log.Logger) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create BigQuery client: %w", err)
	}
	return &Exporter{
		client:  client,
		wh:      datasetWarehouse{dataset: client.Dataset(dataset)},
		project: project,
		dataset: dataset,
		logger:  logger,
	}, nil
}

// Close releases the client
func (e *Exporter) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// EnsureTables creates the dataset and tables if they don't exist
func (e *Exporter) EnsureTables(ctx context.Context) error {
	if err := e.wh.CreateDataset(ctx); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("create dataset: %w", err)
		}
	} else {
		e.logger.Info("Created dataset %s.%s", e.project, e.dataset)
	}

	tables := []struct {
		name   string
		schema bigquery.Schema
	}{
		{SessionsTable, sessionsSchema},
		{ExecutionDataTable, executionDataSchema},
	}
	for _, tbl := range tables {
		err := e.wh.CreateTable(ctx, tbl.name, &bigquery.TableMetadata{
			Schema: tbl.schema,
			TimePartitioning: &bigquery.TimePartitioning{
				Field: "ingestion_time",
			},
			Clustering: &bigquery.Clustering{
				Fields: []string{"report_id"},
			},
		})
		if err != nil {
			if !isAlreadyExists(err) {
				return fmt.Errorf("create %s table: %w", tbl.name, err)
			}
			continue
		}
		e.logger.Info("Created table %s", tbl.name)
	}
	return nil
}

// Export inserts both row sets in batches. A failed batch is logged and the
// remaining batches are still sent; the error reports how many failed.
func (e *Exporter) Export(ctx context.Context, sessionRows []SessionRow, dataRows []ExecutionDataRow) error {
	failed := 0
	for i, batch := range chunk(sessionRows, batchSize) {
		if err := e.wh.Put(ctx, SessionsTable, batch); err != nil {
			e.logger.Warning("%s batch %d insert failed: %v", SessionsTable, i, err)
			failed++
		}
	}
	for i, batch := range chunk(dataRows, batchSize) {
		if err := e.wh.Put(ctx, ExecutionDataTable, batch); err != nil {
			e.logger.Warning("%s batch %d insert failed: %v", ExecutionDataTable, i, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d insert batch(es) failed", failed)
	}
	return nil
}

// chunk splits rows into consecutive slices of at most size elements
func chunk[T any](rows []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

func isAlreadyExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Already Exists") ||
		strings.Contains(msg, "alreadyExists") ||
		strings.Contains(msg, "409")
}

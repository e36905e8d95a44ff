package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goforwind/jacoco/pkg/htmlreport"
)

const fullConfig = `
database   = "data/coverage.db"
output_dir = "out/html"
log_level  = "debug"

report {
  title       = "Nightly"
  footer      = "Built by CI"
  date_layout = "2006-01-02 15:04:05"
  time_zone   = "UTC"

  parent {
    file  = "index.html"
    label = "Nightly Report"
  }
}

bigquery {
  project = "my-project"
  dataset = "coverage"
}
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig), "report.hcl")
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Database:        "data/coverage.db",
		OutputDir:       "out/html",
		LogLevel:        "debug",
		Title:           "Nightly",
		Footer:          "Built by CI",
		DateLayout:      "2006-01-02 15:04:05",
		TimeZone:        "UTC",
		ParentFile:      "index.html",
		ParentLabel:     "Nightly Report",
		BigQueryProject: "my-project",
		BigQueryDataset: "coverage",
	}, cfg)
	require.NoError(t, cfg.Validate())
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestParse_PartialReportBlock(t *testing.T) {
	cfg, err := Parse([]byte(`report { title = "Only title" }`), "partial.hcl")
	require.NoError(t, err)
	assert.Equal(t, "Only title", cfg.Title)
	assert.Equal(t, htmlreport.DefaultDateLayout, cfg.DateLayout)
	assert.Equal(t, "Local", cfg.TimeZone)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"syntax":          `database = `,
		"unknown arg":     `colour = "blue"`,
		"missing dataset": `bigquery { project = "p" }`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), "bad.hcl")
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`output_dir = "site"`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "site", cfg.OutputDir)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TimeZone = "Mars/Olympus_Mons"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DateLayout = ""
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ParentFile = "index.html"
	require.Error(t, cfg.Validate())
}

func TestContext(t *testing.T) {
	cfg := Default()
	cfg.TimeZone = "UTC"
	cfg.DateLayout = "2006-01-02T15:04:05.000"
	cfg.ParentFile = "index.html"
	cfg.ParentLabel = "Report"

	ctx, err := cfg.Context()
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01T00:00:01.500", ctx.FormatTime(time.UnixMilli(1500)))
	assert.Equal(t, "Coverage Report", ctx.Title)
	require.NotNil(t, ctx.Parent)
	assert.Equal(t, htmlreport.PageDescriptor{
		FileName:     "index.html",
		Label:        "Report",
		ElementStyle: htmlreport.StyleElReport,
	}, *ctx.Parent)

	cfg.ParentFile = ""
	ctx, err = cfg.Context()
	require.NoError(t, err)
	assert.Nil(t, ctx.Parent)
}

// Package config loads report settings from an optional HCL file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/goforwind/jacoco/pkg/htmlreport"
)

// Config holds the settings shared by all commands
type Config struct {
	Database  string
	OutputDir string
	LogLevel  string
	LogDir    string

	Title      string
	Footer     string
	DateLayout string
	TimeZone   string

	ParentFile  string
	ParentLabel string

	BigQueryProject string
	BigQueryDataset string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Database:   "coverage.db",
		OutputDir:  "report",
		LogLevel:   "info",
		Title:      "Coverage Report",
		Footer:     "Created with jacoco-report",
		DateLayout: htmlreport.DefaultDateLayout,
		TimeZone:   "Local",
	}
}

type hclFile struct {
	Database  *string      `hcl:"database,optional"`
	OutputDir *string      `hcl:"output_dir,optional"`
	LogLevel  *string      `hcl:"log_level,optional"`
	LogDir    *string      `hcl:"log_dir,optional"`
	Report    *hclReport   `hcl:"report,block"`
	BigQuery  *hclBigQuery `hcl:"bigquery,block"`
}

type hclReport struct {
	Title      *string    `hcl:"title,optional"`
	Footer     *string    `hcl:"footer,optional"`
	DateLayout *string    `hcl:"date_layout,optional"`
	TimeZone   *string    `hcl:"time_zone,optional"`
	Parent     *hclParent `hcl:"parent,block"`
}

type hclParent struct {
	File  string `hcl:"file"`
	Label string `hcl:"label"`
}

type hclBigQuery struct {
	Project string `hcl:"project"`
	Dataset string `hcl:"dataset"`
}

// LoadFile reads the HCL file at path on top of the defaults
func LoadFile(path string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return decode(f.Body, path)
}

// Parse reads HCL source on top of the defaults; filename is used in diagnostics
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	return decode(f.Body, filename)
}

func decode(body hcl.Body, filename string) (*Config, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	cfg := Default()
	setString(&cfg.Database, parsed.Database)
	setString(&cfg.OutputDir, parsed.OutputDir)
	setString(&cfg.LogLevel, parsed.LogLevel)
	setString(&cfg.LogDir, parsed.LogDir)

	if r := parsed.Report; r != nil {
		setString(&cfg.Title, r.Title)
		setString(&cfg.Footer, r.Footer)
		setString(&cfg.DateLayout, r.DateLayout)
		setString(&cfg.TimeZone, r.TimeZone)
		if r.Parent != nil {
			cfg.ParentFile = r.Parent.File
			cfg.ParentLabel = r.Parent.Label
		}
	}
	if bq := parsed.BigQuery; bq != nil {
		cfg.BigQueryProject = bq.Project
		cfg.BigQueryDataset = bq.Dataset
	}

	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks the settings that cannot be checked while decoding
func (c *Config) Validate() error {
	if c.DateLayout == "" {
		return errors.New("date_layout must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if (c.ParentFile == "") != (c.ParentLabel == "") {
		return errors.New("parent page needs both file and label")
	}
	return nil
}

// Context builds the page context described by the configuration
func (c *Config) Context() (*htmlreport.Context, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	ctx := &htmlreport.Context{
		FormatTime: htmlreport.LayoutFormatter(c.DateLayout, loc),
		Title:      c.Title,
		Footer:     c.Footer,
	}
	if c.ParentFile != "" {
		ctx.Parent = &htmlreport.PageDescriptor{
			FileName:     c.ParentFile,
			Label:        c.ParentLabel,
			ElementStyle: htmlreport.StyleElReport,
		}
	}
	return ctx, nil
}

// Location resolves TimeZone; "" and "Local" mean the system zone
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

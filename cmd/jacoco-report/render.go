package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goforwind/jacoco/pkg/htmlreport"
	"github.com/goforwind/jacoco/pkg/store"
)

var (
	renderOutputDir string
	renderTitle     string
	renderStdout    bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the sessions page of the report",
	Long: `Render the sessions page from the imported data.

The page lists the sessions in import order and the execution data sorted by
class name, with class ids shown as 16 hex digits. Either section is replaced
by a short notice when there is nothing to show.`,
	Example: `  # Render into ./report/.sessions.html
  jacoco-report render

  # Render with settings from a config file into a custom directory
  jacoco-report render --config report.hcl --output-dir site/coverage`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutputDir, "output-dir", "o", "report", "Report output directory")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Report title shown in the page title")
	renderCmd.Flags().BoolVar(&renderStdout, "stdout", false, "Write the page to stdout instead of the output directory")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()
	if renderStdout {
		// stdout carries the page
		logger.SetOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

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
	logger.Debug("Loaded %d session(s) and %d execution record(s) from %s", len(sessions), len(records), cfg.Database)

	pageCtx, err := cfg.Context()
	if err != nil {
		return err
	}
	page := htmlreport.NewSessionsPage(sessions, records, pageCtx)

	if renderStdout {
		return htmlreport.RenderPage(cmd.OutOrStdout(), page, pageCtx)
	}

	logger.Progress("Rendering %s into %s", page.Descriptor().Label, cfg.OutputDir)
	folder, err := htmlreport.NewOutputFolder(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := htmlreport.WritePage(folder, page, pageCtx); err != nil {
		// a partially written page is not usable
		os.Remove(folder.Path(page.Descriptor().FileName))
		return fmt.Errorf("render %s: %w", page.Descriptor().FileName, err)
	}

	logger.Success("Sessions page generated: %s", folder.Path(page.Descriptor().FileName))
	return nil
}

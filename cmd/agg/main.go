package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"aggstat/adapters/excel"
	"aggstat/adapters/postgres"
	"aggstat/adapters/report"
	"aggstat/adapters/tsv"
	"aggstat/internal"
	"aggstat/internal/agg"
	"aggstat/internal/config"
	"aggstat/ports"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "agg",
		Short: "Aggregate verification statistics with bootstrap confidence intervals",
	}
	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var xlsxPath string
	var reportPath string
	var archiveRuns bool

	cmd := &cobra.Command{
		Use:   "run [settings-file]",
		Short: "Run one aggregation job from a YAML settings file",
		Long: `Run one aggregation job. The settings file names the input and output
tables plus the series, statistics and bootstrap options.

Example: agg run params.yaml --xlsx results.xlsx --report run.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), args[0], xlsxPath, reportPath, archiveRuns)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also export the output table as a spreadsheet")
	cmd.Flags().StringVar(&reportPath, "report", "", "also write an HTML run report")
	cmd.Flags().BoolVar(&archiveRuns, "archive", false, "archive the run to DATABASE_URL")
	return cmd
}

func runJob(ctx context.Context, settingsPath, xlsxPath, reportPath string, archiveRuns bool) error {
	logger := internal.DefaultLogger

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	if settings.InputPath == "" || settings.OutputPath == "" {
		return fmt.Errorf("settings must name agg_stat_input and agg_stat_output")
	}

	input, err := tsv.NewReader().ReadFile(settings.InputPath)
	if err != nil {
		return err
	}
	logger.Info("loaded %d records from %s", input.Len(), settings.InputPath)

	started := time.Now()
	output, err := agg.New(settings, logger).Run(input)
	if err != nil {
		return err
	}
	finished := time.Now()
	logger.Info("computed %d series rows in %s", output.Len(), finished.Sub(started))

	if err := tsv.NewWriter().WriteFile(settings.OutputPath, output); err != nil {
		return err
	}
	logger.Info("wrote %s", settings.OutputPath)

	record := ports.RunRecord{
		ID:         uuid.NewString(),
		LineType:   settings.LineType,
		Statistics: settings.Statistics,
		InputRows:  input.Len(),
		OutputRows: output.Len(),
		StartedAt:  started,
		FinishedAt: finished,
	}

	if xlsxPath != "" {
		if err := excel.NewResultWriter().WriteFile(xlsxPath, output); err != nil {
			return err
		}
		logger.Info("wrote %s", xlsxPath)
	}
	if reportPath != "" {
		if err := report.NewGenerator().WriteFile(reportPath, record, output); err != nil {
			return err
		}
		logger.Info("wrote %s", filepath.Clean(reportPath))
	}
	if archiveRuns {
		url := os.Getenv("DATABASE_URL")
		if url == "" {
			return fmt.Errorf("--archive requires DATABASE_URL")
		}
		db, err := postgres.Connect(url)
		if err != nil {
			return err
		}
		defer db.Close()
		archive := postgres.NewRunRepository(db)
		if err := archive.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := archive.SaveRun(ctx, record, output); err != nil {
			return err
		}
		logger.Info("archived run %s", record.ID)
	}
	return nil
}

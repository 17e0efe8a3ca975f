package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/s22a0058-ai/FYP/internal/config"
	"github.com/s22a0058-ai/FYP/internal/dataset"
	"github.com/s22a0058-ai/FYP/internal/exporter"
	"github.com/s22a0058-ai/FYP/internal/services"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// processorFlags carries the dataset overrides shared by all subcommands.
type processorFlags struct {
	source string
	path   string
	url    string
	sheet  string
	out    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &processorFlags{}

	root := &cobra.Command{
		Use:           "processor",
		Short:         "Offline cleaning and summary tooling for the child nutrition dataset",
		Long:          "processor runs the dataset pipeline without the web server: fetch the raw workbook or CSV, clean it, and write report files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.source, "source", "", "dataset source: local, http, or drive (default from config)")
	root.PersistentFlags().StringVar(&flags.path, "path", "", "local workbook or CSV path")
	root.PersistentFlags().StringVar(&flags.url, "url", "", "dataset download URL for the http source")
	root.PersistentFlags().StringVar(&flags.sheet, "sheet", "", "workbook sheet name (default: first sheet)")

	root.AddCommand(newCleanCommand(flags), newSummaryCommand(flags), newValidateCommand(flags))
	return root
}

func newCleanCommand(flags *processorFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the dataset and write the cleaned records plus summary reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, stats, err := loadRecords(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return services.ErrEmptyDataset
			}

			out := flags.out
			if out == "" {
				out = "cleaned_records.csv"
			}

			writer, err := newCSVWriter()
			if err != nil {
				return err
			}
			if err := writer.WriteRecordsFile(out, records); err != nil {
				return fmt.Errorf("failed to write records: %w", err)
			}

			summarizer := dataset.NewSummarizer(newLogger())
			summary := summarizer.Summarize(cmd.Context(), records)
			if err := writer.WriteSummaryFiles(summary); err != nil {
				return fmt.Errorf("failed to write summary files: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cleaned %d records (%d missing BMI, %d missing salaries) -> %s + %d summary tables\n",
				stats.Records, stats.AbsentBMI, stats.AbsentSalaries, out, len(exporter.SummaryTables(summary)))
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.out, "out", "", "records output file (default cleaned_records.csv under the reports directory)")
	return cmd
}

func newSummaryCommand(flags *processorFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Clean the dataset and print every summary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, _, err := loadRecords(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return services.ErrEmptyDataset
			}

			summarizer := dataset.NewSummarizer(newLogger())
			summary := summarizer.Summarize(cmd.Context(), records)
			tables := exporter.SummaryTables(summary)

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tables)
			case "csv":
				for _, table := range tables {
					fmt.Fprintf(out, "# %s\n", table.Name)
					if err := exporter.WriteTable(out, table, false); err != nil {
						return fmt.Errorf("failed to write table %s: %w", table.Name, err)
					}
					fmt.Fprintln(out)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	return cmd
}

func newValidateCommand(flags *processorFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Fetch and clean the dataset, reporting data quality statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, stats, err := loadRecords(cmd.Context(), flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records:         %d\n", stats.Records)
			fmt.Fprintf(out, "missing bmi:     %d\n", stats.AbsentBMI)
			fmt.Fprintf(out, "missing salary:  %d\n", stats.AbsentSalaries)
			fmt.Fprintf(out, "filled income:   %d\n", stats.FilledIncome)
			fmt.Fprintf(out, "filled status:   %d\n", stats.FilledStatus)

			if len(records) == 0 {
				return services.ErrEmptyDataset
			}
			return nil
		},
	}
}

// loadRecords fetches the raw dataset and runs it through the cleaning
// pipeline, applying any command-line overrides on top of the configuration.
func loadRecords(ctx context.Context, flags *processorFlags) ([]domain.Record, dataset.CleanStats, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, dataset.CleanStats{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(&cfg.Dataset, flags)

	logger := newLogger()
	source, err := dataset.NewSource(cfg.Dataset, logger)
	if err != nil {
		return nil, dataset.CleanStats{}, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	fetchCtx, cancel := context.WithTimeout(ctx, config.DefaultHTTPTimeout)
	defer cancel()

	raws, err := source.Fetch(fetchCtx)
	if err != nil {
		return nil, dataset.CleanStats{}, fmt.Errorf("failed to fetch dataset from %s: %w", source.Describe(), err)
	}

	cleaner := dataset.NewCleaner(dataset.CleanConfig{
		MissingTokens:  cfg.Dataset.MissingTokens,
		CurrencyPrefix: cfg.Dataset.CurrencyPrefix,
		TextSentinel:   cfg.Dataset.TextSentinel,
		IncomeFill:     cfg.Dataset.IncomeFill,
		NutritionFill:  cfg.Dataset.NutritionFill,
	})
	records, stats := cleaner.CleanAll(raws)
	return records, stats, nil
}

func applyFlags(cfg *config.DatasetConfig, flags *processorFlags) {
	if flags.source != "" {
		cfg.Source = flags.source
	}
	if flags.path != "" {
		cfg.Source = config.SourceLocal
		cfg.Path = flags.path
	}
	if flags.url != "" {
		cfg.Source = config.SourceHTTP
		cfg.URL = flags.url
	}
	if flags.sheet != "" {
		cfg.SheetName = flags.sheet
	}
}

func newCSVWriter() (*exporter.CSVWriter, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	return exporter.NewCSVWriter(paths), nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

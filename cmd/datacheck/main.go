package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"secustats/internal/config"
	"secustats/internal/dataset"
	"secustats/internal/infrastructure"
)

// datacheck validates a delinquency CSV export before it is handed to the
// server: it runs the same loader and prints the load report, including a
// sample of rejected rows.
func main() {
	file := flag.String("file", "", "path to the CSV export (defaults to the configured dataset file under data/)")
	delimiter := flag.String("delimiter", ";", "field delimiter")
	encoding := flag.String("encoding", "latin-1", "file encoding (latin-1 or utf-8)")
	metropolitan := flag.Bool("metropolitan", true, "keep only metropolitan departments (codes 01-95)")
	maxErrors := flag.Int("max-errors", 20, "maximum rejected rows to list")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *file == "" {
		paths, err := config.GetPaths(cfg.Dataset.File)
		if err != nil {
			logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
			os.Exit(1)
		}
		*file = paths.DatasetFile
	}

	if *delimiter == "" {
		*delimiter = ";"
	}

	opts := dataset.Options{
		Delimiter:        rune((*delimiter)[0]),
		Encoding:         *encoding,
		MetropolitanOnly: *metropolitan,
		MaxRowErrors:     *maxErrors,
	}

	logger.Info("Checking dataset",
		slog.String("file", *file),
		slog.String("encoding", *encoding),
		slog.Bool("metropolitan_only", *metropolitan))

	ds, err := dataset.Load(*file, opts)
	if err != nil {
		logger.Error("Dataset check failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}

	report := ds.Report()
	first, last, _ := ds.YearRange()

	fmt.Printf("OK: %s\n", *file)
	fmt.Printf("  rows read:        %d\n", report.TotalRows)
	fmt.Printf("  records loaded:   %d\n", report.Loaded)
	fmt.Printf("  rows rejected:    %d\n", report.Rejected)
	fmt.Printf("  rows filtered:    %d\n", report.Filtered)
	fmt.Printf("  dept codes derived: %d\n", report.DerivedDeptCodes)
	fmt.Printf("  years:            %d-%d\n", first, last)
	fmt.Printf("  indicators:       %d\n", len(ds.Indicators()))
	fmt.Printf("  zones:            %d\n", len(ds.Zones()))

	if len(report.RowErrors) > 0 {
		fmt.Printf("\nrejected rows (first %d):\n", len(report.RowErrors))
		for _, re := range report.RowErrors {
			fmt.Printf("  line %d: %s\n", re.Line, re.Reason)
		}
	}

	if report.Rejected > 0 {
		logger.Warn("Dataset loaded with rejected rows",
			slog.Int("loaded", report.Loaded),
			slog.Int("rejected", report.Rejected))
	}
}

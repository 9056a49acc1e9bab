// Command report loads the experiment data directory once and writes the
// summary and raw exports into a reports directory, without serving HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ecdash/internal/config"
	"ecdash/internal/exporter"
	"ecdash/internal/infrastructure"
	"ecdash/internal/registry"
	"ecdash/internal/services"
	"ecdash/pkg/contracts/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dataDir = flag.String("data", "", "data directory (default from config)")
		outDir  = flag.String("out", "", "reports output directory (default from config)")
		school  = flag.String("school", "", "restrict raw exports to one school (default all)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Paths.ReportsDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	reg := registry.Default()
	svc := services.NewDashboardService(cfg.Paths.DataDir, reg, logger)

	if *school != "" && !svc.ValidSchool(*school) {
		return fmt.Errorf("unknown school: %s", *school)
	}

	ctx := context.Background()
	ds, err := svc.Load(ctx)
	if err != nil {
		return err
	}

	for _, warning := range ds.Warnings {
		logger.Warn("load warning",
			slog.String("code", warning.Code),
			slog.String("item", warning.Item),
			slog.String("message", warning.Message))
	}

	files := exporter.NewFileExporter(cfg.Paths.ReportsDir, logger)

	envRecords := svc.FilterEnvironment(ds, *school)
	growthRecords := svc.FilterGrowth(ds, *school)

	exports := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"환경데이터_요약.csv", func(w io.Writer) error {
			return exporter.WriteEnvironmentSummaryCSV(w, ds.Environment.Summary)
		}},
		{"생육결과데이터_요약.csv", func(w io.Writer) error {
			return exporter.WriteGrowthSummaryCSV(w, ds.Growth.Summary)
		}},
		{exporter.EnvironmentRawFilename(*school), func(w io.Writer) error {
			return exporter.WriteEnvironmentRawCSV(w, envRecords)
		}},
		{exporter.GrowthRawFilename(*school), func(w io.Writer) error {
			return exporter.WriteGrowthRawXLSX(w, growthRecords)
		}},
	}

	for _, ex := range exports {
		path, err := files.WriteFile(ex.name, ex.write)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}

	printOverview(svc.Overview(ds), len(envRecords))
	return nil
}

// printOverview prints the headline metrics to stdout for quick inspection.
func printOverview(ov services.Overview, envRows int) {
	fmt.Printf("environment rows: %d\n", envRows)
	fmt.Printf("individuals: %d\n", ov.TotalIndividuals)
	fmt.Printf("avg temperature: %s\n", floatOrDash(ov.AvgTemperature))
	fmt.Printf("avg humidity: %s\n", floatOrDash(ov.AvgHumidity))
	if ov.BestEC != nil {
		fmt.Printf("best EC: %s (%s, avg fresh weight %.2f)\n",
			ov.BestEC.Label, ov.BestEC.School, ov.BestEC.AvgFreshWeight)
	}
}

// floatOrDash renders a possibly missing value.
func floatOrDash(f domain.Float) string {
	if !f.Valid {
		return "-"
	}
	return f.String()
}

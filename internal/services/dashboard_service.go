// Package services wires the file locator, the two ingestion pipelines, the
// aggregator and the load cache into the operations the dashboard exposes:
// load, filter by school, overview metrics and raw exports.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/montanaflynn/stats"

	"ecdash/internal/cache"
	"ecdash/internal/dataprocessing"
	apierrors "ecdash/internal/errors"
	"ecdash/internal/files"
	"ecdash/internal/registry"
	"ecdash/pkg/contracts/domain"
)

// Dataset is one fully loaded and aggregated snapshot of the data directory.
// It is immutable after load; a changed directory produces a new Dataset.
type Dataset struct {
	Environment *dataprocessing.EnvironmentData
	Growth      *dataprocessing.GrowthData
	Warnings    []dataprocessing.Warning
	Signature   string
	LoadedAt    time.Time
}

// SchoolCount is the per-school slice of the overview.
type SchoolCount struct {
	School      string  `json:"school"`
	ECGoal      float64 `json:"ec_goal"`
	Color       string  `json:"color"`
	Individuals int     `json:"individuals"`
}

// BestEC identifies the EC target with the highest mean fresh weight.
type BestEC struct {
	Label          string  `json:"label"`
	School         string  `json:"school"`
	AvgFreshWeight float64 `json:"avg_fresh_weight"`
}

// Overview carries the headline metrics of the experiment.
type Overview struct {
	TotalIndividuals int           `json:"total_individuals"`
	AvgTemperature   domain.Float  `json:"avg_temperature"`
	AvgHumidity      domain.Float  `json:"avg_humidity"`
	BestEC           *BestEC       `json:"best_ec,omitempty"`
	Schools          []SchoolCount `json:"schools"`
}

// DashboardService loads and serves the experiment datasets.
type DashboardService struct {
	dataDir      string
	registry     *registry.Registry
	logger       *slog.Logger
	envLoader    *dataprocessing.EnvironmentLoader
	growthLoader *dataprocessing.GrowthLoader
	cache        *cache.Cache[*Dataset]
}

// NewDashboardService creates a dashboard service over the given data
// directory and school registry.
func NewDashboardService(dataDir string, reg *registry.Registry, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		dataDir:      dataDir,
		registry:     reg,
		logger:       logger,
		envLoader:    dataprocessing.NewEnvironmentLoader(logger),
		growthLoader: dataprocessing.NewGrowthLoader(reg, logger),
		cache:        cache.New[*Dataset](),
	}
}

// Registry returns the school registry backing this service.
func (s *DashboardService) Registry() *registry.Registry {
	return s.registry
}

// Load returns the dataset for the current state of the data directory,
// reusing the cached snapshot while the directory's modification signature is
// unchanged. A missing data directory or two empty pipelines are fatal;
// everything else degrades to warnings on the dataset.
func (s *DashboardService) Load(ctx context.Context) (*Dataset, error) {
	discovery := files.NewDiscovery(s.dataDir, s.registry)

	sig, err := discovery.Signature()
	if err != nil {
		return nil, err
	}

	return s.cache.Get(s.dataDir, sig, func() (*Dataset, error) {
		return s.load(ctx, discovery, sig)
	})
}

// Invalidate drops the cached dataset, forcing the next Load to re-read the
// directory.
func (s *DashboardService) Invalidate() {
	s.cache.Invalidate(s.dataDir)
}

// load runs both pipelines once. Each pipeline's failure leaves the other
// intact; only the combined emptiness of both is an error.
func (s *DashboardService) load(ctx context.Context, discovery *files.Discovery, sig string) (*Dataset, error) {
	s.logger.InfoContext(ctx, "loading data directory",
		slog.String("data_dir", s.dataDir),
		slog.String("signature", sig))

	ds := &Dataset{
		Environment: &dataprocessing.EnvironmentData{},
		Growth:      &dataprocessing.GrowthData{},
		Signature:   sig,
		LoadedAt:    time.Now(),
	}

	if err := s.loadEnvironment(ctx, discovery, ds); err != nil {
		return nil, err
	}
	if err := s.loadGrowth(ctx, discovery, ds); err != nil {
		return nil, err
	}

	ds.Warnings = append(ds.Warnings, ds.Environment.Warnings...)
	ds.Warnings = append(ds.Warnings, ds.Growth.Warnings...)

	if len(ds.Environment.Records) == 0 && len(ds.Growth.Records) == 0 {
		return nil, fmt.Errorf("load of %s: %w", s.dataDir, apierrors.ErrAllDataEmpty)
	}

	s.logger.InfoContext(ctx, "data directory loaded",
		slog.Int("environment_rows", len(ds.Environment.Records)),
		slog.Int("growth_rows", len(ds.Growth.Records)),
		slog.Int("warnings", len(ds.Warnings)))

	return ds, nil
}

// loadEnvironment runs the environment pipeline, downgrading its "no data"
// condition to a dataset warning.
func (s *DashboardService) loadEnvironment(ctx context.Context, discovery *files.Discovery, ds *Dataset) error {
	matched, err := discovery.FindEnvironmentFiles()
	if err != nil {
		if errors.Is(err, apierrors.ErrNoEnvironmentFiles) {
			ds.Warnings = append(ds.Warnings, warningFromError(err))
			return nil
		}
		return err
	}

	data, err := s.envLoader.Load(ctx, matched)
	if err != nil && !errors.Is(err, apierrors.ErrNoEnvironmentFiles) {
		return err
	}
	if err != nil {
		ds.Warnings = append(ds.Warnings, warningFromError(err))
	}
	ds.Environment = data
	return nil
}

// loadGrowth runs the growth pipeline. A missing or unopenable workbook is
// fatal for growth data only, so both conditions degrade to warnings here.
func (s *DashboardService) loadGrowth(ctx context.Context, discovery *files.Discovery, ds *Dataset) error {
	workbook, err := discovery.FindGrowthWorkbook()
	if err != nil {
		if errors.Is(err, apierrors.ErrNoGrowthFile) {
			ds.Warnings = append(ds.Warnings, warningFromError(err))
			return nil
		}
		return err
	}

	data, err := s.growthLoader.Load(ctx, workbook.Path)
	if err != nil {
		code := apierrors.CodeOf(err)
		if code != apierrors.CodeWorkbookOpenError && code != apierrors.CodeNoGrowthFile {
			return err
		}
		ds.Warnings = append(ds.Warnings, warningFromError(err))
		if data == nil {
			return nil
		}
	}
	ds.Growth = data
	return nil
}

// ValidSchool reports whether the selector value names a registered school or
// the all-schools value.
func (s *DashboardService) ValidSchool(school string) bool {
	if school == "" || school == registry.AllSchools {
		return true
	}
	_, ok := s.registry.Lookup(school)
	return ok
}

// FilterEnvironment restricts the unified environment table to one school, or
// passes all records through for the all-schools selector.
func (s *DashboardService) FilterEnvironment(ds *Dataset, school string) []domain.EnvironmentRecord {
	if school == "" || school == registry.AllSchools {
		return ds.Environment.Records
	}
	var out []domain.EnvironmentRecord
	for _, r := range ds.Environment.Records {
		if r.School == school {
			out = append(out, r)
		}
	}
	return out
}

// FilterGrowth restricts the unified growth table to one school, or passes
// all records through for the all-schools selector.
func (s *DashboardService) FilterGrowth(ds *Dataset, school string) []domain.GrowthRecord {
	if school == "" || school == registry.AllSchools {
		return ds.Growth.Records
	}
	var out []domain.GrowthRecord
	for _, r := range ds.Growth.Records {
		if r.School == school {
			out = append(out, r)
		}
	}
	return out
}

// Overview computes the headline metrics for the dataset.
func (s *DashboardService) Overview(ds *Dataset) Overview {
	ov := Overview{
		TotalIndividuals: len(ds.Growth.Records),
		AvgTemperature:   overallMean(ds.Environment.Records, func(r domain.EnvironmentRecord) domain.Float { return r.Temperature }),
		AvgHumidity:      overallMean(ds.Environment.Records, func(r domain.EnvironmentRecord) domain.Float { return r.Humidity }),
	}

	counts := make(map[string]int)
	for _, r := range ds.Growth.Records {
		counts[r.School]++
	}
	for _, school := range s.registry.Schools() {
		ov.Schools = append(ov.Schools, SchoolCount{
			School:      school.Name,
			ECGoal:      school.ECGoal,
			Color:       school.Color,
			Individuals: counts[school.Name],
		})
	}

	ov.BestEC = s.bestEC(ds.Growth.Summary)
	return ov
}

// bestEC finds the summary row with the highest mean fresh weight and
// recovers its owning school by parsing the display label back to a numeric
// target.
func (s *DashboardService) bestEC(summary []domain.GrowthSummary) *BestEC {
	best := -1
	for i, row := range summary {
		if !row.AvgFreshWeight.Valid {
			continue
		}
		if best == -1 || row.AvgFreshWeight.Value > summary[best].AvgFreshWeight.Value {
			best = i
		}
	}
	if best == -1 {
		return nil
	}

	row := summary[best]
	result := &BestEC{Label: row.ECGoal, AvgFreshWeight: row.AvgFreshWeight.Value}

	goal, err := domain.ParseECLabel(row.ECGoal)
	if err == nil {
		if school, ok := s.registry.SchoolByECGoal(goal); ok {
			result.School = school.Name
		}
	}
	return result
}

// overallMean computes the mean of one sensor column across all schools,
// excluding missing values.
func overallMean(records []domain.EnvironmentRecord, field func(domain.EnvironmentRecord) domain.Float) domain.Float {
	var values []float64
	for _, r := range records {
		if f := field(r); f.Valid {
			values = append(values, f.Value)
		}
	}
	if len(values) == 0 {
		return domain.Float{}
	}
	m, err := stats.Mean(values)
	if err != nil {
		return domain.Float{}
	}
	return domain.FloatFrom(m)
}

// warningFromError converts a downgraded pipeline error into its reportable
// form.
func warningFromError(err error) dataprocessing.Warning {
	var de *apierrors.DataError
	if errors.As(err, &de) {
		return dataprocessing.Warning{Code: de.Code, Item: de.Item, Message: err.Error()}
	}
	return dataprocessing.Warning{Message: err.Error()}
}

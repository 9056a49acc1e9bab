package dataprocessing

import (
	"log/slog"

	"github.com/montanaflynn/stats"

	"ecdash/pkg/contracts/domain"
)

// Summarizer computes grouped aggregate statistics over the unified record
// tables. Aggregation is pure: it never mutates its input and always produces
// one summary row per distinct group key. Group order in the output is the
// order of first occurrence in the input, not sorted; consumers that need a
// fixed EC ordering sort explicitly by the numeric target.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// SummarizeEnvironment groups environment records by school and computes the
// mean of each sensor column over present values only. Count is the number of
// valid timestamped rows in the group.
func (s *Summarizer) SummarizeEnvironment(records []domain.EnvironmentRecord) []domain.EnvironmentSummary {
	var order []string
	groups := make(map[string][]domain.EnvironmentRecord)

	for _, r := range records {
		if _, seen := groups[r.School]; !seen {
			order = append(order, r.School)
		}
		groups[r.School] = append(groups[r.School], r)
	}

	summaries := make([]domain.EnvironmentSummary, 0, len(order))
	for _, school := range order {
		group := groups[school]

		var temps, humidities, phs, ecs []float64
		for _, r := range group {
			appendValid(&temps, r.Temperature)
			appendValid(&humidities, r.Humidity)
			appendValid(&phs, r.PH)
			appendValid(&ecs, r.EC)
		}

		summaries = append(summaries, domain.EnvironmentSummary{
			School:      school,
			AvgTemp:     meanOf(temps),
			AvgHumidity: meanOf(humidities),
			AvgPH:       meanOf(phs),
			AvgEC:       meanOf(ecs),
			ECGoal:      group[0].ECGoal,
			Count:       len(group),
		})
	}

	s.logger.Debug("environment summary computed",
		slog.Int("records", len(records)),
		slog.Int("groups", len(summaries)))

	return summaries
}

// SummarizeGrowth groups growth records by target EC and computes the mean of
// each growth metric over present values only. The group key is rendered into
// its display label ("1.0 EC"); downstream code parses the label back to
// recover the owning school.
func (s *Summarizer) SummarizeGrowth(records []domain.GrowthRecord) []domain.GrowthSummary {
	var order []float64
	groups := make(map[float64][]domain.GrowthRecord)

	for _, r := range records {
		if _, seen := groups[r.ECGoal]; !seen {
			order = append(order, r.ECGoal)
		}
		groups[r.ECGoal] = append(groups[r.ECGoal], r)
	}

	summaries := make([]domain.GrowthSummary, 0, len(order))
	for _, goal := range order {
		group := groups[goal]

		var weights, leaves, shoots []float64
		for _, r := range group {
			appendValid(&weights, r.FreshWeight)
			appendValid(&leaves, r.LeafCount)
			appendValid(&shoots, r.ShootLength)
		}

		summaries = append(summaries, domain.GrowthSummary{
			ECGoal:         domain.ECLabel(goal),
			AvgFreshWeight: meanOf(weights),
			AvgLeafCount:   meanOf(leaves),
			AvgShootLength: meanOf(shoots),
			Count:          len(group),
		})
	}

	s.logger.Debug("growth summary computed",
		slog.Int("records", len(records)),
		slog.Int("groups", len(summaries)))

	return summaries
}

// appendValid collects present values, excluding missing ones from the mean.
func appendValid(dst *[]float64, f domain.Float) {
	if f.Valid {
		*dst = append(*dst, f.Value)
	}
}

// meanOf computes the mean of the collected values, or a missing Float when
// no value is present.
func meanOf(values []float64) domain.Float {
	if len(values) == 0 {
		return domain.Float{}
	}
	m, err := stats.Mean(values)
	if err != nil {
		return domain.Float{}
	}
	return domain.FloatFrom(m)
}

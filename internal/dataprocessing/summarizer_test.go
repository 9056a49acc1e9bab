package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecdash/pkg/contracts/domain"
)

func envRecord(school string, goal float64, temp domain.Float) domain.EnvironmentRecord {
	return domain.EnvironmentRecord{
		Time:        time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Temperature: temp,
		School:      school,
		ECGoal:      goal,
	}
}

func TestSummarizeEnvironment_MeanExcludesMissing(t *testing.T) {
	records := []domain.EnvironmentRecord{
		envRecord("송도고", 1.0, domain.FloatFrom(10)),
		envRecord("송도고", 1.0, domain.Float{}),
		envRecord("송도고", 1.0, domain.FloatFrom(20)),
	}

	s := NewSummarizer(nil)
	summary := s.SummarizeEnvironment(records)

	require.Len(t, summary, 1)
	assert.Equal(t, domain.FloatFrom(15), summary[0].AvgTemp,
		"mean over [10, missing, 20] must be 15, not 10")
	assert.Equal(t, 3, summary[0].Count, "count includes rows with missing cells")
}

func TestSummarizeEnvironment_AllMissingYieldsMissingMean(t *testing.T) {
	records := []domain.EnvironmentRecord{
		envRecord("하늘고", 2.0, domain.Float{}),
		envRecord("하늘고", 2.0, domain.Float{}),
	}

	s := NewSummarizer(nil)
	summary := s.SummarizeEnvironment(records)

	require.Len(t, summary, 1)
	assert.False(t, summary[0].AvgTemp.Valid)
	assert.Equal(t, 2, summary[0].Count)
}

func TestSummarizeEnvironment_FirstOccurrenceOrder(t *testing.T) {
	records := []domain.EnvironmentRecord{
		envRecord("동산고", 8.0, domain.FloatFrom(20)),
		envRecord("송도고", 1.0, domain.FloatFrom(21)),
		envRecord("동산고", 8.0, domain.FloatFrom(22)),
		envRecord("하늘고", 2.0, domain.FloatFrom(23)),
	}

	s := NewSummarizer(nil)
	summary := s.SummarizeEnvironment(records)

	var order []string
	for _, row := range summary {
		order = append(order, row.School)
	}
	assert.Equal(t, []string{"동산고", "송도고", "하늘고"}, order,
		"group order is first occurrence, not sorted")
}

func growthRecord(goal float64, weight domain.Float) domain.GrowthRecord {
	return domain.GrowthRecord{
		IndividualID: "X",
		FreshWeight:  weight,
		ECGoal:       goal,
	}
}

func TestSummarizeGrowth_GroupedByTarget(t *testing.T) {
	records := []domain.GrowthRecord{
		growthRecord(1.0, domain.FloatFrom(2.0)),
		growthRecord(1.0, domain.FloatFrom(3.0)),
		growthRecord(2.0, domain.FloatFrom(5.0)),
	}

	s := NewSummarizer(nil)
	summary := s.SummarizeGrowth(records)

	require.Len(t, summary, 2)
	assert.Equal(t, "1.0 EC", summary[0].ECGoal)
	assert.Equal(t, domain.FloatFrom(2.5), summary[0].AvgFreshWeight)
	assert.Equal(t, 2, summary[0].Count)
	assert.Equal(t, "2.0 EC", summary[1].ECGoal)
	assert.Equal(t, domain.FloatFrom(5.0), summary[1].AvgFreshWeight)
	assert.Equal(t, 1, summary[1].Count)
}

func TestSummarizeGrowth_Idempotent(t *testing.T) {
	records := []domain.GrowthRecord{
		growthRecord(1.0, domain.FloatFrom(2.0)),
		growthRecord(1.0, domain.FloatFrom(3.0)),
		growthRecord(4.0, domain.FloatFrom(7.0)),
	}

	s := NewSummarizer(nil)
	first := s.SummarizeGrowth(records)

	// Re-aggregate the summary itself: one record per group carrying the
	// group mean must reproduce the same means.
	var derived []domain.GrowthRecord
	for _, row := range first {
		goal, err := domain.ParseECLabel(row.ECGoal)
		require.NoError(t, err)
		derived = append(derived, domain.GrowthRecord{
			FreshWeight: row.AvgFreshWeight,
			ECGoal:      goal,
		})
	}

	second := s.SummarizeGrowth(derived)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ECGoal, second[i].ECGoal)
		assert.Equal(t, first[i].AvgFreshWeight, second[i].AvgFreshWeight)
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	s := NewSummarizer(nil)
	assert.Empty(t, s.SummarizeEnvironment(nil))
	assert.Empty(t, s.SummarizeGrowth(nil))
}

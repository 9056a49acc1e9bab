package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"ecdash/internal/registry"
	"ecdash/pkg/contracts/domain"
)

// utf8BOM is prepended to CSV exports so spreadsheet applications detect the
// encoding and render Hangul correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// envTimeFormat is the timestamp format used in CSV exports.
const envTimeFormat = "2006-01-02 15:04:05"

// EnvironmentRawFilename names the environment raw export for the given
// school selection.
func EnvironmentRawFilename(school string) string {
	return fmt.Sprintf("%s_환경데이터_raw.csv", selectionLabel(school))
}

// GrowthRawFilename names the growth raw export for the given school
// selection.
func GrowthRawFilename(school string) string {
	return fmt.Sprintf("%s_생육결과데이터_raw.xlsx", selectionLabel(school))
}

// selectionLabel renders a school filter value for use in filenames.
func selectionLabel(school string) string {
	if school == "" {
		return registry.AllSchools
	}
	return school
}

// WriteEnvironmentRawCSV writes the environment records as BOM-prefixed
// UTF-8 CSV, excluding the ec_goal column. Missing values become empty cells.
func WriteEnvironmentRawCSV(w io.Writer, records []domain.EnvironmentRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"time", "temperature", "humidity", "ph", "ec", "school"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		row := []string{
			r.Time.Format(envTimeFormat),
			r.Temperature.String(),
			r.Humidity.String(),
			r.PH.String(),
			r.EC.String(),
			r.School,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteEnvironmentSummaryCSV writes the per-school environment summary as
// BOM-prefixed UTF-8 CSV.
func WriteEnvironmentSummaryCSV(w io.Writer, summary []domain.EnvironmentSummary) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	header := []string{"school", "avg_temp", "avg_humidity", "avg_ph", "avg_ec", "ec_goal", "count"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range summary {
		row := []string{
			s.School,
			s.AvgTemp.String(),
			s.AvgHumidity.String(),
			s.AvgPH.String(),
			s.AvgEC.String(),
			strconv.FormatFloat(s.ECGoal, 'f', -1, 64),
			strconv.Itoa(s.Count),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteGrowthSummaryCSV writes the per-target-EC growth summary as
// BOM-prefixed UTF-8 CSV. The ec_goal column carries the display label.
func WriteGrowthSummaryCSV(w io.Writer, summary []domain.GrowthSummary) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	header := []string{"ec_goal", "avg_fresh_weight", "avg_leaf_count", "avg_shoot_length", "count"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range summary {
		row := []string{
			s.ECGoal,
			s.AvgFreshWeight.String(),
			s.AvgLeafCount.String(),
			s.AvgShootLength.String(),
			strconv.Itoa(s.Count),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	apierrors "ecdash/internal/errors"
	"ecdash/internal/files"
	"ecdash/pkg/contracts/domain"
)

// Environment CSV column positions. Headers in the source files are skipped
// and columns are mapped by position only.
const (
	envColTime = iota
	envColTemperature
	envColHumidity
	envColPH
	envColEC
)

// envTimeLayouts are tried in order when parsing the timestamp column.
var envTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006.01.02 15:04:05",
}

// EnvironmentData is the result of the environment pipeline: the unified
// record table, its per-school summary, and the per-file warnings collected
// along the way.
type EnvironmentData struct {
	Records  []domain.EnvironmentRecord
	Summary  []domain.EnvironmentSummary
	Warnings []Warning
}

// EnvironmentLoader parses matched environment CSVs into the unified table.
type EnvironmentLoader struct {
	logger     *slog.Logger
	summarizer *Summarizer
}

// NewEnvironmentLoader creates an environment loader.
func NewEnvironmentLoader(logger *slog.Logger) *EnvironmentLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvironmentLoader{
		logger:     logger,
		summarizer: NewSummarizer(logger),
	}
}

// Load parses every matched CSV, concatenates the per-school record streams
// and computes the per-school summary. A file that fails to parse is reported
// as a warning and skipped; sibling files still load. When the concatenation
// ends up empty the returned data is empty and the error wraps
// ErrNoEnvironmentFiles.
func (l *EnvironmentLoader) Load(ctx context.Context, matched []files.EnvironmentFile) (*EnvironmentData, error) {
	data := &EnvironmentData{}

	for _, file := range matched {
		records, err := l.parseFile(file)
		if err != nil {
			parseErr := apierrors.NewFileParseError(file.Name, err)
			l.logger.WarnContext(ctx, "environment file skipped",
				slog.String("file", file.Name),
				slog.String("error", err.Error()))
			data.Warnings = append(data.Warnings, warningFrom(parseErr))
			continue
		}

		l.logger.InfoContext(ctx, "environment file loaded",
			slog.String("file", file.Name),
			slog.String("school", file.School.Name),
			slog.Int("rows", len(records)))
		data.Records = append(data.Records, records...)
	}

	if len(data.Records) == 0 {
		return data, fmt.Errorf("no usable environment data: %w", apierrors.ErrNoEnvironmentFiles)
	}

	data.Summary = l.summarizer.SummarizeEnvironment(data.Records)
	return data, nil
}

// parseFile reads one environment CSV into records. The file must be UTF-8;
// encoding/csv accepts arbitrary bytes, so a legacy-encoded file would
// otherwise yield garbage rows with no report. The first row is treated as a
// header and discarded. Rows whose timestamp fails to parse are dropped;
// numeric cells that fail to parse become missing values on a retained row.
func (l *EnvironmentLoader) parseFile(file files.EnvironmentFile) ([]domain.EnvironmentRecord, error) {
	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		// Strip a UTF-8 BOM left by spreadsheet exports.
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}

	var records []domain.EnvironmentRecord
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if len(row) == 0 {
			continue
		}

		ts, ok := parseTimestamp(cellAt(row, envColTime))
		if !ok {
			continue // unparseable timestamp drops the whole row
		}

		records = append(records, domain.EnvironmentRecord{
			Time:        ts,
			Temperature: domain.ParseFloat(cellAt(row, envColTemperature)),
			Humidity:    domain.ParseFloat(cellAt(row, envColHumidity)),
			PH:          domain.ParseFloat(cellAt(row, envColPH)),
			EC:          domain.ParseFloat(cellAt(row, envColEC)),
			School:      file.School.Name,
			ECGoal:      file.School.ECGoal,
		})
	}

	return records, nil
}

// parseTimestamp best-effort parses a timestamp cell against the known
// layouts.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range envTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// cellAt returns the cell at idx, or an empty string for short rows.
func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	apierrors "ecdash/internal/errors"
	"ecdash/internal/registry"
	"ecdash/pkg/contracts/domain"
)

// Growth sheet column positions. Headers are skipped and columns are mapped
// by position only.
const (
	growthColIndividualID = iota
	growthColLeafCount
	growthColShootLength
	growthColRootLength
	growthColFreshWeight
)

// GrowthData is the result of the growth pipeline: the unified record table,
// its per-target-EC summary, and the per-sheet warnings collected along the
// way.
type GrowthData struct {
	Records  []domain.GrowthRecord
	Summary  []domain.GrowthSummary
	Warnings []Warning
}

// GrowthLoader parses the growth result workbook into the unified table.
type GrowthLoader struct {
	logger     *slog.Logger
	registry   *registry.Registry
	summarizer *Summarizer
}

// NewGrowthLoader creates a growth loader over the given school registry.
func NewGrowthLoader(reg *registry.Registry, logger *slog.Logger) *GrowthLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &GrowthLoader{
		logger:     logger,
		registry:   reg,
		summarizer: NewSummarizer(logger),
	}
}

// Load opens the workbook and parses every sheet whose NFC-normalized name is
// a registered school. Unregistered sheets are skipped silently; a sheet that
// fails to parse is reported as a warning and skipped. A workbook that cannot
// be opened aborts the whole growth pipeline. When the concatenation ends up
// empty the returned data is empty and the error wraps ErrNoGrowthFile.
func (l *GrowthLoader) Load(ctx context.Context, workbookPath string) (*GrowthData, error) {
	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, apierrors.NewWorkbookOpenError(workbookPath, err)
	}
	defer f.Close()

	data := &GrowthData{}

	for _, sheetName := range f.GetSheetList() {
		normalized := norm.NFC.String(sheetName)
		school, ok := l.registry.Lookup(normalized)
		if !ok {
			l.logger.DebugContext(ctx, "growth sheet not in registry, skipped",
				slog.String("sheet", normalized))
			continue
		}

		rows, err := f.GetRows(sheetName)
		if err != nil {
			parseErr := apierrors.NewSheetParseError(normalized, err)
			l.logger.WarnContext(ctx, "growth sheet skipped",
				slog.String("sheet", normalized),
				slog.String("error", err.Error()))
			data.Warnings = append(data.Warnings, warningFrom(parseErr))
			continue
		}

		records := l.parseSheet(rows, school)
		l.logger.InfoContext(ctx, "growth sheet loaded",
			slog.String("sheet", normalized),
			slog.Int("rows", len(records)))
		data.Records = append(data.Records, records...)
	}

	if len(data.Records) == 0 {
		return data, fmt.Errorf("no usable growth data in %s: %w", workbookPath, apierrors.ErrNoGrowthFile)
	}

	data.Summary = l.summarizer.SummarizeGrowth(data.Records)
	return data, nil
}

// parseSheet converts one school sheet into records. The first row is treated
// as a header and discarded; fully empty rows are skipped. Numeric cells that
// fail to parse become missing values on a retained row.
func (l *GrowthLoader) parseSheet(rows [][]string, school registry.School) []domain.GrowthRecord {
	var records []domain.GrowthRecord
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if isEmptyRow(row) {
			continue
		}

		records = append(records, domain.GrowthRecord{
			IndividualID: strings.TrimSpace(cellAt(row, growthColIndividualID)),
			LeafCount:    domain.ParseFloat(cellAt(row, growthColLeafCount)),
			ShootLength:  domain.ParseFloat(cellAt(row, growthColShootLength)),
			RootLength:   domain.ParseFloat(cellAt(row, growthColRootLength)),
			FreshWeight:  domain.ParseFloat(cellAt(row, growthColFreshWeight)),
			School:       school.Name,
			ECGoal:       school.ECGoal,
		})
	}
	return records
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

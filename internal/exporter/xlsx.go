package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ecdash/pkg/contracts/domain"
)

// growthExportSheet is the single sheet name of the growth raw export.
const growthExportSheet = "Sheet1"

// WriteGrowthRawXLSX writes the growth records as an xlsx workbook with a
// single sheet, excluding the ec_goal column. Missing values become empty
// cells.
func WriteGrowthRawXLSX(w io.Writer, records []domain.GrowthRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"individual_id", "leaf_count", "shoot_length", "root_length", "fresh_weight", "school"}
	if err := f.SetSheetRow(growthExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		row := []interface{}{
			r.IndividualID,
			floatCell(r.LeafCount),
			floatCell(r.ShootLength),
			floatCell(r.RootLength),
			floatCell(r.FreshWeight),
			r.School,
		}
		if err := f.SetSheetRow(growthExportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// floatCell renders a nullable float as an xlsx cell value; missing values
// become empty cells rather than zeros.
func floatCell(f domain.Float) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Value
}

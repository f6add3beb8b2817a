package export

import (
	"fmt"
	"io"
	"slices"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SheetData  = "data"
	SheetWide  = "wide"
	SheetTrend = "trend"
)

// WriteXLSX writes a workbook with the long-format data sheet, a year by
// label wide sheet and, when trends is non-empty, a trend sheet.
func WriteXLSX(w io.Writer, series []domain.Series, trends map[string]domain.Trend) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	if err := writeLongSheet(f, series); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	if err := writeWideSheet(f, series); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	if len(trends) > 0 {
		if err := writeTrendSheet(f, series, trends); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeLongSheet(f *excelize.File, series []domain.Series) error {
	if err := f.SetSheetRow(SheetData, "A1", &[]any{"year", "label", "unit", "value"}); err != nil {
		return err
	}
	row := 2
	for _, s := range series {
		for _, p := range s.Points {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(SheetData, cell, &[]any{p.Year, s.Label, s.Unit, p.Value}); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(SheetData, "B", "B", 28)
}

func writeWideSheet(f *excelize.File, series []domain.Series) error {
	if _, err := f.NewSheet(SheetWide); err != nil {
		return err
	}

	header := make([]any, 0, len(series)+1)
	header = append(header, "year")
	var years []int
	for _, s := range series {
		header = append(header, s.Label)
		years = append(years, s.Years()...)
	}
	slices.Sort(years)
	years = slices.Compact(years)

	if err := f.SetSheetRow(SheetWide, "A1", &header); err != nil {
		return err
	}
	for i, year := range years {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(SheetWide, cell, year); err != nil {
			return err
		}
		for j, s := range series {
			v, ok := s.At(year)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			if err := f.SetCellValue(SheetWide, cell, v); err != nil {
				return err
			}
		}
	}

	if len(series) > 0 {
		last, _ := excelize.ColumnNumberToName(len(series) + 1)
		return f.SetColWidth(SheetWide, "B", last, 18)
	}
	return nil
}

func writeTrendSheet(f *excelize.File, series []domain.Series, trends map[string]domain.Trend) error {
	if _, err := f.NewSheet(SheetTrend); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetTrend, "A1", &[]any{"label", "slope_per_year", "intercept"}); err != nil {
		return err
	}
	row := 2
	for _, s := range series {
		tr, ok := trends[s.Label]
		if !ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetTrend, cell, &[]any{s.Label, tr.Slope, tr.Intercept}); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(SheetTrend, "A", "A", 28)
}

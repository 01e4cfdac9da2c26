// Package export renders tabular data as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is one worksheet with a header row followed by data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
	// Widths are optional column widths, indexed like Headers.
	Widths []float64
}

// Workbook writes sheets, in order, into a single XLSX file.
func Workbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	if len(sheet.Headers) > 0 {
		if err := f.SetSheetRow(sheet.Name, "A1", &sheet.Headers); err != nil {
			return fmt.Errorf("failed to write headers of %q: %w", sheet.Name, err)
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style headers of %q: %w", sheet.Name, err)
		}
		if err := f.SetPanes(sheet.Name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("failed to freeze header of %q: %w", sheet.Name, err)
		}
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet.Name, err)
		}
	}

	for i, width := range sheet.Widths {
		if width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s of %q: %w", col, sheet.Name, err)
		}
	}
	return nil
}

package xlsxdoc

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// WORKBOOK INSPECTION
// =============================================================================
//
// Inspection reads a workbook back and reports what a converter produced:
// the sheet list, the cell text of the first sheet, the resolved header style,
// header column widths and the stored type of every cell. It is used by the
// `inspect` command and by tests.
//
// =============================================================================

// Summary describes the first sheet of a workbook.
type Summary struct {
	// SourceFile is the path the workbook was read from, if any.
	SourceFile string

	// Sheets lists every sheet name in workbook order.
	Sheets []string

	// Sheet is the name of the inspected (first) sheet.
	Sheet string

	// Rows holds the cell text of the sheet. Every row is padded to Width.
	Rows [][]string

	// Width is the number of columns of the widest row.
	Width int

	// HeaderStyle is the resolved style of cell A1, nil when it has none.
	HeaderStyle *excelize.Style

	// HeaderStyleIDs holds the style ID of every header cell.
	HeaderStyleIDs []int

	// ColumnWidths holds the width of every column, in characters.
	ColumnWidths []float64

	// CellTypes holds the stored type of every cell in Rows.
	CellTypes [][]excelize.CellType
}

// Header returns the first row, or nil for an empty sheet.
func (s *Summary) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

// DataRows returns the rows below the header.
func (s *Summary) DataRows() [][]string {
	if len(s.Rows) < 2 {
		return nil
	}
	return s.Rows[1:]
}

// Inspect opens the workbook at path and summarizes its first sheet.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - A Summary of the first sheet.
//   - An error if the file cannot be opened or read.
func Inspect(path string) (*Summary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	summary, err := Summarize(f)
	if err != nil {
		return nil, err
	}
	summary.SourceFile = path
	return summary, nil
}

// InspectReader is Inspect for a workbook held in a stream.
func InspectReader(r io.Reader) (*Summary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return Summarize(f)
}

// Summarize summarizes the first sheet of an open document.
func Summarize(f *excelize.File) (*Summary, error) {
	summary := &Summary{Sheets: f.GetSheetList()}

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	summary.Sheet = sheet

	rows, err := readRows(f, sheet)
	if err != nil {
		return nil, err
	}

	// Trailing empty cells are not reported; pad them back so that every
	// row spans the full table.
	for _, row := range rows {
		if len(row) > summary.Width {
			summary.Width = len(row)
		}
	}
	summary.Rows = make([][]string, len(rows))
	summary.CellTypes = make([][]excelize.CellType, len(rows))
	for i, row := range rows {
		padded := make([]string, summary.Width)
		copy(padded, row)
		summary.Rows[i] = padded

		types := make([]excelize.CellType, summary.Width)
		for col := range types {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return nil, err
			}
			if types[col], err = f.GetCellType(sheet, cell); err != nil {
				return nil, fmt.Errorf("failed to read type of cell %s: %w", cell, err)
			}
		}
		summary.CellTypes[i] = types
	}

	for col := 0; col < summary.Width; col++ {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		width, err := f.GetColWidth(sheet, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read width of column %s: %w", name, err)
		}
		summary.ColumnWidths = append(summary.ColumnWidths, width)

		styleID, err := f.GetCellStyle(sheet, name+"1")
		if err != nil {
			return nil, fmt.Errorf("failed to read style of cell %s1: %w", name, err)
		}
		summary.HeaderStyleIDs = append(summary.HeaderStyleIDs, styleID)
	}

	if len(summary.HeaderStyleIDs) > 0 && summary.HeaderStyleIDs[0] != 0 {
		style, err := f.GetStyle(summary.HeaderStyleIDs[0])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header style: %w", err)
		}
		summary.HeaderStyle = style
	}

	return summary, nil
}

// readRows reads every row element of the sheet, including rows whose cells
// are all empty, which GetRows would drop from the end of the sheet.
func readRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	defer it.Close()

	var rows [][]string
	for it.Next() {
		row, err := it.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// =============================================================================
// CSV to XLSX Converter - Workbook Builder
// =============================================================================
//
// This module owns the spreadsheet side of a conversion. The converter only
// talks to the narrow TableDocumentBuilder interface; everything that knows
// about excelize lives in this package.
//
// LAYOUT OF A CONVERTED SHEET:
//   Row 1      : header cells (bold, grey 25% solid fill, thin borders)
//   Row 2..N+1 : data rows, one per CSV record, all cells written as text
//   Columns    : every header column is 15 characters wide
//
// =============================================================================

package xlsxdoc

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	// DefaultSheetName is the name of the only sheet of a converted workbook.
	DefaultSheetName = "Sheet1"

	// HeaderColumnWidth is the width, in characters, of every header column.
	HeaderColumnWidth = 15.0

	// HeaderFillColor is the RGB value of Excel's "Grey 25%" indexed colour.
	HeaderFillColor = "C0C0C0"

	// BorderThin is the excelize border style index for a thin line.
	BorderThin = 1

	// HeaderFontFamily and HeaderFontSize match the default body font, so
	// header cells differ from data cells only by weight.
	HeaderFontFamily = "Calibri"
	HeaderFontSize   = 11.0
)

// ErrNoSheet is returned when cells are written before NewSheet.
var ErrNoSheet = errors.New("xlsxdoc: no sheet has been created")

// =============================================================================
// BUILDER INTERFACE
// =============================================================================

// TableDocumentBuilder is the set of operations needed to lay a table out as
// a one-sheet spreadsheet. Column indexes are 0-based.
type TableDocumentBuilder interface {
	// NewSheet creates the sheet that subsequent calls write to.
	NewSheet() error

	// SetHeaderCell writes text into the header row and applies the header style.
	SetHeaderCell(col int, text string) error

	// SetColumnWidth sets the width of a column, in characters.
	SetColumnWidth(col int, width float64) error

	// AppendDataRow writes values into the next data row.
	AppendDataRow(values []string) error

	// Serialize writes the finished document to w.
	Serialize(w io.Writer) error

	// Close releases the document.
	Close() error
}

// =============================================================================
// EXCELIZE IMPLEMENTATION
// =============================================================================

// Workbook implements TableDocumentBuilder on top of an excelize document.
// A Workbook serves one conversion and is not safe for concurrent use.
type Workbook struct {
	file        *excelize.File
	sheet       string
	headerStyle int
	nextRow     int // 1-based Excel row of the next data row
}

var _ TableDocumentBuilder = (*Workbook)(nil)

// NewWorkbook returns an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{
		file:        excelize.NewFile(),
		headerStyle: -1,
	}
}

// File exposes the underlying document, e.g. for inspection in tests.
func (w *Workbook) File() *excelize.File {
	return w.file
}

// DataRows returns the number of data rows written so far.
func (w *Workbook) DataRows() int {
	if w.nextRow == 0 {
		return 0
	}
	return w.nextRow - 2
}

// NewSheet creates Sheet1 and makes it the active sheet.
func (w *Workbook) NewSheet() error {
	idx, err := w.file.NewSheet(DefaultSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	w.file.SetActiveSheet(idx)
	w.sheet = DefaultSheetName
	w.nextRow = 2
	return nil
}

// SetHeaderCell writes text into row 1 at the 0-based col with the header style.
func (w *Workbook) SetHeaderCell(col int, text string) error {
	cell, err := w.cellName(col, 1)
	if err != nil {
		return err
	}
	styleID, err := w.headerStyleID()
	if err != nil {
		return err
	}
	if err := w.file.SetCellStr(w.sheet, cell, text); err != nil {
		return fmt.Errorf("failed to write header cell %s: %w", cell, err)
	}
	if err := w.file.SetCellStyle(w.sheet, cell, cell, styleID); err != nil {
		return fmt.Errorf("failed to style header cell %s: %w", cell, err)
	}
	return nil
}

// SetColumnWidth sets the width of the 0-based col in characters.
func (w *Workbook) SetColumnWidth(col int, width float64) error {
	if w.sheet == "" {
		return ErrNoSheet
	}
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return fmt.Errorf("invalid column %d: %w", col, err)
	}
	if err := w.file.SetColWidth(w.sheet, name, name, width); err != nil {
		return fmt.Errorf("failed to set width of column %s: %w", name, err)
	}
	return nil
}

// AppendDataRow writes every value as a string cell, so "30" or "=A1" are
// kept as text.
func (w *Workbook) AppendDataRow(values []string) error {
	if w.sheet == "" {
		return ErrNoSheet
	}
	for col, value := range values {
		cell, err := w.cellName(col, w.nextRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellStr(w.sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	w.nextRow++
	return nil
}

// Serialize writes the workbook as an .xlsx package to out.
func (w *Workbook) Serialize(out io.Writer) error {
	if err := w.file.Write(out); err != nil {
		return fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return nil
}

// Close releases the underlying excelize file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// headerStyleID creates the header style on first use and reuses it for
// every other header cell of the workbook.
func (w *Workbook) headerStyleID() (int, error) {
	if w.headerStyle >= 0 {
		return w.headerStyle, nil
	}
	id, err := w.file.NewStyle(HeaderStyle())
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	w.headerStyle = id
	return id, nil
}

func (w *Workbook) cellName(col, row int) (string, error) {
	if w.sheet == "" {
		return "", ErrNoSheet
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell (%d, %d): %w", col, row, err)
	}
	return cell, nil
}

// HeaderStyle returns the style applied to header cells.
func HeaderStyle() *excelize.Style {
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: "000000", Style: BorderThin}
	}
	return &excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Family: HeaderFontFamily,
			Size:   HeaderFontSize,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{HeaderFillColor},
			Pattern: 1,
		},
		Border: []excelize.Border{
			border("left"),
			border("right"),
			border("top"),
			border("bottom"),
		},
	}
}

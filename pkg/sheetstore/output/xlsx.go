package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
	"github.com/xuri/excelize/v2"
)

// XLSXSheetName is the worksheet that holds the exported cells.
const XLSXSheetName = "Sheet1"

// ErrExceedsLimit indicates a sheet too large for the xlsx format.
var ErrExceedsLimit = errors.New("exceeds xlsx limits")

// headerRows is the number of spreadsheet rows above cell row 0.
const headerRows = 1

// ToXLSX renders a resolved sheet as a workbook. Row 1 holds the column
// names in schema order; cell row r lands on spreadsheet row r+2.
// Unresolved cells are left blank.
func ToXLSX(columns []models.Column, content models.SheetContent) (*excelize.File, error) {
	if len(columns) > excelize.MaxColumns {
		return nil, fmt.Errorf("%w: %d columns, at most %d allowed", ErrExceedsLimit, len(columns), excelize.MaxColumns)
	}

	f := excelize.NewFile()

	for i, col := range columns {
		colNum := i + 1

		header, err := excelize.CoordinatesToCellName(colNum, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(XLSXSheetName, header, col.Name); err != nil {
			f.Close()
			return nil, err
		}

		for _, entry := range content.Columns[col.Name] {
			if entry.Value == nil {
				continue
			}

			if entry.Row > int64(excelize.TotalRows-headerRows-1) {
				f.Close()
				return nil, fmt.Errorf("%w: column %q row %d", ErrExceedsLimit, col.Name, entry.Row)
			}

			cell, err := excelize.CoordinatesToCellName(colNum, int(entry.Row)+headerRows+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(XLSXSheetName, cell, entry.Value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

// WriteXLSX renders the sheet and writes the workbook to w.
func WriteXLSX(w io.Writer, columns []models.Column, content models.SheetContent) error {
	f, err := ToXLSX(columns, content)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

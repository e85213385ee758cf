package excel

import (
	"github.com/xuri/excelize/v2"

	"aggstat/domain/table"
	"aggstat/internal/errors"
)

// ResultWriter exports an aggregation output table to a spreadsheet, one
// header row plus one row per series. Missing cells render as the NA token.
type ResultWriter struct {
	sheet string
}

// NewResultWriter creates a spreadsheet writer targeting Sheet1
func NewResultWriter() *ResultWriter {
	return &ResultWriter{sheet: "Sheet1"}
}

// WriteFile renders the table into an xlsx file at path.
func (w *ResultWriter) WriteFile(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for col, name := range t.Columns() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "building header cell name")
		}
		if err := f.SetCellValue(w.sheet, cell, name); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return errors.Wrap(err, "building cell name")
			}
			if err := w.setCell(f, cell, v); err != nil {
				return errors.Wrapf(err, "writing row %d", i+1)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving spreadsheet %s", path)
	}
	return nil
}

func (w *ResultWriter) setCell(f *excelize.File, cell string, v table.Value) error {
	if v.Missing() {
		return f.SetCellValue(w.sheet, cell, "NA")
	}
	if num, ok := v.Float(); ok {
		return f.SetCellValue(w.sheet, cell, num)
	}
	return f.SetCellValue(w.sheet, cell, v.Text())
}

// SheetName returns the target sheet, useful for readers of the export.
func (w *ResultWriter) SheetName() string {
	return w.sheet
}

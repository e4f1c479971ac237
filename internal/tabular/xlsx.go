package tabular

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/schools-cli/internal/model"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "schools"

// WriteXLSX writes records to a single-sheet workbook.
func WriteXLSX(w io.Writer, recs []model.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "tabular: add sheet")
	}

	addRow(sheet, Columns)
	for _, r := range recs {
		addRow(sheet, Row(r))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "tabular: write xlsx")
	}
	return nil
}

// ReadXLSX reads records from the first sheet of the workbook at path.
func ReadXLSX(path string) ([]model.Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("tabular: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}
	h, err := parseHeader(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowToStrings(row))
	}
	return toRecords(h, rows), nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

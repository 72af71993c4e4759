package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readXLSX reads the first sheet of an XLSX workbook into string rows,
// mirroring the shape readCSV returns.
func readXLSX(path string) (rows [][]string, header []string, err error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.New("xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	var all [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		all = append(all, cells)
	}

	if len(all) < 2 {
		return nil, nil, eris.New("xlsx has no data rows")
	}
	return all[1:], all[0], nil
}

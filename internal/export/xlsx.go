package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"invoice2csv/internal/llm"
)

// WriteXLSX renders the same rows as the CSV artifact into an XLSX workbook
// and returns its bytes.
func WriteXLSX(schema llm.Schema, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	columns := schema.Columns()
	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, r.Values[col])
		}
	}

	// widen the description and provenance columns a bit
	for i, col := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := 16.0
		switch col {
		case "Item Description", "Vendor Address", "Customer Address":
			width = 32
		case llm.SourceFileColumn:
			width = 40
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

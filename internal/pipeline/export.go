package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pantrybill/internal"
)

// ExportItemsToXLSX writes parsed receipt items to a spreadsheet for manual
// review or budget bookkeeping.
func ExportItemsToXLSX(rows []internal.ItemExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"receipt_id", "source", "position", "name", "unit", "price_per", "quantity", "total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.ReceiptID)
		set(2, row.Source)
		set(3, row.Position)
		set(4, row.Name)
		set(5, row.Unit)
		set(6, row.PricePer)
		set(7, row.Quantity)
		set(8, float64(row.Quantity)*row.PricePer)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

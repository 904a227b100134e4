package inventory

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	soldSheet  = "Items Sold"
	stockSheet = "Current Stock"
)

// reportView is the template data for the report.
func reportView(rep Report) map[string]any {
	return map[string]any{
		"Start":     rep.Start.Format(time.DateOnly),
		"End":       rep.End.Format(time.DateOnly),
		"Warehouse": rep.Warehouse,
		"Sold":      rep.Sold,
		"OnHand":    rep.OnHand,
	}
}

// WriteXLSX exports both report tables to a workbook with one sheet each.
func WriteXLSX(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetName("Sheet1", soldSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(stockSheet); err != nil {
		return err
	}

	soldTitle := fmt.Sprintf("Items Sold from %s to %s in Warehouse: %s",
		rep.Start.Format(time.DateOnly), rep.End.Format(time.DateOnly), rep.Warehouse)
	if err := writeTable(f, soldSheet, soldTitle, "Sold Quantity", rep.Sold, "No items sold in this period.", bold); err != nil {
		return err
	}
	stockTitle := "Current Stock in Warehouse: " + rep.Warehouse
	if err := writeTable(f, stockSheet, stockTitle, "On Hand Quantity", rep.OnHand, "No items in stock.", bold); err != nil {
		return err
	}
	return f.Write(w)
}

func writeTable(f *excelize.File, sheet, title, qtyHeader string, rows []ItemQty, empty string, bold int) error {
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A2", &[]any{"Item Code", qtyHeader}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B2", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 18); err != nil {
		return err
	}
	if len(rows) == 0 {
		return f.SetCellValue(sheet, "A3", empty)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		qty, _ := row.Qty.Float64()
		if err := f.SetSheetRow(sheet, cell, &[]any{row.ItemCode, qty}); err != nil {
			return err
		}
	}
	return nil
}

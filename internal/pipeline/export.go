package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
)

// BuildExportRows flattens resolved items into the XLSX export shape,
// preserving source order.
func BuildExportRows(items []internal.ResolvedItem) []internal.ExportRow {
	out := make([]internal.ExportRow, 0, len(items))
	for i, item := range items {
		row := internal.ExportRow{
			Position:   i + 1,
			RawLine:    item.Raw,
			Name:       item.Name,
			Qty:        item.Qty,
			Notes:      item.Notes,
			LookupTerm: item.LookupTerm,
			Category:   item.Category,
			Section:    item.Section,
			Directive:  item.Directive,
		}
		if item.Location != nil {
			aisle := item.Location.Aisle
			source := item.Location.Source
			row.Aisle = &aisle
			row.Zone = item.Location.Zone
			row.LocationSource = &source
		}
		out = append(out, row)
	}
	return out
}

func ExportRowsToXLSX(rows []internal.ExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"position", "raw_line", "name", "qty", "notes", "lookup_term",
		"category", "section", "directive",
		"aisle", "zone", "location_source",
	}

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

		set(1, row.Position)
		set(2, row.RawLine)
		set(3, derefString(row.Name))
		set(4, row.Qty)
		set(5, row.Notes)
		set(6, derefString(row.LookupTerm))
		set(7, derefString(row.Category))
		set(8, derefString(row.Section))
		set(9, derefString(row.Directive))
		set(10, derefString(row.Aisle))
		set(11, derefString(row.Zone))
		set(12, derefString(row.LocationSource))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsx column headers we recognize, lowercased. Government price lists
// (NPPA ceiling price notifications, CGHS rate cards) ship as spreadsheets
// with slightly different labels per release.
var xlsxHeaderAliases = map[string]string{
	"category":       "category",
	"category name":  "category",
	"item":           "item",
	"item name":      "item",
	"name":           "item",
	"code":           "code",
	"item code":      "code",
	"ceiling price":  "price",
	"ceiling":        "price",
	"price":          "price",
	"rate":           "price",
	"unit":           "unit",
	"source":         "source",
	"published":      "date",
	"published date": "date",
	"date":           "date",
}

// LoadXLSX reads reference price entries from the first sheet of an XLSX
// workbook. The first row must be a header; malformed data rows are skipped
// with a warning rather than failing the load.
func LoadXLSX(r io.Reader, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("catalog.xlsx.close_error", "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheets[0])
	}

	// map column index -> canonical field
	cols := map[int]string{}
	for i, h := range rows[0] {
		if field, ok := xlsxHeaderAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[i] = field
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("sheet %q has no recognizable headers", sheets[0])
	}

	var entries []Entry
	for rowNum, row := range rows[1:] {
		var e Entry
		for i, cell := range row {
			field, ok := cols[i]
			if !ok {
				continue
			}
			cell = strings.TrimSpace(cell)
			switch field {
			case "category":
				e.CategoryName = cell
			case "item":
				e.ItemName = cell
			case "code":
				e.ItemCode = cell
			case "price":
				p, perr := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
				if perr != nil {
					logger.Warn("catalog.xlsx.bad_price", "row", rowNum+2, "value", cell)
					continue
				}
				e.CeilingPrice = p
			case "unit":
				e.Unit = cell
			case "source":
				e.Source = cell
			case "date":
				e.PublishedDate = cell
			}
		}
		if e.ItemName == "" || e.CeilingPrice <= 0 {
			logger.Warn("catalog.xlsx.row_skipped", "row", rowNum+2, "item", e.ItemName)
			continue
		}
		entries = append(entries, e)
	}

	logger.Info("catalog.xlsx.loaded", "sheet", sheets[0], "entries", len(entries))
	return New(entries, logger)
}

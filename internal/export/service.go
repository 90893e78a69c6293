package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medbillguard/medbillguard/internal/pipeline"
)

// Service produces XLSX bytes for a finished bill analysis.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// AnalysisXLSX returns a workbook with one row per compared line item and a
// trailing summary block.
func (s *Service) AnalysisXLSX(res pipeline.AnalysisResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Analysis"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet so the workbook opens on ours
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Hospital")
	write(2, 1, res.Header.HospitalName)
	write(1, 2, "Bill Number")
	write(2, 2, res.Header.BillNumber)
	write(1, 3, "Bill Date")
	write(2, 3, res.Header.BillDate)
	write(1, 4, "Parsing Method")
	write(2, 4, string(res.ParsingMethod))

	headers := []string{
		"Item",
		"Category",
		"Qty",
		"Unit Price",
		"Total Billed",
		"Govt Ceiling",
		"Overcharge",
		"Status",
		"Price Source",
		"Match Score",
		"Notes",
	}
	const headerRow = 6
	for i, h := range headers {
		write(i+1, headerRow, h)
	}

	row := headerRow + 1
	for _, it := range res.Items {
		write(1, row, it.ItemName)
		write(2, row, string(it.Category))
		write(3, row, it.Quantity)
		write(4, row, it.UnitPrice)
		write(5, row, it.TotalBilled)
		if it.GovtCeilingPrice != nil {
			write(6, row, *it.GovtCeilingPrice)
		}
		write(7, row, it.OverchargeAmount)
		write(8, row, string(it.Status))
		write(9, row, it.PriceSource)
		write(10, row, it.MatchScore)
		write(11, row, truncate(it.Notes, 140))
		row++
	}

	row++
	write(1, row, "Total Billed")
	write(2, row, res.Summary.TotalBilled)
	row++
	write(1, row, "Total Fair Price")
	write(2, row, res.Summary.TotalFairPrice)
	row++
	write(1, row, "Total Overcharge")
	write(2, row, res.Summary.TotalOvercharge)
	row++
	write(1, row, "Potential Savings %")
	write(2, row, res.Summary.SavingsPercent)
	row++
	write(1, row, "Fair / Overcharged / Suspicious / Not Found")
	write(2, row, fmt.Sprintf("%d / %d / %d / %d",
		res.Summary.FairCount,
		res.Summary.OverchargedCount,
		res.Summary.SuspiciousCount,
		res.Summary.NotFoundCount,
	))

	_ = f.SetColWidth(sheet, "A", "A", 36) // item
	_ = f.SetColWidth(sheet, "B", "B", 14) // category
	_ = f.SetColWidth(sheet, "D", "G", 13) // amounts
	_ = f.SetColWidth(sheet, "H", "I", 16)
	_ = f.SetColWidth(sheet, "K", "K", 60) // notes

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"analysis_id", res.AnalysisID.String(),
		"rows", len(res.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

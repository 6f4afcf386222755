package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pointake/internal"
)

func ExportReviewXLSX(res internal.OrderResult, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"line_no", "external_part_number", "description", "quantity", "unit_price",
		"mapping_status", "confidence", "match_reason", "internal_part_number",
		"candidate2_part", "candidate2_confidence", "candidate3_part", "candidate3_confidence",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, item := range res.LineItems {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, i+1)
		set(2, item.ExternalPartNumber)
		set(3, item.Description)
		set(4, item.Quantity)
		set(5, item.UnitPrice)
		set(6, string(item.MappingStatus))
		set(7, item.MappingConfidence)
		set(8, string(item.MatchReason))
		set(9, derefString(item.InternalPartNumber))
		if len(item.Candidates) > 1 {
			set(10, item.Candidates[1].InternalPartNumber)
			set(11, item.Candidates[1].Confidence)
		}
		if len(item.Candidates) > 2 {
			set(12, item.Candidates[2].InternalPartNumber)
			set(13, item.Candidates[2].Confidence)
		}
	}

	info := res.CompanyInfo
	base := len(res.LineItems) + 3
	setAt := func(row, col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}
	setAt(base, 1, "customer")
	setAt(base, 2, info.CompanyName)
	setAt(base, 3, string(info.CustomerMatchStatus))
	setAt(base, 4, info.CustomerMatchConfidence)
	setAt(base, 5, derefString(info.AccountNumber))
	setAt(base+1, 1, "po_number")
	setAt(base+1, 2, info.CustomerPONumber)
	setAt(base+2, 1, "requires_manual_review")
	setAt(base+2, 2, res.RequiresManualReview)

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

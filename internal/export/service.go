package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bills-tracker/internal/hoa"
)

// Comparer produces the period comparison to export.
type Comparer interface {
	CompareLatest(ctx context.Context, req hoa.CompareRequest) (hoa.ComparisonResult, error)
}

// Service renders HOA comparisons as XLSX workbooks.
type Service struct {
	comparer Comparer
	logger   *slog.Logger
}

func NewService(comparer Comparer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{comparer: comparer, logger: logger}
}

const sheet = "Comparison"

// ExportComparisonXLSX returns a workbook (as bytes) with one row per rubro
// diff, in the comparator's order.
func (s *Service) ExportComparisonXLSX(ctx context.Context, req hoa.CompareRequest) ([]byte, error) {
	start := time.Now()

	res, err := s.comparer.CompareLatest(ctx, req)
	if err != nil {
		return nil, err
	}

	b, err := RenderComparison(res)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"user_id", req.UserID,
		"building", req.BuildingCode,
		"unit", req.UnitCode,
		"rows", len(res.RubroDiffs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// RenderComparison writes res into a single-sheet workbook.
func RenderComparison(res hoa.ComparisonResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	// 1-2) period header
	write(1, 1, "Current period")
	write(1, 2, "Previous period")
	if res.Current != nil {
		write(2, 1, res.Current.PeriodLabel)
		write(3, 1, optional(res.Current.TotalToPayUnit))
	}
	if res.Previous != nil {
		write(2, 2, res.Previous.PeriodLabel)
		write(3, 2, optional(res.Previous.TotalToPayUnit))
	}

	headers := []string{"Rubro", "Label", "Previous", "Current", "Difference", "Difference %", "Status"}
	const headerRow = 4
	for i, h := range headers {
		write(i+1, headerRow, h)
	}

	row := headerRow + 1
	for _, d := range res.RubroDiffs {
		write(1, row, d.RubroKey)
		write(2, row, d.Label)
		write(3, row, optional(d.PreviousTotal))
		write(4, row, optional(d.CurrentTotal))
		write(5, row, d.DiffAmount)
		write(6, row, optional(d.DiffPercent))
		write(7, row, string(d.Status))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16) // period title / rubro key
	_ = f.SetColWidth(sheet, "B", "B", 48) // label
	_ = f.SetColWidth(sheet, "C", "F", 14) // amounts
	_ = f.SetColWidth(sheet, "G", "G", 12) // status

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

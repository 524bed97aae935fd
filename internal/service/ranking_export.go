package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/xuri/excelize/v2"
)

const rankingSheet = "Ranking"

var rankingHeadings = []string{
	"Ranking", "Sucursal", "Ubicación", "Ventas totales", "Compras",
	"Ticket promedio", "% del total", "Estado", "Color",
}

// GenerateRankingXLSX exports the branch ranking for window as a spreadsheet
func (s *DashboardService) GenerateRankingXLSX(ctx context.Context, window core.DateWindow) ([]byte, string, error) {
	ranking, err := s.GetBranchRanking(ctx, window)
	if err != nil {
		return nil, "", err
	}

	data, err := renderRankingXLSX(ranking, windowLabel(window, s.location))
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ranking-sucursales-%s.xlsx", s.now().In(s.location).Format(dateLayout))
	return data, filename, nil
}

func renderRankingXLSX(ranking []core.RankedBranch, rangeLabel string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetCellValue(rankingSheet, "A1", "Período: "+rangeLabel); err != nil {
		return nil, fmt.Errorf("failed to write range label: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range rankingHeadings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(rankingSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write heading: %w", err)
		}
	}
	lastHeading, _ := excelize.CoordinatesToCellName(len(rankingHeadings), 3)
	if err := f.SetCellStyle(rankingSheet, "A3", lastHeading, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style headings: %w", err)
	}

	for i, b := range ranking {
		row := []any{
			b.Rank, b.Name, b.Location, b.TotalSales, b.SaleCount,
			b.AvgTicket, b.PercentOfTotal, string(b.Tier), string(b.TierColor),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		if err := f.SetSheetRow(rankingSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write ranking row: %w", err)
		}
	}

	var buffer bytes.Buffer
	if err := f.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}
	return buffer.Bytes(), nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"golang.org/x/sync/errgroup"
)

// salesReport is the content of the PDF sales report
type salesReport struct {
	Title       string
	RangeLabel  string
	GeneratedAt time.Time
	KPIs        *core.KPISnapshot
	Ranking     []core.RankedBranch
}

// GenerateSalesReportPDF renders the KPI snapshot and the branch ranking for window
func (s *DashboardService) GenerateSalesReportPDF(ctx context.Context, window core.DateWindow) ([]byte, string, error) {
	report, err := s.buildSalesReport(ctx, "Reporte de ventas", window)
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err := renderSalesReportPDF(report, s.location)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("reporte-ventas-%s.pdf", report.GeneratedAt.Format(dateLayout))
	return pdfBytes, filename, nil
}

func (s *DashboardService) buildSalesReport(ctx context.Context, title string, window core.DateWindow) (*salesReport, error) {
	var (
		kpis    *core.KPISnapshot
		ranking []core.RankedBranch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		kpis, err = s.GetKPIs(gctx)
		return err
	})
	g.Go(func() (err error) {
		ranking, err = s.GetBranchRanking(gctx, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &salesReport{
		Title:       title,
		RangeLabel:  windowLabel(window, s.location),
		GeneratedAt: s.now().In(s.location),
		KPIs:        kpis,
		Ranking:     ranking,
	}, nil
}

// windowLabel describes a half-open window in calendar days, showing the inclusive last day
func windowLabel(window core.DateWindow, loc *time.Location) string {
	from := "inicio"
	to := "hoy"
	if window.From != nil {
		from = window.From.In(loc).Format(dateLayout)
	}
	if window.To != nil {
		to = window.To.In(loc).AddDate(0, 0, -1).Format(dateLayout)
	}
	if window.IsOpen() {
		return "Todo el historial"
	}
	return fmt.Sprintf("%s a %s", from, to)
}

func renderSalesReportPDF(report *salesReport, loc *time.Location) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, tr("Dashboard de Ventas"), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 7, tr(report.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Período del ranking: %s", report.RangeLabel)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generado: %s", formatReportDateTime(report.GeneratedAt, loc))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	k := report.KPIs
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, tr("Indicadores generales"), "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Ventas totales: %s", formatCurrency(k.TotalSalesAllTime))), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Promedio diario (30 días): %s", formatCurrency(k.Avg30DayDailySales))), "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Mes actual: %s", formatCurrency(k.CurrentMonthSales))), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Mes anterior: %s", formatCurrency(k.PreviousMonthSales))), "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Comparativa: %.2f%%", k.MoMPercentChange)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Transacciones: %d", k.TransactionCount)), "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Sucursales: %d", k.BranchCount)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Productos: %d", k.ProductCount)), "1", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, tr("Ranking de sucursales"), "", 1, "L", false, 0, "")

	if len(report.Ranking) == 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr("No hay sucursales registradas."), "", 1, "L", false, 0, "")
	} else {
		widths := []float64{12, 58, 35, 20, 30, 35}
		headers := []string{"#", "Sucursal", "Ventas", "Compras", "% del total", "Estado"}
		pdf.SetFont("Arial", "B", 10)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, b := range report.Ranking {
			ensurePageSpace(pdf, 8)
			row := []string{
				fmt.Sprintf("%d", b.Rank),
				safeReportValue(b.Name),
				formatCurrency(b.TotalSales),
				fmt.Sprintf("%d", b.SaleCount),
				fmt.Sprintf("%.2f", b.PercentOfTotal),
				string(b.Tier),
			}
			for i, v := range row {
				align := "L"
				if i != 1 && i != 5 {
					align = "R"
				}
				pdf.CellFormat(widths[i], 7, tr(v), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buffer.Bytes(), nil
}

func ensurePageSpace(pdf *gofpdf.Fpdf, minSpace float64) {
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()
	if pdf.GetY()+minSpace > pageHeight-bottomMargin {
		pdf.AddPage()
	}
}

func safeReportValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatReportDateTime(value time.Time, loc *time.Location) string {
	return value.In(loc).Format("02/01/2006 15:04")
}

func formatCurrency(amount float64) string {
	return fmt.Sprintf("$ %.2f", amount)
}

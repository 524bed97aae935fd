package http

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"github.com/tp-bda/dashboard-ventas/internal/service"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sseHeartbeat = 30 * time.Second
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	errors           *ErrorResponder
	logger           *logrus.Logger
	location         *time.Location
	maxLimit         int
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboardService *service.DashboardService,
	errors *ErrorResponder,
	logger *logrus.Logger,
	loc *time.Location,
	maxLimit int,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		errors:           errors,
		logger:           logger,
		location:         loc,
		maxLimit:         maxLimit,
	}
}

// Query parameters understood by the dashboard endpoints
const (
	qDateFrom     = "fechaInicio"
	qDateTo       = "fechaFin"
	qBranchID     = "sucursalId"
	qLimit        = "limit"
	qPeriod       = "periodo"
	qLookbackDays = "dias"
)

// reportFilter normalizes the named query parameters; any other parameter is ignored
func (h *DashboardHandler) reportFilter(c *fiber.Ctx, keys ...string) (core.ReportFilter, error) {
	var raw service.RawQuery
	for _, key := range keys {
		value := c.Query(key)
		switch key {
		case qDateFrom:
			raw.DateFrom = value
		case qDateTo:
			raw.DateTo = value
		case qBranchID:
			raw.BranchID = value
		case qLimit:
			raw.Limit = value
		case qPeriod:
			raw.Period = value
		case qLookbackDays:
			raw.LookbackDays = value
		}
	}
	return service.ParseReportFilter(raw, h.location, h.maxLimit)
}

// dateWindow parses only fechaInicio and fechaFin
func (h *DashboardHandler) dateWindow(c *fiber.Ctx) (core.DateWindow, error) {
	return service.ParseDateWindow(c.Query(qDateFrom), c.Query(qDateTo), h.location)
}

// GetKPIs returns the KPI snapshot
// GET /api/dashboard/kpis
func (h *DashboardHandler) GetKPIs(c *fiber.Ctx) error {
	kpis, err := h.dashboardService.GetKPIs(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetKPIs", err)
	}
	return ok(c, "KPIs obtenidos exitosamente", kpis)
}

// GetBranchRanking returns the branch ranking with tiers
// GET /api/dashboard/sucursales/ranking?fechaInicio=&fechaFin=
func (h *DashboardHandler) GetBranchRanking(c *fiber.Ctx) error {
	window, err := h.dateWindow(c)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetBranchRanking", err)
	}

	ranking, err := h.dashboardService.GetBranchRanking(c.UserContext(), window)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetBranchRanking", err)
	}
	return okList(c, "Ranking obtenido exitosamente", ranking)
}

// GetCategorySales returns revenue per category
// GET /api/dashboard/categorias?sucursalId=&fechaInicio=&fechaFin=
func (h *DashboardHandler) GetCategorySales(c *fiber.Ctx) error {
	filter, err := h.reportFilter(c, qDateFrom, qDateTo, qBranchID)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetCategorySales", err)
	}

	categories, err := h.dashboardService.GetCategorySales(c.UserContext(), filter.SalesFilter)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetCategorySales", err)
	}
	return okList(c, "Ventas por categoría obtenidas exitosamente", categories)
}

// GetTopProducts returns the best selling products
// GET /api/dashboard/productos/top?limit=10&sucursalId=&fechaInicio=&fechaFin=
func (h *DashboardHandler) GetTopProducts(c *fiber.Ctx) error {
	filter, err := h.reportFilter(c, qDateFrom, qDateTo, qBranchID, qLimit)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetTopProducts", err)
	}

	products, err := h.dashboardService.GetTopProducts(c.UserContext(), filter)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetTopProducts", err)
	}
	return okList(c, "Top productos obtenidos exitosamente", products)
}

// GetSalesByPeriod returns the sales series
// GET /api/dashboard/ventas/periodo?periodo=dia&dias=30
func (h *DashboardHandler) GetSalesByPeriod(c *fiber.Ctx) error {
	filter, err := h.reportFilter(c, qPeriod, qLookbackDays)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetSalesByPeriod", err)
	}

	series, err := h.dashboardService.GetSalesByPeriod(c.UserContext(), filter.Granularity, filter.LookbackDays)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "GetSalesByPeriod", err)
	}
	return okList(c, "Ventas por período obtenidas exitosamente", series)
}

// DownloadSalesReport streams the KPI and ranking report as PDF
// GET /api/dashboard/reportes/ventas.pdf?fechaInicio=&fechaFin=
func (h *DashboardHandler) DownloadSalesReport(c *fiber.Ctx) error {
	window, err := h.dateWindow(c)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "DownloadSalesReport", err)
	}

	pdf, filename, err := h.dashboardService.GenerateSalesReportPDF(c.UserContext(), window)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "DownloadSalesReport", err)
	}
	return sendAttachment(c, mimePDF, filename, pdf)
}

// DownloadRankingSheet streams the branch ranking as a spreadsheet
// GET /api/dashboard/reportes/ranking.xlsx?fechaInicio=&fechaFin=
func (h *DashboardHandler) DownloadRankingSheet(c *fiber.Ctx) error {
	window, err := h.dateWindow(c)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "DownloadRankingSheet", err)
	}

	sheet, filename, err := h.dashboardService.GenerateRankingXLSX(c.UserContext(), window)
	if err != nil {
		return h.errors.Respond(c, "dashboard_handler", "DownloadRankingSheet", err)
	}
	return sendAttachment(c, mimeXLSX, filename, sheet)
}

func sendAttachment(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(body)
}

// SSEEvents handles Server-Sent Events for real-time updates
// GET /api/dashboard/events
func (h *DashboardHandler) SSEEvents(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set(fiber.HeaderTransferEncoding, "chunked")

	bus := h.dashboardService.GetEventBus()
	subscriberID := uuid.NewString()

	// The stream writer outlives the handler, so the subscription is bound to it rather than the request.
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		eventChan := bus.Subscribe(ctx, subscriberID)

		if _, err := w.WriteString("event: connected\ndata: {\"message\":\"connected\"}\n\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(sseHeartbeat)
		defer ticker.Stop()

		for {
			select {
			case event, open := <-eventChan:
				if !open {
					return
				}
				sseData, err := events.FormatSSE(event)
				if err != nil {
					h.logger.WithError(err).WithField("event", event.Type).Warn("failed to format SSE event")
					continue
				}
				if _, err := w.WriteString(sseData); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}

			case <-ticker.C:
				if _, err := w.WriteString(": heartbeat\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}

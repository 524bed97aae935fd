package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/core/coretest"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newDashboardService(store *coretest.Store) *DashboardService {
	svc := NewDashboardService(store.AnalyticsRepository(), events.NewEventBus(), time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seedKPIs(store *coretest.Store) {
	marchStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.Lifetime = core.SalesTotalRow{Total: dec("12345.678"), Count: 40}
	store.Counts = core.EntityCountsRow{Transactions: 40, Branches: 3, Products: 12}
	store.Periods = []core.PeriodSalesRow{
		{PeriodKey: "2024-03-01", Total: dec("100"), Count: 2},
		{PeriodKey: "2024-03-02", Total: dec("50"), Count: 1},
	}
	store.SalesBetweenFn = func(w core.DateWindow) core.SalesTotalRow {
		if w.From != nil && w.From.Equal(marchStart) {
			return core.SalesTotalRow{Total: dec("1000"), Count: 10}
		}
		return core.SalesTotalRow{Total: dec("800"), Count: 8}
	}
}

func TestGetKPIs(t *testing.T) {
	store := coretest.NewStore()
	seedKPIs(store)
	svc := newDashboardService(store)

	kpis, err := svc.GetKPIs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := core.KPISnapshot{
		TotalSalesAllTime:  12345.68,
		Avg30DayDailySales: 75,
		CurrentMonthSales:  1000,
		PreviousMonthSales: 800,
		MoMPercentChange:   25,
		TransactionCount:   40,
		BranchCount:        3,
		ProductCount:       12,
	}
	if *kpis != want {
		t.Fatalf("kpis = %+v, want %+v", *kpis, want)
	}

	if store.CallCount("SalesBetween") != 2 {
		t.Fatalf("SalesBetween called %d times", store.CallCount("SalesBetween"))
	}
	if store.LastGranularity != core.GranularityDay || !store.LastSince.Equal(fixedNow.AddDate(0, 0, -30)) {
		t.Fatalf("average queried %s since %v", store.LastGranularity, store.LastSince)
	}
}

func TestGetKPIsWithoutPreviousMonth(t *testing.T) {
	store := coretest.NewStore()
	store.SalesBetweenFn = func(w core.DateWindow) core.SalesTotalRow {
		if w.From.Month() == time.March {
			return core.SalesTotalRow{Total: dec("500"), Count: 1}
		}
		return core.SalesTotalRow{}
	}

	kpis, err := newDashboardService(store).GetKPIs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kpis.MoMPercentChange != 0 || kpis.Avg30DayDailySales != 0 {
		t.Fatalf("unexpected %+v", kpis)
	}
}

func TestGetKPIsStoreFailure(t *testing.T) {
	store := coretest.NewStore()
	store.Fail["EntityCounts"] = core.NewStoreError("Error al obtener KPIs", errors.New("connection reset"))

	_, err := newDashboardService(store).GetKPIs(context.Background())
	if core.KindOf(err) != core.KindStore {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGetBranchRanking(t *testing.T) {
	store := coretest.NewStore()
	store.BranchSalesRow = []core.BranchSalesRow{
		{ID: 2, Name: "Norte", Total: dec("300"), Count: 3},
		{ID: 1, Name: "Centro", Total: dec("600"), Count: 4},
		{ID: 3, Name: "Sur", Total: dec("100"), Count: 1},
	}

	ranking, err := newDashboardService(store).GetBranchRanking(context.Background(), core.DateWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking) != 3 || ranking[0].Name != "Centro" || ranking[0].Tier != core.TierExcellent {
		t.Fatalf("unexpected ranking %+v", ranking)
	}
}

func TestGetTopProductsZeroLimit(t *testing.T) {
	store := coretest.NewStore()
	store.ProductSales = []core.ProductSalesRow{{ID: 1, Revenue: dec("10")}}

	products, err := newDashboardService(store).GetTopProducts(context.Background(), core.ReportFilter{Limit: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("expected an empty list, got %v", products)
	}
	if store.CallCount("ProductSales") != 0 {
		t.Fatal("store queried for a zero limit")
	}
}

func TestGetTopProductsTruncates(t *testing.T) {
	store := coretest.NewStore()
	store.ProductSales = []core.ProductSalesRow{
		{ID: 1, Name: "Notebook", Revenue: dec("500.456"), UnitsSold: 2, UnitPrice: dec("250.228")},
		{ID: 2, Name: "Mouse", Revenue: dec("100")},
		{ID: 3, Name: "Cable", Revenue: dec("10")},
	}

	products, err := newDashboardService(store).GetTopProducts(context.Background(), core.ReportFilter{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 || store.LastLimit != 2 {
		t.Fatalf("got %d products, store limit %d", len(products), store.LastLimit)
	}
	if products[0].Revenue != 500.46 {
		t.Fatalf("revenue = %v, want 500.46", products[0].Revenue)
	}
}

func TestGetSalesByPeriod(t *testing.T) {
	store := coretest.NewStore()
	store.Periods = []core.PeriodSalesRow{{PeriodKey: "2024-01-01", Total: dec("90"), Count: 3}}

	series, err := newDashboardService(store).GetSalesByPeriod(context.Background(), core.GranularityMonth, 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].AvgTicket != 30 || series[0].PeriodKey != "2024-01-01" {
		t.Fatalf("unexpected series %+v", series)
	}
	if store.LastGranularity != core.GranularityMonth || !store.LastSince.Equal(fixedNow.AddDate(0, 0, -90)) {
		t.Fatalf("queried %s since %v", store.LastGranularity, store.LastSince)
	}
}

func TestGenerateSalesReportPDF(t *testing.T) {
	store := coretest.NewStore()
	seedKPIs(store)
	store.BranchSalesRow = []core.BranchSalesRow{
		{ID: 1, Name: "Centro", Location: "Av. Corrientes 1234", Total: dec("600"), Count: 4},
		{ID: 2, Name: "Norte", Total: dec("300"), Count: 3},
	}

	data, filename, err := newDashboardService(store).GenerateSalesReportPDF(context.Background(), core.DateWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
	if filename != "reporte-ventas-2024-03-15.pdf" {
		t.Fatalf("filename = %q", filename)
	}
}

func TestGenerateRankingXLSX(t *testing.T) {
	store := coretest.NewStore()
	store.BranchSalesRow = []core.BranchSalesRow{
		{ID: 1, Name: "Centro", Total: dec("600"), Count: 4},
		{ID: 2, Name: "Norte", Total: dec("300"), Count: 3},
	}

	data, filename, err := newDashboardService(store).GenerateRankingXLSX(context.Background(), core.DateWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Fatalf("filename = %q", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(rankingSheet)
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	found := false
	for _, row := range rows {
		for _, cell := range row {
			if cell == "Centro" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("branch missing from sheet: %v", rows)
	}
}

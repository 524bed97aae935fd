package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/core/coretest"
	"github.com/tp-bda/dashboard-ventas/internal/events"
)

func newBranchService(store *coretest.Store) *BranchService {
	svc := NewBranchService(
		store.BranchRepository(),
		store.SellerRepository(),
		store.AnalyticsRepository(),
		events.NewEventBus(),
		time.UTC,
	)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func strPtr(s string) *string { return &s }

func expectKind(t *testing.T, err error, kind core.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := core.KindOf(err); got != kind {
		t.Fatalf("kind = %s, want %s (%v)", got, kind, err)
	}
}

func TestGetSellerDetailUnknownSeller(t *testing.T) {
	store := coretest.NewStore()

	_, err := newBranchService(store).GetSellerDetail(context.Background(), 99, core.DateWindow{})
	expectKind(t, err, core.KindNotFound)
	if store.CallCount("SellerSales") != 0 {
		t.Fatal("aggregates queried for an unknown seller")
	}
}

func TestGetSellerDetailWithoutSales(t *testing.T) {
	store := coretest.NewStore()
	store.Sellers[7] = core.Seller{ID: 7, FirstName: "Ana", LastName: "Gómez", BranchID: 1}

	detail, err := newBranchService(store).GetSellerDetail(context.Background(), 7, core.DateWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Stats != (core.SellerStats{}) {
		t.Fatalf("expected zero stats, got %+v", detail.Stats)
	}
	if detail.Products == nil || len(detail.Products) != 0 {
		t.Fatalf("expected an empty breakdown, got %v", detail.Products)
	}
}

func TestGetSellerDetailShares(t *testing.T) {
	first := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)

	store := coretest.NewStore()
	store.Sellers[7] = core.Seller{ID: 7, BranchID: 1}
	store.SellerTotals[7] = core.SalesTotalRow{Total: dec("250"), Count: 4}
	store.SellerCounts[7] = core.ProductCountsRow{DistinctProducts: 2, UnitsSold: 9}
	store.SellerSpans[7] = core.ActivitySpanRow{First: &first, Last: &last}
	store.BranchTotals[1] = dec("750")
	store.SellerProducts[7] = []core.SellerProductRow{
		{ID: 1, Name: "Notebook", UnitsSold: 1, Revenue: dec("200")},
		{ID: 2, Name: "Mouse", UnitsSold: 8, Revenue: dec("50")},
	}

	detail, err := newBranchService(store).GetSellerDetail(context.Background(), 7, core.DateWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := detail.Stats
	if stats.TotalSales != 250 || stats.AvgTicket != 62.5 || stats.BranchSales != 750 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if stats.BranchShare != 33.33 {
		t.Fatalf("branch share = %v, want 33.33", stats.BranchShare)
	}
	if !stats.FirstSale.Equal(first) || !stats.LastSale.Equal(last) {
		t.Fatalf("activity span = %v..%v", stats.FirstSale, stats.LastSale)
	}
	if len(detail.Products) != 2 || detail.Products[0].Name != "Notebook" {
		t.Fatalf("unexpected breakdown %+v", detail.Products)
	}
}

func TestGetStats(t *testing.T) {
	store := coretest.NewStore()
	store.Metrics = []core.BranchMetricsRow{
		{ID: 1, Name: "Centro", SellerCount: 3, StockTotal: 40, Total: dec("600"), SaleCount: 4},
		{ID: 2, Name: "Norte", SellerCount: 2, StockTotal: 10, Total: dec("400"), SaleCount: 3},
		{ID: 3, Name: "Sur", SellerCount: 1, StockTotal: 5, Total: decimal.Zero},
	}
	store.SalesBetweenFn = func(core.DateWindow) core.SalesTotalRow {
		return core.SalesTotalRow{Total: dec("300"), Count: 4}
	}
	store.Periods = []core.PeriodSalesRow{{PeriodKey: "2024-02-01", Total: dec("700"), Count: 5}}

	stats, err := newBranchService(store).GetStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.BranchCount != 3 || stats.BranchesWithSales != 2 || stats.BranchesWithoutSales != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.SellerCount != 6 || stats.StockTotal != 55 || stats.TotalSales != 1000 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if stats.AvgSalesPerBranch != 333.33 || stats.LastMonthAvgTicket != 75 {
		t.Fatalf("unexpected averages %+v", stats)
	}
	if stats.BestBranch.Name != "Centro" || stats.WorstBranch.Name != "Sur" {
		t.Fatalf("best %s, worst %s", stats.BestBranch.Name, stats.WorstBranch.Name)
	}
	if stats.BestBranch.Participation != 60 {
		t.Fatalf("participation = %v", stats.BestBranch.Participation)
	}
	if len(stats.MonthlySales) != 1 || stats.MonthlySales[0].Label != "Feb 2024" {
		t.Fatalf("unexpected trend %+v", stats.MonthlySales)
	}
	wantSince := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	if store.LastGranularity != core.GranularityMonth || !store.LastSince.Equal(wantSince) {
		t.Fatalf("trend queried %s since %v", store.LastGranularity, store.LastSince)
	}
}

func TestGetStatsWithoutBranches(t *testing.T) {
	stats, err := newBranchService(coretest.NewStore()).GetStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.BestBranch != nil || stats.WorstBranch != nil || stats.AvgSalesPerBranch != 0 {
		t.Fatalf("unexpected %+v", stats)
	}
}

func TestCreateBranchNormalizesPhone(t *testing.T) {
	store := coretest.NewStore()
	svc := newBranchService(store)

	branch, err := svc.CreateBranch(context.Background(), CreateBranchInput{
		Name:     "  Centro ",
		Location: "Av. Corrientes 1234",
		Phone:    strPtr("+1 650-253-0000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch.ID == 0 || branch.Name != "Centro" {
		t.Fatalf("unexpected branch %+v", branch)
	}
	if branch.Phone == nil || *branch.Phone != "+16502530000" {
		t.Fatalf("phone = %v", branch.Phone)
	}
}

func TestCreateBranchValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateBranchInput
		field string
	}{
		{"missing name", CreateBranchInput{Location: "Calle 1"}, "nombre"},
		{"missing location", CreateBranchInput{Name: "Centro"}, "ubicacion"},
		{"bad phone", CreateBranchInput{Name: "Centro", Location: "Calle 1", Phone: strPtr("12")}, "telefono"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := coretest.NewStore()
			_, err := newBranchService(store).CreateBranch(context.Background(), tt.input)
			if got := fieldOf(t, err); got != tt.field {
				t.Fatalf("field = %q, want %q", got, tt.field)
			}
			if store.CallCount("CreateBranch") != 0 {
				t.Fatal("invalid branch was stored")
			}
		})
	}
}

func TestUpdateBranch(t *testing.T) {
	store := coretest.NewStore()
	store.Branches = []core.BranchSummaryRow{{Branch: core.Branch{ID: 1, Name: "Centro", Phone: strPtr("+16502530000")}}}
	svc := newBranchService(store)

	expectKind(t, svc.UpdateBranch(context.Background(), 1, UpdateBranchInput{}), core.KindValidation)
	expectKind(t, svc.UpdateBranch(context.Background(), 1, UpdateBranchInput{Name: strPtr("  ")}), core.KindValidation)
	expectKind(t, svc.UpdateBranch(context.Background(), 9, UpdateBranchInput{Name: strPtr("Otro")}), core.KindNotFound)

	if err := svc.UpdateBranch(context.Background(), 1, UpdateBranchInput{Name: strPtr("Microcentro"), Phone: strPtr(" ")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Branches[0]; got.Name != "Microcentro" || got.Phone != nil {
		t.Fatalf("unexpected branch after update %+v", got.Branch)
	}
}

func TestBranchScopedListsRequireBranch(t *testing.T) {
	store := coretest.NewStore()
	store.Branches = []core.BranchSummaryRow{{Branch: core.Branch{ID: 1, Name: "Centro"}}}
	store.SellerRow[1] = []core.SellerSalesRow{{ID: 4, FirstName: "Ana", Total: dec("10.005"), SaleCount: 1}}
	svc := newBranchService(store)

	_, err := svc.GetSellers(context.Background(), 2, core.DateWindow{})
	expectKind(t, err, core.KindNotFound)
	_, err = svc.GetInventory(context.Background(), 2)
	expectKind(t, err, core.KindNotFound)

	sellers, err := svc.GetSellers(context.Background(), 1, core.DateWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sellers) != 1 || sellers[0].TotalSales != 10.01 {
		t.Fatalf("unexpected sellers %+v", sellers)
	}
}

func TestDeleteBranchPublishesEvent(t *testing.T) {
	store := coretest.NewStore()
	store.Branches = []core.BranchSummaryRow{{Branch: core.Branch{ID: 1, Name: "Centro"}}}
	bus := events.NewEventBus()
	svc := NewBranchService(store.BranchRepository(), store.SellerRepository(), store.AnalyticsRepository(), bus, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := bus.Subscribe(ctx, "test")

	if err := svc.DeleteBranch(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case event := <-stream:
		if event.Type != events.EventBranchDeleted {
			t.Fatalf("event = %s", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

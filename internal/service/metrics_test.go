package service

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		current, previous string
		want              float64
	}{
		{"1000", "800", 25},
		{"1000", "0", 0},
		{"0", "0", 0},
		{"600", "800", -25},
		{"100", "300", -66.67},
	}
	for _, tt := range tests {
		if got := percentChange(dec(tt.current), dec(tt.previous)); got != tt.want {
			t.Errorf("percentChange(%s, %s) = %v, want %v", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestClassifyTierBoundaries(t *testing.T) {
	tests := []struct {
		pct   float64
		tier  core.Tier
		color core.TierColor
	}{
		{30.0, core.TierExcellent, core.TierColorGreen},
		{29.99, core.TierGood, core.TierColorYellow},
		{15.0, core.TierGood, core.TierColorYellow},
		{14.99, core.TierLow, core.TierColorRed},
		{0, core.TierLow, core.TierColorRed},
	}
	for _, tt := range tests {
		tier, color := classifyTier(tt.pct)
		if tier != tt.tier || color != tt.color {
			t.Errorf("classifyTier(%v) = %s/%s, want %s/%s", tt.pct, tier, color, tt.tier, tt.color)
		}
	}
}

func TestRankBranchesScenario(t *testing.T) {
	rows := []core.BranchSalesRow{
		{ID: 3, Name: "Sur", Total: dec("100"), Count: 1},
		{ID: 1, Name: "Centro", Total: dec("600"), Count: 4},
		{ID: 2, Name: "Norte", Total: dec("300"), Count: 3},
	}

	ranked := rankBranches(rows)

	wantIDs := []int64{1, 2, 3}
	wantPct := []float64{60, 30, 10}
	wantTier := []core.Tier{core.TierExcellent, core.TierExcellent, core.TierLow}
	for i, r := range ranked {
		if r.ID != wantIDs[i] || r.Rank != i+1 {
			t.Fatalf("position %d = branch %d rank %d", i, r.ID, r.Rank)
		}
		if r.PercentOfTotal != wantPct[i] || r.Tier != wantTier[i] {
			t.Fatalf("branch %d: %v%% %s, want %v%% %s", r.ID, r.PercentOfTotal, r.Tier, wantPct[i], wantTier[i])
		}
	}
	if ranked[0].AvgTicket != 150 {
		t.Fatalf("avg ticket = %v, want 150", ranked[0].AvgTicket)
	}
	if rows[0].ID != 3 {
		t.Fatal("input rows were reordered")
	}
}

func TestRankBranchesSharesSumToHundred(t *testing.T) {
	rows := []core.BranchSalesRow{
		{ID: 1, Total: dec("333.33")},
		{ID: 2, Total: dec("333.33")},
		{ID: 3, Total: dec("333.34")},
		{ID: 4, Total: dec("0")},
	}
	ranked := rankBranches(rows)

	sum := 0.0
	for i, r := range ranked {
		sum += r.PercentOfTotal
		if i > 0 && r.TotalSales > ranked[i-1].TotalSales {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("shares sum to %v", sum)
	}
	if ranked[3].ID != 4 || ranked[3].AvgTicket != 0 {
		t.Fatalf("zero-sales branch should rank last with no ticket, got %+v", ranked[3])
	}
}

func TestRankBranchesTiesKeepStoreOrder(t *testing.T) {
	rows := []core.BranchSalesRow{
		{ID: 7, Total: dec("50")},
		{ID: 2, Total: dec("50")},
	}
	ranked := rankBranches(rows)
	if ranked[0].ID != 7 || ranked[1].ID != 2 {
		t.Fatalf("tie order changed: %d, %d", ranked[0].ID, ranked[1].ID)
	}
}

func TestRankBranchesAllZero(t *testing.T) {
	ranked := rankBranches([]core.BranchSalesRow{{ID: 1}, {ID: 2}})
	for _, r := range ranked {
		if r.PercentOfTotal != 0 || r.Tier != core.TierLow {
			t.Fatalf("unexpected %+v", r)
		}
	}
}

func TestBranchSharesUseOneDecimal(t *testing.T) {
	shares, total := branchShares([]core.BranchMetricsRow{
		{ID: 1, Total: dec("1")},
		{ID: 2, Total: dec("2")},
	})
	if !total.Equal(dec("3")) {
		t.Fatalf("total = %s", total)
	}
	if shares[0].ID != 2 || shares[0].Participation != 66.7 || shares[1].Participation != 33.3 {
		t.Fatalf("unexpected shares %+v", shares)
	}
}

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		current, previous int64
		want              float64
	}{
		{12, 10, 20},
		{5, 0, 100},
		{0, 0, 0},
		{1, 3, -66.7},
	}
	for _, tt := range tests {
		if got := growthRate(tt.current, tt.previous); got != tt.want {
			t.Errorf("growthRate(%d, %d) = %v, want %v", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestMeanOfBuckets(t *testing.T) {
	if got := meanOfBuckets(nil); !got.IsZero() {
		t.Fatalf("mean of nothing = %s", got)
	}
	got := meanOfBuckets([]core.PeriodSalesRow{{Total: dec("100")}, {Total: dec("50")}})
	if !got.Equal(dec("75")) {
		t.Fatalf("mean = %s, want 75", got)
	}
}

func TestMonthLabel(t *testing.T) {
	if got := monthLabel("2026-01-01"); got != "Jan 2026" {
		t.Fatalf("monthLabel = %q", got)
	}
	if got := monthLabel("bad"); got != "bad" {
		t.Fatalf("monthLabel(bad) = %q", got)
	}
}

package service

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
)

// Branch share thresholds, in percent of total sales
const (
	excellentShare = 30.0
	goodShare      = 15.0
)

// percentChange returns (current-previous)/previous*100 rounded to 2 decimals, 0 when previous is zero
func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
}

// classifyTier maps a share of total sales to its traffic-light tier
func classifyTier(percent float64) (core.Tier, core.TierColor) {
	switch {
	case percent >= excellentShare:
		return core.TierExcellent, core.TierColorGreen
	case percent >= goodShare:
		return core.TierGood, core.TierColorYellow
	default:
		return core.TierLow, core.TierColorRed
	}
}

// rankBranches orders branches by sales descending, keeping store order on ties,
// and attaches rank, share of total and tier.
func rankBranches(rows []core.BranchSalesRow) []core.RankedBranch {
	sorted := make([]core.BranchSalesRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total.GreaterThan(sorted[j].Total)
	})

	sum := decimal.Zero
	for _, row := range sorted {
		sum = sum.Add(row.Total)
	}

	ranked := make([]core.RankedBranch, len(sorted))
	for i, row := range sorted {
		pct := percentOf(row.Total, sum, 2)
		tier, color := classifyTier(pct)
		ranked[i] = core.RankedBranch{
			ID:             row.ID,
			Name:           row.Name,
			Location:       row.Location,
			TotalSales:     money(row.Total),
			SaleCount:      row.Count,
			AvgTicket:      average(row.Total, row.Count),
			Rank:           i + 1,
			PercentOfTotal: pct,
			Tier:           tier,
			TierColor:      color,
		}
	}
	return ranked
}

// meanOfBuckets averages the totals of the non-empty buckets
func meanOfBuckets(rows []core.PeriodSalesRow) decimal.Decimal {
	if len(rows) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.Total)
	}
	return sum.Div(decimal.NewFromInt(int64(len(rows))))
}

// branchShares converts branch metrics into participation shares, best first
func branchShares(rows []core.BranchMetricsRow) ([]core.BranchShare, decimal.Decimal) {
	sorted := make([]core.BranchMetricsRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total.GreaterThan(sorted[j].Total)
	})

	total := decimal.Zero
	for _, row := range sorted {
		total = total.Add(row.Total)
	}

	shares := make([]core.BranchShare, len(sorted))
	for i, row := range sorted {
		shares[i] = core.BranchShare{
			ID:            row.ID,
			Name:          row.Name,
			SellerCount:   row.SellerCount,
			StockTotal:    row.StockTotal,
			ProductCount:  row.ProductCount,
			TotalSales:    money(row.Total),
			SaleCount:     row.SaleCount,
			Participation: percentOf(row.Total, total, 1),
		}
	}
	return shares, total
}

// growthRate compares two counts; growth from zero is reported as 100
func growthRate(current, previous int64) float64 {
	switch {
	case previous > 0:
		return decimal.NewFromInt(current - previous).
			Div(decimal.NewFromInt(previous)).
			Mul(hundred).
			Round(1).
			InexactFloat64()
	case current > 0:
		return 100
	default:
		return 0
	}
}

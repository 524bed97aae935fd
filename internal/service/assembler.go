package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
)

var hundred = decimal.NewFromInt(100)

// money rounds a currency amount to cents for the JSON payload
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// percentOf returns part/whole*100 rounded to places, or 0 when whole is zero
func percentOf(part, whole decimal.Decimal, places int32) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(places).InexactFloat64()
}

// average returns total/count as currency, 0 without rows
func average(total decimal.Decimal, count int64) float64 {
	if count == 0 {
		return 0
	}
	return money(total.Div(decimal.NewFromInt(count)))
}

func toBranchSummary(row core.BranchSummaryRow) core.BranchSummary {
	return core.BranchSummary{
		Branch:       row.Branch,
		SellerCount:  row.SellerCount,
		ProductCount: row.ProductCount,
		TotalSales:   money(row.Total),
		SaleCount:    row.SaleCount,
	}
}

func toSellerSales(row core.SellerSalesRow) core.SellerSales {
	return core.SellerSales{
		ID:         row.ID,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		NationalID: row.NationalID,
		SaleCount:  row.SaleCount,
		TotalSales: money(row.Total),
	}
}

func toInventoryItem(row core.InventoryRow) core.InventoryItem {
	return core.InventoryItem{
		ProductID:   row.ProductID,
		Name:        row.Name,
		Description: row.Description,
		UnitPrice:   money(row.UnitPrice),
		Category:    row.Category,
		Stock:       row.Stock,
	}
}

func toProduct(row core.ProductRow) core.Product {
	return core.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		UnitPrice:   money(row.UnitPrice),
		CategoryID:  row.CategoryID,
	}
}

func toCategorySales(row core.CategorySalesRow) core.CategorySales {
	return core.CategorySales{
		Category:  row.Category,
		SaleCount: row.SaleCount,
		UnitsSold: row.UnitsSold,
		Revenue:   money(row.Revenue),
	}
}

func toProductSales(row core.ProductSalesRow) core.ProductSales {
	return core.ProductSales{
		ID:               row.ID,
		Name:             row.Name,
		Category:         row.Category,
		UnitPrice:        money(row.UnitPrice),
		UnitsSold:        row.UnitsSold,
		Revenue:          money(row.Revenue),
		TransactionCount: row.TransactionCount,
	}
}

func toPeriodBucket(row core.PeriodSalesRow) core.PeriodBucket {
	return core.PeriodBucket{
		PeriodKey:        row.PeriodKey,
		TotalSales:       money(row.Total),
		TransactionCount: row.Count,
		AvgTicket:        average(row.Total, row.Count),
	}
}

func toSellerProduct(row core.SellerProductRow) core.SellerProduct {
	return core.SellerProduct{
		ID:        row.ID,
		Name:      row.Name,
		Category:  row.Category,
		UnitsSold: row.UnitsSold,
		Revenue:   money(row.Revenue),
	}
}

// monthLabel renders a YYYY-MM-01 period key as "Jan 2026"; unparseable keys are returned unchanged
func monthLabel(periodKey string) string {
	t, err := time.Parse(dateLayout, periodKey)
	if err != nil {
		return periodKey
	}
	return t.Format("Jan 2006")
}

package sqlstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
)

const salesTotalsSelect = "COALESCE(SUM(total), 0) AS total, COUNT(*) AS count"

// AnalyticsRepository implementation

// LifetimeSales sums every purchase ever recorded
func (r *analyticsRepository) LifetimeSales(ctx context.Context) (core.SalesTotalRow, error) {
	var row core.SalesTotalRow
	if err := r.db.WithContext(ctx).Table("purchases").
		Select(salesTotalsSelect).
		Scan(&row).Error; err != nil {
		return row, storeError(err, "Error al obtener los KPIs", "get lifetime sales")
	}
	return row, nil
}

// SalesBetween sums the purchases inside window
func (r *analyticsRepository) SalesBetween(ctx context.Context, window core.DateWindow) (core.SalesTotalRow, error) {
	var row core.SalesTotalRow
	query := r.db.WithContext(ctx).Table("purchases").Select(salesTotalsSelect)
	if err := windowConditions("purchased_at", window).apply(query).Scan(&row).Error; err != nil {
		return row, storeError(err, "Error al obtener ventas", "get sales in window")
	}
	return row, nil
}

// EntityCounts counts purchases, branches and products in one round trip
func (r *analyticsRepository) EntityCounts(ctx context.Context) (core.EntityCountsRow, error) {
	var row core.EntityCountsRow
	if err := r.db.WithContext(ctx).Raw(`SELECT
			(SELECT COUNT(*) FROM purchases) AS transactions,
			(SELECT COUNT(*) FROM branches) AS branches,
			(SELECT COUNT(*) FROM products) AS products`).
		Scan(&row).Error; err != nil {
		return row, storeError(err, "Error al obtener los KPIs", "count entities")
	}
	return row, nil
}

// PeriodSales buckets purchases since the given instant. Buckets without purchases are absent.
func (r *analyticsRepository) PeriodSales(ctx context.Context, granularity core.Granularity, since time.Time) ([]core.PeriodSalesRow, error) {
	key := r.dialect.periodKey(granularity, "purchased_at")

	var rows []core.PeriodSalesRow
	if err := r.db.WithContext(ctx).Table("purchases").
		Select(key+" AS period_key, "+salesTotalsSelect).
		Where("purchased_at >= ?", since).
		Group(key).
		Order("period_key ASC").
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener ventas por período", "get period sales")
	}
	return rows, nil
}

// BranchSales sums purchases per branch inside window; branches without purchases report zero
func (r *analyticsRepository) BranchSales(ctx context.Context, window core.DateWindow) ([]core.BranchSalesRow, error) {
	on, args := windowConditions("p.purchased_at", window).joinClause()

	var rows []core.BranchSalesRow
	if err := r.db.WithContext(ctx).Table("branches AS b").
		Select("b.id, b.name, b.location, COALESCE(SUM(p.total), 0) AS total, COUNT(p.id) AS count").
		Joins("LEFT JOIN purchases AS p ON p.branch_id = b.id"+on, args...).
		Group("b.id, b.name, b.location").
		Order("total DESC, b.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener el ranking", "get branch sales")
	}
	return rows, nil
}

// CategorySales aggregates line items per category at their purchase-time unit cost
func (r *analyticsRepository) CategorySales(ctx context.Context, filter core.SalesFilter) ([]core.CategorySalesRow, error) {
	query := r.db.WithContext(ctx).Table("categories AS c").
		Select(`c.name AS category,
			COUNT(DISTINCT pl.purchase_id) AS sale_count,
			COALESCE(SUM(pl.quantity), 0) AS units_sold,
			COALESCE(SUM(pl.quantity * pl.unit_cost), 0) AS revenue`).
		Joins("JOIN products AS pr ON pr.category_id = c.id").
		Joins("JOIN purchase_lines AS pl ON pl.product_id = pr.id").
		Joins("JOIN purchases AS p ON p.id = pl.purchase_id")

	var rows []core.CategorySalesRow
	if err := salesConditions("p", filter).apply(query).
		Group("c.id, c.name").
		Order("revenue DESC, c.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener ventas por categoría", "get category sales")
	}
	return rows, nil
}

// ProductSales aggregates line items per product, highest revenue first, at most limit rows
func (r *analyticsRepository) ProductSales(ctx context.Context, filter core.SalesFilter, limit int) ([]core.ProductSalesRow, error) {
	query := r.db.WithContext(ctx).Table("products AS pr").
		Select(`pr.id, pr.name, c.name AS category, pr.unit_price,
			COALESCE(SUM(pl.quantity), 0) AS units_sold,
			COALESCE(SUM(pl.quantity * pl.unit_cost), 0) AS revenue,
			COUNT(DISTINCT pl.purchase_id) AS transaction_count`).
		Joins("JOIN categories AS c ON c.id = pr.category_id").
		Joins("JOIN purchase_lines AS pl ON pl.product_id = pr.id").
		Joins("JOIN purchases AS p ON p.id = pl.purchase_id")

	var rows []core.ProductSalesRow
	if err := salesConditions("p", filter).apply(query).
		Group("pr.id, pr.name, c.name, pr.unit_price").
		Order("revenue DESC, pr.id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener productos más vendidos", "get product sales")
	}
	return rows, nil
}

// BranchMetrics retrieves per-branch headcount, stock and lifetime sales
func (r *analyticsRepository) BranchMetrics(ctx context.Context) ([]core.BranchMetricsRow, error) {
	var rows []core.BranchMetricsRow
	if err := r.db.WithContext(ctx).Table("branches AS b").
		Select(`b.id, b.name,
			COALESCE(s.seller_count, 0) AS seller_count,
			COALESCE(i.stock_total, 0) AS stock_total,
			COALESCE(i.product_count, 0) AS product_count,
			COALESCE(p.total, 0) AS total,
			COALESCE(p.sale_count, 0) AS sale_count`).
		Joins("LEFT JOIN (SELECT branch_id, COUNT(*) AS seller_count FROM sellers GROUP BY branch_id) s ON s.branch_id = b.id").
		Joins("LEFT JOIN (SELECT branch_id, SUM(stock_quantity) AS stock_total, COUNT(DISTINCT product_id) AS product_count FROM inventory GROUP BY branch_id) i ON i.branch_id = b.id").
		Joins("LEFT JOIN (SELECT branch_id, SUM(total) AS total, COUNT(*) AS sale_count FROM purchases GROUP BY branch_id) p ON p.branch_id = b.id").
		Order("total DESC, b.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener estadísticas", "get branch metrics")
	}
	return rows, nil
}

// SellerSales sums a seller's purchases inside window
func (r *analyticsRepository) SellerSales(ctx context.Context, sellerID int64, window core.DateWindow) (core.SalesTotalRow, error) {
	var row core.SalesTotalRow
	query := r.db.WithContext(ctx).Table("purchases").
		Select(salesTotalsSelect).
		Where("seller_id = ?", sellerID)
	if err := windowConditions("purchased_at", window).apply(query).Scan(&row).Error; err != nil {
		return row, storeError(err, "Error al obtener el detalle del vendedor", "get seller sales")
	}
	return row, nil
}

// SellerProductCounts counts the distinct products and units a seller sold inside window
func (r *analyticsRepository) SellerProductCounts(ctx context.Context, sellerID int64, window core.DateWindow) (core.ProductCountsRow, error) {
	var row core.ProductCountsRow
	query := r.db.WithContext(ctx).Table("purchase_lines AS pl").
		Select("COUNT(DISTINCT pl.product_id) AS distinct_products, COALESCE(SUM(pl.quantity), 0) AS units_sold").
		Joins("JOIN purchases AS p ON p.id = pl.purchase_id").
		Where("p.seller_id = ?", sellerID)
	if err := windowConditions("p.purchased_at", window).apply(query).Scan(&row).Error; err != nil {
		return row, storeError(err, "Error al obtener el detalle del vendedor", "get seller product counts")
	}
	return row, nil
}

// SellerActivitySpan finds a seller's first and last sale inside window
func (r *analyticsRepository) SellerActivitySpan(ctx context.Context, sellerID int64, window core.DateWindow) (core.ActivitySpanRow, error) {
	var span struct {
		FirstSale *time.Time
		LastSale  *time.Time
	}
	query := r.db.WithContext(ctx).Table("purchases").
		Select("MIN(purchased_at) AS first_sale, MAX(purchased_at) AS last_sale").
		Where("seller_id = ?", sellerID)
	if err := windowConditions("purchased_at", window).apply(query).Scan(&span).Error; err != nil {
		return core.ActivitySpanRow{}, storeError(err, "Error al obtener el detalle del vendedor", "get seller activity span")
	}
	return core.ActivitySpanRow{First: span.FirstSale, Last: span.LastSale}, nil
}

// BranchSalesTotal sums a branch's purchases inside window
func (r *analyticsRepository) BranchSalesTotal(ctx context.Context, branchID int64, window core.DateWindow) (decimal.Decimal, error) {
	var row core.SalesTotalRow
	query := r.db.WithContext(ctx).Table("purchases").
		Select(salesTotalsSelect).
		Where("branch_id = ?", branchID)
	if err := windowConditions("purchased_at", window).apply(query).Scan(&row).Error; err != nil {
		return decimal.Zero, storeError(err, "Error al obtener el detalle del vendedor", "get branch sales total")
	}
	return row.Total, nil
}

// SellerTopProducts ranks the products a seller sold inside window by revenue
func (r *analyticsRepository) SellerTopProducts(ctx context.Context, sellerID int64, window core.DateWindow, limit int) ([]core.SellerProductRow, error) {
	query := r.db.WithContext(ctx).Table("purchase_lines AS pl").
		Select(`pr.id, pr.name, c.name AS category,
			COALESCE(SUM(pl.quantity), 0) AS units_sold,
			COALESCE(SUM(pl.quantity * pl.unit_cost), 0) AS revenue`).
		Joins("JOIN purchases AS p ON p.id = pl.purchase_id").
		Joins("JOIN products AS pr ON pr.id = pl.product_id").
		Joins("JOIN categories AS c ON c.id = pr.category_id").
		Where("p.seller_id = ?", sellerID)

	var rows []core.SellerProductRow
	if err := windowConditions("p.purchased_at", window).apply(query).
		Group("pr.id, pr.name, c.name").
		Order("revenue DESC, pr.id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener el detalle del vendedor", "get seller top products")
	}
	return rows, nil
}

// UserStats counts accounts by age relative to now
func (r *analyticsRepository) UserStats(ctx context.Context, now time.Time) (core.UserStatsRow, error) {
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)
	twoMonthsAgo := now.AddDate(0, 0, -60)

	var row core.UserStatsRow
	if err := r.db.WithContext(ctx).Table("users").
		Select(`COUNT(*) AS total,
			COUNT(CASE WHEN created_at >= ? THEN 1 END) AS new_last_week,
			COUNT(CASE WHEN created_at >= ? THEN 1 END) AS new_last_month,
			COUNT(CASE WHEN created_at >= ? AND created_at < ? THEN 1 END) AS new_previous_month,
			COALESCE(AVG(`+r.dialect.daysSince("created_at")+`), 0) AS avg_account_age_days,
			COUNT(CASE WHEN email IS NULL OR email = '' THEN 1 END) AS without_email`,
			weekAgo, monthAgo, twoMonthsAgo, monthAgo, now).
		Scan(&row).Error; err != nil {
		return row, storeError(err, "Error al obtener estadísticas", "get user stats")
	}
	return row, nil
}

// EmailDomains counts users per email domain, most common first
func (r *analyticsRepository) EmailDomains(ctx context.Context, limit int) ([]core.DomainCountRow, error) {
	domain := r.dialect.emailDomain("email")

	var rows []core.DomainCountRow
	if err := r.db.WithContext(ctx).Table("users").
		Select(domain+" AS domain, COUNT(*) AS count").
		Where("email IS NOT NULL AND email <> ''").
		Group(domain).
		Order("count DESC, domain ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener estadísticas", "get email domains")
	}
	return rows, nil
}

package sqlstore

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"gorm.io/gorm"
)

const branchNotFound = "Sucursal no encontrada"

// branchSummaryScan is one row of the branch listing
type branchSummaryScan struct {
	ID           int64
	Name         string
	Location     string
	Phone        *string
	SellerCount  int64
	ProductCount int64
	Total        decimal.Decimal
	SaleCount    int64
}

func (s branchSummaryScan) toRow() core.BranchSummaryRow {
	return core.BranchSummaryRow{
		Branch:       core.Branch{ID: s.ID, Name: s.Name, Location: s.Location, Phone: s.Phone},
		SellerCount:  s.SellerCount,
		ProductCount: s.ProductCount,
		Total:        s.Total,
		SaleCount:    s.SaleCount,
	}
}

// summaryQuery joins pre-aggregated subqueries so that no count multiplies another
func (r *branchRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("branches AS b").
		Select(`b.id, b.name, b.location, b.phone,
			COALESCE(s.seller_count, 0) AS seller_count,
			COALESCE(i.product_count, 0) AS product_count,
			COALESCE(p.total, 0) AS total,
			COALESCE(p.sale_count, 0) AS sale_count`).
		Joins("LEFT JOIN (SELECT branch_id, COUNT(*) AS seller_count FROM sellers GROUP BY branch_id) s ON s.branch_id = b.id").
		Joins("LEFT JOIN (SELECT branch_id, COUNT(DISTINCT product_id) AS product_count FROM inventory GROUP BY branch_id) i ON i.branch_id = b.id").
		Joins("LEFT JOIN (SELECT branch_id, SUM(total) AS total, COUNT(*) AS sale_count FROM purchases GROUP BY branch_id) p ON p.branch_id = b.id")
}

// List retrieves every branch with its lifetime totals, ordered by name
func (r *branchRepository) List(ctx context.Context) ([]core.BranchSummaryRow, error) {
	var scans []branchSummaryScan
	if err := r.summaryQuery(ctx).Order("b.name ASC, b.id ASC").Scan(&scans).Error; err != nil {
		return nil, storeError(err, "Error al obtener sucursales", "list branches")
	}

	rows := make([]core.BranchSummaryRow, len(scans))
	for i, s := range scans {
		rows[i] = s.toRow()
	}
	return rows, nil
}

// GetSummary retrieves one branch with its lifetime totals
func (r *branchRepository) GetSummary(ctx context.Context, id int64) (*core.BranchSummaryRow, error) {
	var scans []branchSummaryScan
	if err := r.summaryQuery(ctx).Where("b.id = ?", id).Scan(&scans).Error; err != nil {
		return nil, storeError(err, "Error al obtener la sucursal", "get branch")
	}
	if len(scans) == 0 {
		return nil, core.NewNotFoundError(branchNotFound)
	}
	row := scans[0].toRow()
	return &row, nil
}

// Exists reports whether a branch with id is stored
func (r *branchRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BranchModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, storeError(err, "Error al obtener la sucursal", "check branch")
	}
	return count > 0, nil
}

// Create inserts a branch and sets its generated ID
func (r *branchRepository) Create(ctx context.Context, branch *core.Branch) error {
	model := BranchModel{Name: branch.Name, Location: branch.Location, Phone: branch.Phone}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return storeError(err, "Error al crear la sucursal", "create branch")
	}
	branch.ID = model.ID
	return nil
}

// Update applies the non-nil fields of update. An empty phone clears it.
func (r *branchRepository) Update(ctx context.Context, id int64, update core.BranchUpdate) error {
	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Location != nil {
		updates["location"] = *update.Location
	}
	if update.Phone != nil {
		if *update.Phone == "" {
			updates["phone"] = nil
		} else {
			updates["phone"] = *update.Phone
		}
	}
	if len(updates) == 0 {
		return core.NewValidationError("", "Debe proporcionar al menos un campo para actualizar")
	}

	result := r.db.WithContext(ctx).Model(&BranchModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return storeError(result.Error, "Error al actualizar la sucursal", "update branch")
	}
	if result.RowsAffected == 0 {
		return core.NewNotFoundError(branchNotFound)
	}
	return nil
}

// Delete removes a branch
func (r *branchRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BranchModel{})
	if result.Error != nil {
		return storeError(result.Error, "Error al eliminar la sucursal", "delete branch")
	}
	if result.RowsAffected == 0 {
		return core.NewNotFoundError(branchNotFound)
	}
	return nil
}

// SellersWithSales lists the sellers of a branch with their purchases inside window.
// The window filters the outer join so sellers without sales still appear.
func (r *branchRepository) SellersWithSales(ctx context.Context, branchID int64, window core.DateWindow) ([]core.SellerSalesRow, error) {
	on, args := windowConditions("p.purchased_at", window).joinClause()

	var rows []core.SellerSalesRow
	if err := r.db.WithContext(ctx).Table("sellers AS s").
		Select("s.id, s.first_name, s.last_name, s.national_id, COUNT(p.id) AS sale_count, COALESCE(SUM(p.total), 0) AS total").
		Joins("LEFT JOIN purchases AS p ON p.seller_id = s.id"+on, args...).
		Where("s.branch_id = ?", branchID).
		Group("s.id, s.first_name, s.last_name, s.national_id").
		Order("total DESC, s.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener vendedores", "list branch sellers")
	}
	return rows, nil
}

// Inventory lists the products stocked at a branch, most stocked first
func (r *branchRepository) Inventory(ctx context.Context, branchID int64) ([]core.InventoryRow, error) {
	var rows []core.InventoryRow
	if err := r.db.WithContext(ctx).Table("inventory AS i").
		Select("p.id AS product_id, p.name, COALESCE(p.description, '') AS description, p.unit_price, c.name AS category, i.stock_quantity AS stock").
		Joins("JOIN products AS p ON p.id = i.product_id").
		Joins("JOIN categories AS c ON c.id = p.category_id").
		Where("i.branch_id = ?", branchID).
		Order("i.stock_quantity DESC, p.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener inventario", "list branch inventory")
	}
	return rows, nil
}

package sqlstore

import (
	"context"

	"github.com/tp-bda/dashboard-ventas/internal/core"
	"gorm.io/gorm"
)

// GetByID retrieves a seller with the name of their branch
func (r *sellerRepository) GetByID(ctx context.Context, id int64) (*core.Seller, error) {
	var sellers []core.Seller
	if err := r.db.WithContext(ctx).Table("sellers AS s").
		Select("s.id, s.first_name, s.last_name, s.national_id, s.branch_id, COALESCE(b.name, '') AS branch_name").
		Joins("LEFT JOIN branches AS b ON b.id = s.branch_id").
		Where("s.id = ?", id).
		Scan(&sellers).Error; err != nil {
		return nil, storeError(err, "Error al obtener el vendedor", "get seller")
	}
	if len(sellers) == 0 {
		return nil, core.NewNotFoundError("Vendedor no encontrado")
	}
	return &sellers[0], nil
}

func (r *productRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&ProductModel{}).
		Select("id, name, COALESCE(description, '') AS description, unit_price, category_id")
}

// GetAll retrieves the catalog, newest first
func (r *productRepository) GetAll(ctx context.Context) ([]core.ProductRow, error) {
	var rows []core.ProductRow
	if err := r.baseQuery(ctx).Order("id DESC").Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener la lista de productos", "list products")
	}
	return rows, nil
}

// GetByID retrieves a product by its ID
func (r *productRepository) GetByID(ctx context.Context, id int64) (*core.ProductRow, error) {
	var rows []core.ProductRow
	if err := r.baseQuery(ctx).Where("id = ?", id).Scan(&rows).Error; err != nil {
		return nil, storeError(err, "Error al obtener el producto", "get product")
	}
	if len(rows) == 0 {
		return nil, core.NewNotFoundError("Producto no encontrado")
	}
	return &rows[0], nil
}

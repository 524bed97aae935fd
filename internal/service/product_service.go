package service

import (
	"context"

	"github.com/tp-bda/dashboard-ventas/internal/core"
)

// ProductService exposes the product catalog
type ProductService struct {
	productRepo core.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo core.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ListProducts returns the catalog, newest product first
func (s *ProductService) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Product, len(rows))
	for i, row := range rows {
		out[i] = toProduct(row)
	}
	return out, nil
}

// GetProduct returns one product
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*core.Product, error) {
	row, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product := toProduct(*row)
	return &product, nil
}

package core

import "time"

// Branch represents a physical retail location
type Branch struct {
	ID       int64   `json:"id"`
	Name     string  `json:"nombre"`
	Location string  `json:"ubicacion"`
	Phone    *string `json:"telefono"`
}

// BranchSummary is a branch with its lifetime headcount, assortment and sales totals
type BranchSummary struct {
	Branch
	SellerCount  int64   `json:"numeroVendedores"`
	ProductCount int64   `json:"numeroProductos"`
	TotalSales   float64 `json:"ventasTotales"`
	SaleCount    int64   `json:"numeroVentas"`
}

// BranchUpdate carries the optional fields of a branch update; nil means unchanged
type BranchUpdate struct {
	Name     *string
	Location *string
	Phone    *string
}

// Seller is a salesperson attached to one branch
type Seller struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"nombre"`
	LastName   string `json:"apellido"`
	NationalID string `json:"dni"`
	BranchID   int64  `json:"sucursalId"`
	BranchName string `json:"sucursal"`
}

// SellerSales is a seller of a branch with their sales inside a date window
type SellerSales struct {
	ID         int64   `json:"id"`
	FirstName  string  `json:"nombre"`
	LastName   string  `json:"apellido"`
	NationalID string  `json:"dni"`
	SaleCount  int64   `json:"numeroVentas"`
	TotalSales float64 `json:"ventasTotales"`
}

// InventoryItem is a product stocked at a branch
type InventoryItem struct {
	ProductID   int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	UnitPrice   float64 `json:"precio"`
	Category    string  `json:"categoria"`
	Stock       int64   `json:"stock"`
}

// Product represents a catalog item
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	UnitPrice   float64 `json:"precioUni"`
	CategoryID  int64   `json:"categoriaId"`
}

// User is a dashboard account. PasswordHash is a bcrypt digest and never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"usuario"`
	Email        string    `json:"mail"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"fechaCreacion"`
}

// UserUpdate carries the optional fields of a user update; nil means unchanged
type UserUpdate struct {
	Username *string
	Email    *string
}

// AdministratorUserID is the account that can never be deleted
const AdministratorUserID int64 = 1

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// RoleFor derives the dashboard role of a user
func RoleFor(userID int64) string {
	if userID == AdministratorUserID {
		return RoleAdmin
	}
	return RoleUser
}

package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
)

// Database Models (with GORM tags)

// BranchModel represents the branches table structure
type BranchModel struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string  `gorm:"column:name;type:varchar(100);not null"`
	Location string  `gorm:"column:location;type:varchar(200);not null"`
	Phone    *string `gorm:"column:phone;type:varchar(30)"`
}

func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts BranchModel to core.Branch
func (b *BranchModel) ToDomain() *core.Branch {
	return &core.Branch{ID: b.ID, Name: b.Name, Location: b.Location, Phone: b.Phone}
}

// SellerModel represents the sellers table structure
type SellerModel struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName  string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName   string `gorm:"column:last_name;type:varchar(100);not null"`
	NationalID string `gorm:"column:national_id;type:varchar(20);not null;uniqueIndex"`
	BranchID   int64  `gorm:"column:branch_id;not null;index"`
}

func (SellerModel) TableName() string {
	return "sellers"
}

// CategoryModel represents the categories table structure
type CategoryModel struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

// ProductModel represents the products table structure
type ProductModel struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;type:varchar(150);not null"`
	Description *string         `gorm:"column:description;type:text"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	CategoryID  int64           `gorm:"column:category_id;not null;index"`
}

func (ProductModel) TableName() string {
	return "products"
}

// PurchaseModel represents the purchases table structure
type PurchaseModel struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	BranchID    int64           `gorm:"column:branch_id;not null;index"`
	SellerID    *int64          `gorm:"column:seller_id;index"`
	PurchasedAt time.Time       `gorm:"column:purchased_at;not null;index"`
	Total       decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null"`
}

func (PurchaseModel) TableName() string {
	return "purchases"
}

// PurchaseLineModel represents the purchase_lines table structure.
// UnitCost is the price charged at purchase time, independent of later catalog changes.
type PurchaseLineModel struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PurchaseID int64           `gorm:"column:purchase_id;not null;index"`
	ProductID  int64           `gorm:"column:product_id;not null;index"`
	Quantity   int64           `gorm:"column:quantity;not null"`
	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,2);not null"`
}

func (PurchaseLineModel) TableName() string {
	return "purchase_lines"
}

// InventoryModel represents the inventory table structure
type InventoryModel struct {
	BranchID      int64 `gorm:"column:branch_id;primaryKey;autoIncrement:false"`
	ProductID     int64 `gorm:"column:product_id;primaryKey;autoIncrement:false"`
	StockQuantity int64 `gorm:"column:stock_quantity;not null;default:0"`
}

func (InventoryModel) TableName() string {
	return "inventory"
}

// UserModel represents the users table structure
type UserModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;type:varchar(50);not null;uniqueIndex"`
	Email        *string   `gorm:"column:email;type:varchar(100);uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(100);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to core.User
func (u *UserModel) ToDomain() *core.User {
	user := &core.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	return user
}

// AllModels lists every table model in dependency order
func AllModels() []any {
	return []any{
		&BranchModel{},
		&SellerModel{},
		&CategoryModel{},
		&ProductModel{},
		&InventoryModel{},
		&PurchaseModel{},
		&PurchaseLineModel{},
		&UserModel{},
	}
}

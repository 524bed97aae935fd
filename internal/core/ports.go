package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DateWindow bounds purchases by date. From is inclusive, To is exclusive; nil means open.
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

// IsOpen reports whether the window has no bound on either side
func (w DateWindow) IsOpen() bool {
	return w.From == nil && w.To == nil
}

// Granularity is the bucket size of a sales period series
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// SalesFilter narrows line-item aggregations to a branch and a date window
type SalesFilter struct {
	BranchID *int64
	Window   DateWindow
}

// ReportFilter is the normalized form of the optional report query parameters
type ReportFilter struct {
	SalesFilter
	Limit        int
	Granularity  Granularity
	LookbackDays int
}

// Store rows. Money arrives as decimal and is only rounded when assembled into responses.

// SalesTotalRow is a sum and count of purchases
type SalesTotalRow struct {
	Total decimal.Decimal
	Count int64
}

// EntityCountsRow holds the catalog and transaction counts of the KPI snapshot
type EntityCountsRow struct {
	Transactions int64
	Branches     int64
	Products     int64
}

// PeriodSalesRow is one non-empty bucket of a period series
type PeriodSalesRow struct {
	PeriodKey string
	Total     decimal.Decimal
	Count     int64
}

// BranchSalesRow is a branch with its purchases inside a window. Branches without purchases carry zero.
type BranchSalesRow struct {
	ID       int64
	Name     string
	Location string
	Total    decimal.Decimal
	Count    int64
}

// BranchSummaryRow is a branch with lifetime headcount, assortment and sales
type BranchSummaryRow struct {
	Branch
	SellerCount  int64
	ProductCount int64
	Total        decimal.Decimal
	SaleCount    int64
}

// BranchMetricsRow feeds the branch statistics rollup
type BranchMetricsRow struct {
	ID           int64
	Name         string
	SellerCount  int64
	StockTotal   int64
	ProductCount int64
	Total        decimal.Decimal
	SaleCount    int64
}

// SellerSalesRow is a seller with their purchases inside a window
type SellerSalesRow struct {
	ID         int64
	FirstName  string
	LastName   string
	NationalID string
	SaleCount  int64
	Total      decimal.Decimal
}

// InventoryRow is one product stocked at a branch
type InventoryRow struct {
	ProductID   int64
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Category    string
	Stock       int64
}

// ProductRow is a catalog product as stored
type ProductRow struct {
	ID          int64
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	CategoryID  int64
}

// CategorySalesRow aggregates line items of one category
type CategorySalesRow struct {
	Category  string
	SaleCount int64
	UnitsSold int64
	Revenue   decimal.Decimal
}

// ProductSalesRow aggregates line items of one product
type ProductSalesRow struct {
	ID               int64
	Name             string
	Category         string
	UnitPrice        decimal.Decimal
	UnitsSold        int64
	Revenue          decimal.Decimal
	TransactionCount int64
}

// ProductCountsRow counts the distinct products and units a seller sold
type ProductCountsRow struct {
	DistinctProducts int64
	UnitsSold        int64
}

// ActivitySpanRow holds a seller's first and last sale; both nil without sales
type ActivitySpanRow struct {
	First *time.Time
	Last  *time.Time
}

// SellerProductRow is one product in a seller's breakdown
type SellerProductRow struct {
	ID        int64
	Name      string
	Category  string
	UnitsSold int64
	Revenue   decimal.Decimal
}

// UserStatsRow holds the scalar user aggregates
type UserStatsRow struct {
	Total             int64
	NewLastWeek       int64
	NewLastMonth      int64
	NewPreviousMonth  int64
	AvgAccountAgeDays decimal.Decimal
	WithoutEmail      int64
}

// DomainCountRow is an email domain with the number of users on it
type DomainCountRow struct {
	Domain string
	Count  int64
}

// BranchRepository defines the interface for branch data access
type BranchRepository interface {
	List(ctx context.Context) ([]BranchSummaryRow, error)
	GetSummary(ctx context.Context, id int64) (*BranchSummaryRow, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, branch *Branch) error
	Update(ctx context.Context, id int64, update BranchUpdate) error
	Delete(ctx context.Context, id int64) error
	SellersWithSales(ctx context.Context, branchID int64, window DateWindow) ([]SellerSalesRow, error)
	Inventory(ctx context.Context, branchID int64) ([]InventoryRow, error)
}

// SellerRepository defines the interface for seller data access
type SellerRepository interface {
	GetByID(ctx context.Context, id int64) (*Seller, error)
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]ProductRow, error)
	GetByID(ctx context.Context, id int64) (*ProductRow, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Search(ctx context.Context, term string) ([]User, error)
	// FindConflicts reports which of username and email are already taken, ignoring excludeID.
	FindConflicts(ctx context.Context, username, email string, excludeID int64) (usernameTaken, emailTaken bool, err error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id int64, update UserUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	// Extremes returns the newest and oldest accounts; both nil when there are none.
	Extremes(ctx context.Context) (newest, oldest *User, err error)
}

// AnalyticsRepository defines the aggregate queries behind the reporting endpoints
type AnalyticsRepository interface {
	LifetimeSales(ctx context.Context) (SalesTotalRow, error)
	SalesBetween(ctx context.Context, window DateWindow) (SalesTotalRow, error)
	EntityCounts(ctx context.Context) (EntityCountsRow, error)
	PeriodSales(ctx context.Context, granularity Granularity, since time.Time) ([]PeriodSalesRow, error)
	BranchSales(ctx context.Context, window DateWindow) ([]BranchSalesRow, error)
	CategorySales(ctx context.Context, filter SalesFilter) ([]CategorySalesRow, error)
	ProductSales(ctx context.Context, filter SalesFilter, limit int) ([]ProductSalesRow, error)
	BranchMetrics(ctx context.Context) ([]BranchMetricsRow, error)

	SellerSales(ctx context.Context, sellerID int64, window DateWindow) (SalesTotalRow, error)
	SellerProductCounts(ctx context.Context, sellerID int64, window DateWindow) (ProductCountsRow, error)
	SellerActivitySpan(ctx context.Context, sellerID int64, window DateWindow) (ActivitySpanRow, error)
	BranchSalesTotal(ctx context.Context, branchID int64, window DateWindow) (decimal.Decimal, error)
	SellerTopProducts(ctx context.Context, sellerID int64, window DateWindow, limit int) ([]SellerProductRow, error)

	UserStats(ctx context.Context, now time.Time) (UserStatsRow, error)
	EmailDomains(ctx context.Context, limit int) ([]DomainCountRow, error)
}

// TokenDenylist records revoked session tokens until they would have expired anyway
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

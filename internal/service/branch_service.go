package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"golang.org/x/sync/errgroup"
)

const (
	sellerTopProducts = 12
	statsTrendMonths  = 6
	lastMonthDays     = 30
)

// BranchService handles branch records, their sellers and the branch statistics rollup
type BranchService struct {
	branchRepo    core.BranchRepository
	sellerRepo    core.SellerRepository
	analyticsRepo core.AnalyticsRepository
	eventBus      *events.EventBus
	location      *time.Location
	now           func() time.Time
}

// NewBranchService creates a new branch service
func NewBranchService(
	branchRepo core.BranchRepository,
	sellerRepo core.SellerRepository,
	analyticsRepo core.AnalyticsRepository,
	eventBus *events.EventBus,
	loc *time.Location,
) *BranchService {
	if loc == nil {
		loc = time.UTC
	}
	return &BranchService{
		branchRepo:    branchRepo,
		sellerRepo:    sellerRepo,
		analyticsRepo: analyticsRepo,
		eventBus:      eventBus,
		location:      loc,
		now:           time.Now,
	}
}

// CreateBranchInput is the body of a branch creation
type CreateBranchInput struct {
	Name     string  `json:"nombre" validate:"required,max=100"`
	Location string  `json:"ubicacion" validate:"required,max=200"`
	Phone    *string `json:"telefono" validate:"omitempty,phone"`
}

// UpdateBranchInput is the body of a branch update; absent fields are left unchanged
type UpdateBranchInput struct {
	Name     *string `json:"nombre" validate:"omitnil,min=1,max=100"`
	Location *string `json:"ubicacion" validate:"omitnil,min=1,max=200"`
	Phone    *string `json:"telefono"`
}

// ListBranches returns every branch with its lifetime totals, ordered by name
func (s *BranchService) ListBranches(ctx context.Context) ([]core.BranchSummary, error) {
	rows, err := s.branchRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.BranchSummary, len(rows))
	for i, row := range rows {
		out[i] = toBranchSummary(row)
	}
	return out, nil
}

// GetBranch returns one branch with its totals
func (s *BranchService) GetBranch(ctx context.Context, id int64) (*core.BranchSummary, error) {
	row, err := s.branchRepo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := toBranchSummary(*row)
	return &summary, nil
}

// GetSellers lists the sellers of a branch with their sales inside window, zero-sale sellers included
func (s *BranchService) GetSellers(ctx context.Context, branchID int64, window core.DateWindow) ([]core.SellerSales, error) {
	if err := s.requireBranch(ctx, branchID); err != nil {
		return nil, err
	}
	rows, err := s.branchRepo.SellersWithSales(ctx, branchID, window)
	if err != nil {
		return nil, err
	}
	out := make([]core.SellerSales, len(rows))
	for i, row := range rows {
		out[i] = toSellerSales(row)
	}
	return out, nil
}

// GetInventory lists the products stocked at a branch
func (s *BranchService) GetInventory(ctx context.Context, branchID int64) ([]core.InventoryItem, error) {
	if err := s.requireBranch(ctx, branchID); err != nil {
		return nil, err
	}
	rows, err := s.branchRepo.Inventory(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]core.InventoryItem, len(rows))
	for i, row := range rows {
		out[i] = toInventoryItem(row)
	}
	return out, nil
}

// CreateBranch validates and stores a new branch
func (s *BranchService) CreateBranch(ctx context.Context, input CreateBranchInput) (*core.Branch, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Location = strings.TrimSpace(input.Location)
	input.Phone = blankToNil(input.Phone)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	branch := &core.Branch{Name: input.Name, Location: input.Location}
	if input.Phone != nil {
		phone, err := normalizePhone(*input.Phone)
		if err != nil {
			return nil, core.NewValidationError("telefono", "El teléfono no es un número válido")
		}
		branch.Phone = &phone
	}

	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}
	s.eventBus.PublishBranchChange(events.EventBranchCreated, branch.ID)
	return branch, nil
}

// UpdateBranch applies the fields present in input
func (s *BranchService) UpdateBranch(ctx context.Context, id int64, input UpdateBranchInput) error {
	if input.Name == nil && input.Location == nil && input.Phone == nil {
		return core.NewValidationError("", "Debe proporcionar al menos un campo para actualizar")
	}
	input.Name = trimmed(input.Name)
	input.Location = trimmed(input.Location)
	input.Phone = trimmed(input.Phone)
	if err := validateStruct(input); err != nil {
		return err
	}

	update := core.BranchUpdate{Name: input.Name, Location: input.Location}
	if input.Phone != nil {
		// An explicit empty phone clears it
		phone := ""
		if *input.Phone != "" {
			if err := ValidatePhoneNumber(*input.Phone, phoneRegion); err != nil {
				return core.NewValidationError("telefono", "El teléfono no es un número válido")
			}
			normalized, err := normalizePhone(*input.Phone)
			if err != nil {
				return core.NewValidationError("telefono", "El teléfono no es un número válido")
			}
			phone = normalized
		}
		update.Phone = &phone
	}

	if err := s.branchRepo.Update(ctx, id, update); err != nil {
		return err
	}
	s.eventBus.PublishBranchChange(events.EventBranchUpdated, id)
	return nil
}

// DeleteBranch removes a branch
func (s *BranchService) DeleteBranch(ctx context.Context, id int64) error {
	if err := s.branchRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.eventBus.PublishBranchChange(events.EventBranchDeleted, id)
	return nil
}

// GetSellerDetail composes a seller's activity inside window.
// An unknown seller is NotFound; a seller without sales gets zero-valued stats.
func (s *BranchService) GetSellerDetail(ctx context.Context, sellerID int64, window core.DateWindow) (*core.SellerDetail, error) {
	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	var (
		sales       core.SalesTotalRow
		counts      core.ProductCountsRow
		span        core.ActivitySpanRow
		branchTotal decimal.Decimal
		products    []core.SellerProductRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.analyticsRepo.SellerSales(gctx, sellerID, window)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.analyticsRepo.SellerProductCounts(gctx, sellerID, window)
		return err
	})
	g.Go(func() (err error) {
		span, err = s.analyticsRepo.SellerActivitySpan(gctx, sellerID, window)
		return err
	})
	g.Go(func() (err error) {
		branchTotal, err = s.analyticsRepo.BranchSalesTotal(gctx, seller.BranchID, window)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.analyticsRepo.SellerTopProducts(gctx, sellerID, window, sellerTopProducts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(products) > sellerTopProducts {
		products = products[:sellerTopProducts]
	}
	breakdown := make([]core.SellerProduct, len(products))
	for i, row := range products {
		breakdown[i] = toSellerProduct(row)
	}

	return &core.SellerDetail{
		Seller: *seller,
		Stats: core.SellerStats{
			SaleCount:        sales.Count,
			TotalSales:       money(sales.Total),
			AvgTicket:        average(sales.Total, sales.Count),
			DistinctProducts: counts.DistinctProducts,
			UnitsSold:        counts.UnitsSold,
			FirstSale:        span.First,
			LastSale:         span.Last,
			BranchSales:      money(branchTotal),
			BranchShare:      percentOf(sales.Total, branchTotal, 2),
		},
		Products: breakdown,
	}, nil
}

// GetStats builds the branch statistics rollup from three concurrent queries
func (s *BranchService) GetStats(ctx context.Context) (*core.BranchStats, error) {
	now := s.now().In(s.location)
	lastMonthSince := now.AddDate(0, 0, -lastMonthDays)
	trendSince := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location).AddDate(0, -(statsTrendMonths - 1), 0)

	var (
		metrics   []core.BranchMetricsRow
		lastMonth core.SalesTotalRow
		monthly   []core.PeriodSalesRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		metrics, err = s.analyticsRepo.BranchMetrics(gctx)
		return err
	})
	g.Go(func() (err error) {
		lastMonth, err = s.analyticsRepo.SalesBetween(gctx, core.DateWindow{From: &lastMonthSince})
		return err
	})
	g.Go(func() (err error) {
		monthly, err = s.analyticsRepo.PeriodSales(gctx, core.GranularityMonth, trendSince)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shares, total := branchShares(metrics)
	stats := &core.BranchStats{
		BranchCount:        int64(len(shares)),
		TotalSales:         money(total),
		LastMonthSales:     money(lastMonth.Total),
		LastMonthAvgTicket: average(lastMonth.Total, lastMonth.Count),
		LastMonthSaleCount: lastMonth.Count,
		SalesByBranch:      shares,
		MonthlySales:       make([]core.MonthlySales, len(monthly)),
	}

	for _, row := range metrics {
		stats.SellerCount += row.SellerCount
		stats.StockTotal += row.StockTotal
		if row.Total.IsPositive() {
			stats.BranchesWithSales++
		}
	}
	stats.BranchesWithoutSales = stats.BranchCount - stats.BranchesWithSales
	if stats.BranchCount > 0 {
		stats.AvgSalesPerBranch = average(total, stats.BranchCount)
		best := shares[0]
		worst := shares[len(shares)-1]
		stats.BestBranch = &best
		stats.WorstBranch = &worst
	}

	for i, row := range monthly {
		stats.MonthlySales[i] = core.MonthlySales{
			Period:     row.PeriodKey,
			Label:      monthLabel(row.PeriodKey),
			TotalSales: money(row.Total),
			SaleCount:  row.Count,
		}
	}

	return stats, nil
}

func (s *BranchService) requireBranch(ctx context.Context, id int64) error {
	exists, err := s.branchRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return core.NewNotFoundError("Sucursal no encontrada")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

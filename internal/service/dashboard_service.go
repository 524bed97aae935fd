package service

import (
	"context"
	"time"

	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"golang.org/x/sync/errgroup"
)

// kpiAverageDays is the trailing window of the daily sales average
const kpiAverageDays = 30

// DashboardService computes the reporting views of the dashboard
type DashboardService struct {
	analyticsRepo core.AnalyticsRepository
	eventBus      *events.EventBus
	location      *time.Location
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service. Calendar boundaries are taken in loc.
func NewDashboardService(analyticsRepo core.AnalyticsRepository, eventBus *events.EventBus, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		eventBus:      eventBus,
		location:      loc,
		now:           time.Now,
	}
}

// GetKPIs assembles the KPI snapshot from independent aggregates queried concurrently
func (s *DashboardService) GetKPIs(ctx context.Context) (*core.KPISnapshot, error) {
	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	nextMonthStart := monthStart.AddDate(0, 1, 0)
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	averageSince := now.AddDate(0, 0, -kpiAverageDays)

	var (
		lifetime  core.SalesTotalRow
		daily     []core.PeriodSalesRow
		current   core.SalesTotalRow
		previous  core.SalesTotalRow
		entityCnt core.EntityCountsRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lifetime, err = s.analyticsRepo.LifetimeSales(gctx)
		return err
	})
	g.Go(func() (err error) {
		daily, err = s.analyticsRepo.PeriodSales(gctx, core.GranularityDay, averageSince)
		return err
	})
	g.Go(func() (err error) {
		current, err = s.analyticsRepo.SalesBetween(gctx, core.DateWindow{From: &monthStart, To: &nextMonthStart})
		return err
	})
	g.Go(func() (err error) {
		previous, err = s.analyticsRepo.SalesBetween(gctx, core.DateWindow{From: &prevMonthStart, To: &monthStart})
		return err
	})
	g.Go(func() (err error) {
		entityCnt, err = s.analyticsRepo.EntityCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &core.KPISnapshot{
		TotalSalesAllTime:  money(lifetime.Total),
		Avg30DayDailySales: money(meanOfBuckets(daily)),
		CurrentMonthSales:  money(current.Total),
		PreviousMonthSales: money(previous.Total),
		MoMPercentChange:   percentChange(current.Total, previous.Total),
		TransactionCount:   entityCnt.Transactions,
		BranchCount:        entityCnt.Branches,
		ProductCount:       entityCnt.Products,
	}, nil
}

// GetBranchRanking ranks every branch by its sales inside the window
func (s *DashboardService) GetBranchRanking(ctx context.Context, window core.DateWindow) ([]core.RankedBranch, error) {
	rows, err := s.analyticsRepo.BranchSales(ctx, window)
	if err != nil {
		return nil, err
	}
	return rankBranches(rows), nil
}

// GetCategorySales groups line-item revenue by category, highest revenue first
func (s *DashboardService) GetCategorySales(ctx context.Context, filter core.SalesFilter) ([]core.CategorySales, error) {
	rows, err := s.analyticsRepo.CategorySales(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]core.CategorySales, len(rows))
	for i, row := range rows {
		out[i] = toCategorySales(row)
	}
	return out, nil
}

// GetTopProducts returns at most filter.Limit products by revenue. A zero limit short-circuits.
func (s *DashboardService) GetTopProducts(ctx context.Context, filter core.ReportFilter) ([]core.ProductSales, error) {
	if filter.Limit <= 0 {
		return []core.ProductSales{}, nil
	}
	rows, err := s.analyticsRepo.ProductSales(ctx, filter.SalesFilter, filter.Limit)
	if err != nil {
		return nil, err
	}
	if len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	out := make([]core.ProductSales, len(rows))
	for i, row := range rows {
		out[i] = toProductSales(row)
	}
	return out, nil
}

// GetSalesByPeriod buckets the trailing LookbackDays of purchases. Empty buckets are omitted.
func (s *DashboardService) GetSalesByPeriod(ctx context.Context, granularity core.Granularity, lookbackDays int) ([]core.PeriodBucket, error) {
	if lookbackDays < 1 {
		lookbackDays = defaultLookbackDays
	}
	since := s.now().In(s.location).AddDate(0, 0, -lookbackDays)
	rows, err := s.analyticsRepo.PeriodSales(ctx, granularity, since)
	if err != nil {
		return nil, err
	}
	out := make([]core.PeriodBucket, len(rows))
	for i, row := range rows {
		out[i] = toPeriodBucket(row)
	}
	return out, nil
}

// GetEventBus returns the event bus for SSE subscriptions
func (s *DashboardService) GetEventBus() *events.EventBus {
	return s.eventBus
}

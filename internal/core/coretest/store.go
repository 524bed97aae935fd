// Package coretest provides in-memory implementations of the core ports for tests.
package coretest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
)

// Store implements every repository port over canned rows.
// Fail maps a method name to the error that method returns.
type Store struct {
	mu sync.Mutex

	Fail map[string]error

	Branches  []core.BranchSummaryRow
	Sellers   map[int64]core.Seller
	SellerRow map[int64][]core.SellerSalesRow
	Inventory map[int64][]core.InventoryRow
	Products  []core.ProductRow
	Users     []core.User

	Lifetime       core.SalesTotalRow
	SalesBetweenFn func(core.DateWindow) core.SalesTotalRow
	Counts         core.EntityCountsRow
	Periods        []core.PeriodSalesRow
	BranchSalesRow []core.BranchSalesRow
	Categories     []core.CategorySalesRow
	ProductSales   []core.ProductSalesRow
	Metrics        []core.BranchMetricsRow
	SellerTotals   map[int64]core.SalesTotalRow
	SellerCounts   map[int64]core.ProductCountsRow
	SellerSpans    map[int64]core.ActivitySpanRow
	BranchTotals   map[int64]decimal.Decimal
	SellerProducts map[int64][]core.SellerProductRow
	UserStatsRow   core.UserStatsRow
	Domains        []core.DomainCountRow

	// Calls counts invocations per method name
	Calls map[string]int
	// LastSince is the lower bound of the latest PeriodSales call
	LastSince time.Time
	// LastGranularity is the bucket size of the latest PeriodSales call
	LastGranularity core.Granularity
	// LastLimit is the limit of the latest ProductSales call
	LastLimit int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Fail:           map[string]error{},
		Sellers:        map[int64]core.Seller{},
		SellerRow:      map[int64][]core.SellerSalesRow{},
		Inventory:      map[int64][]core.InventoryRow{},
		SellerTotals:   map[int64]core.SalesTotalRow{},
		SellerCounts:   map[int64]core.ProductCountsRow{},
		SellerSpans:    map[int64]core.ActivitySpanRow{},
		BranchTotals:   map[int64]decimal.Decimal{},
		SellerProducts: map[int64][]core.SellerProductRow{},
		Calls:          map[string]int{},
	}
}

func (s *Store) enter(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls[method]++
	return s.Fail[method]
}

// CallCount reports how often method was invoked
func (s *Store) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}

// Branch repository

func (s *Store) List(ctx context.Context) ([]core.BranchSummaryRow, error) {
	if err := s.enter("List"); err != nil {
		return nil, err
	}
	return s.Branches, nil
}

func (s *Store) GetSummary(ctx context.Context, id int64) (*core.BranchSummaryRow, error) {
	if err := s.enter("GetSummary"); err != nil {
		return nil, err
	}
	for i := range s.Branches {
		if s.Branches[i].ID == id {
			row := s.Branches[i]
			return &row, nil
		}
	}
	return nil, core.NewNotFoundError("Sucursal no encontrada")
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	if err := s.enter("Exists"); err != nil {
		return false, err
	}
	for _, b := range s.Branches {
		if b.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Create(ctx context.Context, branch *core.Branch) error {
	if err := s.enter("CreateBranch"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	branch.ID = int64(len(s.Branches) + 1)
	s.Branches = append(s.Branches, core.BranchSummaryRow{Branch: *branch})
	return nil
}

func (s *Store) Update(ctx context.Context, id int64, update core.BranchUpdate) error {
	if err := s.enter("UpdateBranch"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Branches {
		b := &s.Branches[i]
		if b.ID != id {
			continue
		}
		if update.Name != nil {
			b.Name = *update.Name
		}
		if update.Location != nil {
			b.Location = *update.Location
		}
		if update.Phone != nil {
			if *update.Phone == "" {
				b.Phone = nil
			} else {
				phone := *update.Phone
				b.Phone = &phone
			}
		}
		return nil
	}
	return core.NewNotFoundError("Sucursal no encontrada")
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.enter("DeleteBranch"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Branches {
		if s.Branches[i].ID == id {
			s.Branches = append(s.Branches[:i], s.Branches[i+1:]...)
			return nil
		}
	}
	return core.NewNotFoundError("Sucursal no encontrada")
}

func (s *Store) SellersWithSales(ctx context.Context, branchID int64, window core.DateWindow) ([]core.SellerSalesRow, error) {
	if err := s.enter("SellersWithSales"); err != nil {
		return nil, err
	}
	return s.SellerRow[branchID], nil
}

// Seller and product repositories

// SellerRepository returns the seller port of s
func (s *Store) SellerRepository() core.SellerRepository { return sellerPort{s} }

// ProductRepository returns the product port of s
func (s *Store) ProductRepository() core.ProductRepository { return productPort{s} }

// UserRepository returns the user port of s
func (s *Store) UserRepository() core.UserRepository { return userPort{s} }

// BranchRepository returns the branch port of s
func (s *Store) BranchRepository() core.BranchRepository { return branchPort{s} }

type branchPort struct{ *Store }

func (p branchPort) Inventory(ctx context.Context, branchID int64) ([]core.InventoryRow, error) {
	if err := p.enter("Inventory"); err != nil {
		return nil, err
	}
	return p.Store.Inventory[branchID], nil
}

type sellerPort struct{ s *Store }

func (p sellerPort) GetByID(ctx context.Context, id int64) (*core.Seller, error) {
	if err := p.s.enter("GetSeller"); err != nil {
		return nil, err
	}
	seller, ok := p.s.Sellers[id]
	if !ok {
		return nil, core.NewNotFoundError("Vendedor no encontrado")
	}
	return &seller, nil
}

type productPort struct{ s *Store }

func (p productPort) GetAll(ctx context.Context) ([]core.ProductRow, error) {
	if err := p.s.enter("GetProducts"); err != nil {
		return nil, err
	}
	return p.s.Products, nil
}

func (p productPort) GetByID(ctx context.Context, id int64) (*core.ProductRow, error) {
	if err := p.s.enter("GetProduct"); err != nil {
		return nil, err
	}
	for _, row := range p.s.Products {
		if row.ID == id {
			return &row, nil
		}
	}
	return nil, core.NewNotFoundError("Producto no encontrado")
}

// User repository

type userPort struct{ s *Store }

func (p userPort) find(match func(core.User) bool) (*core.User, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, u := range p.s.Users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, core.NewNotFoundError("Usuario no encontrado")
}

func (p userPort) GetAll(ctx context.Context) ([]core.User, error) {
	if err := p.s.enter("GetUsers"); err != nil {
		return nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	users := append([]core.User(nil), p.s.Users...)
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (p userPort) GetByID(ctx context.Context, id int64) (*core.User, error) {
	if err := p.s.enter("GetUser"); err != nil {
		return nil, err
	}
	return p.find(func(u core.User) bool { return u.ID == id })
}

func (p userPort) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	if err := p.s.enter("GetUserByUsername"); err != nil {
		return nil, err
	}
	return p.find(func(u core.User) bool { return u.Username == username })
}

func (p userPort) Search(ctx context.Context, term string) ([]core.User, error) {
	if err := p.s.enter("SearchUsers"); err != nil {
		return nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	term = strings.ToLower(term)
	var out []core.User
	for _, u := range p.s.Users {
		if strings.Contains(strings.ToLower(u.Username), term) || strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (p userPort) FindConflicts(ctx context.Context, username, email string, excludeID int64) (bool, bool, error) {
	if err := p.s.enter("FindConflicts"); err != nil {
		return false, false, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	var usernameTaken, emailTaken bool
	for _, u := range p.s.Users {
		if u.ID == excludeID {
			continue
		}
		usernameTaken = usernameTaken || (username != "" && u.Username == username)
		emailTaken = emailTaken || (email != "" && u.Email == email)
	}
	return usernameTaken, emailTaken, nil
}

func (p userPort) Create(ctx context.Context, user *core.User) error {
	if err := p.s.enter("CreateUser"); err != nil {
		return err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	var maxID int64
	for _, u := range p.s.Users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	user.ID = maxID + 1
	p.s.Users = append(p.s.Users, *user)
	return nil
}

func (p userPort) Update(ctx context.Context, id int64, update core.UserUpdate) error {
	if err := p.s.enter("UpdateUser"); err != nil {
		return err
	}
	return p.mutate(id, func(u *core.User) {
		if update.Username != nil {
			u.Username = *update.Username
		}
		if update.Email != nil {
			u.Email = *update.Email
		}
	})
}

func (p userPort) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if err := p.s.enter("UpdatePassword"); err != nil {
		return err
	}
	return p.mutate(id, func(u *core.User) { u.PasswordHash = passwordHash })
}

func (p userPort) mutate(id int64, apply func(*core.User)) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.Users {
		if p.s.Users[i].ID == id {
			apply(&p.s.Users[i])
			return nil
		}
	}
	return core.NewNotFoundError("Usuario no encontrado")
}

func (p userPort) Delete(ctx context.Context, id int64) error {
	if err := p.s.enter("DeleteUser"); err != nil {
		return err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.Users {
		if p.s.Users[i].ID == id {
			p.s.Users = append(p.s.Users[:i], p.s.Users[i+1:]...)
			return nil
		}
	}
	return core.NewNotFoundError("Usuario no encontrado")
}

func (p userPort) Extremes(ctx context.Context) (*core.User, *core.User, error) {
	if err := p.s.enter("Extremes"); err != nil {
		return nil, nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if len(p.s.Users) == 0 {
		return nil, nil, nil
	}
	newest, oldest := p.s.Users[0], p.s.Users[0]
	for _, u := range p.s.Users[1:] {
		if u.CreatedAt.After(newest.CreatedAt) {
			newest = u
		}
		if u.CreatedAt.Before(oldest.CreatedAt) {
			oldest = u
		}
	}
	return &newest, &oldest, nil
}

// Analytics repository

func (s *Store) LifetimeSales(ctx context.Context) (core.SalesTotalRow, error) {
	return s.Lifetime, s.enter("LifetimeSales")
}

func (s *Store) SalesBetween(ctx context.Context, window core.DateWindow) (core.SalesTotalRow, error) {
	if err := s.enter("SalesBetween"); err != nil {
		return core.SalesTotalRow{}, err
	}
	if s.SalesBetweenFn == nil {
		return core.SalesTotalRow{}, nil
	}
	return s.SalesBetweenFn(window), nil
}

func (s *Store) EntityCounts(ctx context.Context) (core.EntityCountsRow, error) {
	return s.Counts, s.enter("EntityCounts")
}

func (s *Store) PeriodSales(ctx context.Context, granularity core.Granularity, since time.Time) ([]core.PeriodSalesRow, error) {
	if err := s.enter("PeriodSales"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastGranularity, s.LastSince = granularity, since
	return s.Periods, nil
}

func (s *Store) BranchSales(ctx context.Context, window core.DateWindow) ([]core.BranchSalesRow, error) {
	if err := s.enter("BranchSales"); err != nil {
		return nil, err
	}
	return s.BranchSalesRow, nil
}

func (s *Store) CategorySales(ctx context.Context, filter core.SalesFilter) ([]core.CategorySalesRow, error) {
	if err := s.enter("CategorySales"); err != nil {
		return nil, err
	}
	return s.Categories, nil
}

func (s *Store) ProductSalesRows(ctx context.Context, filter core.SalesFilter, limit int) ([]core.ProductSalesRow, error) {
	if err := s.enter("ProductSales"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastLimit = limit
	return s.ProductSales, nil
}

func (s *Store) BranchMetrics(ctx context.Context) ([]core.BranchMetricsRow, error) {
	if err := s.enter("BranchMetrics"); err != nil {
		return nil, err
	}
	return s.Metrics, nil
}

func (s *Store) SellerSales(ctx context.Context, sellerID int64, window core.DateWindow) (core.SalesTotalRow, error) {
	return s.SellerTotals[sellerID], s.enter("SellerSales")
}

func (s *Store) SellerProductCounts(ctx context.Context, sellerID int64, window core.DateWindow) (core.ProductCountsRow, error) {
	return s.SellerCounts[sellerID], s.enter("SellerProductCounts")
}

func (s *Store) SellerActivitySpan(ctx context.Context, sellerID int64, window core.DateWindow) (core.ActivitySpanRow, error) {
	return s.SellerSpans[sellerID], s.enter("SellerActivitySpan")
}

func (s *Store) BranchSalesTotal(ctx context.Context, branchID int64, window core.DateWindow) (decimal.Decimal, error) {
	return s.BranchTotals[branchID], s.enter("BranchSalesTotal")
}

func (s *Store) SellerTopProducts(ctx context.Context, sellerID int64, window core.DateWindow, limit int) ([]core.SellerProductRow, error) {
	if err := s.enter("SellerTopProducts"); err != nil {
		return nil, err
	}
	return s.SellerProducts[sellerID], nil
}

func (s *Store) UserStats(ctx context.Context, now time.Time) (core.UserStatsRow, error) {
	return s.UserStatsRow, s.enter("UserStats")
}

func (s *Store) EmailDomains(ctx context.Context, limit int) ([]core.DomainCountRow, error) {
	if err := s.enter("EmailDomains"); err != nil {
		return nil, err
	}
	if len(s.Domains) > limit {
		return s.Domains[:limit], nil
	}
	return s.Domains, nil
}

// AnalyticsRepository returns the analytics port of s
func (s *Store) AnalyticsRepository() core.AnalyticsRepository { return analyticsPort{s} }

type analyticsPort struct{ *Store }

func (p analyticsPort) ProductSales(ctx context.Context, filter core.SalesFilter, limit int) ([]core.ProductSalesRow, error) {
	return p.ProductSalesRows(ctx, filter, limit)
}

// Denylist is an in-memory token denylist
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	Err     error
}

// NewDenylist creates an empty denylist
func NewDenylist() *Denylist {
	return &Denylist{revoked: map[string]time.Duration{}}
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if d.Err != nil {
		return d.Err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = ttl
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d.Err != nil {
		return false, d.Err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}

// TTL returns the ttl tokenID was revoked with
func (d *Denylist) TTL(tokenID string) (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ttl, ok := d.revoked[tokenID]
	return ttl, ok
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const (
	minPasswordLength = 8
	topEmailDomains   = 3
)

// UserService manages dashboard accounts
type UserService struct {
	userRepo      core.UserRepository
	analyticsRepo core.AnalyticsRepository
	auth          *AuthService
	eventBus      *events.EventBus
	now           func() time.Time
}

// NewUserService creates a new user service. Password digests go through auth.
func NewUserService(
	userRepo core.UserRepository,
	analyticsRepo core.AnalyticsRepository,
	auth *AuthService,
	eventBus *events.EventBus,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		analyticsRepo: analyticsRepo,
		auth:          auth,
		eventBus:      eventBus,
		now:           time.Now,
	}
}

// UpdateUserInput is the body of a user update
type UpdateUserInput struct {
	Username *string `json:"usuario" validate:"omitnil,min=1,max=50"`
	Email    *string `json:"mail" validate:"omitnil,email"`
}

// ChangePasswordInput is the body of a password change
type ChangePasswordInput struct {
	CurrentPassword string `json:"contraseñaActual"`
	NewPassword     string `json:"contraseñaNueva"`
}

// ListUsers returns every account, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.userRepo.GetAll(ctx)
}

// GetUser returns one account
func (s *UserService) GetUser(ctx context.Context, id int64) (*core.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SearchUsers matches term against usernames and emails
func (s *UserService) SearchUsers(ctx context.Context, term string) ([]core.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, core.NewValidationError("search", "Parámetro de búsqueda requerido")
	}
	return s.userRepo.Search(ctx, term)
}

// UpdateUser changes the username and/or email of an account
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*core.User, error) {
	input.Username = trimmed(input.Username)
	input.Email = trimmed(input.Email)
	if input.Username == nil && input.Email == nil {
		return nil, core.NewValidationError("", "Debe proporcionar al menos un campo para actualizar (usuario o mail)")
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var username, email string
	if input.Username != nil {
		username = *input.Username
	}
	if input.Email != nil {
		email = *input.Email
	}
	usernameTaken, emailTaken, err := s.userRepo.FindConflicts(ctx, username, email, id)
	if err != nil {
		return nil, err
	}
	if usernameTaken || emailTaken {
		return nil, core.NewConflictError("El usuario o email ya está en uso")
	}

	if err := s.userRepo.Update(ctx, id, core.UserUpdate{Username: input.Username, Email: input.Email}); err != nil {
		return nil, err
	}
	s.eventBus.PublishUserChange(events.EventUserUpdated, id)
	return s.userRepo.GetByID(ctx, id)
}

// ChangePassword replaces the password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, id int64, input ChangePasswordInput) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return core.NewValidationError("", "Contraseña actual y nueva son requeridas")
	}
	if len([]rune(input.NewPassword)) < minPasswordLength {
		return core.NewValidationError("contraseñaNueva", "La nueva contraseña debe tener al menos 8 caracteres")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return core.NewAuthError("Contraseña actual incorrecta")
	}

	hash, err := s.auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, id, hash)
}

// DeleteUser removes an account. The administrator account cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if id == core.AdministratorUserID {
		return core.NewForbiddenError("No se puede eliminar el usuario administrador")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.eventBus.PublishUserChange(events.EventUserDeleted, id)
	return nil
}

// GetStats builds the user statistics rollup from three concurrent queries
func (s *UserService) GetStats(ctx context.Context) (*core.UserStats, error) {
	now := s.now()

	var (
		row            core.UserStatsRow
		domains        []core.DomainCountRow
		newest, oldest *core.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		row, err = s.analyticsRepo.UserStats(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		domains, err = s.analyticsRepo.EmailDomains(gctx, topEmailDomains)
		return err
	})
	g.Go(func() (err error) {
		newest, oldest, err = s.userRepo.Extremes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &core.UserStats{
		TotalUsers:        row.Total,
		NewLastWeek:       row.NewLastWeek,
		NewLastMonth:      row.NewLastMonth,
		NewPreviousMonth:  row.NewPreviousMonth,
		MonthlyGrowth:     growthRate(row.NewLastMonth, row.NewPreviousMonth),
		AvgAccountAgeDays: row.AvgAccountAgeDays.Round(1).InexactFloat64(),
		UsersWithoutEmail: row.WithoutEmail,
		Newest:            newest,
		Oldest:            oldest,
		TopDomains:        make([]core.DomainShare, len(domains)),
	}
	for i, d := range domains {
		stats.TopDomains[i] = core.DomainShare{
			Domain:  d.Domain,
			Count:   d.Count,
			Percent: sharePercent(d.Count, row.Total),
		}
	}
	return stats, nil
}

func sharePercent(part, whole int64) float64 {
	return percentOf(decimal.NewFromInt(part), decimal.NewFromInt(whole), 1)
}

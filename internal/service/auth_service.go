package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"golang.org/x/crypto/bcrypt"
)

// SessionClaims are the claims carried by a dashboard session token
type SessionClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles login, registration and session tokens
type AuthService struct {
	userRepo   core.UserRepository
	denylist   core.TokenDenylist
	eventBus   *events.EventBus
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo core.UserRepository,
	denylist core.TokenDenylist,
	eventBus *events.EventBus,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		denylist:   denylist,
		eventBus:   eventBus,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// LoginInput is the body of a login request
type LoginInput struct {
	Username string `json:"usuario" validate:"required"`
	Password string `json:"contraseña" validate:"required"`
}

// RegisterInput is the body of a registration request
type RegisterInput struct {
	Username string `json:"usuario" validate:"required,max=50"`
	Password string `json:"contraseña" validate:"required"`
	Email    string `json:"mail" validate:"required,email"`
}

// Login checks the credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*core.User, string, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return nil, "", core.NewValidationError("usuario", "Usuario y contraseña son requeridos")
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, "", core.NewAuthError("Usuario o contraseña incorrectos")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", core.NewAuthError("Usuario o contraseña incorrectos")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Register creates an account after checking that neither the username nor the email is taken
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Password == "" || input.Email == "" {
		return 0, core.NewValidationError("", "Usuario, contraseña y mail son requeridos")
	}
	if err := validateStruct(input); err != nil {
		return 0, err
	}

	usernameTaken, emailTaken, err := s.userRepo.FindConflicts(ctx, input.Username, input.Email, 0)
	if err != nil {
		return 0, err
	}
	if usernameTaken || emailTaken {
		return 0, core.NewConflictError(conflictMessage(usernameTaken, emailTaken))
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return 0, err
	}

	user := &core.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return 0, err
	}

	s.eventBus.PublishUserChange(events.EventUserRegistered, user.ID)
	return user.ID, nil
}

// Logout revokes the token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *SessionClaims) error {
	if claims == nil || claims.ID == "" {
		return core.NewAuthError("Token inválido")
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return core.NewStoreError("Error al cerrar sesión", err)
	}
	return nil
}

// CurrentUser resolves the account behind a session
func (s *AuthService) CurrentUser(ctx context.Context, claims *SessionClaims) (*core.User, error) {
	if claims == nil {
		return nil, core.NewAuthError("Token inválido")
	}
	return s.userRepo.GetByID(ctx, claims.UserID)
}

// ValidateJWT parses the token and rejects it when expired, forged or revoked
func (s *AuthService) ValidateJWT(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, core.NewAuthError("Token inválido o expirado")
	}
	if !token.Valid {
		return nil, core.NewAuthError("Token inválido")
	}

	if claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, core.NewStoreError("Error al validar la sesión", err)
		}
		if revoked {
			return nil, core.NewAuthError("Sesión cerrada")
		}
	}
	return claims, nil
}

// HashPassword digests a password with bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", core.NewValidationError("contraseña", "La contraseña es demasiado larga")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// generateJWT generates a session token for user
func (s *AuthService) generateJWT(user *core.User) (string, error) {
	now := s.now()
	claims := SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     core.RoleFor(user.ID),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func conflictMessage(usernameTaken, emailTaken bool) string {
	switch {
	case usernameTaken && emailTaken:
		return "Ya existe usuario y mail"
	case usernameTaken:
		return "Ya existe el usuario"
	default:
		return "Ya existe el mail"
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/core/coretest"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newAuthService(store *coretest.Store, denylist *coretest.Denylist) *AuthService {
	svc := NewAuthService(store.UserRepository(), denylist, events.NewEventBus(), testSecret, time.Hour)
	svc.bcryptCost = bcrypt.MinCost
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func registerUser(t *testing.T, svc *AuthService, username, email, password string) int64 {
	t.Helper()
	id, err := svc.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: password})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return id
}

func TestRegisterConflicts(t *testing.T) {
	store := coretest.NewStore()
	svc := newAuthService(store, coretest.NewDenylist())
	registerUser(t, svc, "admin", "admin@ventas.com", "secreto123")

	tests := []struct {
		name     string
		input    RegisterInput
		kind     core.ErrorKind
		expected string
	}{
		{"username taken", RegisterInput{Username: "admin", Email: "otro@ventas.com", Password: "x"}, core.KindConflict, "Ya existe el usuario"},
		{"email taken", RegisterInput{Username: "otro", Email: "admin@ventas.com", Password: "x"}, core.KindConflict, "Ya existe el mail"},
		{"both taken", RegisterInput{Username: "admin", Email: "admin@ventas.com", Password: "x"}, core.KindConflict, "Ya existe usuario y mail"},
		{"missing password", RegisterInput{Username: "nuevo", Email: "nuevo@ventas.com"}, core.KindValidation, "Usuario, contraseña y mail son requeridos"},
		{"bad email", RegisterInput{Username: "nuevo", Email: "no-es-mail", Password: "x"}, core.KindValidation, "Formato de mail inválido"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			expectKind(t, err, tt.kind)
			var e *core.Error
			if !errors.As(err, &e) || e.Message != tt.expected {
				t.Fatalf("error = %v, want message %q", err, tt.expected)
			}
		})
	}
	if len(store.Users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(store.Users))
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	store := coretest.NewStore()
	svc := newAuthService(store, coretest.NewDenylist())

	id := registerUser(t, svc, "ana", "ana@ventas.com", "secreto123")
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}
	user := store.Users[0]
	if user.PasswordHash == "secreto123" {
		t.Fatal("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secreto123")); err != nil {
		t.Fatalf("hash does not match: %v", err)
	}
	if !user.CreatedAt.Equal(fixedNow) {
		t.Fatalf("created at %v", user.CreatedAt)
	}
}

func TestLogin(t *testing.T) {
	store := coretest.NewStore()
	svc := newAuthService(store, coretest.NewDenylist())
	registerUser(t, svc, "admin", "admin@ventas.com", "secreto123")
	registerUser(t, svc, "ana", "ana@ventas.com", "clave4567")

	_, _, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: "mala"})
	expectKind(t, err, core.KindAuth)
	_, _, err = svc.Login(context.Background(), LoginInput{Username: "nadie", Password: "secreto123"})
	expectKind(t, err, core.KindAuth)
	_, _, err = svc.Login(context.Background(), LoginInput{Username: " ", Password: "secreto123"})
	expectKind(t, err, core.KindValidation)

	user, token, err := svc.Login(context.Background(), LoginInput{Username: " ana ", Password: "clave4567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := svc.ValidateJWT(context.Background(), token)
	if err != nil {
		t.Fatalf("issued token rejected: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "ana" || claims.Role != core.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}

	_, adminToken, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: "secreto123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	adminClaims, err := svc.ValidateJWT(context.Background(), adminToken)
	if err != nil || adminClaims.Role != core.RoleAdmin {
		t.Fatalf("admin claims %+v, %v", adminClaims, err)
	}
}

func TestValidateJWTRejections(t *testing.T) {
	store := coretest.NewStore()
	svc := newAuthService(store, coretest.NewDenylist())
	registerUser(t, svc, "ana", "ana@ventas.com", "clave4567")
	_, token, err := svc.Login(context.Background(), LoginInput{Username: "ana", Password: "clave4567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.ValidateJWT(context.Background(), "not-a-token")
	expectKind(t, err, core.KindAuth)

	forger := newAuthService(store, coretest.NewDenylist())
	forger.jwtSecret = []byte("otro-secreto")
	_, err = forger.ValidateJWT(context.Background(), token)
	expectKind(t, err, core.KindAuth)

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	_, err = svc.ValidateJWT(context.Background(), token)
	expectKind(t, err, core.KindAuth)
}

func TestLogoutRevokesToken(t *testing.T) {
	store := coretest.NewStore()
	denylist := coretest.NewDenylist()
	svc := newAuthService(store, denylist)
	registerUser(t, svc, "ana", "ana@ventas.com", "clave4567")

	_, token, err := svc.Login(context.Background(), LoginInput{Username: "ana", Password: "clave4567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := svc.ValidateJWT(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if ttl, ok := denylist.TTL(claims.ID); !ok || ttl != time.Hour {
		t.Fatalf("revoked with ttl %v (%t)", ttl, ok)
	}

	_, err = svc.ValidateJWT(context.Background(), token)
	expectKind(t, err, core.KindAuth)
}

func TestValidateJWTDenylistDown(t *testing.T) {
	store := coretest.NewStore()
	denylist := coretest.NewDenylist()
	svc := newAuthService(store, denylist)
	registerUser(t, svc, "ana", "ana@ventas.com", "clave4567")
	_, token, err := svc.Login(context.Background(), LoginInput{Username: "ana", Password: "clave4567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	denylist.Err = errors.New("redis: connection refused")
	_, err = svc.ValidateJWT(context.Background(), token)
	expectKind(t, err, core.KindStore)
}

func TestCurrentUser(t *testing.T) {
	store := coretest.NewStore()
	svc := newAuthService(store, coretest.NewDenylist())
	id := registerUser(t, svc, "ana", "ana@ventas.com", "clave4567")

	user, err := svc.CurrentUser(context.Background(), &SessionClaims{UserID: id})
	if err != nil || user.Username != "ana" {
		t.Fatalf("CurrentUser = %+v, %v", user, err)
	}
	_, err = svc.CurrentUser(context.Background(), nil)
	expectKind(t, err, core.KindAuth)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tp-bda/dashboard-ventas/internal/middleware"
	"github.com/tp-bda/dashboard-ventas/internal/service"
)

// AuthHandler handles login, registration and session requests
type AuthHandler struct {
	authService *service.AuthService
	errors      *ErrorResponder
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, errors *ErrorResponder) *AuthHandler {
	return &AuthHandler{authService: authService, errors: errors}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return h.errors.BadBody(c)
	}

	user, token, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return h.errors.Respond(c, "auth_handler", "Login", err)
	}

	return ok(c, "Login exitoso", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Register handles account creation
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return h.errors.BadBody(c)
	}

	userID, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return h.errors.Respond(c, "auth_handler", "Register", err)
	}

	return created(c, "Usuario registrado correctamente", fiber.Map{"userId": userID})
}

// Logout revokes the current token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.ClaimsFrom(c)); err != nil {
		return h.errors.Respond(c, "auth_handler", "Logout", err)
	}
	return ok(c, "Sesión cerrada exitosamente", nil)
}

// GetMe returns the account behind the current token
// GET /api/auth/me
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.authService.CurrentUser(c.UserContext(), middleware.ClaimsFrom(c))
	if err != nil {
		return h.errors.Respond(c, "auth_handler", "GetMe", err)
	}
	return ok(c, "Usuario obtenido exitosamente", user)
}

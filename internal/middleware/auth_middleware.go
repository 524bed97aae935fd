package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/service"
)

// Locals keys set by AuthMiddleware
const (
	LocalClaims = "claims"
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// TokenValidator resolves a bearer token into session claims
type TokenValidator interface {
	ValidateJWT(ctx context.Context, token string) (*service.SessionClaims, error)
}

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ""
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = parts[1]
			}
		}

		// EventSource cannot set Authorization headers in browsers.
		// Allow token query param fallback for the SSE endpoint only.
		if token == "" && strings.HasSuffix(c.Path(), "/events") {
			token = strings.TrimSpace(c.Query("token"))
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Token no proporcionado",
			})
		}

		claims, err := validator.ValidateJWT(c.UserContext(), token)
		if err != nil {
			status := fiber.StatusUnauthorized
			message := "Token inválido o expirado"
			if core.KindOf(err) == core.KindStore {
				status = fiber.StatusInternalServerError
				message = "Error al validar la sesión"
			}
			return c.Status(status).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		}

		// Store claims in context for use in handlers
		c.Locals(LocalClaims, claims)
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, strings.ToUpper(strings.TrimSpace(claims.Role)))

		return c.Next()
	}
}

// ClaimsFrom returns the session claims stored by AuthMiddleware, or nil
func ClaimsFrom(c *fiber.Ctx) *service.SessionClaims {
	claims, _ := c.Locals(LocalClaims).(*service.SessionClaims)
	return claims
}

// RequireRoles enforces role-based access control after AuthMiddleware.
func RequireRoles(allowedRoles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		normalizedRole := strings.ToUpper(strings.TrimSpace(role))
		if normalizedRole != "" {
			allowed[normalizedRole] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Rol no encontrado en el token",
			})
		}

		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Permisos insuficientes",
			})
		}

		return c.Next()
	}
}

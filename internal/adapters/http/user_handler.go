package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tp-bda/dashboard-ventas/internal/service"
)

// UserHandler handles account management requests
type UserHandler struct {
	userService *service.UserService
	errors      *ErrorResponder
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, errors *ErrorResponder) *UserHandler {
	return &UserHandler{userService: userService, errors: errors}
}

func userID(c *fiber.Ctx) (int64, error) {
	id, err := service.ParseID("id", c.Params("id"))
	if err != nil {
		return 0, invalidID(err, "ID de usuario inválido")
	}
	return id, nil
}

// GetAll lists every account
// GET /api/users
func (h *UserHandler) GetAll(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, "user_handler", "GetAll", err)
	}
	return okList(c, "Usuarios obtenidos exitosamente", users)
}

// GetByID returns one account
// GET /api/users/:id
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.errors.Respond(c, "user_handler", "GetByID", err)
	}

	user, err := h.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return h.errors.Respond(c, "user_handler", "GetByID", err)
	}
	return ok(c, "Usuario obtenido exitosamente", user)
}

// Search matches accounts by username or email
// GET /api/users/search?search=
func (h *UserHandler) Search(c *fiber.Ctx) error {
	users, err := h.userService.SearchUsers(c.UserContext(), c.Query("search"))
	if err != nil {
		return h.errors.Respond(c, "user_handler", "Search", err)
	}
	return okList(c, "Búsqueda completada", users)
}

// GetStats returns the account statistics rollup
// GET /api/users/stats
func (h *UserHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.userService.GetStats(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, "user_handler", "GetStats", err)
	}
	return ok(c, "Estadísticas obtenidas exitosamente", stats)
}

// Update changes the username or email of an account
// PUT /api/users/:id
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.errors.Respond(c, "user_handler", "Update", err)
	}

	var req service.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return h.errors.BadBody(c)
	}

	user, err := h.userService.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return h.errors.Respond(c, "user_handler", "Update", err)
	}
	return ok(c, "Usuario actualizado exitosamente", user)
}

// ChangePassword replaces the password of an account
// PUT /api/users/:id/password
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.errors.Respond(c, "user_handler", "ChangePassword", err)
	}

	var req service.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return h.errors.BadBody(c)
	}

	if err := h.userService.ChangePassword(c.UserContext(), id, req); err != nil {
		return h.errors.Respond(c, "user_handler", "ChangePassword", err)
	}
	return ok(c, "Contraseña cambiada exitosamente", nil)
}

// Delete removes an account
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return h.errors.Respond(c, "user_handler", "Delete", err)
	}

	if err := h.userService.DeleteUser(c.UserContext(), id); err != nil {
		return h.errors.Respond(c, "user_handler", "Delete", err)
	}
	return ok(c, "Usuario eliminado exitosamente", nil)
}

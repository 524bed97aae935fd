package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tp-bda/dashboard-ventas/internal/service"
)

// BranchHandler handles branch, seller and inventory requests
type BranchHandler struct {
	branchService *service.BranchService
	errors        *ErrorResponder
	location      *time.Location
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *service.BranchService, errors *ErrorResponder, loc *time.Location) *BranchHandler {
	return &BranchHandler{branchService: branchService, errors: errors, location: loc}
}

func branchID(c *fiber.Ctx) (int64, error) {
	id, err := service.ParseID("id", c.Params("id"))
	if err != nil {
		return 0, invalidID(err, "ID de sucursal inválido")
	}
	return id, nil
}

// GetAll lists branches with their totals
// GET /api/sucursales
func (h *BranchHandler) GetAll(c *fiber.Ctx) error {
	branches, err := h.branchService.ListBranches(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetAll", err)
	}
	return okList(c, "Sucursales obtenidas exitosamente", branches)
}

// GetStats returns the branch statistics rollup
// GET /api/sucursales/stats
func (h *BranchHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.branchService.GetStats(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetStats", err)
	}
	return ok(c, "Estadísticas obtenidas exitosamente", stats)
}

// GetByID returns one branch with its totals
// GET /api/sucursales/:id
func (h *BranchHandler) GetByID(c *fiber.Ctx) error {
	id, err := branchID(c)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetByID", err)
	}

	branch, err := h.branchService.GetBranch(c.UserContext(), id)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetByID", err)
	}
	return ok(c, "Sucursal obtenida exitosamente", branch)
}

// GetSellers lists the sellers of a branch with their sales in the window
// GET /api/sucursales/:id/vendedores?fechaInicio=&fechaFin=
func (h *BranchHandler) GetSellers(c *fiber.Ctx) error {
	id, err := branchID(c)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetSellers", err)
	}
	window, err := service.ParseDateWindow(c.Query("fechaInicio"), c.Query("fechaFin"), h.location)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetSellers", err)
	}

	sellers, err := h.branchService.GetSellers(c.UserContext(), id, window)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetSellers", err)
	}
	return okList(c, "Vendedores obtenidos exitosamente", sellers)
}

// GetInventory lists the stock of a branch
// GET /api/sucursales/:id/inventario
func (h *BranchHandler) GetInventory(c *fiber.Ctx) error {
	id, err := branchID(c)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetInventory", err)
	}

	items, err := h.branchService.GetInventory(c.UserContext(), id)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetInventory", err)
	}
	return okList(c, "Inventario obtenido exitosamente", items)
}

// GetSellerDetail returns the performance breakdown of one seller
// GET /api/sucursales/vendedores/:id/detalle?fechaInicio=&fechaFin=
func (h *BranchHandler) GetSellerDetail(c *fiber.Ctx) error {
	id, err := service.ParseID("id", c.Params("id"))
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetSellerDetail", invalidID(err, "ID de vendedor inválido"))
	}
	window, err := service.ParseDateWindow(c.Query("fechaInicio"), c.Query("fechaFin"), h.location)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetSellerDetail", err)
	}

	detail, err := h.branchService.GetSellerDetail(c.UserContext(), id, window)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "GetSellerDetail", err)
	}
	return ok(c, "Detalle del vendedor obtenido exitosamente", detail)
}

// Create adds a branch
// POST /api/sucursales
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var req service.CreateBranchInput
	if err := c.BodyParser(&req); err != nil {
		return h.errors.BadBody(c)
	}

	branch, err := h.branchService.CreateBranch(c.UserContext(), req)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "Create", err)
	}
	return created(c, "Sucursal creada exitosamente", branch)
}

// Update changes the given fields of a branch
// PUT /api/sucursales/:id
func (h *BranchHandler) Update(c *fiber.Ctx) error {
	id, err := branchID(c)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "Update", err)
	}

	var req service.UpdateBranchInput
	if err := c.BodyParser(&req); err != nil {
		return h.errors.BadBody(c)
	}

	if err := h.branchService.UpdateBranch(c.UserContext(), id, req); err != nil {
		return h.errors.Respond(c, "branch_handler", "Update", err)
	}
	return ok(c, "Sucursal actualizada exitosamente", nil)
}

// Delete removes a branch
// DELETE /api/sucursales/:id
func (h *BranchHandler) Delete(c *fiber.Ctx) error {
	id, err := branchID(c)
	if err != nil {
		return h.errors.Respond(c, "branch_handler", "Delete", err)
	}

	if err := h.branchService.DeleteBranch(c.UserContext(), id); err != nil {
		return h.errors.Respond(c, "branch_handler", "Delete", err)
	}
	return ok(c, "Sucursal eliminada exitosamente", nil)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tp-bda/dashboard-ventas/internal/service"
)

// ProductHandler handles catalog requests
type ProductHandler struct {
	productService *service.ProductService
	errors         *ErrorResponder
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, errors *ErrorResponder) *ProductHandler {
	return &ProductHandler{productService: productService, errors: errors}
}

// GetAll lists the catalog
// GET /api/productos
func (h *ProductHandler) GetAll(c *fiber.Ctx) error {
	products, err := h.productService.ListProducts(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, "product_handler", "GetAll", err)
	}
	return okList(c, "Productos obtenidos exitosamente", products)
}

// GetByID returns one product
// GET /api/productos/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := service.ParseID("id", c.Params("id"))
	if err != nil {
		return h.errors.Respond(c, "product_handler", "GetByID", invalidID(err, "ID del producto inválido"))
	}

	product, err := h.productService.GetProduct(c.UserContext(), id)
	if err != nil {
		return h.errors.Respond(c, "product_handler", "GetByID", err)
	}
	return ok(c, "Producto obtenido exitosamente", product)
}

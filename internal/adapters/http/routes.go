package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/tp-bda/dashboard-ventas/internal/middleware"
)

const serviceName = "dashboard-ventas"

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Branches  *BranchHandler
	Products  *ProductHandler
	Dashboard *DashboardHandler
}

// AppOptions configures the fiber application
type AppOptions struct {
	AllowedOrigins string
	AccessLog      bool
}

// NewApp creates the fiber application with the shared middleware chain
func NewApp(opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Dashboard de Ventas API",
		ServerHeader: "Fiber",
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	if opts.AllowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowCredentials: true,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		}))
	}
	app.Use(middleware.PrometheusMiddleware())
	return app
}

// RegisterRoutes mounts the API on app. Everything except login and registration requires a session.
func RegisterRoutes(app *fiber.App, h Handlers, validator middleware.TokenValidator) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "API Dashboard de Ventas",
			"status":  "online",
			"version": "1.0.0",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"project": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(validator)
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/logout", requireAuth, h.Auth.Logout)
	auth.Get("/me", requireAuth, h.Auth.GetMe)

	users := api.Group("/users", requireAuth)
	users.Get("/", h.Users.GetAll)
	users.Get("/stats", h.Users.GetStats)
	users.Get("/search", h.Users.Search)
	users.Get("/:id", h.Users.GetByID)
	users.Put("/:id", h.Users.Update)
	users.Put("/:id/password", h.Users.ChangePassword)
	users.Delete("/:id", middleware.RequireRoles(core.RoleAdmin), h.Users.Delete)

	branches := api.Group("/sucursales", requireAuth)
	branches.Get("/", h.Branches.GetAll)
	branches.Get("/stats", h.Branches.GetStats)
	branches.Get("/vendedores/:id/detalle", h.Branches.GetSellerDetail)
	branches.Get("/:id", h.Branches.GetByID)
	branches.Get("/:id/vendedores", h.Branches.GetSellers)
	branches.Get("/:id/inventario", h.Branches.GetInventory)
	branches.Post("/", h.Branches.Create)
	branches.Put("/:id", h.Branches.Update)
	branches.Delete("/:id", h.Branches.Delete)

	products := api.Group("/productos", requireAuth)
	products.Get("/", h.Products.GetAll)
	products.Get("/:id", h.Products.GetByID)

	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.Get("/kpis", h.Dashboard.GetKPIs)
	dashboard.Get("/sucursales/ranking", h.Dashboard.GetBranchRanking)
	dashboard.Get("/categorias", h.Dashboard.GetCategorySales)
	dashboard.Get("/productos/top", h.Dashboard.GetTopProducts)
	dashboard.Get("/ventas/periodo", h.Dashboard.GetSalesByPeriod)
	dashboard.Get("/reportes/ventas.pdf", h.Dashboard.DownloadSalesReport)
	dashboard.Get("/reportes/ranking.xlsx", h.Dashboard.DownloadRankingSheet)
	dashboard.Get("/events", h.Dashboard.SSEEvents)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Ruta no encontrada",
			"path":    c.OriginalURL(),
		})
	})
}

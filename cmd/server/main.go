package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tp-bda/dashboard-ventas/internal/adapters/http"
	redisRepo "github.com/tp-bda/dashboard-ventas/internal/adapters/redis"
	"github.com/tp-bda/dashboard-ventas/internal/adapters/sqlstore"
	"github.com/tp-bda/dashboard-ventas/internal/config"
	"github.com/tp-bda/dashboard-ventas/internal/events"
	"github.com/tp-bda/dashboard-ventas/internal/middleware"
	"github.com/tp-bda/dashboard-ventas/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)
	loc := cfg.Location()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to the sales database
	store, err := sqlstore.NewRepository(ctx, sqlstore.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DBURL,
		MaxConns: cfg.DBMaxConns,
		TimeZone: cfg.AppTimezone,
		Logger:   logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer store.Close()
	logger.WithField("driver", cfg.DBDriver).Info("✓ Database connection established")

	// Connect to Redis
	rdb, err := redisRepo.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer rdb.Close()
	logger.Info("✓ Redis connection established")

	bus := events.NewEventBus()

	// Initialize services
	authService := service.NewAuthService(
		store.UserRepository(),
		redisRepo.NewTokenDenylist(rdb),
		bus,
		cfg.JWTSecret,
		cfg.JWTTTL,
	)
	userService := service.NewUserService(store.UserRepository(), store.AnalyticsRepository(), authService, bus)
	branchService := service.NewBranchService(
		store.BranchRepository(),
		store.SellerRepository(),
		store.AnalyticsRepository(),
		bus,
		loc,
	)
	productService := service.NewProductService(store.ProductRepository())
	dashboardService := service.NewDashboardService(store.AnalyticsRepository(), bus, loc)

	// Initialize HTTP handlers
	errs := http.NewErrorResponder(logger, cfg.IsProduction())
	handlers := http.Handlers{
		Auth:      http.NewAuthHandler(authService, errs),
		Users:     http.NewUserHandler(userService, errs),
		Branches:  http.NewBranchHandler(branchService, errs, loc),
		Products:  http.NewProductHandler(productService, errs),
		Dashboard: http.NewDashboardHandler(dashboardService, errs, logger, loc, cfg.TopLimitMax),
	}

	middleware.InitMetrics()
	app := http.NewApp(http.AppOptions{
		AllowedOrigins: cfg.AllowedOrigins(),
		AccessLog:      true,
	})
	http.RegisterRoutes(app, handlers, authService)

	// Shut down on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.AppPort)
	logger.WithField("addr", addr).Info("🚀 Server starting")
	if err := app.Listen(addr); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
	logger.Info("Server stopped")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nordmark/vidar/internal"
	"github.com/nordmark/vidar/internal/gateway"
	"github.com/nordmark/vidar/internal/handler/admin"
	"github.com/nordmark/vidar/internal/handler/storefront"
	"github.com/nordmark/vidar/internal/jobs"
	"github.com/nordmark/vidar/internal/middleware"
	"github.com/nordmark/vidar/internal/postgres"
	"github.com/nordmark/vidar/internal/router"
	"github.com/nordmark/vidar/internal/routes"
	"github.com/nordmark/vidar/internal/service"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := postgres.NewPool(ctx, cfg.DatabaseUrl)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Initialize stores
	inventoryStore := postgres.NewInventoryStore(pool)
	cartStore := postgres.NewCartStore(pool)
	checkoutStore := postgres.NewCheckoutStore(pool)
	orderStore := postgres.NewOrderStore(pool)

	// Initialize payment gateway provider. Without credentials the mock
	// provider stands in, so local development needs no gateway account.
	var provider gateway.Provider
	if cfg.Gateway.KeyID != "" && cfg.Gateway.KeySecret != "" {
		provider = gateway.NewRazorpayProvider(cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout)
		logger.Info("Payment gateway provider initialized")
	} else {
		provider = gateway.NewMockProvider()
		logger.Warn("Gateway credentials not set, using mock payment provider")
	}

	// Initialize services
	restocker := service.NewRestocker(inventoryStore, logger)
	cartService := service.NewCartService(cartStore, inventoryStore, logger)
	checkoutService := service.NewCheckoutService(
		checkoutStore,
		cartStore,
		inventoryStore,
		provider,
		restocker,
		logger,
		cfg.Gateway.Currency,
		cfg.Gateway.KeyID,
	)
	orderService := service.NewOrderService(orderStore, checkoutStore, cartStore, restocker, logger)

	// Build route dependencies
	storefrontDeps := routes.StorefrontDeps{
		CartHandler:     storefront.NewCartHandler(cartService),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutService),
		OrderHandler:    storefront.NewOrderHandler(orderService),
	}
	adminDeps := routes.AdminDeps{
		OrderHandler: admin.NewOrderHandler(orderService),
	}

	// Initialize middleware
	metrics := middleware.NewMetrics("vidar")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.WithIdentity(middleware.HeaderResolver{}),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	routes.RegisterOpsRoutes(r, routes.OpsDeps{Metrics: metrics})
	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterAdminRoutes(r, adminDeps)

	// Start the stale-checkout sweeper
	sweeper := jobs.NewSweeper(checkoutService, logger, cfg.Checkout.SessionTTL, cfg.Checkout.SweepInterval)
	go sweeper.Run(ctx)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down...")
		return srv.Shutdown(context.Background())
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

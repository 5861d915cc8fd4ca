package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	orderapp "github.com/storefront/backend/internal/application/order"
	stockapp "github.com/storefront/backend/internal/application/stock"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/coupon"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Transaction scopes
	stockScope := persistence.NewGormStockTransactionScope(db.DB)
	orderScope := persistence.NewGormOrderTransactionScope(db.DB)
	checkoutScope := persistence.NewGormCheckoutTransactionScope(db.DB)

	// Stock service, with the Redis availability cache when reachable
	stockOpts := []stockapp.StockServiceOption{
		stockapp.WithMaxRetries(cfg.Stock.MaxConflictRetries),
	}
	availabilityCache, err := cache.NewRedisAvailabilityCache(cfg.Redis, cfg.Stock.AvailabilityTTL)
	if err != nil {
		log.Warn("Redis unavailable, availability served without cache", zap.Error(err))
	} else {
		defer func() {
			_ = availabilityCache.Close()
		}()
		stockOpts = append(stockOpts, stockapp.WithAvailabilityCache(availabilityCache))
	}
	stockService := stockapp.NewStockService(stockScope, stockRepo, log, stockOpts...)

	// Remaining application services
	notifier := notification.NewLogNotifier(log)
	productService := catalogapp.NewProductService(productRepo, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, stockRepo, log)

	orderOpts := []orderapp.OrderServiceOption{
		orderapp.WithStatusNotifier(notifier),
	}
	checkoutOpts := []checkoutapp.CheckoutServiceOption{
		checkoutapp.WithNotifier(notifier),
	}
	if availabilityCache != nil {
		orderOpts = append(orderOpts, orderapp.WithAvailabilityInvalidator(availabilityCache))
		checkoutOpts = append(checkoutOpts, checkoutapp.WithAvailabilityInvalidator(availabilityCache))
	}
	if cfg.Coupon.BaseURL != "" {
		checkoutOpts = append(checkoutOpts, checkoutapp.WithCouponValidator(coupon.NewHTTPValidator(cfg.Coupon)))
	}
	orderService := orderapp.NewOrderService(orderScope, orderRepo, log, orderOpts...)
	checkoutService := checkoutapp.NewCheckoutService(checkoutScope, cartRepo, productRepo, stockRepo, log, checkoutOpts...)

	jwtService := auth.NewJWTService(cfg.JWT)

	handlers := router.Handlers{
		Products: handler.NewProductHandler(productService, stockService),
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Orders:   handler.NewOrderHandler(orderService),
		Stock:    handler.NewStockHandler(stockService),
	}

	engine := router.New(cfg, log, jwtService, handlers).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

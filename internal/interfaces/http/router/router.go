package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Stock    *handler.StockHandler
}

// Router builds the gin engine with all middleware and routes
type Router struct {
	cfg        *config.Config
	log        *zap.Logger
	jwtService *auth.JWTService
	handlers   Handlers
}

// New creates a new Router
func New(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, handlers Handlers) *Router {
	return &Router{
		cfg:        cfg,
		log:        log,
		jwtService: jwtService,
		handlers:   handlers,
	}
}

// Setup wires middleware and routes and returns the engine
func (r *Router) Setup() *gin.Engine {
	if r.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(r.cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(r.cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(r.log))
	engine.Use(logger.Recovery(r.log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: r.cfg.HTTP.CORSAllowOrigins,
		AllowMethods: r.cfg.HTTP.CORSAllowMethods,
		AllowHeaders: r.cfg.HTTP.CORSAllowHeaders,
	}))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": r.cfg.App.Name})
	})

	api := engine.Group("/api/v1")
	r.registerPublicRoutes(api)
	r.registerCustomerRoutes(api)
	r.registerAdminRoutes(api)

	return engine
}

// registerPublicRoutes mounts the unauthenticated storefront surface
func (r *Router) registerPublicRoutes(api *gin.RouterGroup) {
	products := api.Group("/products")
	{
		products.GET("", r.handlers.Products.List)
		products.GET("/:id", r.handlers.Products.Get)
		products.GET("/:id/availability", r.handlers.Products.GetAvailability)
	}
}

// registerCustomerRoutes mounts the authenticated shopping surface
func (r *Router) registerCustomerRoutes(api *gin.RouterGroup) {
	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(r.jwtService))

	cart := authed.Group("/cart")
	{
		cart.GET("", r.handlers.Cart.Get)
		cart.DELETE("", r.handlers.Cart.Clear)
		cart.POST("/items", r.handlers.Cart.AddItem)
		cart.PUT("/items/:productId", r.handlers.Cart.UpdateQuantity)
		cart.DELETE("/items/:productId", r.handlers.Cart.RemoveItem)
	}

	authed.POST("/checkout", r.handlers.Checkout.PlaceOrder)

	orders := authed.Group("/orders")
	{
		orders.GET("", r.handlers.Orders.List)
		orders.GET("/:id", r.handlers.Orders.Get)
		orders.POST("/:id/cancel", r.handlers.Orders.Cancel)
	}
}

// registerAdminRoutes mounts the back-office surface. Authentication is the
// same JWT check; role separation is handled upstream at the gateway.
func (r *Router) registerAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(r.jwtService))

	orders := admin.Group("/orders")
	{
		orders.GET("/number/:number", r.handlers.Orders.GetByNumber)
		orders.POST("/:id/confirm", r.handlers.Orders.Confirm)
		orders.POST("/:id/process", r.handlers.Orders.StartProcessing)
		orders.POST("/:id/ship", r.handlers.Orders.Ship)
		orders.POST("/:id/deliver", r.handlers.Orders.Deliver)
		orders.POST("/:id/cancel", r.handlers.Orders.AdminCancel)
	}

	stock := admin.Group("/stock")
	{
		stock.GET("/records/:productId", r.handlers.Stock.ListRecords)
		stock.GET("/availability/:productId", r.handlers.Stock.GetAvailability)
		stock.GET("/alerts", r.handlers.Stock.ListAlerts)
		stock.POST("/reserve", r.handlers.Stock.Reserve)
		stock.POST("/release", r.handlers.Stock.Release)
		stock.POST("/transfer", r.handlers.Stock.Transfer)
		stock.POST("/adjust", r.handlers.Stock.Adjust)
		stock.POST("/thresholds", r.handlers.Stock.SetThresholds)
	}
}

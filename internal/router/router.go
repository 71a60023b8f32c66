package router

import (
	"time"

	"bebidaspos/internal/config"
	"bebidaspos/internal/handler"
	"bebidaspos/internal/infra"
	"bebidaspos/internal/middleware"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"
	"bebidaspos/internal/service"
	"bebidaspos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// db and rdb may be nil: the in-memory store has no *gorm.DB, and without
// Redis the price cache and receipt jobs are disabled.
func New(cfg *config.Config, repos repository.Repositories, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	priceCache := infra.NewPriceCache(rdb)
	var receipts service.ReceiptQueue
	if rdb != nil {
		receipts = worker.NewDispatcher(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(repos.Users, cfg)
	productSvc := service.NewProductService(repos.Products, repos.Inventory, priceCache)
	inventorySvc := service.NewInventoryService(repos.Inventory, repos.Products, priceCache)
	saleSvc := service.NewSaleService(repos.Sales)
	checkoutSvc := service.NewCheckoutService(repos.Products, repos.Inventory, repos.Sales, receipts, priceCache)
	dashboardSvc := service.NewDashboardService(repos.Sales, repos.Products, repos.Inventory, nil)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	priceH := handler.NewPriceLookupHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	posH := handler.NewPOSHandler(checkoutSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check, no auth required
	r.GET("/v1/precio/:barcode", priceH.GetByBarcode)

	// Protected routes
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleEmployee)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/productos", anyRole, productsH.List)
		v1.GET("/productos/barcode/:barcode", anyRole, productsH.GetByBarcode)
		v1.GET("/productos/:id", anyRole, productsH.GetByID)
		prods := v1.Group("/productos", adminOnly)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
		}

		v1.GET("/inventario", anyRole, inventoryH.List)
		v1.GET("/inventario/alertas", anyRole, inventoryH.Alerts)
		v1.GET("/inventario/:product_id", anyRole, inventoryH.Get)
		v1.PUT("/inventario/:product_id", adminOnly, inventoryH.Upsert)

		pos := v1.Group("/pos", anyRole)
		{
			pos.GET("", posH.State)
			pos.DELETE("", posH.Clear)
			pos.POST("/items", posH.AddItem)
			pos.POST("/scan", posH.Scan)
			pos.PATCH("/items/:product_id", posH.ChangeQuantity)
			pos.DELETE("/items/:product_id", posH.RemoveItem)
			pos.PUT("/discount", posH.ApplyDiscount)
			pos.PUT("/payment-method", posH.SetPaymentMethod)
			pos.POST("/checkout", posH.InitiateCheckout)
			pos.POST("/checkout/confirm", posH.ConfirmPayment)
			pos.POST("/checkout/cancel", posH.CancelCheckout)
		}

		v1.GET("/ventas", anyRole, salesH.List)
		v1.GET("/ventas/:id", anyRole, salesH.Get)

		v1.GET("/dashboard", adminOnly, dashboardH.Get)
	}

	return r
}

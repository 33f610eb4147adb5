// Package gateway exposes the stock book over HTTP.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/domain"
	"stockbook/internal/gateway/handlers"
	"stockbook/internal/gateway/middleware"
	"stockbook/internal/services/inventory"
	"stockbook/internal/services/pos"
	"stockbook/internal/services/reports"
	"stockbook/internal/services/user"
	"stockbook/internal/store"
)

// Services are the collaborators the routes are bound to.
type Services struct {
	Store   *store.Store
	Ledger  *inventory.Ledger
	POS     *pos.Service
	Reports *reports.Aggregator
	Users   *user.Service
}

func NewRouter(svc Services, rateLimit string) (*gin.Engine, error) {
	limit, err := middleware.RateLimit(rateLimit)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(limit)

	userHandler := handlers.NewUserHTTPHandler(svc.Users)
	inventoryHandler := handlers.NewInventoryHTTPHandler(svc.Ledger)
	posHandler := handlers.NewPOSHTTPHandler(svc.POS)
	reportsHandler := handlers.NewReportsHTTPHandler(svc.Reports)
	settingsHandler := handlers.NewSettingsHTTPHandler(svc.Store)

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(svc.Users))
	{
		protected.GET("/me", userHandler.Me)
		protected.GET("/dashboard", reportsHandler.Dashboard)

		products := protected.Group("/products")
		{
			products.GET("", middleware.RequireView(domain.SectionProducts), inventoryHandler.ListProducts)
			products.GET("/:id", middleware.RequireView(domain.SectionProducts), inventoryHandler.GetProduct)

			manage := products.Group("", middleware.RequireSection(domain.SectionProducts))
			manage.POST("", inventoryHandler.CreateProduct)
			manage.PUT("/:id", inventoryHandler.UpdateProduct)
			manage.DELETE("/:id", inventoryHandler.DeleteProduct)
			manage.POST("/:id/stock", inventoryHandler.UpdateStock)
			manage.POST("/:id/restock", inventoryHandler.Restock)
		}

		protected.GET("/stock-movements", middleware.RequireSection(domain.SectionProducts), inventoryHandler.ListMovements)

		orders := protected.Group("/orders")
		orders.Use(middleware.RequireSection(domain.SectionOrders))
		{
			orders.POST("", posHandler.CreateOrder)
			orders.GET("", posHandler.ListOrders)
			orders.GET("/:id", posHandler.GetOrder)
			orders.PATCH("/:id/status", posHandler.UpdateOrderStatus)
			orders.DELETE("/:id", posHandler.DeleteOrder)
		}

		sales := protected.Group("/sales")
		sales.Use(middleware.RequireSection(domain.SectionSales))
		{
			sales.POST("", posHandler.CreateSale)
			sales.GET("", posHandler.ListSales)
			sales.GET("/stats", reportsHandler.SalesStats)
			sales.GET("/:id", posHandler.GetSale)
			sales.PATCH("/:id/status", posHandler.UpdateSaleStatus)
			sales.POST("/:id/refund", posHandler.RefundSale)
		}

		customers := protected.Group("/customers")
		customers.Use(middleware.RequireSection(domain.SectionSales))
		{
			customers.POST("", posHandler.CreateCustomer)
			customers.GET("", posHandler.ListCustomers)
			customers.GET("/:id", posHandler.GetCustomer)
			customers.PUT("/:id", posHandler.UpdateCustomer)
			customers.DELETE("/:id", posHandler.DeleteCustomer)
		}

		reportsGroup := protected.Group("/reports")
		reportsGroup.Use(middleware.RequireSection(domain.SectionReports))
		{
			reportsGroup.GET("/sales", reportsHandler.SalesReport)
			reportsGroup.GET("/purchases", reportsHandler.PurchaseReport)
			reportsGroup.GET("/inventory", reportsHandler.InventoryReport)
			reportsGroup.GET("/top-products", reportsHandler.TopProducts)
			reportsGroup.GET("/recent-transactions", reportsHandler.RecentTransactions)
			reportsGroup.GET("/low-stock", reportsHandler.LowStock)
		}

		settings := protected.Group("", middleware.RequireSection(domain.SectionSettings))
		{
			settings.GET("/settings", settingsHandler.GetSettings)
			settings.PUT("/settings", settingsHandler.UpdateSettings)
			settings.GET("/backup", settingsHandler.ExportBackup)
			settings.POST("/backup", settingsHandler.ImportBackup)
			settings.GET("/sync-queue", settingsHandler.SyncQueue)
			settings.DELETE("/sync-queue", settingsHandler.ClearSyncQueue)
		}
	}

	r.GET("/health", healthCheckHandler(svc.Store))

	return r, nil
}

func healthCheckHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := "healthy"
		httpStatus := http.StatusOK
		backend := gin.H{"status": "healthy", "message": "Store backend is responding"}
		if err := s.Ping(ctx); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			backend = gin.H{"status": "unavailable", "message": err.Error()}
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"message":   "Server is running",
			"backend":   backend,
			"timestamp": time.Now(),
		})
	}
}

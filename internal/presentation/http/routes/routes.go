package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Medicine  *handler.MedicineHandler
	Invoice   *handler.InvoiceHandler
	Dashboard *handler.DashboardHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager, deps.Cfg.Auth.Enabled))

		// Keyed by user when authenticated, so it runs after auth
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfigFor(
			deps.Cfg.RateLimit.Requests,
			time.Duration(deps.Cfg.RateLimit.Duration)*time.Second,
		))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	adminOnly := middleware.RequireRole(enum.RoleAdmin)

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/users", adminOnly, h.Auth.CreateUser)

	protected.GET("/dashboard/stats", h.Dashboard.GetStats)
	protected.GET("/reports", h.Dashboard.GetReport)

	registerMedicineRoutes(protected, h, adminOnly)
	registerInvoiceRoutes(protected, h, deps, adminOnly)
	registerPrinterRoutes(protected, h)
}

func registerMedicineRoutes(protected *gin.RouterGroup, h *Handlers, adminOnly gin.HandlerFunc) {
	medicines := protected.Group("/medicines")
	{
		medicines.GET("", h.Medicine.List)
		medicines.POST("", h.Medicine.Create)
		medicines.POST("/import", adminOnly, h.Medicine.Import)
		medicines.GET("/low-stock", h.Medicine.LowStock)
		medicines.GET("/:id", h.Medicine.Get)
		medicines.PUT("/:id", h.Medicine.Update)
		medicines.DELETE("/:id", adminOnly, h.Medicine.Delete)
		medicines.POST("/:id/restock", h.Medicine.Restock)
		medicines.GET("/:id/movements", h.Medicine.Movements)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, adminOnly gin.HandlerFunc) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", middleware.Idempotency(deps.IdempotencyRepo), h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", adminOnly, h.Invoice.Delete)
		invoices.PUT("/:id/update-status", h.Invoice.UpdateStatus)
		invoices.POST("/:id/cancel-and-restock", h.Invoice.CancelAndRestock)
		invoices.GET("/:id/receipt", h.Invoice.Receipt)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
		printer.POST("/receipt", h.Printer.PrintReceipt)
	}
}

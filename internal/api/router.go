package api

import (
	v1 "github.com/flexprice/feeledger/internal/api/v1"
	"github.com/flexprice/feeledger/internal/auth"
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/rest/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/flexprice/feeledger/docs"
)

type Handlers struct {
	Invoice *v1.InvoiceHandler
	Health  *v1.HealthHandler
}

// NewRouter creates and configures the API router
func NewRouter(handlers Handlers, cfg *config.Configuration, authProvider auth.Provider, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.RecoveryWithWriter(log.GetGinWriter()),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(log),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Router := router.Group("/v1")
	v1Router.Use(middleware.AuthenticateMiddleware(authProvider, log))
	v1Router.Use(middleware.SentryScopeMiddleware)

	invoices := v1Router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.GenerateInvoice)
		invoices.POST("/generate", handlers.Invoice.GenerateInvoicesBulk)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/export", handlers.Invoice.ExportInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.UpdateInvoice)
		invoices.POST("/:id/adjust", handlers.Invoice.AdjustInvoice)
		invoices.POST("/:id/reverse", handlers.Invoice.ReverseInvoice)
		invoices.GET("/:id/audit", handlers.Invoice.GetInvoiceAuditHistory)
	}

	return router
}

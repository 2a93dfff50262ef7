// Package server wires handlers and middleware into the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "finara/internal/docs" // swagger spec
	"finara/internal/handlers"
	"finara/internal/middleware"
	"finara/internal/services"
)

// Deps holds everything the router needs.
type Deps struct {
	Log            *zap.SugaredLogger
	Tokens         *middleware.TokenManager
	PipelineAPIKey string

	UserService        services.UserServicer
	TransactionService services.TransactionServicer
	AnalyticsService   services.AnalyticsServicer
	ReportService      services.ReportServicer
	AuditService       services.AuditServicer
	Jobs               handlers.JobRunner
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.UserService, d.AuditService, d.Tokens)
	transactionHandler := handlers.NewTransactionHandler(d.TransactionService, d.AuditService)
	analyticsHandler := handlers.NewAnalyticsHandler(d.AnalyticsService)
	reportHandler := handlers.NewReportHandler(d.ReportService, d.TransactionService, d.AuditService)
	jobHandler := handlers.NewJobHandler(d.Jobs)

	router := gin.New()
	router.Use(middleware.Recovery(d.Log))
	router.Use(middleware.RequestLogging(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))

	// CORS
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Tokens))

	protected.GET("/profile", authHandler.GetProfile)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	analytics := protected.Group("/analytics")
	analytics.GET("", analyticsHandler.GetSummary)
	analytics.GET("/chart", analyticsHandler.GetChart)
	analytics.GET("/categories", analyticsHandler.GetCategories)

	reports := protected.Group("/reports")
	reports.GET("", reportHandler.GetReports)
	reports.GET("/transactions", reportHandler.GetReportTransactions)
	reports.GET("/settings", reportHandler.GetSetting)
	reports.PUT("/settings", reportHandler.UpdateSetting)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(d.PipelineAPIKey))
	pipeline.GET("/jobs", jobHandler.ListJobs)
	pipeline.POST("/jobs/:name/run", jobHandler.RunJob)

	return router
}

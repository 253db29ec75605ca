package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Links        *LinkHandler
	Accounts     *AccountHandler
	Transactions *TransactionHandler
	Analytics    *AnalyticsHandler
	Portfolio    *PortfolioHandler
}

// NewRouter builds the Gin engine with all routes and middleware mounted.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	// Aggregator callbacks carry no user token.
	v1.POST("/webhooks/aggregator", h.Links.Webhook)

	protected := v1.Group("")
	protected.Use(middleware.Auth())
	{
		protected.GET("/me", h.Auth.Me)

		links := protected.Group("/links")
		{
			links.POST("", h.Links.Create)
			links.GET("", h.Links.List)
			links.POST("/sync", h.Links.SyncAll)
			links.GET("/:id", h.Links.Get)
			links.DELETE("/:id", h.Links.Delete)
			links.POST("/:id/sync", h.Links.Sync)
		}

		accounts := protected.Group("/accounts")
		{
			accounts.GET("", h.Accounts.List)
			accounts.GET("/:id", h.Accounts.Get)
			accounts.PATCH("/:id", h.Accounts.UpdateClassification)
			accounts.GET("/:id/transactions", h.Transactions.ListByAccount)
		}

		protected.GET("/transactions", h.Transactions.List)

		analytics := protected.Group("/analytics")
		{
			analytics.GET("/net-worth", h.Analytics.NetWorth)
			analytics.GET("/net-worth/history", h.Analytics.NetWorthHistory)
			analytics.POST("/net-worth/snapshot", h.Analytics.SaveSnapshot)
			analytics.GET("/wealth-metrics", h.Analytics.WealthMetrics)
			analytics.GET("/cash-flow", h.Analytics.CashFlow)
			analytics.GET("/cash-flow/insights", h.Analytics.SpendingInsights)
			analytics.GET("/cash-flow/forecast", h.Analytics.CashFlowForecast)
		}

		portfolio := protected.Group("/portfolio")
		{
			portfolio.GET("/summary", h.Portfolio.Summary)
			portfolio.GET("/risk", h.Portfolio.Risk)
			portfolio.GET("/dividends", h.Portfolio.Dividends)
			portfolio.GET("/transactions", h.Portfolio.Transactions)
		}
	}

	return router
}

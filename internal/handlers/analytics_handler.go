package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/middleware"
	"moneta/internal/services"
)

// AnalyticsHandler serves net worth and cash flow reports.
type AnalyticsHandler struct {
	netWorth services.NetWorthServicer
	cashFlow services.CashFlowServicer
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(netWorth services.NetWorthServicer, cashFlow services.CashFlowServicer) *AnalyticsHandler {
	return &AnalyticsHandler{netWorth: netWorth, cashFlow: cashFlow}
}

// NetWorth returns the current net worth breakdown.
func (h *AnalyticsHandler) NetWorth(c *gin.Context) {
	breakdown, err := h.netWorth.CalculateCurrentNetWorth(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// NetWorthHistory returns the snapshot series for the requested window.
func (h *AnalyticsHandler) NetWorthHistory(c *gin.Context) {
	days := queryInt(c, "days", 365)
	points, err := h.netWorth.GetHistory(middleware.UserID(c), days)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": points, "days": days})
}

// WealthMetrics returns derived financial health ratios.
func (h *AnalyticsHandler) WealthMetrics(c *gin.Context) {
	metrics, err := h.netWorth.CalculateWealthMetrics(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// SaveSnapshot persists today's net worth snapshot on demand.
func (h *AnalyticsHandler) SaveSnapshot(c *gin.Context) {
	snapshot, err := h.netWorth.SaveDailySnapshot(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// CashFlow returns the cash flow analysis for an optional date range.
func (h *AnalyticsHandler) CashFlow(c *gin.Context) {
	start, ok := queryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date")
	if !ok {
		return
	}

	analysis, err := h.cashFlow.AnalyzeCashFlow(middleware.UserID(c), start, end)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// SpendingInsights returns month-over-month spending comparisons.
func (h *AnalyticsHandler) SpendingInsights(c *gin.Context) {
	insights, err := h.cashFlow.GetSpendingInsights(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

// CashFlowForecast projects recurring activity forward.
func (h *AnalyticsHandler) CashFlowForecast(c *gin.Context) {
	days := queryInt(c, "days", 30)
	forecast, err := h.cashFlow.ForecastCashFlow(middleware.UserID(c), days)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

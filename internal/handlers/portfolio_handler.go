package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/middleware"
	"moneta/internal/services"
)

// PortfolioHandler serves investment portfolio reports.
type PortfolioHandler struct {
	portfolio services.PortfolioServicer
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(portfolio services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// Summary returns portfolio valuation and allocation.
func (h *PortfolioHandler) Summary(c *gin.Context) {
	summary, err := h.portfolio.GetPortfolioSummary(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Risk returns diversification and concentration analysis.
func (h *PortfolioHandler) Risk(c *gin.Context) {
	risk, err := h.portfolio.AnalyzePortfolioRisk(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

// Dividends returns dividend income over the requested window.
func (h *PortfolioHandler) Dividends(c *gin.Context) {
	days := queryInt(c, "days", 365)
	income, err := h.portfolio.GetDividendIncome(middleware.UserID(c), days)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, income)
}

// Transactions returns recent investment activity.
func (h *PortfolioHandler) Transactions(c *gin.Context) {
	days := queryInt(c, "days", 90)
	activity, err := h.portfolio.GetInvestmentTransactions(middleware.UserID(c), days)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": activity, "days": days})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/errors"
	"moneta/internal/middleware"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// TransactionHandler serves synced transaction listings.
type TransactionHandler struct {
	transactions services.TransactionServicer
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactions services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type transactionQuery struct {
	CashFlowType string `form:"cash_flow_type" binding:"omitempty,cash_flow_type"`
	Category     string `form:"category"`
	Pending      *bool  `form:"pending"`
}

func (h *TransactionHandler) parseFilter(c *gin.Context) (services.TransactionFilter, bool) {
	var filter services.TransactionFilter

	var query transactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		renderError(c, errors.WithMessage(errors.ErrInvalidInput, "invalid transaction filter"))
		return filter, false
	}

	from, ok := queryDate(c, "from")
	if !ok {
		return filter, false
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return filter, false
	}
	filter.FromDate = from
	filter.ToDate = to

	if query.CashFlowType != "" {
		flowType := models.CashFlowType(query.CashFlowType)
		filter.CashFlowType = &flowType
	}
	if query.Category != "" {
		filter.Category = &query.Category
	}
	filter.Pending = query.Pending
	return filter, true
}

// List returns the user's transactions with filters and pagination.
func (h *TransactionHandler) List(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		renderError(c, errors.WithMessage(errors.ErrInvalidInput, err.Error()))
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	response, err := h.transactions.GetUserTransactions(middleware.UserID(c), page, filter)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListByAccount returns one account's transactions.
func (h *TransactionHandler) ListByAccount(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		renderError(c, errors.WithMessage(errors.ErrInvalidInput, err.Error()))
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	response, err := h.transactions.GetAccountTransactions(middleware.UserID(c), c.Param("id"), page, filter)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

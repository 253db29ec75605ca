package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/middleware"
	"moneta/internal/services"
)

// AccountHandler serves account listings and classification edits.
type AccountHandler struct {
	accounts services.AccountServicer
	audit    services.AuditServicer
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts services.AccountServicer, audit services.AuditServicer) *AccountHandler {
	return &AccountHandler{accounts: accounts, audit: audit}
}

// List returns the user's accounts.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.GetUserAccounts(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// Get returns one account.
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accounts.GetAccount(middleware.UserID(c), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// UpdateClassification edits the net worth classification fields.
func (h *AccountHandler) UpdateClassification(c *gin.Context) {
	var update services.AccountUpdate
	if !bindJSON(c, &update) {
		return
	}
	userID := middleware.UserID(c)

	account, err := h.accounts.UpdateClassification(userID, c.Param("id"), update)
	if err != nil {
		renderError(c, err)
		return
	}
	h.audit.Log(userID, "account.classify", "account", account.ID, c.ClientIP(), map[string]interface{}{
		"is_asset":             account.IsAsset,
		"is_liquid":            account.IsLiquid,
		"include_in_net_worth": account.IncludeInNetWorth,
		"custom_category":      account.CustomCategory,
	})
	c.JSON(http.StatusOK, account)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashFlowType classifies a transaction's effect on cash flow, derived from
// the upstream sign convention and category at sync time.
type CashFlowType string

const (
	CashFlowIncome   CashFlowType = "income"
	CashFlowExpense  CashFlowType = "expense"
	CashFlowTransfer CashFlowType = "transfer"
)

// Transfer categories from the aggregator's taxonomy. Transactions in these
// categories move money between the user's own accounts and are excluded
// from income/expense totals.
const (
	CategoryTransferIn  = "TRANSFER_IN"
	CategoryTransferOut = "TRANSFER_OUT"
)

// CategoryUncategorized is the fallback label when the aggregator supplies
// no category for a transaction.
const CategoryUncategorized = "UNCATEGORIZED"

// ClassifyCashFlow derives the cash flow type from a signed amount and the
// primary category. The upstream convention is pinned here and by tests:
// negative amounts are inflows (income), positive amounts are outflows.
func ClassifyCashFlow(amount decimal.Decimal, categoryPrimary string) CashFlowType {
	if amount.IsNegative() {
		return CashFlowIncome
	}
	if categoryPrimary == CategoryTransferIn || categoryPrimary == CategoryTransferOut {
		return CashFlowTransfer
	}
	return CashFlowExpense
}

// Transaction represents a single financial transaction fetched from the
// aggregator, keyed by its external transaction id.
type Transaction struct {
	Base
	AccountID  string `gorm:"type:uuid;not null;index" json:"account_id"`
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	ExternalID string `gorm:"not null;uniqueIndex" json:"external_id"`

	// Amount keeps the upstream sign convention: negative = inflow.
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency       string          `gorm:"not null;default:'USD'" json:"currency"`
	Date           time.Time       `gorm:"not null;index" json:"date"`
	AuthorizedDate *time.Time      `json:"authorized_date,omitempty"`

	Name         string `json:"name"`
	MerchantName string `json:"merchant_name,omitempty"`

	// Categorization
	CategoryPrimary  string `gorm:"index" json:"category"`
	CategoryDetailed string `json:"category_detailed,omitempty"`
	CustomCategory   string `json:"custom_category,omitempty"` // user-editable, never resynced

	CashFlowType      CashFlowType `json:"cash_flow_type"`
	Pending           bool         `gorm:"default:false" json:"pending"`
	RecurringStreamID *string      `gorm:"type:uuid" json:"recurring_stream_id,omitempty"`

	// Location (optional)
	LocationCity    string `json:"location_city,omitempty"`
	LocationRegion  string `json:"location_region,omitempty"`
	LocationCountry string `json:"location_country,omitempty"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment transaction subtypes that count toward dividend income.
const (
	InvestmentSubtypeDividend          = "dividend"
	InvestmentSubtypeQualifiedDividend = "qualified dividend"
	InvestmentSubtypeInterest          = "interest"
)

// InvestmentTransaction represents a buy/sell/dividend/fee event on an
// investment account, keyed by the aggregator's external id. The security
// reference is optional; cash movements carry none.
type InvestmentTransaction struct {
	Base
	AccountID  string  `gorm:"type:uuid;not null;index" json:"account_id"`
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	SecurityID *string `gorm:"type:uuid" json:"security_id,omitempty"`
	ExternalID string  `gorm:"not null;uniqueIndex" json:"external_id"`

	Date    time.Time `gorm:"not null;index" json:"date"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`    // buy, sell, cash, fee, transfer, cancel
	Subtype string    `json:"subtype"` // dividend, interest, etc.

	Amount   decimal.Decimal     `gorm:"type:decimal(15,2)" json:"amount"`
	Price    decimal.NullDecimal `gorm:"type:decimal(15,4)" json:"price"`
	Quantity decimal.Decimal     `gorm:"type:decimal(20,10)" json:"quantity"`
	Fees     decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"fees"`
	Currency string              `gorm:"not null;default:'USD'" json:"currency"`

	// Relationships
	Security *Security `gorm:"foreignKey:SecurityID" json:"security,omitempty"`
}

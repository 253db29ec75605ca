package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SecurityType values in the aggregator's taxonomy. Kept as plain strings in
// storage; the ingestion boundary validates against this set.
const (
	SecurityTypeEquity      = "equity"
	SecurityTypeETF         = "etf"
	SecurityTypeMutualFund  = "mutual fund"
	SecurityTypeFixedIncome = "fixed income"
	SecurityTypeCash        = "cash"
	SecurityTypeDerivative  = "derivative"
	SecurityTypeOther       = "other"
)

// KnownSecurityType reports whether t is one of the closed set of security types.
func KnownSecurityType(t string) bool {
	switch t {
	case SecurityTypeEquity, SecurityTypeETF, SecurityTypeMutualFund,
		SecurityTypeFixedIncome, SecurityTypeCash, SecurityTypeDerivative, SecurityTypeOther:
		return true
	}
	return false
}

// Security is master data for a tradable instrument, shared across users and
// keyed by the aggregator's external security id.
type Security struct {
	Base
	ExternalID string `gorm:"not null;uniqueIndex" json:"external_id"`

	// Identifiers
	TickerSymbol string `json:"ticker_symbol,omitempty"`
	CUSIP        string `json:"cusip,omitempty"`
	ISIN         string `json:"isin,omitempty"`

	Name string `json:"name"`
	Type string `json:"type"`

	// Pricing
	ClosePrice     decimal.NullDecimal `gorm:"type:decimal(15,4)" json:"close_price"`
	ClosePriceAsOf *time.Time          `json:"close_price_as_of,omitempty"`
	Currency       string              `gorm:"not null;default:'USD'" json:"currency"`

	// Classification
	IsCashEquivalent bool   `gorm:"default:false" json:"is_cash_equivalent"`
	Sector           string `json:"sector,omitempty"`
	Industry         string `json:"industry,omitempty"`
}

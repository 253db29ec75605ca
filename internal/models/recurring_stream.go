package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency represents the cadence of a recurring transaction stream.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyAnnually Frequency = "annually"
	FrequencyUnknown  Frequency = "unknown"
)

// KnownFrequency reports whether f is one of the closed set of frequencies.
func KnownFrequency(f string) bool {
	switch Frequency(f) {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyAnnually, FrequencyUnknown:
		return true
	}
	return false
}

// RecurringStream represents a detected repeating pattern of transactions,
// used by the cash flow forecaster to project upcoming income and expenses.
type RecurringStream struct {
	Base
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID  string `gorm:"type:uuid;not null;index" json:"account_id"`
	ExternalID string `gorm:"not null;uniqueIndex" json:"external_id"`

	Description  string `json:"description"`
	MerchantName string `json:"merchant_name,omitempty"`

	// Pattern
	Frequency     Frequency           `json:"frequency"`
	AverageAmount decimal.Decimal     `gorm:"type:decimal(15,2)" json:"average_amount"`
	LastAmount    decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"last_amount"`

	// Classification
	IsIncome bool   `gorm:"default:false" json:"is_income"`
	Category string `json:"category,omitempty"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Dates
	FirstDate        *time.Time `json:"first_date,omitempty"`
	LastDate         *time.Time `json:"last_date,omitempty"`
	NextExpectedDate *time.Time `json:"next_expected_date,omitempty"`
}

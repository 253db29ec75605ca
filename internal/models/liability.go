package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LiabilityType represents the kind of debt behind an account.
type LiabilityType string

const (
	LiabilityTypeCredit   LiabilityType = "credit"
	LiabilityTypeStudent  LiabilityType = "student"
	LiabilityTypeMortgage LiabilityType = "mortgage"
)

// KnownLiabilityType reports whether t is one of the closed set of liability types.
func KnownLiabilityType(t string) bool {
	switch LiabilityType(t) {
	case LiabilityTypeCredit, LiabilityTypeStudent, LiabilityTypeMortgage:
		return true
	}
	return false
}

// Liability holds type-specific debt details for an account. At most one row
// exists per account; resyncs update in place.
type Liability struct {
	Base
	AccountID string        `gorm:"type:uuid;not null;uniqueIndex" json:"account_id"`
	UserID    string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      LiabilityType `gorm:"not null" json:"type"`

	// Credit card specific
	IsOverdue            *bool               `json:"is_overdue,omitempty"`
	LastPaymentAmount    decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"last_payment_amount"`
	LastPaymentDate      *time.Time          `json:"last_payment_date,omitempty"`
	LastStatementBalance decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"last_statement_balance"`
	MinimumPaymentAmount decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"minimum_payment_amount"`
	NextPaymentDueDate   *time.Time          `json:"next_payment_due_date,omitempty"`

	// Loan specific
	InterestRatePercentage     decimal.NullDecimal `gorm:"type:decimal(8,4)" json:"interest_rate_percentage"`
	InterestRateType           string              `json:"interest_rate_type,omitempty"` // fixed, variable
	OriginationDate            *time.Time          `json:"origination_date,omitempty"`
	OriginationPrincipalAmount decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"origination_principal_amount"`

	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

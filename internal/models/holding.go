package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents the position of one security in one account. There is
// at most one row per (account, security) pair; resyncs update in place.
type Holding struct {
	Base
	AccountID  string `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_account_security" json:"account_id"`
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	SecurityID string `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_account_security" json:"security_id"`

	// Position
	Quantity         decimal.Decimal     `gorm:"type:decimal(20,10)" json:"quantity"`
	CostBasis        decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"cost_basis"`
	InstitutionPrice decimal.Decimal     `gorm:"type:decimal(15,4)" json:"institution_price"`
	InstitutionValue decimal.Decimal     `gorm:"type:decimal(15,2)" json:"institution_value"`
	Currency         string              `gorm:"not null;default:'USD'" json:"currency"`

	// Computed at sync time when a positive cost basis is known
	UnrealizedGainLoss        decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"unrealized_gain_loss"`
	UnrealizedGainLossPercent decimal.NullDecimal `gorm:"type:decimal(10,4)" json:"unrealized_gain_loss_percent"`

	LastUpdated *time.Time `json:"last_updated,omitempty"`

	// Relationships
	Security Security `gorm:"foreignKey:SecurityID" json:"security,omitempty"`
}

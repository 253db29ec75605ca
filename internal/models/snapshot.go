package models

import (
	"time"

	"moneta/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceSnapshot is a daily copy of an account's balances. The composite
// unique index enforces at most one row per (account, calendar date); later
// syncs on the same day update in place. Time-series data — no Base embed,
// no soft deletes.
type BalanceSnapshot struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_balance_snapshots_account_date" json:"account_id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	SnapshotDate time.Time `gorm:"not null;uniqueIndex:uq_balance_snapshots_account_date" json:"snapshot_date"`

	BalanceAvailable decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"balance_available"`
	BalanceCurrent   decimal.Decimal     `gorm:"type:decimal(15,2)" json:"balance_current"`
	BalanceLimit     decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"balance_limit"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *BalanceSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}

// NetWorthSnapshot is a daily copy of a user's computed net worth breakdown,
// at most one row per (user, calendar date).
type NetWorthSnapshot struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:uq_net_worth_snapshots_user_date" json:"user_id"`
	SnapshotDate time.Time `gorm:"not null;uniqueIndex:uq_net_worth_snapshots_user_date" json:"snapshot_date"`

	// Asset breakdown
	TotalAssets      decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_assets"`
	LiquidAssets     decimal.Decimal `gorm:"type:decimal(15,2)" json:"liquid_assets"`
	InvestmentAssets decimal.Decimal `gorm:"type:decimal(15,2)" json:"investment_assets"`

	// Liability breakdown
	TotalLiabilities decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_liabilities"`
	CreditCardDebt   decimal.Decimal `gorm:"type:decimal(15,2)" json:"credit_card_debt"`
	LoanDebt         decimal.Decimal `gorm:"type:decimal(15,2)" json:"loan_debt"`

	NetWorth decimal.Decimal `gorm:"type:decimal(15,2)" json:"net_worth"`

	// Change vs the previous day's snapshot; null when none exists
	DailyChange        decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"daily_change"`
	DailyChangePercent decimal.NullDecimal `gorm:"type:decimal(10,4)" json:"daily_change_percent"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *NetWorthSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}

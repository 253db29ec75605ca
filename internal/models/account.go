package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType represents the coarse account classification reported by the
// aggregator. Values outside this set are stored as AccountTypeOther.
type AccountType string

const (
	AccountTypeDepository AccountType = "depository"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// KnownAccountType reports whether t is one of the closed set of account types.
func KnownAccountType(t string) bool {
	switch AccountType(t) {
	case AccountTypeDepository, AccountTypeInvestment, AccountTypeCredit, AccountTypeLoan, AccountTypeOther:
		return true
	}
	return false
}

// IsAssetType returns the default asset classification for an account type.
// Credit and loan balances represent debt; everything else is an asset.
func IsAssetType(t AccountType) bool {
	return t != AccountTypeCredit && t != AccountTypeLoan
}

// Account represents a financial account owned by an institution link.
// It is created and refreshed only by the reconciliation pipeline, keyed by
// the aggregator's external account id.
type Account struct {
	Base
	InstitutionLinkID string `gorm:"type:uuid;not null;index" json:"institution_link_id"`
	UserID            string `gorm:"type:uuid;not null;index" json:"user_id"`
	ExternalID        string `gorm:"not null;uniqueIndex" json:"external_id"`

	// Details
	Name         string      `json:"name"`
	OfficialName string      `json:"official_name,omitempty"`
	Mask         string      `json:"mask,omitempty"` // last 4 digits
	Type         AccountType `json:"type"`
	Subtype      string      `json:"subtype,omitempty"`

	// Balances, refreshed on every sync
	BalanceAvailable decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"balance_available"`
	BalanceCurrent   decimal.Decimal     `gorm:"type:decimal(15,2)" json:"balance_current"`
	BalanceLimit     decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"balance_limit"`
	Currency         string              `gorm:"not null;default:'USD'" json:"currency"`

	// Net worth classification. Derived from Type at creation, user-editable
	// afterwards; resync must never overwrite these four fields.
	IsAsset           bool   `json:"is_asset"`
	IsLiquid          bool   `json:"is_liquid"`
	IncludeInNetWorth bool   `gorm:"default:true" json:"include_in_net_worth"`
	CustomCategory    string `json:"custom_category,omitempty"`

	IsActive          bool       `gorm:"default:true" json:"is_active"`
	LastBalanceUpdate *time.Time `json:"last_balance_update,omitempty"`

	// Relationships
	Transactions     []Transaction     `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	Holdings         []Holding         `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"holdings,omitempty"`
	BalanceSnapshots []BalanceSnapshot `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

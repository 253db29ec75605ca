package models

import "time"

// LinkStatus represents the health of an aggregator connection.
type LinkStatus string

const (
	LinkStatusActive            LinkStatus = "active"
	LinkStatusError             LinkStatus = "error"
	LinkStatusPendingExpiration LinkStatus = "pending_expiration"
)

// InstitutionLink represents one connection to a financial institution
// through the upstream aggregator. It owns the accounts created from it;
// removing a link cascades to those accounts and all their children.
type InstitutionLink struct {
	Base
	UserID          string     `gorm:"type:uuid;not null;index" json:"user_id"`
	ExternalItemID  string     `gorm:"not null;uniqueIndex" json:"external_item_id"`
	AccessToken     string     `gorm:"not null" json:"-"`
	InstitutionID   string     `json:"institution_id"`
	InstitutionName string     `json:"institution_name"`
	Status          LinkStatus `gorm:"not null;default:'active'" json:"status"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
	ErrorCode       string     `json:"error_code,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`

	// Relationships
	Accounts []Account `gorm:"foreignKey:InstitutionLinkID;constraint:OnDelete:CASCADE" json:"accounts,omitempty"`
}

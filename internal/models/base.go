// Package models defines the persisted entities of the financial ledger.
// All monetary columns use shopspring decimals; money is never stored or
// computed as floating point.
package models

import (
	"time"

	"moneta/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Report money fields serialize as bare decimal numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Base contains common columns for all mutable tables.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// DateOnly truncates a timestamp to midnight UTC. Snapshot and transaction
// dates are stored this way so the one-per-calendar-day invariants hold.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD for report payloads.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

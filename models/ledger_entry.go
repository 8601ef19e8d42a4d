package models

import (
	"time"
)

// LedgerEntry is one row of the persistent key-value store.
// Table name: ledger_entries
type LedgerEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(191)" json:"key"`
	Value     []byte    `gorm:"type:bytea;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

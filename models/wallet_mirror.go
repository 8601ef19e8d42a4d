// models/wallet_mirror.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletMirror mirrors wallet accounts from the wallet sync service.
// It is the local account directory: transfers to or from an inactive
// wallet are rejected before reaching the wallet service.
// Table name: wallet_mirrors
type WalletMirror struct {
	ID                 string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID             string    `gorm:"type:uuid;index" json:"user_id"`
	Chain              string    `gorm:"type:varchar(64);not null;index" json:"chain"`
	Asset              string    `gorm:"type:varchar(64);not null" json:"asset"`
	Address            Address   `gorm:"type:varchar(128);not null;uniqueIndex" json:"address"` // Primary lookup key
	IsTreasury         bool      `gorm:"not null" json:"is_treasury"`                            // contract escrow account
	IsActive           bool      `gorm:"not null" json:"is_active"`
	LastBalanceCheckAt time.Time `gorm:"not null" json:"last_balance_check_at"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

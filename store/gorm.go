package store

import (
	"context"
	"encoding/json"
	"fmt"

	"contest-ledger/host"
	"contest-ledger/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultLockID is the advisory lock key that serializes invocations.
const DefaultLockID int64 = 0x6c6564676572 // "ledger"

// GormStore persists ledger state in the ledger_entries table. Each
// invocation runs in one database transaction holding a transaction-scoped
// advisory lock, so invocations apply one at a time like on a ledger host.
type GormStore struct {
	DB     *gorm.DB
	LockID int64
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, LockID: DefaultLockID}
}

// AutoMigrate creates the ledger_entries table.
func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(&models.LedgerEntry{})
}

func (s *GormStore) Invoke(ctx context.Context, fn func(ctx context.Context, tx host.Tx) error) error {
	return s.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Exec("SELECT pg_advisory_xact_lock(?)", s.LockID).Error; err != nil {
			return fmt.Errorf("acquire ledger lock: %w", err)
		}
		tx := &gormTx{db: db}
		return fn(host.WithTx(ctx, tx), tx)
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Get(key models.DataKey, out any) (bool, error) {
	var rows []models.LedgerEntry
	if err := t.db.Where("key = ?", key.String()).Limit(1).Find(&rows).Error; err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rows[0].Value, out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t *gormTx) Set(key models.DataKey, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	entry := models.LedgerEntry{Key: key.String(), Value: raw}
	err = t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (t *gormTx) Has(key models.DataKey) (bool, error) {
	var n int64
	if err := t.db.Model(&models.LedgerEntry{}).Where("key = ?", key.String()).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	return n > 0, nil
}

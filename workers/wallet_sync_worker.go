package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"contest-ledger/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletSyncClient pulls wallet changes from the sync service into wallet_mirrors.
type WalletSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	log        *logrus.Entry
}

func NewWalletSyncClient(db *gorm.DB, baseURL, token string, logger *logrus.Logger) *WalletSyncClient {
	return &WalletSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.WithField("worker", "wallet_sync"),
	}
}

func (c *WalletSyncClient) GetChangedWallets(ctx context.Context, since time.Time) ([]models.WalletMirror, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/wallets", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Wallets []models.WalletMirror `json:"wallets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sync service response: %w", err)
	}
	return response.Wallets, nil
}

// SyncOnce fetches wallets changed since the given time and upserts them.
func (c *WalletSyncClient) SyncOnce(ctx context.Context, since time.Time) (int, error) {
	wallets, err := c.GetChangedWallets(ctx, since)
	if err != nil {
		return 0, err
	}
	if len(wallets) == 0 {
		return 0, nil
	}

	err = c.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id",
				"chain",
				"asset",
				"is_treasury",
				"is_active",
				"last_balance_check_at",
				"updated_at",
			}),
		},
	).Create(&wallets).Error
	if err != nil {
		return 0, fmt.Errorf("upsert %d wallet(s): %w", len(wallets), err)
	}
	return len(wallets), nil
}

// PollWallets keeps wallet_mirrors current until ctx is cancelled.
func PollWallets(ctx context.Context, client *WalletSyncClient, pollInterval time.Duration) {
	client.log.Info("🔁 Starting wallet polling")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			client.log.Info("Wallet polling stopped.")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()
			n, err := client.SyncOnce(ctx, lastSyncTime)
			if err != nil {
				// lastSyncTime stays put so the same window is retried next tick.
				client.log.WithError(err).Warn("❌ [WalletSync] poll failed")
				continue
			}
			lastSyncTime = tickTime
			if n > 0 {
				client.log.WithField("count", n).Info("✅ [WalletSync] upserted wallet changes")
			}
		}
	}
}

// GetWalletByAddress queries the mirror for a wallet.
func GetWalletByAddress(ctx context.Context, db *gorm.DB, address models.Address) (models.WalletMirror, bool, error) {
	var wallet models.WalletMirror
	if err := db.WithContext(ctx).Where("address = ?", address).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wallet, false, nil
		}
		return wallet, false, err
	}
	return wallet, true, nil
}

// GetTreasuryWallet returns the active treasury wallet that holds contract escrow.
func GetTreasuryWallet(ctx context.Context, db *gorm.DB) (models.WalletMirror, error) {
	var wallet models.WalletMirror
	err := db.WithContext(ctx).
		Where("is_treasury = ? AND is_active = ?", true, true).
		Order("created_at ASC").
		First(&wallet).Error
	if err != nil {
		return wallet, fmt.Errorf("find treasury wallet: %w", err)
	}
	return wallet, nil
}

// WalletDirectory serves account lookups from the wallet mirror.
type WalletDirectory struct {
	DB *gorm.DB
}

func (d WalletDirectory) Lookup(ctx context.Context, addr models.Address) (models.WalletMirror, bool, error) {
	return GetWalletByAddress(ctx, d.DB, addr)
}

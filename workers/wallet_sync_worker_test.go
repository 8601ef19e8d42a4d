package workers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"contest-ledger/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestGetChangedWallets(t *testing.T) {
	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/public/wallets", r.URL.Path)
		assert.Equal(t, "svc-token", r.Header.Get("X-Service-Token"))
		assert.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"wallets": []models.WalletMirror{
				{ID: "w1", Address: "GTREASURY", Chain: "stellar", Asset: "XLM", IsTreasury: true, IsActive: true},
			},
		})
	}))
	defer srv.Close()

	client := NewWalletSyncClient(nil, srv.URL, "svc-token", quietLogger())
	wallets, err := client.GetChangedWallets(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, models.Address("GTREASURY"), wallets[0].Address)
	assert.True(t, wallets[0].IsTreasury)
}

func TestGetChangedWalletsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewWalletSyncClient(nil, srv.URL, "svc-token", quietLogger())
	_, err := client.GetChangedWallets(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSyncOnceWithNoChanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"wallets":[]}`))
	}))
	defer srv.Close()

	// No wallets means the database is never touched.
	client := NewWalletSyncClient(nil, srv.URL, "svc-token", quietLogger())
	n, err := client.SyncOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetTreasuryWallet(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "wallet_mirrors" WHERE (is_treasury = $1 AND is_active = $2)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "address", "is_treasury", "is_active"}).
			AddRow("w1", "GTREASURY", true, true))

	wallet, err := GetTreasuryWallet(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, models.Address("GTREASURY"), wallet.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "postgres ok",
			cfg:  Config{LedgerMode: "postgres", GatewayToken: "t", DatabaseURL: "postgres://x", TransferServiceURL: "http://wallet"},
		},
		{
			name: "sandbox ok",
			cfg:  Config{LedgerMode: "SANDBOX", GatewayToken: "t", ContractAccount: "CONTRACT"},
		},
		{
			name:    "postgres missing urls",
			cfg:     Config{LedgerMode: "postgres", GatewayToken: "t"},
			wantErr: []string{"DATABASE_URL", "TRANSFER_SERVICE_URL"},
		},
		{
			name:    "sandbox without contract or token",
			cfg:     Config{LedgerMode: "sandbox"},
			wantErr: []string{"GATEWAY_SERVICE_TOKEN", "CONTRACT_ACCOUNT"},
		},
		{
			name:    "unknown mode",
			cfg:     Config{LedgerMode: "mainnet", GatewayToken: "t"},
			wantErr: []string{"unknown LEDGER_MODE"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if len(tc.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tc.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoadSandbox(t *testing.T) {
	t.Setenv("LEDGER_MODE", "sandbox")
	t.Setenv("GATEWAY_SERVICE_TOKEN", "gw")
	t.Setenv("CONTRACT_ACCOUNT", "CONTRACT")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("R2_BUCKET_NAME", "receipts")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Sandbox())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, int32(7), cfg.AssetDecimals)
	assert.True(t, cfg.R2.Enabled())
	assert.Equal(t, "receipts", cfg.R2.Bucket)
}

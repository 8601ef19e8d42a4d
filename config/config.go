// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	LedgerModePostgres = "postgres"
	LedgerModeSandbox  = "sandbox"
)

type Config struct {
	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:":5200"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	// LedgerMode selects the host: "postgres" for the database store with the
	// wallet service, "sandbox" for in-memory storage and a sandbox token.
	LedgerMode  string `env:"LEDGER_MODE" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	GatewayToken string `env:"GATEWAY_SERVICE_TOKEN"`

	// ContractAccount holds escrowed prize pools. When empty the treasury
	// wallet from the wallet mirror is used.
	ContractAccount string `env:"CONTRACT_ACCOUNT"`
	AssetDecimals   int32  `env:"ASSET_DECIMALS" envDefault:"7"`

	TransferServiceURL string        `env:"TRANSFER_SERVICE_URL"`
	AuthServiceURL     string        `env:"AUTH_SERVICE_URL"`
	SyncServiceURL     string        `env:"SYNC_SERVICE_URL"`
	WalletPollInterval time.Duration `env:"WALLET_POLL_INTERVAL" envDefault:"10s"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	R2 R2Config `envPrefix:"R2_"`
}

// R2Config configures receipt archiving. Archiving is off when Bucket is empty.
type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	Bucket          string `env:"BUCKET_NAME"`
}

func (r R2Config) Enabled() bool {
	return r.Bucket != ""
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	// A missing .env is fine: variables may come from the process environment.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings required by the selected mode are present.
func (c Config) Validate() error {
	var errs []error
	if c.GatewayToken == "" {
		errs = append(errs, errors.New("GATEWAY_SERVICE_TOKEN is required"))
	}
	switch strings.ToLower(c.LedgerMode) {
	case LedgerModeSandbox:
		if c.ContractAccount == "" {
			errs = append(errs, errors.New("CONTRACT_ACCOUNT is required in sandbox mode"))
		}
	case LedgerModePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
		if c.TransferServiceURL == "" {
			errs = append(errs, errors.New("TRANSFER_SERVICE_URL is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LEDGER_MODE %q", c.LedgerMode))
	}
	if c.AssetDecimals < 0 {
		errs = append(errs, errors.New("ASSET_DECIMALS must not be negative"))
	}
	return errors.Join(errs...)
}

// Sandbox reports whether the in-memory host is selected.
func (c Config) Sandbox() bool {
	return strings.ToLower(c.LedgerMode) == LedgerModeSandbox
}

// services/transfer_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccountDirectory resolves ledger addresses to known wallets.
type AccountDirectory interface {
	Lookup(ctx context.Context, addr models.Address) (models.WalletMirror, bool, error)
}

// TransferClient moves assets through the wallet service. Transfers are
// settled by the wallet service, not by the ledger store.
type TransferClient struct {
	BaseURL   string
	Token     string
	Client    *http.Client
	Directory AccountDirectory
	log       *logrus.Entry
}

func NewTransferClient(baseURL, token string, client *http.Client, directory AccountDirectory, logger *logrus.Logger) *TransferClient {
	return &TransferClient{
		BaseURL:   baseURL,
		Token:     token,
		Client:    client,
		Directory: directory,
		log:       logger.WithField("service", "transfers"),
	}
}

type transferRequest struct {
	IdempotencyKey string         `json:"idempotency_key"`
	Asset          string         `json:"asset"`
	From           models.Address `json:"from"`
	To             models.Address `json:"to"`
	Amount         int64          `json:"amount"`
}

func (c *TransferClient) Detached() bool { return true }

func (c *TransferClient) Transfer(ctx context.Context, asset string, from, to models.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative amount", host.ErrTransferFailed)
	}
	for _, addr := range []models.Address{from, to} {
		if err := c.checkAccount(ctx, addr); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(transferRequest{
		IdempotencyKey: idempotencyKey(ctx),
		Asset:          asset,
		From:           from,
		To:             to,
		Amount:         amount,
	})
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/transfers", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: call wallet service: %v", ErrTransferOutcomeUnknown, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		c.log.WithFields(logrus.Fields{"asset": asset, "from": from, "to": to, "amount": amount}).Debug("[Transfer] settled")
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: wallet service returned %d: %s", host.ErrTransferFailed, resp.StatusCode, bytes.TrimSpace(body))
	default:
		return fmt.Errorf("%w: wallet service returned status %d: %s", ErrTransferOutcomeUnknown, resp.StatusCode, bytes.TrimSpace(body))
	}
}

// idempotencyKey returns the key the settlement assigned to this transfer.
// Calls made outside a settlement get a fresh key.
func idempotencyKey(ctx context.Context) string {
	if key, ok := host.IdempotencyKeyFromContext(ctx); ok {
		return key
	}
	return uuid.NewString()
}

// checkAccount rejects wallets the directory knows to be inactive. Unknown
// addresses are left for the wallet service to judge.
func (c *TransferClient) checkAccount(ctx context.Context, addr models.Address) error {
	if addr.IsZero() {
		return fmt.Errorf("%w: invalid account", host.ErrTransferFailed)
	}
	if c.Directory == nil {
		return nil
	}
	wallet, found, err := c.Directory.Lookup(ctx, addr)
	if err != nil {
		return fmt.Errorf("lookup wallet %s: %w", addr, err)
	}
	if found && !wallet.IsActive {
		return fmt.Errorf("%w: wallet %s is inactive", host.ErrTransferFailed, addr)
	}
	return nil
}

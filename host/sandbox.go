package host

import (
	"context"
	"fmt"
	"math"
	"sync"

	"contest-ledger/models"
)

// SandboxToken is a token ledger for development and tests. Balances live in
// the host store, so a transfer made inside an invocation is rolled back with
// the rest of that invocation's writes.
type SandboxToken struct {
	store Store

	mu     sync.RWMutex
	assets map[string]bool
}

func NewSandboxToken(store Store, assets ...string) *SandboxToken {
	t := &SandboxToken{store: store, assets: make(map[string]bool)}
	for _, a := range assets {
		t.assets[a] = true
	}
	return t
}

// Mint credits amount of asset to addr and registers the asset.
func (t *SandboxToken) Mint(ctx context.Context, asset string, to models.Address, amount int64) error {
	if asset == "" {
		return fmt.Errorf("%w: empty asset", ErrTransferFailed)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: empty recipient", ErrTransferFailed)
	}
	if amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrTransferFailed)
	}
	t.mu.Lock()
	t.assets[asset] = true
	t.mu.Unlock()

	return t.within(ctx, func(tx Tx) error {
		bal, err := balanceOf(tx, asset, to)
		if err != nil {
			return err
		}
		if bal > math.MaxInt64-amount {
			return fmt.Errorf("%w: balance overflow", ErrTransferFailed)
		}
		return tx.Set(models.BalanceKey(asset, to), bal+amount)
	})
}

// Balance returns addr's balance of asset.
func (t *SandboxToken) Balance(ctx context.Context, asset string, addr models.Address) (int64, error) {
	var bal int64
	err := t.within(ctx, func(tx Tx) error {
		var err error
		bal, err = balanceOf(tx, asset, addr)
		return err
	})
	return bal, err
}

func (t *SandboxToken) Transfer(ctx context.Context, asset string, from, to models.Address, amount int64) error {
	t.mu.RLock()
	known := t.assets[asset]
	t.mu.RUnlock()

	switch {
	case !known:
		return fmt.Errorf("%w: unknown asset %q", ErrTransferFailed, asset)
	case from.IsZero() || to.IsZero():
		return fmt.Errorf("%w: invalid account", ErrTransferFailed)
	case amount < 0:
		return fmt.Errorf("%w: negative amount", ErrTransferFailed)
	}

	return t.within(ctx, func(tx Tx) error {
		fromBal, err := balanceOf(tx, asset, from)
		if err != nil {
			return err
		}
		if fromBal < amount {
			return fmt.Errorf("%w: insufficient balance for %s: have %d, need %d", ErrTransferFailed, from, fromBal, amount)
		}
		if from == to {
			return nil
		}
		toBal, err := balanceOf(tx, asset, to)
		if err != nil {
			return err
		}
		if toBal > math.MaxInt64-amount {
			return fmt.Errorf("%w: balance overflow for %s", ErrTransferFailed, to)
		}
		if err := tx.Set(models.BalanceKey(asset, from), fromBal-amount); err != nil {
			return err
		}
		return tx.Set(models.BalanceKey(asset, to), toBal+amount)
	})
}

// within joins the invocation carried by ctx, or opens a new one.
func (t *SandboxToken) within(ctx context.Context, fn func(tx Tx) error) error {
	if tx, ok := TxFromContext(ctx); ok {
		return fn(tx)
	}
	return t.store.Invoke(ctx, func(_ context.Context, tx Tx) error {
		return fn(tx)
	})
}

func balanceOf(tx Tx, asset string, addr models.Address) (int64, error) {
	var bal int64
	if _, err := tx.Get(models.BalanceKey(asset, addr), &bal); err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return bal, nil
}

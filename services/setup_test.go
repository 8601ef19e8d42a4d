package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"contest-ledger/host"
	"contest-ledger/models"
	"contest-ledger/store"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testAsset    = "XLM"
	contractAddr = models.Address("CONTRACT")
)

type fixture struct {
	env   host.Env
	store *store.MemoryStore
	token *host.SandboxToken
	auth  *host.MockAuth
	clock *clockwork.FakeClock
	log   *logrus.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	token := host.NewSandboxToken(st, testAsset)
	auth := host.NewMockAuth()
	auth.AllowAll = true
	clock := clockwork.NewFakeClockAt(time.Unix(50, 0))

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &fixture{
		env: host.Env{
			Store:    st,
			Auth:     auth,
			Clock:    host.NewLedgerClock(clock),
			Token:    token,
			Contract: contractAddr,
		},
		store: st,
		token: token,
		auth:  auth,
		clock: clock,
		log:   log,
	}
}

func (f *fixture) mint(t *testing.T, to models.Address, amount int64) {
	t.Helper()
	require.NoError(t, f.token.Mint(context.Background(), testAsset, to, amount))
}

func (f *fixture) balance(t *testing.T, addr models.Address) int64 {
	t.Helper()
	bal, err := f.token.Balance(context.Background(), testAsset, addr)
	require.NoError(t, err)
	return bal
}

// recordingArchiver keeps archived documents in memory.
type recordingArchiver struct {
	mu   sync.Mutex
	docs map[string]any
	err  error
}

func (a *recordingArchiver) Archive(_ context.Context, key string, v any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.docs == nil {
		a.docs = make(map[string]any)
	}
	a.docs[key] = v
	return nil
}

// failingSetStore wraps a store so every Set fails once fn starts writing.
type failingSetStore struct {
	host.Store
}

type failingSetTx struct {
	host.Tx
}

var errWriteFailed = errors.New("write failed")

func (s failingSetStore) Invoke(ctx context.Context, fn func(ctx context.Context, tx host.Tx) error) error {
	return s.Store.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		return fn(ctx, failingSetTx{tx})
	})
}

func (failingSetTx) Set(models.DataKey, any) error { return errWriteFailed }

// detachedToken records transfer attempts with their idempotency keys and
// never rolls them back on its own. The first unknown attempts fail with
// ErrTransferOutcomeUnknown.
type detachedToken struct {
	moves   []move
	unknown int
}

func (d *detachedToken) Detached() bool { return true }

func (d *detachedToken) Transfer(ctx context.Context, asset string, from, to models.Address, amount int64) error {
	key, _ := host.IdempotencyKeyFromContext(ctx)
	d.moves = append(d.moves, move{asset: asset, from: from, to: to, amount: amount, key: key})
	if d.unknown > 0 {
		d.unknown--
		return ErrTransferOutcomeUnknown
	}
	return nil
}

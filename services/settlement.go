package services

import (
	"context"
	"errors"
	"fmt"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DetachedTokenClient is implemented by token clients whose transfers settle
// outside the host store and therefore survive a rolled back invocation.
type DetachedTokenClient interface {
	host.TokenClient
	Detached() bool
}

type move struct {
	asset    string
	from, to models.Address
	amount   int64
	key      string
}

// settlement tracks the transfers made during one invocation so they can be
// reversed when the invocation fails to commit. Transfer keys derive from the
// request id, so a retried request presents the same keys to the token client.
type settlement struct {
	token     host.TokenClient
	log       *logrus.Entry
	base      string
	moves     []move
	uncertain []move
	n         int
}

func newSettlement(ctx context.Context, token host.TokenClient, log *logrus.Entry, operation string) *settlement {
	id, ok := host.RequestIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
	}
	return &settlement{token: token, log: log, base: id + "/" + operation}
}

func (st *settlement) transfer(ctx context.Context, asset string, from, to models.Address, amount int64) error {
	st.n++
	m := move{asset: asset, from: from, to: to, amount: amount, key: fmt.Sprintf("%s/%d", st.base, st.n)}
	ctx = host.WithIdempotencyKey(ctx, m.key)

	err := st.token.Transfer(ctx, asset, from, to, amount)
	if errors.Is(err, ErrTransferOutcomeUnknown) {
		// Same key: the token client applies it at most once.
		err = st.token.Transfer(ctx, asset, from, to, amount)
	}
	switch {
	case err == nil:
		st.moves = append(st.moves, m)
		return nil
	case errors.Is(err, ErrTransferOutcomeUnknown):
		st.uncertain = append(st.uncertain, m)
		return err
	default:
		return err
	}
}

// unwind reverses recorded transfers, newest first. Transfers that roll back
// with the store are left alone. Transfers whose outcome is unknown are
// reported with their key for reconciliation, not reversed.
func (st *settlement) unwind(ctx context.Context) {
	detached, ok := st.token.(DetachedTokenClient)
	if !ok || !detached.Detached() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, m := range st.uncertain {
		st.log.WithFields(logrus.Fields{
			"asset": m.asset, "from": m.from, "to": m.to, "amount": m.amount, "idempotency_key": m.key,
		}).Error("[Settlement] transfer outcome unknown, manual reconciliation required")
	}
	for i := len(st.moves) - 1; i >= 0; i-- {
		m := st.moves[i]
		fields := logrus.Fields{"asset": m.asset, "from": m.to, "to": m.from, "amount": m.amount, "idempotency_key": m.key + "/reverse"}
		rctx := host.WithIdempotencyKey(ctx, m.key+"/reverse")
		if err := st.token.Transfer(rctx, m.asset, m.to, m.from, m.amount); err != nil {
			st.log.WithFields(fields).WithError(err).Error("[Settlement] compensating transfer failed, manual reconciliation required")
			continue
		}
		st.log.WithFields(fields).Warn("[Settlement] reversed transfer of rolled back invocation")
	}
	st.moves = nil
	st.uncertain = nil
}

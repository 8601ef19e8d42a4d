package services

import (
	"context"
	"testing"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetachedTransferReversedWhenInvocationFails(t *testing.T) {
	ctx := host.WithRequestID(context.Background(), "req-1")
	f := newFixture(t)
	token := &detachedToken{}
	env := f.env
	env.Token = token
	env.Store = failingSetStore{f.store}

	svc := NewChallengeService(env, f.log)
	_, err := svc.CreateChallenge(ctx, "creator", "t", "d", 1000, 100, testAsset)
	require.ErrorIs(t, err, errWriteFailed)

	assert.Equal(t, []move{
		{asset: testAsset, from: "creator", to: contractAddr, amount: 1000, key: "req-1/create_challenge/1"},
		{asset: testAsset, from: contractAddr, to: "creator", amount: 1000, key: "req-1/create_challenge/1/reverse"},
	}, token.moves)
}

func TestDetachedTransferKeptOnSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	token := &detachedToken{}
	env := f.env
	env.Token = token

	svc := NewDonationService(env, f.log)
	_, err := svc.Donate(ctx, "alice", "bob", 5, "", testAsset)
	require.NoError(t, err)
	require.Len(t, token.moves, 1)
	assert.Contains(t, token.moves[0].key, "/donate/1")
}

func TestRetriedRequestReusesIdempotencyKeys(t *testing.T) {
	f := newFixture(t)
	token := &detachedToken{}
	env := f.env
	env.Token = token
	svc := NewDonationService(env, f.log)

	ctx := host.WithRequestID(context.Background(), "req-7")
	_, err := svc.Donate(ctx, "alice", "bob", 5, "", testAsset)
	require.NoError(t, err)
	_, err = svc.Donate(ctx, "alice", "bob", 5, "", testAsset)
	require.NoError(t, err)

	require.Len(t, token.moves, 2)
	assert.Equal(t, "req-7/donate/1", token.moves[0].key)
	assert.Equal(t, token.moves[0].key, token.moves[1].key)
}

func TestUnknownTransferOutcomeRetriedWithSameKey(t *testing.T) {
	f := newFixture(t)
	token := &detachedToken{unknown: 1}
	env := f.env
	env.Token = token
	svc := NewDonationService(env, f.log)

	_, err := svc.Donate(host.WithRequestID(context.Background(), "req-2"), "alice", "bob", 5, "", testAsset)
	require.NoError(t, err)

	require.Len(t, token.moves, 2)
	assert.Equal(t, "req-2/donate/1", token.moves[0].key)
	assert.Equal(t, token.moves[0], token.moves[1])
}

func TestUnknownTransferOutcomeIsNotReversed(t *testing.T) {
	f := newFixture(t)
	token := &detachedToken{unknown: 2}
	env := f.env
	env.Token = token
	svc := NewChallengeService(env, f.log)

	_, err := svc.CreateChallenge(host.WithRequestID(context.Background(), "req-3"), "creator", "t", "d", 10, 100, testAsset)
	require.ErrorIs(t, err, ErrTransferOutcomeUnknown)
	assert.Equal(t, KindInternal, Classify(err))

	// Two attempts under one key, and no compensating transfer for a move
	// that may never have happened.
	require.Len(t, token.moves, 2)
	for _, m := range token.moves {
		assert.Equal(t, models.Address("creator"), m.from)
		assert.Equal(t, "req-3/create_challenge/1", m.key)
	}

	count, err := svc.GetChallengeCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnwindSkipsStoreBackedTokens(t *testing.T) {
	f := newFixture(t)
	f.mint(t, "alice", 10)

	ctx := context.Background()
	st := newSettlement(ctx, f.token, f.log.WithField("test", "unwind"), "donate")
	require.NoError(t, st.transfer(ctx, testAsset, "alice", "bob", 4))
	st.unwind(ctx)

	// A sandbox transfer outside an invocation commits on its own; unwind leaves it.
	assert.Equal(t, int64(4), f.balance(t, models.Address("bob")))
}

func TestDisplayAmount(t *testing.T) {
	assert.Equal(t, "1.25", DisplayAmount(12_500_000, 7))
	assert.Equal(t, "0.0001", DisplayAmount(1000, 7))
	assert.Equal(t, "0", DisplayAmount(0, 7))
	assert.Equal(t, "42", DisplayAmount(42, 0))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNotFound, Classify(ErrChallengeNotFound))
	assert.Equal(t, KindInvalidState, Classify(ErrChallengeEnded))
	assert.Equal(t, KindInternal, Classify(errWriteFailed))
}

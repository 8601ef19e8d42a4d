package store

import (
	"context"
	"errors"
	"testing"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		if err := tx.Set(models.ChallengeCountKey(), uint32(3)); err != nil {
			return err
		}
		// Writes are visible inside the invocation before commit.
		var n uint32
		ok, err := tx.Get(models.ChallengeCountKey(), &n)
		require.True(t, ok)
		assert.Equal(t, uint32(3), n)

		inCtx, found := host.TxFromContext(ctx)
		require.True(t, found)
		assert.Same(t, tx, inCtx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	var n uint32
	require.NoError(t, s.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		_, err := tx.Get(models.ChallengeCountKey(), &n)
		return err
	}))
	assert.Equal(t, uint32(3), n)
}

func TestMemoryStoreDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	err := s.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		if err := tx.Set(models.DonationCountKey(), uint32(1)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		ok, err := tx.Has(models.DonationCountKey())
		assert.False(t, ok)
		return err
	}))
}

func TestMemoryStoreGetMissingKey(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Invoke(context.Background(), func(_ context.Context, tx host.Tx) error {
		var c models.Challenge
		ok, err := tx.Get(models.ChallengeKey(42), &c)
		assert.False(t, ok)
		assert.Zero(t, c.ID)
		return err
	}))
}

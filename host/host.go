// Package host defines the collaborators a ledger service runs on: a
// transactional key-value store, caller authorization, the ledger clock
// and the asset transfer primitive.
package host

import (
	"context"
	"errors"

	"contest-ledger/models"
)

var (
	// ErrUnauthorized is returned when the current call is not authorized by
	// the named account.
	ErrUnauthorized = errors.New("not authorized")
	// ErrTransferFailed is returned when the transfer primitive rejects a
	// move (insufficient balance, invalid account or invalid asset).
	ErrTransferFailed = errors.New("transfer failed")
)

// Tx is the storage view of a single invocation. Values are JSON encoded.
type Tx interface {
	// Get decodes the value stored at key into out and reports whether it was present.
	Get(key models.DataKey, out any) (bool, error)
	Set(key models.DataKey, value any) error
	Has(key models.DataKey) (bool, error)
}

// Store runs invocations against persistent state. Either every write made
// through tx is applied or none is: fn returning an error discards them.
type Store interface {
	Invoke(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Authorizer confirms the current call is authorized by addr's owner.
type Authorizer interface {
	RequireAuth(ctx context.Context, addr models.Address) error
}

// Clock returns the current ledger timestamp in seconds.
type Clock interface {
	Timestamp() uint64
}

// TokenClient moves amount of asset between two accounts atomically.
type TokenClient interface {
	Transfer(ctx context.Context, asset string, from, to models.Address, amount int64) error
}

// Env bundles the collaborators of a contract. Contract is the account the
// contract holds escrowed funds in.
type Env struct {
	Store    Store
	Auth     Authorizer
	Clock    Clock
	Token    TokenClient
	Contract models.Address
}

type txKey struct{}

// WithTx attaches the invocation's storage view to ctx so collaborators
// that keep state in the same store can join the invocation.
func WithTx(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the invocation's storage view, if any.
func TxFromContext(ctx context.Context) (Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(Tx)
	return tx, ok
}

type requestIDKey struct{}

// WithRequestID records the id of the request an invocation serves. Retries
// of the same request carry the same id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

type idempotencyKey struct{}

// WithIdempotencyKey names the transfer about to be made so a token client
// can deduplicate it.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey{}).(string)
	return key, ok && key != ""
}

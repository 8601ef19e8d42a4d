package host

import (
	"context"
	"fmt"
	"sync"

	"contest-ledger/models"
)

type callerKey struct{}

// WithCaller records the account that signed the current request.
func WithCaller(ctx context.Context, caller models.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (models.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(models.Address)
	if !ok || caller.IsZero() {
		return "", false
	}
	return caller, true
}

// CallerAuthorizer authorizes an account when it is the caller the gateway
// authenticated for this request.
type CallerAuthorizer struct{}

func (CallerAuthorizer) RequireAuth(ctx context.Context, addr models.Address) error {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated caller", ErrUnauthorized)
	}
	if caller != addr {
		return fmt.Errorf("%w: caller %s cannot act for %s", ErrUnauthorized, caller, addr)
	}
	return nil
}

// MockAuth authorizes a fixed set of accounts, or every account when
// AllowAll is set. It stands in for signature checks in the sandbox.
type MockAuth struct {
	mu       sync.RWMutex
	allowed  map[models.Address]bool
	AllowAll bool
}

func NewMockAuth(allowed ...models.Address) *MockAuth {
	m := &MockAuth{allowed: make(map[models.Address]bool)}
	for _, a := range allowed {
		m.allowed[a] = true
	}
	return m
}

// Allow adds addr to the authorized set.
func (m *MockAuth) Allow(addr models.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowed[addr] = true
}

// Revoke removes addr from the authorized set.
func (m *MockAuth) Revoke(addr models.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.allowed, addr)
}

func (m *MockAuth) RequireAuth(_ context.Context, addr models.Address) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.AllowAll || m.allowed[addr] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, addr)
}

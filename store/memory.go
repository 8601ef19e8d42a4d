// Package store provides the storage adapters behind host.Store.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"contest-ledger/host"
	"contest-ledger/models"
)

// MemoryStore keeps ledger state in memory. Invocations are serialized and
// stage their writes in an overlay that is applied only on success. Invoke is
// not reentrant: collaborators must join the running invocation through the
// tx carried in ctx.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Invoke(ctx context.Context, fn func(ctx context.Context, tx host.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{base: s.data, staged: make(map[string][]byte)}
	if err := fn(host.WithTx(ctx, tx), tx); err != nil {
		return err
	}
	for k, v := range tx.staged {
		s.data[k] = v
	}
	return nil
}

// Len returns the number of committed keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

type memoryTx struct {
	base   map[string][]byte
	staged map[string][]byte
}

func (t *memoryTx) lookup(key models.DataKey) ([]byte, bool) {
	k := key.String()
	if v, ok := t.staged[k]; ok {
		return v, true
	}
	v, ok := t.base[k]
	return v, ok
}

func (t *memoryTx) Get(key models.DataKey, out any) (bool, error) {
	raw, ok := t.lookup(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t *memoryTx) Set(key models.DataKey, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	t.staged[key.String()] = raw
	return nil
}

func (t *memoryTx) Has(key models.DataKey) (bool, error) {
	_, ok := t.lookup(key)
	return ok, nil
}

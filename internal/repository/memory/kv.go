// Package memory provides in-process stores. State does not outlive the
// process; use it for tests and the memory storage driver.
package memory

import (
	"context"
	"sync"

	"github.com/dtroode/quicklogin/internal/model"
)

var _ model.KVStore = (*KVStore)(nil)

// KVStore is an in-memory model.KVStore.
type KVStore struct {
	mu sync.RWMutex
	m  map[string]int64
}

// NewKVStore returns an empty in-memory store.
func NewKVStore() *KVStore {
	return &KVStore{m: make(map[string]int64)}
}

func (s *KVStore) GetValue(ctx context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return 0, model.ErrNotFound
	}
	return v, nil
}

func (s *KVStore) SetValue(ctx context.Context, key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *KVStore) RemoveValue(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Package memory provides a process-local BaselineStore.
// Codes do not survive a restart; use it for tests and single-shot tooling.
package memory

import (
	"context"
	"sync"

	corenumerator "inventra/internal/core/numerator"
)

// BaselineStore keeps codes in a map.
type BaselineStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// Ensure compile-time interface compliance.
var _ corenumerator.BaselineStore = (*BaselineStore)(nil)

// NewBaselineStore creates an empty store.
func NewBaselineStore() *BaselineStore {
	return &BaselineStore{values: make(map[string]string)}
}

// Load implements corenumerator.BaselineStore.
func (s *BaselineStore) Load(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Save implements corenumerator.BaselineStore.
func (s *BaselineStore) Save(_ context.Context, key, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = code
	return nil
}

// Delete implements corenumerator.BaselineStore.
func (s *BaselineStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

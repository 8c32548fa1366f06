package numerator

import (
	"context"
)

// MockSource is a test implementation of Source.
type MockSource struct {
	FetchNextFunc func(ctx context.Context, cfg Config) (string, error)
}

// FetchNext implements Source.
func (m *MockSource) FetchNext(ctx context.Context, cfg Config) (string, error) {
	if m.FetchNextFunc != nil {
		return m.FetchNextFunc(ctx, cfg)
	}
	return "", nil
}

// MockBaselineStore is a test implementation of BaselineStore.
type MockBaselineStore struct {
	LoadFunc   func(ctx context.Context, key string) (string, bool, error)
	SaveFunc   func(ctx context.Context, key, code string) error
	DeleteFunc func(ctx context.Context, key string) error
}

// Load implements BaselineStore.
func (m *MockBaselineStore) Load(ctx context.Context, key string) (string, bool, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, key)
	}
	return "", false, nil
}

// Save implements BaselineStore.
func (m *MockBaselineStore) Save(ctx context.Context, key, code string) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, key, code)
	}
	return nil
}

// Delete implements BaselineStore.
func (m *MockBaselineStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// Ensure compile-time interface compliance.
var (
	_ Source        = (*MockSource)(nil)
	_ BaselineStore = (*MockBaselineStore)(nil)
)

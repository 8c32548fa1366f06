package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventra/internal/core/apperror"
	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/infrastructure/storage/memory"
)

var clock24 = WithClock(func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) })

func transportErr() error {
	return apperror.NewTransport("GET /invoices/next", errors.New("i/o timeout"))
}

func TestRefresh_ServerValue(t *testing.T) {
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return "INV-24-0005", nil
	}}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.Invoice), src, memory.NewBaselineStore(), clock24)

	st := r.Refresh(context.Background())

	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, "INV-24-0005", st.DisplayedCode)
	assert.False(t, st.IsFetching)
	assert.Empty(t, st.FetchError)
}

func TestRefresh_EmptySequenceSeeds(t *testing.T) {
	r := NewReconciler(corenumerator.MustLookup(corenumerator.StockTransfer), &corenumerator.MockSource{}, nil, clock24)

	st := r.Refresh(context.Background())

	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, "ST-24-0001", st.DisplayedCode)
	assert.Empty(t, st.Warning)
}

func TestRefresh_TransportFailureWithoutMemorySeeds(t *testing.T) {
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return "", transportErr()
	}}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.Invoice), src, memory.NewBaselineStore(), clock24)

	st := r.Refresh(context.Background())

	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, "INV-24-0001", st.DisplayedCode)
	assert.Equal(t, WarningProvisional, st.Warning)
	assert.NotEmpty(t, st.FetchError)
}

func TestRefresh_TransportFailureUsesBaseline(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBaselineStore()
	cfg := corenumerator.MustLookup(corenumerator.SalesOrder)
	require.NoError(t, store.Save(ctx, cfg.StorageKey(), "SO-23-0099"))

	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return "", transportErr()
	}}
	r := NewReconciler(cfg, src, store, clock24)

	st := r.Refresh(ctx)

	assert.Equal(t, StatusFallbackApplied, st.Status)
	// the old year is kept: no automatic rollover
	assert.Equal(t, "SO-23-0100", st.DisplayedCode)
	assert.Equal(t, "SO-23-0099", st.LastConfirmedCode)
}

func TestRefresh_UnreadableServerValueFallsBack(t *testing.T) {
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return "pending", nil
	}}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.Invoice), src, nil, clock24)

	st := r.Refresh(context.Background())

	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, "INV-24-0001", st.DisplayedCode)
	assert.Contains(t, st.FetchError, "pending")
}

func TestConfirmCreated_PersistsAndRequeries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBaselineStore()
	cfg := corenumerator.MustLookup(corenumerator.Invoice)

	next := "INV-24-0005"
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return next, nil
	}}
	r := NewReconciler(cfg, src, store, clock24)
	assert.Equal(t, "INV-24-0005", r.Refresh(ctx).DisplayedCode)

	next = "INV-24-0006"
	st := r.ConfirmCreated(ctx, "INV-24-0005")

	assert.Equal(t, "INV-24-0006", st.DisplayedCode)
	assert.Equal(t, StatusReady, st.Status)

	stored, ok, err := store.Load(ctx, "inventory_last_invoice_id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "INV-24-0005", stored)
}

func TestConfirmCreated_ServerDownShowsSuccessor(t *testing.T) {
	ctx := context.Background()
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return "", transportErr()
	}}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.SalesReturn), src, memory.NewBaselineStore(), clock24)

	st := r.ConfirmCreated(ctx, "SR-24-0041")

	assert.Equal(t, StatusFallbackApplied, st.Status)
	assert.Equal(t, "SR-24-0042", st.DisplayedCode)
}

func TestConfirmCreated_StaleServerIsLifted(t *testing.T) {
	ctx := context.Background()
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return "INV-24-0005", nil
	}}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.Invoice), src, nil, clock24)

	st := r.ConfirmCreated(ctx, "INV-24-0005")

	assert.Equal(t, "INV-24-0006", st.DisplayedCode, "displayed code must never trail the confirmed one")
}

func TestConfirmCreated_SaveFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := &corenumerator.MockBaselineStore{
		SaveFunc: func(ctx context.Context, key, code string) error { return errors.New("disk full") },
	}
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		return "", transportErr()
	}}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.StockVerification), src, store, clock24)

	st := r.ConfirmCreated(ctx, "SV-24-0003")

	assert.Equal(t, "SV-24-0004", st.DisplayedCode)
	assert.Equal(t, "SV-24-0003", st.LastConfirmedCode)
}

func TestLoad_StoreFailureIsNotFatal(t *testing.T) {
	store := &corenumerator.MockBaselineStore{
		LoadFunc: func(ctx context.Context, key string) (string, bool, error) {
			return "", false, errors.New("redis down")
		},
	}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.Invoice), &corenumerator.MockSource{}, store, clock24)

	st := r.Refresh(context.Background())

	assert.Equal(t, "INV-24-0001", st.DisplayedCode)
	assert.Nil(t, st.LastConfirmed)
}

func TestRefresh_NewerCallSupersedesOlder(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})

	var mu sync.Mutex
	calls := 0
	src := &corenumerator.MockSource{FetchNextFunc: func(ctx context.Context, cfg corenumerator.Config) (string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return "INV-24-0003", nil
		}
		return "INV-24-0004", nil
	}}
	r := NewReconciler(corenumerator.MustLookup(corenumerator.Invoice), src, nil, clock24)

	done := make(chan State)
	go func() { done <- r.Refresh(ctx) }()
	<-started

	latest := r.Refresh(ctx)
	assert.Equal(t, "INV-24-0004", latest.DisplayedCode)

	close(release)
	<-done

	assert.Equal(t, "INV-24-0004", r.Snapshot().DisplayedCode, "slow, older response must not overwrite the newer one")
}

func TestRegistry_UnknownType(t *testing.T) {
	reg := NewRegistry(&corenumerator.MockSource{}, nil)

	_, err := reg.Get("payroll")
	assert.True(t, apperror.IsNotFound(err))

	r, err := reg.Get(corenumerator.Invoice)
	require.NoError(t, err)
	assert.Equal(t, "INV", r.Config().Prefix)
}

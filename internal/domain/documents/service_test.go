package documents_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"inventra/internal/core/apperror"
	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/core/types"
	"inventra/internal/domain/documents"
	"inventra/internal/domain/linking"
	"inventra/internal/domain/sequence"
	"inventra/internal/infrastructure/backend"
	"inventra/internal/infrastructure/storage/memory"
)

// fakeBackend is a scripted backend for one test.
type fakeBackend struct {
	mu       sync.Mutex
	next     map[string]string
	created  [][]byte
	createFn func(resource string, body []byte) (int, string)
	lists    map[string]string
	hang     bool
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	hang := b.hang
	b.mu.Unlock()
	if hang {
		<-r.Context().Done()
		return
	}

	resource, rest := splitPath(r.URL.Path)
	switch {
	case r.Method == http.MethodGet && rest == "next":
		b.mu.Lock()
		body, ok := b.next[resource]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, body)
	case r.Method == http.MethodPost && rest == "":
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.created = append(b.created, body)
		status, resp := http.StatusCreated, `{"data":{"id":"`+gjson.GetBytes(body, "code").String()+`"}}`
		if b.createFn != nil {
			// createFn runs under the lock and may touch next directly
			status, resp = b.createFn(resource, body)
		}
		b.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	case r.Method == http.MethodGet && rest == "":
		b.mu.Lock()
		body := b.lists[resource]
		b.mu.Unlock()
		_, _ = io.WriteString(w, body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) setNext(resource, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next[resource] = body
}

func (b *fakeBackend) onCreate(fn func(resource string, body []byte) (int, string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createFn = fn
}

func (b *fakeBackend) setList(resource, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists[resource] = body
}

func (b *fakeBackend) setHang(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hang = v
}

func (b *fakeBackend) createdBodies() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.created...)
}

func splitPath(p string) (string, string) {
	for i := 1; i < len(p); i++ {
		if p[i] == '/' {
			return p[1:i], p[i+1:]
		}
	}
	return p[1:], ""
}

type harness struct {
	backend *fakeBackend
	store   *memory.BaselineStore
	svc     *documents.Service
}

func newHarness(t *testing.T, timeout time.Duration) *harness {
	t.Helper()
	fb := &fakeBackend{next: map[string]string{}, lists: map[string]string{}}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client, err := backend.New(backend.Config{BaseURL: srv.URL, Timeout: timeout})
	require.NoError(t, err)

	store := memory.NewBaselineStore()
	clock := func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	seqs := sequence.NewRegistry(client, store, sequence.WithClock(clock))
	svc := documents.NewService(documents.NewFormRegistry(), seqs, client, linking.NewService(client)).WithClock(clock)

	return &harness{backend: fb, store: store, svc: svc}
}

func TestSubmit_ConfirmsCodeAndRequeries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Second)
	h.backend.setNext("invoices", `{"data":{"next":"INV-24-0005"}}`)

	form, ov, err := h.svc.Open(ctx, corenumerator.Invoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-24-0005", ov.Sequence.DisplayedCode)

	require.NoError(t, form.SetHeader(documents.Header{CenterID: "c1", CustomerName: "Jane"}))
	_, err = form.AddLine(documents.LineInput{ProductRef: "P1", Quantity: 2, UnitPrice: types.MustMoney("100"), DiscountToken: "10"})
	require.NoError(t, err)

	// the server advances once the document exists
	h.backend.onCreate(func(resource string, body []byte) (int, string) {
		h.backend.next["invoices"] = `{"data":{"next":"INV-24-0006"}}`
		return http.StatusCreated, `{"id":"INV-24-0005"}`
	})

	res, err := h.svc.Submit(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "INV-24-0005", res.Code)
	assert.Equal(t, "INV-24-0006", res.Sequence.DisplayedCode)
	assert.Equal(t, documents.StateAwaitingPayment, res.Form.State)

	stored, ok, err := h.store.Load(ctx, "inventory_last_invoice_id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "INV-24-0005", stored)

	created := h.backend.createdBodies()
	require.Len(t, created, 1)
	body := created[0]
	assert.Equal(t, "INV-24-0005", gjson.GetBytes(body, "code").String())
	assert.Equal(t, "2024-06-01", gjson.GetBytes(body, "date").String())
	assert.Equal(t, "180", gjson.GetBytes(body, "totals.net_total").String())

	ov, err = h.svc.ConfirmPayment(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, documents.StateConfirmed, ov.Form.State)

	_, err = h.svc.ConfirmPayment(ctx, form)
	assert.Error(t, err)
}

func TestSubmit_EchoedRowIDIsNotACode(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{name: "row id next to code", response: `{"id":4211,"code":"INV-24-0005"}`, want: "INV-24-0005"},
		{name: "row id only", response: `{"id":4211}`, want: "INV-24-0005"},
		{name: "code of another type", response: `{"data":{"code":"SO-24-0099"}}`, want: "INV-24-0005"},
		{name: "authoritative code differs", response: `{"data":{"voucher":"inv-24-7"}}`, want: "INV-24-0007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, time.Second)
			h.backend.setNext("invoices", `{"next":"INV-24-0005"}`)

			form, _, err := h.svc.Open(ctx, corenumerator.Invoice)
			require.NoError(t, err)
			require.NoError(t, form.SetHeader(documents.Header{CenterID: "c1", CustomerName: "Jane"}))
			_, err = form.AddLine(documents.LineInput{ProductRef: "P1", Quantity: 1, UnitPrice: types.MustMoney("10")})
			require.NoError(t, err)

			h.backend.onCreate(func(resource string, body []byte) (int, string) {
				h.backend.next["invoices"] = `{"next":"INV-24-0008"}`
				return http.StatusCreated, tt.response
			})

			res, err := h.svc.Submit(ctx, form)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Code)
			assert.Equal(t, "INV-24-0008", res.Sequence.DisplayedCode)

			stored, ok, err := h.store.Load(ctx, "inventory_last_invoice_id")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, stored)
		})
	}
}

func TestOpen_TimeoutWithoutMemorySeedsCurrentYear(t *testing.T) {
	h := newHarness(t, 50*time.Millisecond)
	h.backend.setHang(true)

	_, ov, err := h.svc.Open(context.Background(), corenumerator.StockVerification)
	require.NoError(t, err, "sequence failures never fail a form")

	assert.Equal(t, "SV-24-0001", ov.Sequence.DisplayedCode)
	assert.Equal(t, sequence.StatusFailed, ov.Sequence.Status)
	assert.Equal(t, sequence.WarningProvisional, ov.Sequence.Warning)
}

func TestSubmit_BackendFailureIsRecoverable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Second)
	h.backend.setNext("stock-transfers", `"ST-24-0002"`)
	h.backend.onCreate(func(resource string, body []byte) (int, string) {
		return http.StatusUnprocessableEntity, `{"message":"center closed"}`
	})

	form, _, err := h.svc.Open(ctx, corenumerator.StockTransfer)
	require.NoError(t, err)
	require.NoError(t, form.SetHeader(documents.Header{CenterID: "c1", DestinationCenterID: "c2"}))
	_, err = form.AddLine(documents.LineInput{ProductRef: "P1", Quantity: 1})
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, form)
	require.Error(t, err)
	assert.True(t, apperror.IsTransport(err))
	assert.Equal(t, documents.StateFailed, form.State())
	assert.NotEmpty(t, form.View().Error)

	_, ok, _ := h.store.Load(ctx, "inventory_last_stock_transfer_id")
	assert.False(t, ok, "nothing is confirmed after a failed creation")

	h.backend.onCreate(nil)
	res, err := h.svc.Submit(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "ST-24-0002", res.Code)
	assert.Equal(t, documents.StateConfirmed, res.Form.State)
}

func TestSubmit_DuplicateCodeRefreshesSequence(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Second)
	h.backend.setNext("invoices", `{"next":"INV-24-0005"}`)

	form, _, err := h.svc.Open(ctx, corenumerator.Invoice)
	require.NoError(t, err)
	require.NoError(t, form.SetHeader(documents.Header{CenterID: "c1", CustomerName: "Jane"}))
	_, err = form.AddLine(documents.LineInput{ProductRef: "P1", Quantity: 1, UnitPrice: types.MustMoney("10")})
	require.NoError(t, err)

	// another terminal took 0005 in the meantime
	h.backend.onCreate(func(resource string, body []byte) (int, string) {
		h.backend.next["invoices"] = `{"next":"INV-24-0006"}`
		return http.StatusConflict, `{"message":"code already used"}`
	})

	_, err = h.svc.Submit(ctx, form)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, documents.StateFailed, form.State())

	h.backend.onCreate(nil)
	res, err := h.svc.Submit(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "INV-24-0006", res.Code)

	created := h.backend.createdBodies()
	require.Len(t, created, 2)
	assert.Equal(t, "INV-24-0006", gjson.GetBytes(created[1], "code").String())
}

func TestSubmit_ValidationNeverReachesBackend(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Second)

	form, _, err := h.svc.Open(ctx, corenumerator.SalesOrder)
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, form)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, documents.StateEditing, form.State())
	assert.Empty(t, h.backend.createdBodies())
}

func TestLink_CarriesAggregateDiscount(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Second)
	h.backend.setNext("invoices", `{"next":"INV-24-0010"}`)
	h.backend.setList("sales-orders", `{"data":[
		{"code":"SO-24-0011","status":"Completed","customer_id":"k1","date":"2024-05-30","discount_total":50,
		 "items":[
			{"product_id":"P1","quantity":1,"unit_price":300,"line_total":300},
			{"product_id":"P2","quantity":1,"unit_price":700,"line_total":700}
		 ]},
		{"code":"SO-24-0012","status":"completed","customer_id":"k2","items":[]},
		{"code":"SO-24-0013","status":"completed","customer_id":"k1","is_ref":1,"items":[]}
	]}`)

	form, _, err := h.svc.Open(ctx, corenumerator.Invoice)
	require.NoError(t, err)
	require.NoError(t, form.SetHeader(documents.Header{CenterID: "c1", CustomerID: "k1"}))

	picker := h.svc.LinkCandidates(ctx, form, linking.Criteria{CustomerID: "k1"})
	require.Len(t, picker.Candidates, 1)
	assert.Equal(t, "SO-24-0011", picker.Candidates[0].Code)

	ov, err := h.svc.Link(ctx, form, "SO-24-0011")
	require.NoError(t, err)
	require.Len(t, ov.Form.Lines, 2)
	assert.True(t, types.MustMoney("15").Equal(ov.Form.Lines[0].DiscountAmount))
	assert.True(t, types.MustMoney("35").Equal(ov.Form.Lines[1].DiscountAmount))
	assert.True(t, types.MustMoney("50").Equal(ov.Form.Totals.DiscountTotal))

	_, err = h.svc.Submit(ctx, form)
	require.NoError(t, err)
	body := h.backend.createdBodies()[0]
	assert.Equal(t, "50", gjson.GetBytes(body, "totals.discount_total").String())
	assert.Equal(t, "SO-24-0011", gjson.GetBytes(body, "source_document").String())

	_, err = h.svc.Link(ctx, form, "SO-24-0012")
	assert.True(t, apperror.IsNotFound(err))
}

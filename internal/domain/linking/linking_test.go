package linking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/core/types"
	"inventra/internal/domain/pricing"
)

func docs(t *testing.T, body string) []SourceDocument {
	t.Helper()
	require.True(t, gjson.Valid(body), "invalid fixture")
	return ParseSourceDocuments([]byte(body))
}

func codes(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Code)
	}
	return out
}

func TestFindCandidates_ExcludesReferenceDocuments(t *testing.T) {
	src := docs(t, `[
		{"code":"INV-24-0001","is_ref":1,"center_id":"c1","customer_id":"k1","date":"2024-03-01"},
		{"code":"INV-24-0002","is_ref":0,"center_id":"c1","customer_id":"k1","date":"2024-03-02"}
	]`)

	got := FindCandidates(corenumerator.Invoice, src, Criteria{CenterID: "c1", CustomerID: "k1"})

	assert.Equal(t, []string{"INV-24-0002"}, codes(got))
}

func TestFindCandidates_SalesOrdersMustBeCompleted(t *testing.T) {
	src := docs(t, `{"data":[
		{"code":"SO-24-0001","status":"Completed"},
		{"code":"SO-24-0002","status":"pending"},
		{"code":"SO-24-0003","status":"DONE"},
		{"code":"SO-24-0004","status":"incomplete"},
		{"code":"SO-24-0005"}
	]}`)

	got := FindCandidates(corenumerator.SalesOrder, src, Criteria{})
	assert.ElementsMatch(t, []string{"SO-24-0001", "SO-24-0003"}, codes(got))

	// the status rule only applies to sales orders
	got = FindCandidates(corenumerator.Invoice, src, Criteria{})
	assert.Len(t, got, 5)
}

func TestFindCandidates_CenterMatch(t *testing.T) {
	src := docs(t, `[
		{"code":"A","center_id":"c1"},
		{"code":"B","center_name":"Downtown Pharmacy"},
		{"code":"C","center_id":"c2","center_name":"Airport"}
	]`)

	got := FindCandidates(corenumerator.Invoice, src, Criteria{CenterID: "c1", CenterName: "downtown"})
	assert.ElementsMatch(t, []string{"A", "B"}, codes(got))
}

func TestFindCandidates_CustomerIDTakesPrecedence(t *testing.T) {
	src := docs(t, `[
		{"code":"A","customer_id":"k2","customer_name":"Jane Doe","customer_email":"jane@example.com"},
		{"code":"B","customer_id":"k1","customer_name":"Someone Else"},
		{"code":"C","customer_name":"Jane Doe"}
	]`)

	got := FindCandidates(corenumerator.Invoice, src, Criteria{
		CustomerID:    "k1",
		CustomerName:  "jane",
		CustomerEmail: "jane@example.com",
	})

	// A matches by name and email but its id contradicts; C has no id so name decides
	assert.ElementsMatch(t, []string{"B", "C"}, codes(got))
}

func TestFindCandidates_NoCenterOnlyFallback(t *testing.T) {
	src := docs(t, `[
		{"code":"A","center_id":"c1","customer_name":"Other Customer"}
	]`)

	got := FindCandidates(corenumerator.Invoice, src, Criteria{CenterID: "c1", CustomerName: "Jane"})
	assert.Empty(t, got)
}

func TestFindCandidates_SortedNewestFirst(t *testing.T) {
	src := docs(t, `[
		{"code":"A","date":"2024-01-05"},
		{"code":"B","date":"2024-03-01T10:00:00Z"},
		{"code":"C","date":"2024-02-10 08:00:00"},
		{"code":"D"}
	]`)

	got := FindCandidates(corenumerator.Invoice, src, Criteria{})
	assert.Equal(t, []string{"B", "C", "A", "D"}, codes(got))
}

func TestCandidate_Summary(t *testing.T) {
	src := docs(t, `[{"code":"SO-1","status":"done","total_amount":"1,000.00","items":[{"qty":1},{"qty":2}]}]`)

	got := FindCandidates(corenumerator.SalesOrder, src, Criteria{})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].LineCount)
	assert.True(t, types.MustMoney("1000").Equal(got[0].TotalAmount))
}

func TestMapLinesIntoTarget(t *testing.T) {
	src := docs(t, `[{
		"code":"SO-24-0009",
		"items":[
			{"product_id":"P1","product":{"name":"Paracetamol"},"quantity":"2","unit_price":100,"discount_per_unit":10,"batch_number":"B-7"},
			{"sku":"P2","item_name":"Syrup","qty":3,"price":"50","line_total":120,"batches":[{"batch_no":"LOT-1"},{"batch_no":"LOT-2"}]},
			{"product_id":"P3","name":"Gauze","quantity":1,"rate":20,"amount":25,"available_stock":4}
		]
	}]`)
	require.Len(t, src, 1)

	mapped := MapLinesIntoTarget(src[0])
	require.Len(t, mapped.Lines, 3)
	assert.Nil(t, mapped.DocumentDiscount)
	assert.Equal(t, "SO-24-0009", mapped.SourceCode)

	first := mapped.Lines[0]
	assert.Equal(t, "Paracetamol", first.ProductName)
	assert.Equal(t, int64(2), first.Quantity)
	assert.Equal(t, pricing.DiscountPerUnit, first.DiscountMode)
	assert.True(t, types.MustMoney("20").Equal(pricing.LineDiscountAmount(first)))
	require.NotNil(t, first.BatchLabel)
	assert.Equal(t, "B-7", *first.BatchLabel)
	require.NotNil(t, first.SourceDocumentRef)
	assert.Equal(t, "SO-24-0009", *first.SourceDocumentRef)

	second := mapped.Lines[1]
	assert.Equal(t, "P2", second.ProductRef)
	assert.Equal(t, pricing.DiscountLineAmount, second.DiscountMode)
	assert.True(t, types.MustMoney("30").Equal(second.DiscountValue))
	require.NotNil(t, second.BatchLabel)
	assert.Equal(t, "LOT-1", *second.BatchLabel)

	// final amount above the naive total is not a negative discount
	third := mapped.Lines[2]
	assert.Equal(t, pricing.DiscountNone, third.DiscountMode)
	require.NotNil(t, third.StockCeiling)
	assert.True(t, types.MustMoney("4").Equal(*third.StockCeiling))
}

func TestMapLinesIntoTarget_DistributesAggregateDiscount(t *testing.T) {
	src := docs(t, `[{
		"code":"SO-24-0011",
		"status":"completed",
		"discount_total":50,
		"items":[
			{"product_id":"P1","quantity":1,"unit_price":300,"line_total":300},
			{"product_id":"P2","quantity":1,"unit_price":700,"line_total":700}
		]
	}]`)

	mapped := MapLinesIntoTarget(src[0])
	require.Len(t, mapped.Lines, 2)
	assert.True(t, types.MustMoney("15").Equal(pricing.LineDiscountAmount(mapped.Lines[0])))
	assert.True(t, types.MustMoney("35").Equal(pricing.LineDiscountAmount(mapped.Lines[1])))

	require.NotNil(t, mapped.DocumentDiscount)
	totals := pricing.Compute(mapped.Lines, mapped.DocumentDiscount)
	assert.True(t, types.MustMoney("50").Equal(totals.DiscountTotal))
	assert.True(t, types.MustMoney("950").Equal(totals.NetTotal))
}

func TestMapLinesIntoTarget_LineDiscountsWinOverAggregate(t *testing.T) {
	src := docs(t, `[{
		"code":"SO-24-0012",
		"discount_total":50,
		"items":[
			{"product_id":"P1","quantity":1,"unit_price":300,"discount_per_unit":10},
			{"product_id":"P2","quantity":1,"unit_price":700,"discount_per_unit":20}
		]
	}]`)

	mapped := MapLinesIntoTarget(src[0])
	require.Len(t, mapped.Lines, 2)
	assert.Nil(t, mapped.DocumentDiscount)

	totals := pricing.Compute(mapped.Lines, mapped.DocumentDiscount)
	assert.True(t, types.MustMoney("30").Equal(totals.DiscountTotal), "got %s", totals.DiscountTotal)
	assert.False(t, totals.DiscountOverridden)
	assert.True(t, types.MustMoney("970").Equal(totals.NetTotal))
}

func TestMapLinesIntoTarget_QuantityFloorIsOne(t *testing.T) {
	src := docs(t, `[{
		"code":"SO-24-0013",
		"items":[
			{"product_id":"P1","quantity":0,"unit_price":10},
			{"product_id":"P2","quantity":-4,"unit_price":10},
			{"product_id":"P3","quantity":0.4,"unit_price":10},
			{"product_id":"P4","unit_price":10},
			{"product_id":"P5","quantity":"5","unit_price":10}
		]
	}]`)

	mapped := MapLinesIntoTarget(src[0])
	require.Len(t, mapped.Lines, 5)
	for i, want := range []int64{1, 1, 1, 1, 5} {
		assert.Equal(t, want, mapped.Lines[i].Quantity, mapped.Lines[i].ProductRef)
	}
}

func TestPicker_StaleResultIsDiscarded(t *testing.T) {
	p := NewPicker()

	old := p.Begin(Criteria{CustomerID: "k1"})
	current := p.Begin(Criteria{CustomerID: "k2"})

	assert.False(t, p.Apply(old, []Candidate{{Code: "FROM-K1"}}, ""))
	assert.True(t, p.Apply(current, []Candidate{{Code: "FROM-K2"}}, ""))

	res := p.Result()
	assert.Equal(t, "k2", res.Criteria.CustomerID)
	assert.Equal(t, []string{"FROM-K2"}, codes(res.Candidates))
	assert.False(t, res.Loading)

	_, ok := p.Find("from-k2")
	assert.True(t, ok)

	p.Reset()
	assert.False(t, p.Apply(current, []Candidate{{Code: "LATE"}}, ""))
	assert.Empty(t, p.Result().Candidates)
}

type listerFunc func(ctx context.Context, cfg corenumerator.Config, hint Criteria) ([]gjson.Result, error)

func (f listerFunc) ListSourceDocuments(ctx context.Context, cfg corenumerator.Config, hint Criteria) ([]gjson.Result, error) {
	return f(ctx, cfg, hint)
}

func TestService_LoadCandidates(t *testing.T) {
	var gotResource string
	svc := NewService(listerFunc(func(ctx context.Context, cfg corenumerator.Config, hint Criteria) ([]gjson.Result, error) {
		gotResource = cfg.Resource
		// the server ignores the hint and returns everything
		return gjson.Parse(`[
			{"code":"SO-24-0001","status":"completed","customer_id":"k1"},
			{"code":"SO-24-0002","status":"completed","customer_id":"k2"}
		]`).Array(), nil
	}))

	res := svc.LoadCandidates(context.Background(), NewPicker(), corenumerator.MustLookup(corenumerator.Invoice), Criteria{CustomerID: "k1"})

	assert.Equal(t, "sales-orders", gotResource)
	assert.Equal(t, []string{"SO-24-0001"}, codes(res.Candidates))
	assert.Empty(t, res.Message)
}

func TestService_LoadCandidatesFailureIsInline(t *testing.T) {
	svc := NewService(listerFunc(func(ctx context.Context, cfg corenumerator.Config, hint Criteria) ([]gjson.Result, error) {
		return nil, errors.New("connection refused")
	}))
	picker := NewPicker()

	res := svc.LoadCandidates(context.Background(), picker, corenumerator.MustLookup(corenumerator.SalesReturn), Criteria{})

	assert.Equal(t, MessageLoadFailed, res.Message)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, MessageLoadFailed, picker.Message())
}

func TestService_LoadCandidatesEmptyAndNotLinkable(t *testing.T) {
	svc := NewService(listerFunc(func(ctx context.Context, cfg corenumerator.Config, hint Criteria) ([]gjson.Result, error) {
		return nil, nil
	}))

	res := svc.LoadCandidates(context.Background(), NewPicker(), corenumerator.MustLookup(corenumerator.Invoice), Criteria{CustomerName: "Jane"})
	assert.Equal(t, "no matching sales orders found for this customer", res.Message)

	res = svc.LoadCandidates(context.Background(), NewPicker(), corenumerator.MustLookup(corenumerator.StockTransfer), Criteria{})
	assert.Equal(t, MessageNotLinkable, res.Message)
}

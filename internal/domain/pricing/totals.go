package pricing

import (
	"github.com/shopspring/decimal"

	"inventra/internal/core/types"
)

// Totals aggregates a line collection.
type Totals struct {
	Gross         types.Money `json:"gross"`
	DiscountTotal types.Money `json:"discountTotal"`
	NetTotal      types.Money `json:"netTotal"`

	// DiscountOverridden is set when DiscountTotal is a document-level figure taken verbatim
	DiscountOverridden bool `json:"discountOverridden"`
}

// Compute reduces lines into totals.
//
// When documentDiscount is non-nil it is the authoritative discount carried
// over from a linked source and is used verbatim instead of the line sum.
// NetTotal never drops below zero.
func Compute(lines []LineItem, documentDiscount *types.Money) Totals {
	gross := decimal.Zero
	for _, l := range lines {
		gross = gross.Add(l.LineTotal())
	}

	t := Totals{Gross: gross}
	if documentDiscount != nil {
		t.DiscountTotal = *documentDiscount
		t.DiscountOverridden = true
	} else {
		t.DiscountTotal = SumLineDiscounts(lines)
	}
	t.NetTotal = types.NonNegative(gross.Sub(t.DiscountTotal))
	return t
}

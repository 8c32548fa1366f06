// Package pricing computes line discounts and document totals.
//
// Every function here is total: discount input is free text typed by a user,
// so out-of-range values are clamped rather than rejected.
package pricing

import (
	"github.com/shopspring/decimal"

	"inventra/internal/core/id"
	"inventra/internal/core/types"
)

// DiscountMode selects how DiscountValue is interpreted.
type DiscountMode string

const (
	DiscountNone       DiscountMode = "none"
	DiscountPerUnit    DiscountMode = "per_unit_amount"
	DiscountLineAmount DiscountMode = "line_amount"
)

// Valid reports whether m is a known mode. The empty mode counts as none.
func (m DiscountMode) Valid() bool {
	switch m {
	case "", DiscountNone, DiscountPerUnit, DiscountLineAmount:
		return true
	}
	return false
}

// LineItem is one editable row of a transactional document.
type LineItem struct {
	// ID is ephemeral and unique within the process
	ID string `json:"id"`

	ProductRef  string `json:"productRef"`
	ProductName string `json:"productName,omitempty"`

	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`

	DiscountMode  DiscountMode `json:"discountMode"`
	DiscountValue types.Money  `json:"discountValue"`

	BatchLabel *string `json:"batchLabel,omitempty"`

	// StockCeiling is the known available stock; quantity is checked against it at commit time
	StockCeiling *types.Money `json:"stockCeiling,omitempty"`

	// SourceDocumentRef is the code of the document this line was carried over from
	SourceDocumentRef *string `json:"sourceDocumentRef,omitempty"`
}

// NewLine creates a line with a fresh ID and no discount.
func NewLine(productRef string, quantity int64, unitPrice types.Money) LineItem {
	return LineItem{
		ID:           id.New().String(),
		ProductRef:   productRef,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		DiscountMode: DiscountNone,
	}
}

// LineTotal is quantity * unit price, before discount.
func (l LineItem) LineTotal() types.Money {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// LineNet is the line total after its discount, never below zero.
func (l LineItem) LineNet() types.Money {
	return types.NonNegative(l.LineTotal().Sub(LineDiscountAmount(l)))
}

// ExceedsStock reports whether quantity is above a known stock ceiling.
func (l LineItem) ExceedsStock() bool {
	if l.StockCeiling == nil {
		return false
	}
	return decimal.NewFromInt(l.Quantity).GreaterThan(*l.StockCeiling)
}

// HasDiscount reports whether the line carries its own non-zero discount.
func (l LineItem) HasDiscount() bool {
	return LineDiscountAmount(l).IsPositive()
}

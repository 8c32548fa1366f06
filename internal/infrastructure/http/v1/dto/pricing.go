package dto

import (
	"inventra/internal/core/types"
	"inventra/internal/domain/pricing"
)

// DiscountTokenRequest evaluates a free-text discount against a unit price.
type DiscountTokenRequest struct {
	Token     string      `json:"token"`
	UnitPrice types.Money `json:"unitPrice"`
}

// DiscountTokenResponse is the per-unit discount the token resolves to.
type DiscountTokenResponse struct {
	AmountPerUnit types.Money `json:"amountPerUnit"`
}

// TotalsLine is one line of an ad-hoc totals calculation.
type TotalsLine struct {
	ID            string               `json:"id"`
	Quantity      int64                `json:"quantity" binding:"min=0"`
	UnitPrice     types.Money          `json:"unitPrice"`
	DiscountMode  pricing.DiscountMode `json:"discountMode"`
	DiscountValue types.Money          `json:"discountValue"`

	// Discount is a free-text token; when set it takes precedence over DiscountMode/DiscountValue
	Discount string `json:"discount"`
}

// ToLineItem converts the request line into a pricing line.
func (l TotalsLine) ToLineItem() pricing.LineItem {
	item := pricing.LineItem{
		ID:            l.ID,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		DiscountMode:  l.DiscountMode,
		DiscountValue: l.DiscountValue,
	}
	if l.Discount != "" {
		item.DiscountMode = pricing.DiscountPerUnit
		item.DiscountValue = pricing.ParseDiscountToken(l.Discount, l.UnitPrice)
	}
	if !item.DiscountMode.Valid() {
		item.DiscountMode = pricing.DiscountNone
	}
	return item
}

// TotalsRequest computes totals without an open form.
type TotalsRequest struct {
	Lines []TotalsLine `json:"lines" binding:"dive"`

	// DocumentDiscount, when present, is distributed over undiscounted lines and used verbatim as the total
	DocumentDiscount *types.Money `json:"documentDiscount"`
}

// LineAmounts are the derived figures for one line.
type LineAmounts struct {
	ID             string      `json:"id,omitempty"`
	LineTotal      types.Money `json:"lineTotal"`
	DiscountAmount types.Money `json:"discountAmount"`
	LineNet        types.Money `json:"lineNet"`
}

// TotalsResponse carries document totals and per-line figures.
type TotalsResponse struct {
	Totals pricing.Totals `json:"totals"`
	Lines  []LineAmounts  `json:"lines"`
}

package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"inventra/internal/core/types"
)

var hundred = decimal.NewFromInt(100)

// ParseDiscountToken converts a user-entered discount into an amount per unit.
//
// "15%" is a percentage of baseUnitPrice; anything else is a literal amount.
// The result is clamped to [0, baseUnitPrice] and rounded to cents.
// Empty or unreadable tokens yield zero.
func ParseDiscountToken(token string, baseUnitPrice types.Money) types.Money {
	base := types.NonNegative(baseUnitPrice)
	token = strings.TrimSpace(token)
	if token == "" {
		return decimal.Zero
	}

	var amount types.Money
	if strings.HasSuffix(token, "%") {
		pct, ok := types.ParseMoneyLoose(strings.TrimSuffix(token, "%"))
		if !ok {
			return decimal.Zero
		}
		amount = base.Mul(pct).Div(hundred)
	} else {
		literal, ok := types.ParseMoneyLoose(token)
		if !ok {
			return decimal.Zero
		}
		amount = literal
	}

	return types.Round2(types.Clamp(amount, decimal.Zero, base))
}

// LineDiscountAmount is the total discount carried by one line.
func LineDiscountAmount(l LineItem) types.Money {
	switch l.DiscountMode {
	case DiscountPerUnit:
		return types.Round2(l.DiscountValue.Mul(decimal.NewFromInt(l.Quantity)))
	case DiscountLineAmount:
		return l.DiscountValue
	default:
		return decimal.Zero
	}
}

// SumLineDiscounts adds up LineDiscountAmount over lines.
func SumLineDiscounts(lines []LineItem) types.Money {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineDiscountAmount(l))
	}
	return sum
}

// DistributeDocumentDiscount spreads a document-level discount over lines that carry none.
//
// Shares are proportional to each line total; when every line is free the
// shares follow quantity instead. Each share is rounded to cents on its own, so
// the rounded shares may differ from totalDiscount by up to a cent per line.
// Lines already carrying a discount, or a non-positive total, leave the input
// unchanged. The input slice is never modified.
func DistributeDocumentDiscount(lines []LineItem, totalDiscount types.Money) []LineItem {
	out := make([]LineItem, len(lines))
	copy(out, lines)

	if len(out) == 0 || !totalDiscount.IsPositive() || !SumLineDiscounts(out).IsZero() {
		return out
	}

	gross := decimal.Zero
	qty := decimal.Zero
	for _, l := range out {
		gross = gross.Add(l.LineTotal())
		qty = qty.Add(decimal.NewFromInt(l.Quantity))
	}

	for i := range out {
		var share types.Money
		switch {
		case gross.IsPositive():
			share = totalDiscount.Mul(out[i].LineTotal()).Div(gross)
		case qty.IsPositive():
			share = totalDiscount.Mul(decimal.NewFromInt(out[i].Quantity)).Div(qty)
		default:
			share = totalDiscount.Div(decimal.NewFromInt(int64(len(out))))
		}
		out[i].DiscountMode = DiscountLineAmount
		out[i].DiscountValue = types.Round2(share)
	}
	return out
}

package linking

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"inventra/internal/core/types"
	"inventra/internal/domain/pricing"
	"inventra/pkg/wire"
)

// MappedDocument is a source document translated into target lines.
type MappedDocument struct {
	SourceCode string
	Lines      []pricing.LineItem

	// DocumentDiscount is the source's aggregate discount, set only when it was
	// spread over lines that carried none. It is then the authoritative figure
	// for the target, whatever the rounded lines add up to.
	DocumentDiscount *types.Money
}

// MapLinesIntoTarget converts the items of a source document into editable lines.
//
// An explicit per-unit discount on a source line is kept as such. Otherwise a
// discount is inferred from the gap between the naive line total and the
// final amount reported by the backend, never below zero. If the source has
// an aggregate discount and no line ended up with one, the aggregate is
// spread over the lines for display and kept as the document discount.
// Lines that carry their own discounts are summed as usual.
//
// A source line with no quantity, or a quantity below one, maps to one unit.
func MapLinesIntoTarget(doc SourceDocument) MappedDocument {
	code := doc.Code()
	items := doc.Items()
	lines := make([]pricing.LineItem, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		lines = append(lines, mapLine(it, code))
	}

	out := MappedDocument{SourceCode: code, Lines: lines}

	aggregate, ok := doc.Discount()
	if !ok || !aggregate.IsPositive() {
		return out
	}
	if !pricing.SumLineDiscounts(lines).IsZero() {
		return out
	}
	out.Lines = pricing.DistributeDocumentDiscount(lines, aggregate)
	out.DocumentDiscount = &aggregate
	return out
}

func mapLine(item gjson.Result, sourceCode string) pricing.LineItem {
	qty := int64(1)
	if q, ok := wire.Decimal(item, wire.LineQuantity); ok {
		if n := q.Round(0).IntPart(); n > 1 {
			qty = n
		}
	}

	price, ok := wire.Decimal(item, wire.LineUnitPrice)
	if !ok || price.IsNegative() {
		price = decimal.Zero
	}

	line := pricing.NewLine(wire.String(item, wire.LineProductRef), qty, price)
	line.ProductName = wire.String(item, wire.LineName)

	if perUnit, ok := wire.Decimal(item, wire.LineDiscount); ok {
		if v := types.Round2(types.Clamp(perUnit, decimal.Zero, price)); v.IsPositive() {
			line.DiscountMode = pricing.DiscountPerUnit
			line.DiscountValue = v
		}
	} else if final, ok := wire.Decimal(item, wire.LineFinalAmount); ok {
		if inferred := types.Round2(types.NonNegative(line.LineTotal().Sub(final))); inferred.IsPositive() {
			line.DiscountMode = pricing.DiscountLineAmount
			line.DiscountValue = inferred
		}
	}

	if batch := wire.String(item, wire.LineBatch); batch != "" {
		line.BatchLabel = &batch
	}
	if stock, ok := wire.Decimal(item, wire.LineStock); ok {
		line.StockCeiling = &stock
	}
	if sourceCode != "" {
		ref := sourceCode
		line.SourceDocumentRef = &ref
	}
	return line
}

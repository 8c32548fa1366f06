package documents

import (
	"context"

	"github.com/shopspring/decimal"

	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/core/types"
	"inventra/internal/domain/pricing"
)

// Creator submits a normalized payload to the backend and returns the
// identifier the backend assigned ("" when it echoes none).
type Creator interface {
	CreateDocument(ctx context.Context, cfg corenumerator.Config, payload Payload) (string, error)
}

// Payload is the normalized creation body.
type Payload struct {
	Code                string        `json:"code"`
	Date                string        `json:"date"`
	CenterID            string        `json:"center_id"`
	CenterName          string        `json:"center_name,omitempty"`
	DestinationCenterID string        `json:"destination_center_id,omitempty"`
	CustomerID          string        `json:"customer_id,omitempty"`
	CustomerName        string        `json:"customer_name,omitempty"`
	CustomerEmail       string        `json:"customer_email,omitempty"`
	SourceDocument      string        `json:"source_document,omitempty"`
	Notes               string        `json:"notes,omitempty"`
	Items               []PayloadItem `json:"items"`
	Totals              PayloadTotals `json:"totals"`
}

// PayloadItem is one line as the backend expects it.
type PayloadItem struct {
	ProductID       string      `json:"product_id"`
	ProductName     string      `json:"product_name,omitempty"`
	Quantity        int64       `json:"quantity"`
	UnitPrice       types.Money `json:"unit_price"`
	Discount        types.Money `json:"discount"`
	DiscountPerUnit types.Money `json:"discount_per_unit"`
	BatchNumber     string      `json:"batch_number,omitempty"`
	LineTotal       types.Money `json:"line_total"`
	NetAmount       types.Money `json:"net_amount"`
}

type PayloadTotals struct {
	Amount        types.Money `json:"amount"`
	DiscountTotal types.Money `json:"discount_total"`
	NetTotal      types.Money `json:"net_total"`
}

// buildPayload normalizes a form snapshot. date must already be defaulted.
func buildPayload(code, date string, h Header, lines []pricing.LineItem, totals pricing.Totals, sourceCode string) Payload {
	items := make([]PayloadItem, 0, len(lines))
	for _, l := range lines {
		discount := pricing.LineDiscountAmount(l)
		perUnit := types.Zero()
		if l.Quantity > 0 {
			perUnit = types.Round2(discount.Div(decimal.NewFromInt(l.Quantity)))
		}
		item := PayloadItem{
			ProductID:       l.ProductRef,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			Discount:        discount,
			DiscountPerUnit: perUnit,
			LineTotal:       l.LineTotal(),
			NetAmount:       l.LineNet(),
		}
		if l.BatchLabel != nil {
			item.BatchNumber = *l.BatchLabel
		}
		items = append(items, item)
	}

	return Payload{
		Code:                code,
		Date:                date,
		CenterID:            h.CenterID,
		CenterName:          h.CenterName,
		DestinationCenterID: h.DestinationCenterID,
		CustomerID:          h.CustomerID,
		CustomerName:        h.CustomerName,
		CustomerEmail:       h.CustomerEmail,
		SourceDocument:      sourceCode,
		Notes:               h.Notes,
		Items:               items,
		Totals: PayloadTotals{
			Amount:        totals.Gross,
			DiscountTotal: totals.DiscountTotal,
			NetTotal:      totals.NetTotal,
		},
	}
}

// Package linking seeds a new document from an existing one (an invoice from a
// sales order, a return from an invoice).
package linking

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"inventra/internal/core/types"
	"inventra/pkg/wire"
)

// SourceDocument is a loosely-shaped document returned by a listing endpoint.
// All field access goes through the shared wire path lists.
type SourceDocument struct {
	raw gjson.Result
}

// NewSourceDocument wraps one decoded document.
func NewSourceDocument(raw gjson.Result) SourceDocument {
	return SourceDocument{raw: raw}
}

// ParseSourceDocuments decodes a listing body. Root arrays and the usual
// envelopes (data, data.items, items, results) are accepted.
func ParseSourceDocuments(body []byte) []SourceDocument {
	items := wire.Array(wire.Parse(body), wire.List)
	docs := make([]SourceDocument, 0, len(items))
	for _, it := range items {
		if it.IsObject() {
			docs = append(docs, NewSourceDocument(it))
		}
	}
	return docs
}

// Raw returns the underlying JSON.
func (d SourceDocument) Raw() gjson.Result { return d.raw }

func (d SourceDocument) Code() string          { return wire.String(d.raw, wire.DocCode) }
func (d SourceDocument) Status() string        { return wire.String(d.raw, wire.DocStatus) }
func (d SourceDocument) IsReference() bool     { return wire.Bool(d.raw, wire.DocIsRef) }
func (d SourceDocument) CenterID() string      { return wire.String(d.raw, wire.DocCenterID) }
func (d SourceDocument) CenterName() string    { return wire.String(d.raw, wire.DocCenterName) }
func (d SourceDocument) CustomerID() string    { return wire.String(d.raw, wire.DocCustomerID) }
func (d SourceDocument) CustomerName() string  { return wire.String(d.raw, wire.DocCustomerName) }
func (d SourceDocument) CustomerEmail() string { return wire.String(d.raw, wire.DocCustomerEmail) }
func (d SourceDocument) DateRaw() string       { return wire.String(d.raw, wire.DocDate) }
func (d SourceDocument) Items() []gjson.Result { return wire.Array(d.raw, wire.DocItems) }

// Amount is the document total as reported by the backend.
func (d SourceDocument) Amount() (types.Money, bool) {
	return wire.Decimal(d.raw, wire.DocAmount)
}

// Discount is the aggregate document discount, when the backend reports one.
func (d SourceDocument) Discount() (types.Money, bool) {
	return wire.Decimal(d.raw, wire.DocDiscount)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"02/01/2006",
}

// Date parses the issue date. The zero time is returned when it is absent or unreadable.
func (d SourceDocument) Date() time.Time {
	raw := strings.TrimSpace(d.DateRaw())
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

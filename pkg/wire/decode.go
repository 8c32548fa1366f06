// Package wire decodes loosely-specified backend payloads.
//
// Backends disagree on where a value lives (`next`, `data.next`, `voucher`, ...).
// Each concept gets one ordered list of candidate gjson paths; the first path
// holding a usable value wins.
package wire

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Paths is an ordered list of candidate gjson paths for one concept.
// The empty path "" addresses the document root.
type Paths []string

// Candidate path lists shared by every call site.
var (
	NextCode = Paths{
		"",
		"next", "data.next",
		"current", "data.current",
		"voucher", "data.voucher",
		"number", "data.number",
		"sequence", "data.sequence",
		"data",
	}

	CreatedID = Paths{
		"code", "data.code",
		"voucher", "data.voucher",
		"number", "data.number",
		"id", "data.id",
		"data",
	}

	List = Paths{"", "data", "data.items", "data.data", "items", "results"}

	DocCode          = Paths{"code", "voucher", "voucher_no", "invoice_no", "order_no", "number", "id"}
	DocDate          = Paths{"date", "issued_at", "dateIssued", "created_at", "createdAt"}
	DocStatus        = Paths{"status", "order_status", "state"}
	DocIsRef         = Paths{"is_ref", "isRef", "is_reference", "reference"}
	DocCenterID      = Paths{"center_id", "centerId", "center.id"}
	DocCenterName    = Paths{"center_name", "centerName", "center.name", "center"}
	DocCustomerID    = Paths{"customer_id", "customerId", "customer.id"}
	DocCustomerName  = Paths{"customer_name", "customerName", "customer.name", "customer"}
	DocCustomerEmail = Paths{"customer_email", "customerEmail", "customer.email", "email"}
	DocItems         = Paths{"items", "lines", "products", "details", "data.items"}
	DocAmount        = Paths{"total_amount", "totals.amount", "totalAmount", "grand_total", "amount", "total"}
	DocDiscount      = Paths{"discount_total", "totals.discount_total", "total_discount", "discountTotal", "discount"}

	LineProductRef  = Paths{"product_id", "productId", "product.id", "sku", "item_code"}
	LineName        = Paths{"product_name", "productName", "product.name", "item_name", "name", "title"}
	LineQuantity    = Paths{"quantity", "qty", "count"}
	LineUnitPrice   = Paths{"unit_price", "unitPrice", "price", "rate", "product.price"}
	LineDiscount    = Paths{"discount_per_unit", "discountPerUnit", "unit_discount", "discount"}
	LineFinalAmount = Paths{"line_total", "lineTotal", "net_amount", "final_amount", "amount", "total"}
	LineBatch       = Paths{"batch_number", "batchNumber", "batch_no", "batch", "batches.0.batch_number", "batches.0.batch_no", "batches.0.number", "batches.0"}
	LineStock       = Paths{"available_stock", "stock", "product.stock"}
)

// Lookup returns the first existing, non-null value among paths.
func Lookup(doc gjson.Result, paths Paths) (gjson.Result, bool) {
	for _, p := range paths {
		r := at(doc, p)
		if r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// String returns the first non-empty scalar string among paths.
// Objects and arrays are skipped so that `data` only matches when it is a bare value.
func String(doc gjson.Result, paths Paths) string {
	for _, p := range paths {
		r := at(doc, p)
		switch r.Type {
		case gjson.String, gjson.Number:
			if s := strings.TrimSpace(r.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// Decimal returns the first value among paths that parses as a number.
// Numeric strings ("12.50") are accepted.
func Decimal(doc gjson.Result, paths Paths) (decimal.Decimal, bool) {
	for _, p := range paths {
		r := at(doc, p)
		switch r.Type {
		case gjson.Number:
			if d, err := decimal.NewFromString(r.Raw); err == nil {
				return d, true
			}
		case gjson.String:
			s := strings.TrimSpace(strings.ReplaceAll(r.Str, ",", ""))
			if d, err := decimal.NewFromString(s); err == nil {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

// Bool interprets 1/"1"/true/"true"/"yes" as true.
func Bool(doc gjson.Result, paths Paths) bool {
	r, ok := Lookup(doc, paths)
	if !ok {
		return false
	}
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(r.Str)) {
		case "1", "true", "yes", "y":
			return true
		}
	}
	return false
}

// Array returns the first array among paths.
func Array(doc gjson.Result, paths Paths) []gjson.Result {
	for _, p := range paths {
		r := at(doc, p)
		if r.IsArray() {
			return r.Array()
		}
	}
	return nil
}

func at(doc gjson.Result, path string) gjson.Result {
	if path == "" {
		return doc
	}
	return doc.Get(path)
}

// Parse wraps a raw body. Non-JSON bodies (plain text codes) become a string result.
func Parse(body []byte) gjson.Result {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return gjson.Result{}
	}
	if gjson.Valid(trimmed) {
		return gjson.Parse(trimmed)
	}
	return gjson.Result{Type: gjson.String, Str: trimmed, Raw: trimmed}
}

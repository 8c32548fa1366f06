// Package numerator provides domain contracts for document sequencing.
package numerator

import (
	"fmt"
	"sort"
)

// DocumentType identifies one transactional document kind.
type DocumentType string

const (
	Invoice           DocumentType = "invoice"
	SalesOrder        DocumentType = "sales_order"
	SalesReturn       DocumentType = "sales_return"
	StockTransfer     DocumentType = "stock_transfer"
	StockVerification DocumentType = "stock_verification"
)

// Config holds per-type sequencing and creation settings.
type Config struct {
	Type DocumentType

	// Prefix of the human-readable code (e.g., "INV")
	Prefix string

	// Resource is the REST collection on the backend (e.g., "invoices")
	Resource string

	// AwaitsPayment moves the creation flow to AwaitingPayment after the backend accepts it
	AwaitsPayment bool

	// LinkSource is the document type this one can be seeded from ("" if none)
	LinkSource DocumentType
}

// StorageKey is the durable fallback key for the last confirmed code.
func (c Config) StorageKey() string {
	return fmt.Sprintf("inventory_last_%s_id", c.Type)
}

var configs = map[DocumentType]Config{
	Invoice: {
		Type:          Invoice,
		Prefix:        "INV",
		Resource:      "invoices",
		AwaitsPayment: true,
		LinkSource:    SalesOrder,
	},
	SalesOrder: {
		Type:     SalesOrder,
		Prefix:   "SO",
		Resource: "sales-orders",
	},
	SalesReturn: {
		Type:       SalesReturn,
		Prefix:     "SR",
		Resource:   "sales-returns",
		LinkSource: Invoice,
	},
	StockTransfer: {
		Type:     StockTransfer,
		Prefix:   "ST",
		Resource: "stock-transfers",
	},
	StockVerification: {
		Type:     StockVerification,
		Prefix:   "SV",
		Resource: "stock-verifications",
	},
}

// Lookup returns the configuration for a document type.
func Lookup(t DocumentType) (Config, bool) {
	cfg, ok := configs[t]
	return cfg, ok
}

// MustLookup returns the configuration or panics. Use only with the constants above.
func MustLookup(t DocumentType) Config {
	cfg, ok := configs[t]
	if !ok {
		panic(fmt.Sprintf("numerator: unknown document type %q", t))
	}
	return cfg
}

// All returns every configured document type, sorted by name.
func All() []Config {
	out := make([]Config, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

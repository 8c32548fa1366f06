package numerator

import (
	"context"
)

// Source asks the authoritative server for the next code of a document type.
// Implementations live in infrastructure layer.
type Source interface {
	// FetchNext returns the raw next code, or "" when the server has no sequence yet.
	// Network failures and non-2xx responses (other than "not found") return a transport AppError.
	FetchNext(ctx context.Context, cfg Config) (string, error)
}

// BaselineStore persists the last confirmed code per document type across restarts.
// Values are opaque advisory strings.
type BaselineStore interface {
	// Load returns the stored code and whether one exists.
	Load(ctx context.Context, key string) (string, bool, error)

	// Save overwrites the stored code.
	Save(ctx context.Context, key, code string) error

	// Delete removes the stored code. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

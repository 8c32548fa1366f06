package sequence

import (
	"context"

	"inventra/internal/core/apperror"
	corenumerator "inventra/internal/core/numerator"
)

// Registry holds one reconciler per document type.
type Registry struct {
	reconcilers map[corenumerator.DocumentType]*Reconciler
}

// NewRegistry builds reconcilers for every configured document type.
func NewRegistry(source corenumerator.Source, store corenumerator.BaselineStore, opts ...Option) *Registry {
	reg := &Registry{reconcilers: make(map[corenumerator.DocumentType]*Reconciler)}
	for _, cfg := range corenumerator.All() {
		reg.reconcilers[cfg.Type] = NewReconciler(cfg, source, store, opts...)
	}
	return reg
}

// Get returns the reconciler for a document type.
func (reg *Registry) Get(t corenumerator.DocumentType) (*Reconciler, error) {
	r, ok := reg.reconcilers[t]
	if !ok {
		return nil, apperror.NewNotFound("document type", string(t))
	}
	return r, nil
}

// LoadAll reads every durable baseline. Called once at startup.
func (reg *Registry) LoadAll(ctx context.Context) {
	for _, r := range reg.reconcilers {
		r.Load(ctx)
	}
}

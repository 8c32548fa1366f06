package documents

import (
	"sync"

	"inventra/internal/core/apperror"
	corenumerator "inventra/internal/core/numerator"
)

// FormRegistry keeps the open forms of the process.
type FormRegistry struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

func NewFormRegistry() *FormRegistry {
	return &FormRegistry{forms: make(map[string]*Form)}
}

// Open creates and registers a form.
func (r *FormRegistry) Open(cfg corenumerator.Config) *Form {
	f := NewForm(cfg)
	r.mu.Lock()
	r.forms[f.ID()] = f
	r.mu.Unlock()
	return f
}

// Get returns an open form.
func (r *FormRegistry) Get(formID string) (*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[formID]
	if !ok {
		return nil, apperror.NewNotFound("form", formID)
	}
	return f, nil
}

// Close forgets a form. Closing an unknown form is a no-op.
func (r *FormRegistry) Close(formID string) {
	r.mu.Lock()
	delete(r.forms, formID)
	r.mu.Unlock()
}

// Len returns the number of open forms.
func (r *FormRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

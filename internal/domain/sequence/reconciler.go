// Package sequence keeps the advisory "next code" shown on each document form.
//
// The server is the source of truth. When it cannot be reached the reconciler
// falls back to the successor of the last code confirmed by a successful
// creation, and as a last resort to the first code of the current year.
// Uniqueness is only ever enforced server-side at creation time.
package sequence

import (
	"context"
	"strings"
	"sync"
	"time"

	corenumerator "inventra/internal/core/numerator"
	"inventra/pkg/logger"
	"inventra/pkg/numerator"
)

// Status is the reconciler state machine position.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusFetching        Status = "fetching"
	StatusReady           Status = "ready"
	StatusFallbackApplied Status = "fallback_applied"
	StatusFailed          Status = "failed"
)

// State is a snapshot of one document type's sequencing state.
type State struct {
	DocumentType      corenumerator.DocumentType `json:"documentType"`
	Status            Status                     `json:"status"`
	Displayed         *numerator.Code            `json:"displayed,omitempty"`
	DisplayedCode     string                     `json:"displayedCode"`
	LastConfirmed     *numerator.Code            `json:"lastConfirmed,omitempty"`
	LastConfirmedCode string                     `json:"lastConfirmedCode,omitempty"`
	IsFetching        bool                       `json:"isFetching"`
	FetchError        string                     `json:"fetchError,omitempty"`
	Warning           string                     `json:"warning,omitempty"`
}

// WarningProvisional is surfaced when neither the server nor local memory produced a code.
const WarningProvisional = "sequence server unreachable and no confirmed code on record; showing a provisional code"

// Reconciler produces the next code to display for one document type.
type Reconciler struct {
	cfg    corenumerator.Config
	codec  numerator.Codec
	source corenumerator.Source
	store  corenumerator.BaselineStore

	// mu guards every field below; it is never held across network or store calls.
	mu            sync.Mutex
	loaded        bool
	generation    uint64
	status        Status
	displayed     *numerator.Code
	lastConfirmed *numerator.Code
	fetching      bool
	fetchError    string
	warning       string
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the clock used to derive the current two-digit year.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.codec.Now = now
	}
}

// NewReconciler creates a reconciler for one document type.
// store may be nil, in which case confirmed codes live only in memory.
func NewReconciler(cfg corenumerator.Config, source corenumerator.Source, store corenumerator.BaselineStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		cfg:    cfg,
		codec:  numerator.NewCodec(cfg.Prefix),
		source: source,
		store:  store,
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the document type configuration.
func (r *Reconciler) Config() corenumerator.Config {
	return r.cfg
}

// Codec returns the codec used for this document type.
func (r *Reconciler) Codec() numerator.Codec {
	return r.codec
}

// Load reads the durable baseline. Safe to call more than once; later calls re-read the store.
// A store failure leaves the reconciler without a baseline and is only logged.
func (r *Reconciler) Load(ctx context.Context) {
	var baseline *numerator.Code
	if r.store != nil {
		raw, ok, err := r.store.Load(ctx, r.cfg.StorageKey())
		switch {
		case err != nil:
			logger.Warn(ctx, "baseline load failed", "document_type", r.cfg.Type, "error", err)
		case ok:
			if code, parsed := r.codec.Parse(raw); parsed {
				baseline = &code
			} else {
				logger.Warn(ctx, "ignoring unparseable baseline", "document_type", r.cfg.Type, "value", raw)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = true
	if baseline != nil {
		r.lastConfirmed = baseline
	}
}

func (r *Reconciler) ensureLoaded(ctx context.Context) {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()
	if !loaded {
		r.Load(ctx)
	}
}

// Refresh asks the server for the next code and always leaves a displayable code.
// A newer Refresh supersedes an older one still in flight: the older response is discarded.
func (r *Reconciler) Refresh(ctx context.Context) State {
	r.ensureLoaded(ctx)

	r.mu.Lock()
	r.generation++
	ticket := r.generation
	r.status = StatusFetching
	r.fetching = true
	r.mu.Unlock()

	raw, err := r.source.FetchNext(ctx, r.cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ticket != r.generation {
		logger.Debug(ctx, "discarding superseded sequence response", "document_type", r.cfg.Type, "value", raw)
		return r.snapshotLocked()
	}
	r.fetching = false

	if err != nil {
		r.fetchError = err.Error()
		r.applyFallbackLocked(ctx)
		return r.snapshotLocked()
	}

	r.fetchError = ""
	r.warning = ""
	raw = strings.TrimSpace(raw)
	if raw == "" {
		// First document of this type: not a failure.
		seed := r.notBehindLocked(r.codec.Seed())
		r.displayed = &seed
		r.status = StatusReady
		return r.snapshotLocked()
	}

	code, ok := r.codec.Parse(raw)
	if !ok {
		r.fetchError = "server returned an unreadable code: " + raw
		r.applyFallbackLocked(ctx)
		return r.snapshotLocked()
	}

	code = r.notBehindLocked(code)
	r.displayed = &code
	r.status = StatusReady
	return r.snapshotLocked()
}

// applyFallbackLocked shows the successor of the last confirmed code, or a seed when there is none.
func (r *Reconciler) applyFallbackLocked(ctx context.Context) {
	if r.lastConfirmed != nil {
		next := numerator.Successor(*r.lastConfirmed)
		r.displayed = &next
		r.status = StatusFallbackApplied
		r.warning = ""
		logger.Warn(ctx, "sequence fallback applied",
			"document_type", r.cfg.Type,
			"code", numerator.Format(next),
			"error", r.fetchError,
		)
		return
	}

	seed := r.codec.Seed()
	r.displayed = &seed
	r.status = StatusFailed
	r.warning = WarningProvisional
	logger.Warn(ctx, "sequence unavailable, seeding provisional code",
		"document_type", r.cfg.Type,
		"code", numerator.Format(seed),
		"error", r.fetchError,
	)
}

// notBehindLocked lifts code to the successor of the last confirmed code when the
// server answer is at or below it within the same prefix and year.
func (r *Reconciler) notBehindLocked(code numerator.Code) numerator.Code {
	if r.lastConfirmed == nil {
		return code
	}
	if code.Before(*r.lastConfirmed) || sameCode(code, *r.lastConfirmed) {
		return numerator.Successor(*r.lastConfirmed)
	}
	return code
}

func sameCode(a, b numerator.Code) bool {
	return strings.EqualFold(a.Prefix, b.Prefix) && a.Year == b.Year && a.Sequence == b.Sequence
}

// ConfirmCreated records the code the server accepted, persists it as the new
// baseline and re-queries the server. If the server cannot be reached the
// successor of that code is displayed.
func (r *Reconciler) ConfirmCreated(ctx context.Context, actualCode string) State {
	code, ok := r.codec.Parse(actualCode)
	if !ok {
		logger.Warn(ctx, "created code is not parseable, skipping baseline update",
			"document_type", r.cfg.Type, "code", actualCode)
		return r.Refresh(ctx)
	}

	r.ensureLoaded(ctx)

	r.mu.Lock()
	r.lastConfirmed = &code
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Save(ctx, r.cfg.StorageKey(), numerator.Format(code)); err != nil {
			logger.Warn(ctx, "baseline save failed, keeping it in memory only",
				"document_type", r.cfg.Type, "code", numerator.Format(code), "error", err)
		}
	}

	logger.Info(ctx, "document code confirmed", "document_type", r.cfg.Type, "code", numerator.Format(code))
	return r.Refresh(ctx)
}

// Snapshot returns the current state without touching the server.
func (r *Reconciler) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Reconciler) snapshotLocked() State {
	s := State{
		DocumentType: r.cfg.Type,
		Status:       r.status,
		IsFetching:   r.fetching,
		FetchError:   r.fetchError,
		Warning:      r.warning,
	}
	if r.displayed != nil {
		d := *r.displayed
		s.Displayed = &d
		s.DisplayedCode = numerator.Format(d)
	}
	if r.lastConfirmed != nil {
		c := *r.lastConfirmed
		s.LastConfirmed = &c
		s.LastConfirmedCode = numerator.Format(c)
	}
	return s
}

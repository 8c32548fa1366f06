// Package documents runs the document-entry forms and their creation flow.
package documents

import (
	"context"
	"fmt"
	"time"

	"inventra/internal/core/apperror"
	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/domain/linking"
	"inventra/internal/domain/sequence"
	"inventra/pkg/logger"
	"inventra/pkg/numerator"
)

// Service wires forms to the backend, the sequence reconcilers and the linker.
type Service struct {
	forms     *FormRegistry
	sequences *sequence.Registry
	creator   Creator
	linker    *linking.Service
	now       func() time.Time
}

// NewService creates a new documents service.
func NewService(forms *FormRegistry, sequences *sequence.Registry, creator Creator, linker *linking.Service) *Service {
	return &Service{
		forms:     forms,
		sequences: sequences,
		creator:   creator,
		linker:    linker,
		now:       time.Now,
	}
}

// WithClock overrides the clock used to default the document date.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Overview is a form together with the advisory code it would be created under.
type Overview struct {
	Form     FormView       `json:"form"`
	Sequence sequence.State `json:"sequence"`
}

// SubmitResult reports a successful creation.
type SubmitResult struct {
	Overview
	Code string `json:"code"`
}

// Open starts a new form for t and makes sure a code is displayed.
func (s *Service) Open(ctx context.Context, t corenumerator.DocumentType) (*Form, Overview, error) {
	rec, err := s.sequences.Get(t)
	if err != nil {
		return nil, Overview{}, err
	}
	form := s.forms.Open(rec.Config())

	st := rec.Snapshot()
	if st.Status == sequence.StatusIdle {
		st = rec.Refresh(ctx)
	}
	logger.Info(ctx, "form opened", "form_id", form.ID(), "document_type", t, "code", st.DisplayedCode)
	return form, Overview{Form: form.View(), Sequence: st}, nil
}

// Form returns an open form.
func (s *Service) Form(formID string) (*Form, error) {
	return s.forms.Get(formID)
}

// Describe returns the form together with the current sequence state.
func (s *Service) Describe(form *Form) Overview {
	ov := Overview{Form: form.View()}
	if rec, err := s.sequences.Get(form.Config().Type); err == nil {
		ov.Sequence = rec.Snapshot()
	}
	return ov
}

// Submit validates the form and creates the document on the backend.
//
// Validation errors leave the form in Editing. A backend failure moves it to
// Failed and is returned; the form can be submitted again. On success the
// accepted code is confirmed with the sequence reconciler.
func (s *Service) Submit(ctx context.Context, form *Form) (SubmitResult, error) {
	cfg := form.Config()
	rec, err := s.sequences.Get(cfg.Type)
	if err != nil {
		return SubmitResult{}, err
	}

	st := rec.Snapshot()
	if st.DisplayedCode == "" {
		st = rec.Refresh(ctx)
	}

	payload, err := form.beginSubmit(st.DisplayedCode, s.now())
	if err != nil {
		return SubmitResult{}, err
	}

	echoed, err := s.creator.CreateDocument(ctx, cfg, payload)
	if err != nil {
		form.failSubmit(err)
		logger.Warn(ctx, "document creation failed",
			"form_id", form.ID(), "document_type", cfg.Type, "code", payload.Code, "error", err)
		if apperror.IsConflict(err) {
			// the code is taken; the next attempt uses whatever the server offers now
			rec.Refresh(ctx)
		}
		if apperror.IsAppError(err) {
			return SubmitResult{}, err
		}
		return SubmitResult{}, fmt.Errorf("create %s: %w", cfg.Type, err)
	}

	// Backends often echo a row id next to the code; only a full code of this type counts.
	actual := payload.Code
	if code, ok := rec.Codec().ParseStrict(echoed); ok {
		actual = numerator.Format(code)
	} else if echoed != "" {
		logger.Debug(ctx, "ignoring echoed identifier", "document_type", cfg.Type, "echoed", echoed)
	}
	if err := form.completeSubmit(actual); err != nil {
		return SubmitResult{}, err
	}

	seq := rec.ConfirmCreated(ctx, actual)
	logger.Info(ctx, "document created",
		"form_id", form.ID(), "document_type", cfg.Type, "code", actual, "next_code", seq.DisplayedCode)

	return SubmitResult{
		Overview: Overview{Form: form.View(), Sequence: seq},
		Code:     actual,
	}, nil
}

// ConfirmPayment completes a flow that was waiting for payment.
func (s *Service) ConfirmPayment(ctx context.Context, form *Form) (Overview, error) {
	if form.State() != StateAwaitingPayment {
		return Overview{}, apperror.NewInvalidTransition(string(form.State()), string(StateConfirmed))
	}
	if err := form.flow.Transition(StateConfirmed); err != nil {
		return Overview{}, err
	}
	logger.Info(ctx, "payment confirmed", "form_id", form.ID(), "document_type", form.Config().Type)
	return s.Describe(form), nil
}

// LinkCandidates loads source documents for the form's picker.
func (s *Service) LinkCandidates(ctx context.Context, form *Form, c linking.Criteria) linking.PickerResult {
	return s.linker.LoadCandidates(ctx, form.Picker(), form.Config(), c)
}

// Link seeds the form from a candidate previously loaded into its picker.
func (s *Service) Link(ctx context.Context, form *Form, code string) (Overview, error) {
	cand, ok := form.Picker().Find(code)
	if !ok {
		return Overview{}, apperror.NewNotFound("link candidate", code)
	}
	mapped := linking.MapLinesIntoTarget(cand.Source())
	if err := form.ApplyLink(mapped, cand.Source()); err != nil {
		return Overview{}, err
	}
	logger.Info(ctx, "form linked",
		"form_id", form.ID(), "source", mapped.SourceCode, "lines", len(mapped.Lines))
	return s.Describe(form), nil
}

// Reset clears the form and refreshes the displayed code.
func (s *Service) Reset(ctx context.Context, form *Form) (Overview, error) {
	form.Reset()
	rec, err := s.sequences.Get(form.Config().Type)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Form: form.View(), Sequence: rec.Refresh(ctx)}, nil
}

// Close discards a form. Closing an unknown form is a no-op.
func (s *Service) Close(ctx context.Context, formID string) {
	s.forms.Close(formID)
	logger.Debug(ctx, "form closed", "form_id", formID)
}

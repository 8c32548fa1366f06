package linking

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	corenumerator "inventra/internal/core/numerator"
	"inventra/pkg/logger"
)

// Inline picker messages.
const (
	MessageNotLinkable = "this document type cannot be created from another document"
	MessageLoadFailed  = "could not load source documents, try again"
)

// SourceLister reads source documents from the backend.
// Criteria are passed as a server-side hint only; results are always re-filtered.
type SourceLister interface {
	ListSourceDocuments(ctx context.Context, cfg corenumerator.Config, hint Criteria) ([]gjson.Result, error)
}

// Service loads link candidates into a picker.
type Service struct {
	lister SourceLister
}

// NewService creates a new linking service.
func NewService(lister SourceLister) *Service {
	return &Service{lister: lister}
}

// LoadCandidates fetches, filters and applies candidates for target through picker.
// Failures never escape as errors: they become the picker's inline message.
func (s *Service) LoadCandidates(ctx context.Context, picker *Picker, target corenumerator.Config, c Criteria) PickerResult {
	ticket := picker.Begin(c)

	sourceCfg, ok := corenumerator.Lookup(target.LinkSource)
	if target.LinkSource == "" || !ok {
		picker.Apply(ticket, nil, MessageNotLinkable)
		return picker.Result()
	}

	raw, err := s.lister.ListSourceDocuments(ctx, sourceCfg, c)
	if err != nil {
		logger.Warn(ctx, "link candidates load failed",
			"target", target.Type, "source", sourceCfg.Type, "error", err)
		s.apply(ctx, picker, ticket, nil, MessageLoadFailed)
		return picker.Result()
	}

	docs := make([]SourceDocument, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, NewSourceDocument(r))
	}
	candidates := FindCandidates(sourceCfg.Type, docs, c)

	msg := ""
	if len(candidates) == 0 {
		msg = emptyMessage(sourceCfg)
	}
	s.apply(ctx, picker, ticket, candidates, msg)
	return picker.Result()
}

func (s *Service) apply(ctx context.Context, picker *Picker, ticket uint64, candidates []Candidate, msg string) {
	if !picker.Apply(ticket, candidates, msg) {
		logger.Warn(ctx, "discarding stale link candidates", "ticket", ticket, "count", len(candidates))
	}
}

func emptyMessage(cfg corenumerator.Config) string {
	kind := strings.ReplaceAll(string(cfg.Type), "_", " ")
	return fmt.Sprintf("no matching %ss found for this customer", kind)
}

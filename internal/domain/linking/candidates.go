package linking

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/core/types"
)

// Criteria is the center/customer context the picker was opened for.
type Criteria struct {
	CenterID      string `json:"centerId,omitempty" form:"centerId"`
	CenterName    string `json:"centerName,omitempty" form:"centerName"`
	CustomerID    string `json:"customerId,omitempty" form:"customerId"`
	CustomerName  string `json:"customerName,omitempty" form:"customerName"`
	CustomerEmail string `json:"customerEmail,omitempty" form:"customerEmail"`
}

func (c Criteria) hasCenter() bool {
	return strings.TrimSpace(c.CenterID) != "" || strings.TrimSpace(c.CenterName) != ""
}

func (c Criteria) hasCustomer() bool {
	return strings.TrimSpace(c.CustomerID) != "" ||
		strings.TrimSpace(c.CustomerName) != "" ||
		strings.TrimSpace(c.CustomerEmail) != ""
}

// Candidate is one source document offered in the picker.
type Candidate struct {
	Code        string      `json:"code"`
	DateIssued  string      `json:"dateIssued,omitempty"`
	LineCount   int         `json:"lineCount"`
	TotalAmount types.Money `json:"totalAmount"`

	issued time.Time
	source SourceDocument
}

// Source returns the document the candidate was built from.
func (c Candidate) Source() SourceDocument { return c.source }

// FindCandidates filters source documents for the given context and sorts
// them newest first.
//
// Reference copies are never offered. Sales orders must be completed. A
// document matching the center but not the customer is dropped; there is no
// center-only fallback.
func FindCandidates(sourceKind corenumerator.DocumentType, docs []SourceDocument, c Criteria) []Candidate {
	out := make([]Candidate, 0, len(docs))
	for _, d := range docs {
		if d.IsReference() {
			continue
		}
		if sourceKind == corenumerator.SalesOrder && !isCompleted(d.Status()) {
			continue
		}
		if !matchCenter(d, c) || !matchCustomer(d, c) {
			continue
		}
		out = append(out, newCandidate(d))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].issued.Equal(out[j].issued) {
			return out[i].issued.After(out[j].issued)
		}
		return out[i].DateIssued > out[j].DateIssued
	})
	return out
}

func newCandidate(d SourceDocument) Candidate {
	total, ok := d.Amount()
	if !ok {
		total = decimal.Zero
		for _, l := range MapLinesIntoTarget(d).Lines {
			total = total.Add(l.LineNet())
		}
	}
	return Candidate{
		Code:        d.Code(),
		DateIssued:  d.DateRaw(),
		LineCount:   len(d.Items()),
		TotalAmount: total,
		issued:      d.Date(),
		source:      d,
	}
}

var (
	completedWords = []string{"completed", "complete", "done"}
	negatedWords   = []string{"incomplete", "uncompleted", "not complete", "not done", "undone"}
)

func isCompleted(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, w := range negatedWords {
		if strings.Contains(s, w) {
			return false
		}
	}
	for _, w := range completedWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func matchCenter(d SourceDocument, c Criteria) bool {
	if !c.hasCenter() {
		return true
	}
	if id := strings.TrimSpace(c.CenterID); id != "" && strings.EqualFold(id, d.CenterID()) {
		return true
	}
	return containsFold(d.CenterName(), c.CenterName)
}

// matchCustomer prefers ids: when both sides carry one, nothing else is consulted.
func matchCustomer(d SourceDocument, c Criteria) bool {
	if !c.hasCustomer() {
		return true
	}
	wantID := strings.TrimSpace(c.CustomerID)
	if docID := d.CustomerID(); wantID != "" && docID != "" {
		return strings.EqualFold(wantID, docID)
	}
	return containsFold(d.CustomerName(), c.CustomerName) ||
		containsFold(d.CustomerEmail(), c.CustomerEmail)
}

// containsFold reports whether s contains substr, ignoring case. An empty substr never matches.
func containsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" || s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

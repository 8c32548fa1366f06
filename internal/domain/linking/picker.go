package linking

import (
	"strings"
	"sync"
)

// PickerResult is what the UI renders inside the link picker.
type PickerResult struct {
	Criteria   Criteria    `json:"criteria"`
	Loading    bool        `json:"loading"`
	Candidates []Candidate `json:"candidates"`
	Message    string      `json:"message,omitempty"`
}

// Picker guards candidate results against a context that moved on.
// Each load takes a ticket from Begin; only the latest ticket may apply.
type Picker struct {
	mu         sync.Mutex
	generation uint64
	criteria   Criteria
	loading    bool
	candidates []Candidate
	message    string
}

// NewPicker returns an empty picker.
func NewPicker() *Picker {
	return &Picker{}
}

// Begin starts a load for criteria and invalidates any load still in flight.
func (p *Picker) Begin(c Criteria) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.criteria = c
	p.loading = true
	p.message = ""
	return p.generation
}

// Apply stores the outcome of the load identified by ticket.
// It returns false, leaving the picker untouched, when a newer load has begun.
func (p *Picker) Apply(ticket uint64, candidates []Candidate, message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ticket != p.generation {
		return false
	}
	p.loading = false
	p.candidates = candidates
	p.message = message
	return true
}

// Message is the inline picker message, empty when candidates loaded fine.
func (p *Picker) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

// Find returns the loaded candidate with the given code.
func (p *Picker) Find(code string) (Candidate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	code = strings.TrimSpace(code)
	for _, c := range p.candidates {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return Candidate{}, false
}

// Reset closes the picker. Loads begun earlier can no longer apply.
func (p *Picker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.criteria = Criteria{}
	p.loading = false
	p.candidates = nil
	p.message = ""
}

// Result returns a copy of the current picker state.
func (p *Picker) Result() PickerResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	cands := make([]Candidate, len(p.candidates))
	copy(cands, p.candidates)
	return PickerResult{
		Criteria:   p.criteria,
		Loading:    p.loading,
		Candidates: cands,
		Message:    p.message,
	}
}

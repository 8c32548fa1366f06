package documents

import (
	"strings"
	"sync"
	"time"

	"inventra/internal/core/apperror"
	"inventra/internal/core/id"
	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/core/types"
	"inventra/internal/domain/linking"
	"inventra/internal/domain/pricing"
)

// LineInput creates a line.
type LineInput struct {
	ProductRef    string       `json:"productRef"`
	ProductName   string       `json:"productName"`
	Quantity      int64        `json:"quantity"`
	UnitPrice     types.Money  `json:"unitPrice"`
	DiscountToken string       `json:"discount"`
	BatchLabel    *string      `json:"batchLabel"`
	StockCeiling  *types.Money `json:"stockCeiling"`
}

// LinePatch updates a line. Nil fields are left alone.
type LinePatch struct {
	ProductRef    *string      `json:"productRef"`
	ProductName   *string      `json:"productName"`
	Quantity      *int64       `json:"quantity"`
	UnitPrice     *types.Money `json:"unitPrice"`
	DiscountToken *string      `json:"discount"`
	BatchLabel    *string      `json:"batchLabel"`
	StockCeiling  *types.Money `json:"stockCeiling"`
}

// LineView is a line with its computed amounts.
type LineView struct {
	pricing.LineItem
	LineTotal      types.Money `json:"lineTotal"`
	DiscountAmount types.Money `json:"discountAmount"`
	LineNet        types.Money `json:"lineNet"`
	StockExceeded  bool        `json:"stockExceeded"`
}

// FormView is a JSON-friendly snapshot of a form.
type FormView struct {
	ID           string                     `json:"id"`
	DocumentType corenumerator.DocumentType `json:"documentType"`
	State        FlowState                  `json:"state"`
	Header       Header                     `json:"header"`
	Lines        []LineView                 `json:"lines"`
	Totals       pricing.Totals             `json:"totals"`
	LinkedFrom   string                     `json:"linkedFrom,omitempty"`
	Error        string                     `json:"error,omitempty"`
	CreatedCode  string                     `json:"createdCode,omitempty"`
	Revision     uint64                     `json:"revision"`
}

// Form is the state of one document-entry session: header, lines, the
// document-level discount carried over from a link, and the creation flow.
//
// A linked discount stays authoritative until the user edits a line discount
// or adds or removes a line. Quantity and price edits keep it.
type Form struct {
	id     string
	cfg    corenumerator.Config
	flow   Flow
	picker *linking.Picker

	mu               sync.Mutex
	header           Header
	lines            []pricing.LineItem
	documentDiscount *types.Money
	linkedFrom       string
	lastError        string
	createdCode      string
	revision         uint64

	memoRevision uint64
	memoTotals   *pricing.Totals
}

// NewForm opens an empty form for a document type.
func NewForm(cfg corenumerator.Config) *Form {
	return &Form{
		id:     id.New().String(),
		cfg:    cfg,
		picker: linking.NewPicker(),
		lines:  make([]pricing.LineItem, 0),
	}
}

func (f *Form) ID() string                   { return f.id }
func (f *Form) Config() corenumerator.Config { return f.cfg }
func (f *Form) Picker() *linking.Picker      { return f.picker }
func (f *Form) State() FlowState             { return f.flow.State() }

func (f *Form) editable() error {
	if !f.flow.Editable() {
		return apperror.NewInvalidTransition(string(f.flow.State()), string(StateEditing)).
			WithDetail("form", f.id)
	}
	return nil
}

// touchLocked invalidates memoized totals. clearOverride drops a linked document discount.
func (f *Form) touchLocked(clearOverride bool) {
	f.revision++
	f.lastError = ""
	if clearOverride {
		f.documentDiscount = nil
	}
}

// SetHeader replaces the header.
func (f *Form) SetHeader(h Header) error {
	if err := f.editable(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.header = h
	f.touchLocked(false)
	return nil
}

// AddLine appends a line. A discount token is read against the unit price.
func (f *Form) AddLine(in LineInput) (pricing.LineItem, error) {
	if err := f.editable(); err != nil {
		return pricing.LineItem{}, err
	}
	line := pricing.NewLine(strings.TrimSpace(in.ProductRef), in.Quantity, in.UnitPrice)
	line.ProductName = in.ProductName
	line.BatchLabel = in.BatchLabel
	line.StockCeiling = in.StockCeiling
	applyDiscountToken(&line, in.DiscountToken)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	f.touchLocked(true)
	return line, nil
}

// UpdateLine applies patch to the line with lineID.
func (f *Form) UpdateLine(lineID string, patch LinePatch) (pricing.LineItem, error) {
	if err := f.editable(); err != nil {
		return pricing.LineItem{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.indexLocked(lineID)
	if idx < 0 {
		return pricing.LineItem{}, apperror.NewNotFound("line", lineID)
	}
	line := f.lines[idx]

	if patch.ProductRef != nil {
		line.ProductRef = strings.TrimSpace(*patch.ProductRef)
	}
	if patch.ProductName != nil {
		line.ProductName = *patch.ProductName
	}
	if patch.Quantity != nil {
		line.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		line.UnitPrice = *patch.UnitPrice
	}
	if patch.BatchLabel != nil {
		label := strings.TrimSpace(*patch.BatchLabel)
		if label == "" {
			line.BatchLabel = nil
		} else {
			line.BatchLabel = &label
		}
	}
	if patch.StockCeiling != nil {
		ceiling := *patch.StockCeiling
		line.StockCeiling = &ceiling
	}
	if patch.DiscountToken != nil {
		applyDiscountToken(&line, *patch.DiscountToken)
	}

	f.lines[idx] = line
	f.touchLocked(patch.DiscountToken != nil)
	return line, nil
}

// RemoveLine deletes the line with lineID.
func (f *Form) RemoveLine(lineID string) error {
	if err := f.editable(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.indexLocked(lineID)
	if idx < 0 {
		return apperror.NewNotFound("line", lineID)
	}
	f.lines = append(f.lines[:idx], f.lines[idx+1:]...)
	f.touchLocked(true)
	return nil
}

// ApplyLink replaces the lines with those mapped from a source document.
// Header fields still empty are filled from the source.
func (f *Form) ApplyLink(mapped linking.MappedDocument, source linking.SourceDocument) error {
	if err := f.editable(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lines = append(make([]pricing.LineItem, 0, len(mapped.Lines)), mapped.Lines...)
	f.linkedFrom = mapped.SourceCode
	fillEmpty(&f.header.CustomerID, source.CustomerID())
	fillEmpty(&f.header.CustomerName, source.CustomerName())
	fillEmpty(&f.header.CustomerEmail, source.CustomerEmail())
	fillEmpty(&f.header.CenterID, source.CenterID())
	fillEmpty(&f.header.CenterName, source.CenterName())

	f.touchLocked(true)
	if mapped.DocumentDiscount != nil {
		d := *mapped.DocumentDiscount
		f.documentDiscount = &d
	}
	return nil
}

func fillEmpty(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}

// Reset clears the form for the next document.
func (f *Form) Reset() {
	f.flow.Restart()
	f.picker.Reset()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.header = Header{}
	f.lines = make([]pricing.LineItem, 0)
	f.linkedFrom = ""
	f.createdCode = ""
	f.touchLocked(true)
}

// Totals returns the document totals, recomputed only when the form changed.
func (f *Form) Totals() pricing.Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalsLocked()
}

func (f *Form) totalsLocked() pricing.Totals {
	if f.memoTotals != nil && f.memoRevision == f.revision {
		return *f.memoTotals
	}
	t := pricing.Compute(f.lines, f.documentDiscount)
	f.memoTotals = &t
	f.memoRevision = f.revision
	return t
}

// Validate checks the header and every line. The first problem is returned.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() error {
	if err := f.header.Validate(f.cfg.Type); err != nil {
		return err
	}
	if len(f.lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for _, l := range f.lines {
		if err := validateLine(l); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(l pricing.LineItem) error {
	invalid := func(field, msg string) error {
		return apperror.NewValidation(msg).
			WithDetail("field", field).
			WithDetail("lineId", l.ID)
	}
	switch {
	case l.ProductRef == "":
		return invalid("productRef", "product is required")
	case l.Quantity <= 0:
		return invalid("quantity", "quantity must be positive")
	case l.UnitPrice.IsNegative():
		return invalid("unitPrice", "unit price cannot be negative")
	case !l.DiscountMode.Valid():
		return invalid("discountMode", "unknown discount mode")
	case l.ExceedsStock():
		return apperror.NewStockExceeded(l.ID, l.Quantity, l.StockCeiling.String())
	}
	return nil
}

// View returns a snapshot of the form.
func (f *Form) View() FormView {
	state := f.flow.State()

	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]LineView, 0, len(f.lines))
	for _, l := range f.lines {
		lines = append(lines, LineView{
			LineItem:       l,
			LineTotal:      l.LineTotal(),
			DiscountAmount: pricing.LineDiscountAmount(l),
			LineNet:        l.LineNet(),
			StockExceeded:  l.ExceedsStock(),
		})
	}
	return FormView{
		ID:           f.id,
		DocumentType: f.cfg.Type,
		State:        state,
		Header:       f.header,
		Lines:        lines,
		Totals:       f.totalsLocked(),
		LinkedFrom:   f.linkedFrom,
		Error:        f.lastError,
		CreatedCode:  f.createdCode,
		Revision:     f.revision,
	}
}

// beginSubmit validates the form, moves it to Submitting and returns the payload to send.
func (f *Form) beginSubmit(code string, now time.Time) (Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.validateLocked(); err != nil {
		return Payload{}, err
	}
	if err := f.flow.Transition(StateSubmitting); err != nil {
		return Payload{}, err
	}

	date := f.header.Date
	if date == "" {
		date = now.Format(time.DateOnly)
	}
	lines := append([]pricing.LineItem(nil), f.lines...)
	return buildPayload(code, date, f.header, lines, f.totalsLocked(), f.linkedFrom), nil
}

// completeSubmit records the accepted code and advances the flow.
func (f *Form) completeSubmit(code string) error {
	next := StateConfirmed
	if f.cfg.AwaitsPayment {
		next = StateAwaitingPayment
	}
	if err := f.flow.Transition(next); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdCode = code
	f.lastError = ""
	return nil
}

// failSubmit moves the flow to Failed and keeps the message for the banner.
func (f *Form) failSubmit(cause error) {
	_ = f.flow.Transition(StateFailed)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastError = cause.Error()
	if appErr, ok := apperror.AsAppError(cause); ok {
		f.lastError = appErr.Message
	}
}

func (f *Form) indexLocked(lineID string) int {
	for i, l := range f.lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

// applyDiscountToken sets a per-unit discount from user text. Zero clears the discount.
func applyDiscountToken(line *pricing.LineItem, token string) {
	amount := pricing.ParseDiscountToken(token, line.UnitPrice)
	if amount.IsZero() {
		line.DiscountMode = pricing.DiscountNone
		line.DiscountValue = types.Zero()
		return
	}
	line.DiscountMode = pricing.DiscountPerUnit
	line.DiscountValue = amount
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"inventra/internal/domain/documents"
	"inventra/internal/domain/linking"
	"inventra/internal/infrastructure/http/v1/dto"
)

// FormHandler drives document-entry forms.
// Every mutation answers with the refreshed form so the UI can re-render in one round trip.
type FormHandler struct {
	*BaseHandler
	service *documents.Service
}

// NewFormHandler creates a new form handler.
func NewFormHandler(base *BaseHandler, service *documents.Service) *FormHandler {
	return &FormHandler{BaseHandler: base, service: service}
}

// Create opens a form.
// POST /api/v1/forms
func (h *FormHandler) Create(c *gin.Context) {
	var req dto.CreateFormRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cfg, ok := h.DocumentType(c, req.Type)
	if !ok {
		return
	}

	_, ov, err := h.service.Open(c.Request.Context(), cfg.Type)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ov)
}

// Get returns a form.
// GET /api/v1/forms/:id
func (h *FormHandler) Get(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	h.OK(c, h.service.Describe(form))
}

// Close discards a form.
// DELETE /api/v1/forms/:id
func (h *FormHandler) Close(c *gin.Context) {
	h.service.Close(c.Request.Context(), c.Param("id"))
	h.NoContent(c)
}

// SetHeader replaces the header fields.
// PUT /api/v1/forms/:id/header
func (h *FormHandler) SetHeader(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	var req documents.Header
	if !h.BindJSON(c, &req) {
		return
	}
	if err := form.SetHeader(req); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.service.Describe(form))
}

// AddLine appends a line.
// POST /api/v1/forms/:id/lines
func (h *FormHandler) AddLine(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	var req documents.LineInput
	if !h.BindJSON(c, &req) {
		return
	}
	if _, err := form.AddLine(req); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.service.Describe(form))
}

// UpdateLine patches a line.
// PUT /api/v1/forms/:id/lines/:lineId
func (h *FormHandler) UpdateLine(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	var req documents.LinePatch
	if !h.BindJSON(c, &req) {
		return
	}
	if _, err := form.UpdateLine(c.Param("lineId"), req); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.service.Describe(form))
}

// RemoveLine deletes a line.
// DELETE /api/v1/forms/:id/lines/:lineId
func (h *FormHandler) RemoveLine(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	if err := form.RemoveLine(c.Param("lineId")); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.service.Describe(form))
}

// LinkCandidates lists source documents the form can be seeded from.
// A failed or empty search is reported in the result message, never as an HTTP error.
// GET /api/v1/forms/:id/link-candidates
func (h *FormHandler) LinkCandidates(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	var criteria linking.Criteria
	if !h.BindQuery(c, &criteria) {
		return
	}
	h.OK(c, h.service.LinkCandidates(c.Request.Context(), form, criteria))
}

// Link seeds the form from a listed candidate.
// POST /api/v1/forms/:id/link
func (h *FormHandler) Link(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	var req dto.LinkRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ov, err := h.service.Link(c.Request.Context(), form, req.Code)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ov)
}

// Submit creates the document on the backend.
// POST /api/v1/forms/:id/submit
func (h *FormHandler) Submit(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	res, err := h.service.Submit(c.Request.Context(), form)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, res)
}

// ConfirmPayment completes a flow waiting for payment.
// POST /api/v1/forms/:id/payment
func (h *FormHandler) ConfirmPayment(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	ov, err := h.service.ConfirmPayment(c.Request.Context(), form)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ov)
}

// Reset clears the form and refreshes its code.
// POST /api/v1/forms/:id/reset
func (h *FormHandler) Reset(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	ov, err := h.service.Reset(c.Request.Context(), form)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ov)
}

func (h *FormHandler) form(c *gin.Context) (*documents.Form, bool) {
	form, err := h.service.Form(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return form, true
}

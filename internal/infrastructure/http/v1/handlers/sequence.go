package handlers

import (
	"github.com/gin-gonic/gin"

	"inventra/internal/domain/sequence"
)

// SequenceHandler exposes the advisory next code per document type.
type SequenceHandler struct {
	*BaseHandler
	registry *sequence.Registry
}

// NewSequenceHandler creates a new sequence handler.
func NewSequenceHandler(base *BaseHandler, registry *sequence.Registry) *SequenceHandler {
	return &SequenceHandler{BaseHandler: base, registry: registry}
}

// Get returns the current state, fetching from the server the first time.
// GET /api/v1/sequences/:type
func (h *SequenceHandler) Get(c *gin.Context) {
	rec, ok := h.reconciler(c)
	if !ok {
		return
	}
	st := rec.Snapshot()
	if st.Status == sequence.StatusIdle {
		st = rec.Refresh(c.Request.Context())
	}
	h.OK(c, st)
}

// Refresh re-queries the server.
// POST /api/v1/sequences/:type/refresh
func (h *SequenceHandler) Refresh(c *gin.Context) {
	rec, ok := h.reconciler(c)
	if !ok {
		return
	}
	h.OK(c, rec.Refresh(c.Request.Context()))
}

func (h *SequenceHandler) reconciler(c *gin.Context) (*sequence.Reconciler, bool) {
	cfg, ok := h.DocumentType(c, c.Param("type"))
	if !ok {
		return nil, false
	}
	rec, err := h.registry.Get(cfg.Type)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return rec, true
}

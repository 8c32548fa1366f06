package handlers

import (
	"github.com/gin-gonic/gin"

	"inventra/internal/domain/pricing"
	"inventra/internal/infrastructure/http/v1/dto"
)

// PricingHandler evaluates discounts and totals for the UI's live preview.
type PricingHandler struct {
	*BaseHandler
}

func NewPricingHandler(base *BaseHandler) *PricingHandler {
	return &PricingHandler{BaseHandler: base}
}

// DiscountToken resolves a free-text discount.
// POST /api/v1/pricing/discount-token
func (h *PricingHandler) DiscountToken(c *gin.Context) {
	var req dto.DiscountTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.OK(c, dto.DiscountTokenResponse{
		AmountPerUnit: pricing.ParseDiscountToken(req.Token, req.UnitPrice),
	})
}

// Totals computes document totals for an ad-hoc set of lines.
// POST /api/v1/pricing/totals
func (h *PricingHandler) Totals(c *gin.Context) {
	var req dto.TotalsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]pricing.LineItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, l.ToLineItem())
	}

	if req.DocumentDiscount != nil && req.DocumentDiscount.IsPositive() {
		lines = pricing.DistributeDocumentDiscount(lines, *req.DocumentDiscount)
	} else {
		req.DocumentDiscount = nil
	}

	resp := dto.TotalsResponse{
		Totals: pricing.Compute(lines, req.DocumentDiscount),
		Lines:  make([]dto.LineAmounts, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.LineAmounts{
			ID:             l.ID,
			LineTotal:      l.LineTotal(),
			DiscountAmount: pricing.LineDiscountAmount(l),
			LineNet:        l.LineNet(),
		})
	}
	h.OK(c, resp)
}

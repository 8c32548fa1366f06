package v1

import (
	"github.com/gin-gonic/gin"

	"inventra/internal/infrastructure/http/v1/handlers"
)

func registerSequenceRoutes(group *gin.RouterGroup, h *handlers.SequenceHandler) {
	group.GET("/:type", h.Get)
	group.POST("/:type/refresh", h.Refresh)
}

func registerPricingRoutes(group *gin.RouterGroup, h *handlers.PricingHandler) {
	group.POST("/discount-token", h.DiscountToken)
	group.POST("/totals", h.Totals)
}

// registerFormRoutes wires the form lifecycle: edit, link, submit, pay, reset.
func registerFormRoutes(group *gin.RouterGroup, h *handlers.FormHandler) {
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.DELETE("/:id", h.Close)

	group.PUT("/:id/header", h.SetHeader)
	group.POST("/:id/lines", h.AddLine)
	group.PUT("/:id/lines/:lineId", h.UpdateLine)
	group.DELETE("/:id/lines/:lineId", h.RemoveLine)

	group.GET("/:id/link-candidates", h.LinkCandidates)
	group.POST("/:id/link", h.Link)

	group.POST("/:id/submit", h.Submit)
	group.POST("/:id/payment", h.ConfirmPayment)
	group.POST("/:id/reset", h.Reset)
}

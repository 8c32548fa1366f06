package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "inventra/internal/core/context"
)

// Trace middleware adds request tracing context.
// Incoming IDs are kept so a UI request can be followed into the backend.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext()
		if id := c.GetHeader(appctx.HeaderRequestID); id != "" {
			trace.RequestID = id
		}
		if id := c.GetHeader(appctx.HeaderTraceID); id != "" {
			trace.TraceID = id
		}
		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), trace))

		c.Set("trace_id", trace.TraceID)
		c.Set("request_id", trace.RequestID)

		c.Header(appctx.HeaderRequestID, trace.RequestID)
		c.Header(appctx.HeaderTraceID, trace.TraceID)

		c.Next()
	}
}

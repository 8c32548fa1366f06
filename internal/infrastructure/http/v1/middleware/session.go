package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appctx "inventra/internal/core/context"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderCenterID = "X-Center-ID"
)

// Session copies what the UI sends about the operator into the request context.
//
// Authentication is done upstream. The Authorization header is never inspected,
// only forwarded by the backend client.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := &appctx.Session{
			UserID:        strings.TrimSpace(c.GetHeader(HeaderUserID)),
			CenterID:      strings.TrimSpace(c.GetHeader(HeaderCenterID)),
			Authorization: c.GetHeader("Authorization"),
		}
		c.Request = c.Request.WithContext(appctx.WithSession(c.Request.Context(), s))

		if s.UserID != "" {
			c.Set("user_id", s.UserID)
		}
		c.Next()
	}
}

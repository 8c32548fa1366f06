// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Session carries what the UI tells us about the operator.
// Authentication happens upstream; the token is only forwarded to the backend.
type Session struct {
	UserID        string
	CenterID      string
	Authorization string
}

type sessionKey struct{}

// WithSession adds Session to context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSession returns Session from context.
func GetSession(ctx context.Context) *Session {
	if v, ok := ctx.Value(sessionKey{}).(*Session); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.UserID
	}
	return ""
}

// GetCenterID returns the operator's center from context or empty string.
func GetCenterID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.CenterID
	}
	return ""
}

// GetAuthorization returns the Authorization header value to forward, if any.
func GetAuthorization(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.Authorization
	}
	return ""
}

// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"healthops/internal/core/security"
)

type callerKey struct{}

// WithCaller adds the authenticated caller to context.
// Services receive the caller explicitly; the context copy exists for
// logging and transport code only.
func WithCaller(ctx context.Context, caller security.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller returns the caller from context.
func GetCaller(ctx context.Context) (security.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(security.Caller)
	return c, ok
}

// GetUserID returns caller's user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if c, ok := GetCaller(ctx); ok {
		return c.UserID
	}
	return ""
}

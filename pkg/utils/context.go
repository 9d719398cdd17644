package utils

import (
	"context"

	"gym-booking/pkg/auth"
)

type contextKey string

const scopeKey contextKey = "access_scope"

// SetScopeContext stores the resolved access scope for the request.
func SetScopeContext(ctx context.Context, scope *auth.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// GetScopeFromContext returns the caller scope set by the access middleware.
func GetScopeFromContext(ctx context.Context) (*auth.Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(*auth.Scope)
	if !ok || scope == nil {
		return nil, false
	}
	return scope, true
}

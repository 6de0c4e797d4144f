// Package auth resolves the caller's bearer credential for upstream calls.
package auth

import (
	"context"
	"strings"
)

type contextKey string

// authorizationKey carries the raw Authorization header value through the
// request context. The HTTP transport stashes it before dispatching to MCP.
const authorizationKey contextKey = "authorization"

// WithAuthorization stores an Authorization header value in the context
func WithAuthorization(ctx context.Context, header string) context.Context {
	if header == "" {
		return ctx
	}
	return context.WithValue(ctx, authorizationKey, header)
}

// AuthorizationFromContext extracts the Authorization header value, if any
func AuthorizationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if header, ok := ctx.Value(authorizationKey).(string); ok {
		return header
	}
	return ""
}

// Resolver extracts the caller's bearer credential from a request context,
// with an optional static fallback for local debug invocation.
type Resolver struct {
	debug       bool
	staticToken string
}

// NewResolver creates a credential resolver. staticToken is only consulted
// when debug is true.
func NewResolver(debug bool, staticToken string) *Resolver {
	return &Resolver{debug: debug, staticToken: staticToken}
}

// Authorization returns the Authorization header value for the current call.
// The second return is false when no credential is available; callers must
// fail without making any network or store call in that case.
func (r *Resolver) Authorization(ctx context.Context) (string, bool) {
	if header := AuthorizationFromContext(ctx); header != "" {
		return header, true
	}
	if r.debug && r.staticToken != "" {
		return "Bearer " + r.staticToken, true
	}
	return "", false
}

// BearerToken strips the "Bearer " prefix from an Authorization header value
func BearerToken(header string) string {
	return strings.TrimPrefix(header, "Bearer ")
}

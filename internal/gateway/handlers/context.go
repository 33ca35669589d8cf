package handlers

import (
	"context"

	"acadsys/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity attaches the authenticated caller to a request context
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext resolves the authenticated caller from a request context
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}

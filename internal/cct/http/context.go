// Package http provides HTTP handlers and middleware for capability token issuance,
// verification and capability checks.
package http

import (
	"context"

	"github.com/allisson/cct/internal/cct/domain"
)

// grantKey is a context key type for storing authorization grants.
type grantKey struct{}

// WithGrant stores the grant produced by a successful capability check in the context.
func WithGrant(ctx context.Context, grant *domain.Grant) context.Context {
	return context.WithValue(ctx, grantKey{}, grant)
}

// GetGrant retrieves the grant stored by RequireCapabilityMiddleware.
// Returns (grant, true) if present, or (nil, false) if no check ran.
func GetGrant(ctx context.Context) (*domain.Grant, bool) {
	grant, ok := ctx.Value(grantKey{}).(*domain.Grant)
	return grant, ok
}

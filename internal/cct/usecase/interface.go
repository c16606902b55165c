// Package usecase implements capability token authorization: the guard that answers
// allow/deny queries, the issuance policy that mints tokens from tenant state, and
// tenant state administration.
package usecase

import (
	"context"

	"github.com/allisson/cct/internal/cct/domain"
)

// GuardUseCase decides whether a token may use a capability for a tenant.
type GuardUseCase interface {
	// RequireCap runs the authorization checks in a fixed order and returns the first
	// failure as a *domain.Error (possibly wrapped). Tenant state read failures are
	// returned as is and never turn into an allow.
	RequireCap(ctx context.Context, input *domain.RequireCapInput) (*domain.Grant, error)
}

// TokenUseCase issues tokens under the issuance policy and verifies them.
type TokenUseCase interface {
	// Issue mints a token for a tenant from its current state.
	Issue(ctx context.Context, input *domain.IssueTokenInput) (*domain.IssueTokenOutput, error)

	// Verify checks the token signature, structure and expiry. It does not consult
	// tenant state.
	Verify(ctx context.Context, token string) (*domain.Claims, error)
}

// TenantStateUseCase exposes the cached tenant snapshots to operators.
type TenantStateUseCase interface {
	// Get returns the tenant snapshot, reading the source when fresh is set.
	Get(ctx context.Context, tenantID string, fresh bool) (*domain.TenantState, error)

	// Invalidate drops one tenant from the cache, or all tenants for domain.AnyTenant.
	Invalidate(ctx context.Context, tenantID string) error
}

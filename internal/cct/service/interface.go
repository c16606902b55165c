// Package service provides the technical building blocks of capability token
// authorization: the HMAC token codec, the single-flight tenant state cache, signing
// secret resolution and issuer key verification.
package service

import (
	"context"
	"time"

	"github.com/allisson/cct/internal/cct/domain"
)

// TokenCodec issues and verifies signed capability tokens. Implementations are pure
// functions of their inputs and the signing secret.
type TokenCodec interface {
	// Issue signs a new token. It fails with domain.ErrMissingSecret when no secret is
	// configured and domain.ErrBadCID when the client id is blank.
	Issue(input domain.IssueInput) (token string, claims *domain.Claims, err error)

	// Verify checks a token against the current clock.
	Verify(token string) (*domain.Claims, error)

	// VerifyAt checks a token as if the current time were now. Structural checks run
	// before the expiry check so malformed tokens never report as merely expired.
	VerifyAt(token string, now time.Time) (*domain.Claims, error)
}

// TenantStateSource reads raw tenant records from a backing store.
type TenantStateSource interface {
	// LoadTenantState returns the raw record of a tenant, or domain.ErrTenantStateNotFound
	// when the tenant has no record. Any other error is a read failure.
	LoadTenantState(ctx context.Context, tenantID string) (domain.RawTenantState, error)
}

// TenantStateCache is a read-through TTL cache of normalized tenant snapshots.
// Concurrent misses for the same tenant share a single source read.
type TenantStateCache interface {
	// Get returns the tenant snapshot. bypassCache forces a fresh source read whose
	// result still repopulates the cache. The returned snapshot is shared and read-only.
	Get(ctx context.Context, tenantID string, bypassCache bool) (*domain.TenantState, error)

	// Invalidate drops the cached entry and any pending load of a tenant.
	// domain.AnyTenant clears every tenant.
	Invalidate(tenantID string)
}

// SecretResolver produces the token signing secret.
type SecretResolver interface {
	// Resolve returns the secret bytes. An empty result means no secret is configured.
	Resolve(ctx context.Context) ([]byte, error)
}

// IssuerKeyVerifier authenticates callers of token issuance and tenant admin routes.
type IssuerKeyVerifier interface {
	// Configured reports whether an issuer key hash is set.
	Configured() bool

	// Verify reports whether key matches the configured issuer key hash.
	Verify(key string) bool
}

package usecase

import (
	"context"
	"time"

	"github.com/allisson/cct/internal/cct/domain"
	apperrors "github.com/allisson/cct/internal/errors"
	"github.com/allisson/cct/internal/metrics"
)

// statusOf labels an outcome: "success", the rejection code, or "error".
func statusOf(err error) string {
	if err == nil {
		return "success"
	}
	if code, ok := apperrors.CodeOf(err); ok {
		return code
	}
	return "error"
}

// guardUseCaseWithMetrics decorates GuardUseCase with metrics instrumentation.
// Decisions are labeled "allowed", "dev_bypass" or the rejection code.
type guardUseCaseWithMetrics struct {
	next    GuardUseCase
	metrics metrics.BusinessMetrics
}

// NewGuardUseCaseWithMetrics wraps a GuardUseCase with metrics recording.
func NewGuardUseCaseWithMetrics(useCase GuardUseCase, m metrics.BusinessMetrics) GuardUseCase {
	return &guardUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RequireCap records metrics for authorization decisions.
func (g *guardUseCaseWithMetrics) RequireCap(
	ctx context.Context,
	input *domain.RequireCapInput,
) (*domain.Grant, error) {
	start := time.Now()
	grant, err := g.next.RequireCap(ctx, input)

	status := "allowed"
	switch {
	case err != nil:
		status = statusOf(err)
	case grant.DevBypass:
		status = "dev_bypass"
	}

	g.metrics.RecordOperation(ctx, "cct", "guard_require_cap", status)
	g.metrics.RecordDuration(ctx, "cct", "guard_require_cap", time.Since(start), status)
	g.metrics.RecordGuardDecision(ctx, domain.CapabilityKey(input.Capability), status)

	return grant, err
}

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)

	status := statusOf(err)
	t.metrics.RecordOperation(ctx, "cct", "token_issue", status)
	t.metrics.RecordDuration(ctx, "cct", "token_issue", time.Since(start), status)

	return output, err
}

// Verify records metrics for token verification.
func (t *tokenUseCaseWithMetrics) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	start := time.Now()
	claims, err := t.next.Verify(ctx, token)

	status := statusOf(err)
	t.metrics.RecordOperation(ctx, "cct", "token_verify", status)
	t.metrics.RecordDuration(ctx, "cct", "token_verify", time.Since(start), status)

	return claims, err
}

// tenantStateUseCaseWithMetrics decorates TenantStateUseCase with metrics instrumentation.
type tenantStateUseCaseWithMetrics struct {
	next    TenantStateUseCase
	metrics metrics.BusinessMetrics
}

// NewTenantStateUseCaseWithMetrics wraps a TenantStateUseCase with metrics recording.
func NewTenantStateUseCaseWithMetrics(useCase TenantStateUseCase, m metrics.BusinessMetrics) TenantStateUseCase {
	return &tenantStateUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Get records metrics for tenant state reads.
func (t *tenantStateUseCaseWithMetrics) Get(
	ctx context.Context,
	tenantID string,
	fresh bool,
) (*domain.TenantState, error) {
	start := time.Now()
	state, err := t.next.Get(ctx, tenantID, fresh)

	status := statusOf(err)
	t.metrics.RecordOperation(ctx, "cct", "tenant_state_get", status)
	t.metrics.RecordDuration(ctx, "cct", "tenant_state_get", time.Since(start), status)

	return state, err
}

// Invalidate records metrics for cache invalidations.
func (t *tenantStateUseCaseWithMetrics) Invalidate(ctx context.Context, tenantID string) error {
	start := time.Now()
	err := t.next.Invalidate(ctx, tenantID)

	operation := "tenant_state_invalidate"
	if tenantID == domain.AnyTenant {
		operation = "tenant_state_invalidate_all"
	}

	status := statusOf(err)
	t.metrics.RecordOperation(ctx, "cct", operation, status)
	t.metrics.RecordDuration(ctx, "cct", operation, time.Since(start), status)

	return err
}

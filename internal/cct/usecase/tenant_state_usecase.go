package usecase

import (
	"context"
	"strings"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/cct/service"
	apperrors "github.com/allisson/cct/internal/errors"
)

// tenantStateUseCase implements TenantStateUseCase.
type tenantStateUseCase struct {
	cache service.TenantStateCache
}

func (t *tenantStateUseCase) Get(ctx context.Context, tenantID string, fresh bool) (*domain.TenantState, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "tenant id is required")
	}
	return t.cache.Get(ctx, tenantID, fresh)
}

func (t *tenantStateUseCase) Invalidate(ctx context.Context, tenantID string) error {
	if tenantID == domain.AnyTenant {
		t.cache.Invalidate(domain.AnyTenant)
		return nil
	}

	// A whitespace id must not collapse into AnyTenant and clear every tenant.
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "tenant id is required")
	}
	t.cache.Invalidate(tenantID)
	return nil
}

// NewTenantStateUseCase creates a TenantStateUseCase over cache.
func NewTenantStateUseCase(cache service.TenantStateCache) TenantStateUseCase {
	return &tenantStateUseCase{cache: cache}
}

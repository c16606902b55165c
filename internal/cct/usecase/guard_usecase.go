package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/cct/service"
	apperrors "github.com/allisson/cct/internal/errors"
)

// guardUseCase implements GuardUseCase.
type guardUseCase struct {
	codec  service.TokenCodec
	cache  service.TenantStateCache
	env    domain.Environment
	logger *slog.Logger
	now    func() time.Time
}

// RequireCap evaluates, in order: token presence, token verification, capability
// membership, tenant binding, then tenant state (blocked, contract expiry, revision).
//
// The tokenless development bypass only applies when the caller opts in with
// AllowMissingInDev and the environment is development.
func (g *guardUseCase) RequireCap(ctx context.Context, input *domain.RequireCapInput) (*domain.Grant, error) {
	if input.Token == "" {
		if input.AllowMissingInDev && g.env.AllowsMissingToken() {
			g.logger.Warn("capability check passed without token",
				slog.String("tenant_id", input.TenantID),
				slog.String("capability", input.Capability),
			)
			return &domain.Grant{
				ClientID:  input.TenantID,
				Caps:      []string{input.Capability},
				DevBypass: true,
			}, nil
		}
		return nil, g.reject(input, domain.ErrMissingCCT)
	}

	now := g.now()

	claims, err := g.codec.VerifyAt(input.Token, now)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingSecret):
			g.logger.Error("token signing secret is not configured")
			return nil, fmt.Errorf("%w: %w", domain.ErrCCTMissingSecret, err)
		case errors.Is(err, domain.ErrExpired):
			return nil, g.reject(input, fmt.Errorf("%w: %w", domain.ErrCCTExpired, err))
		default:
			return nil, g.reject(input, fmt.Errorf("%w: %w", domain.ErrInvalidCCT, err))
		}
	}

	if !claims.HasCapability(input.Capability) {
		return nil, g.reject(input, domain.ErrCCTMissingCap)
	}

	if input.TenantID != domain.AnyTenant && claims.ClientID != input.TenantID {
		return nil, g.reject(input, domain.ErrCCTTenantMismatch)
	}

	state, err := g.cache.Get(ctx, claims.ClientID, input.FreshState)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get tenant state")
	}

	if state.IsBlockedAt(now) {
		return nil, g.reject(input, domain.ErrCCTBlocked)
	}
	if state.IsContractExpiredAt(now) {
		return nil, g.reject(input, domain.ErrCCTContractExpired)
	}
	if claims.Rev != state.Rev {
		return nil, g.reject(input, domain.ErrCCTRevoked)
	}

	return &domain.Grant{
		ClientID: claims.ClientID,
		Caps:     claims.Caps,
	}, nil
}

func (g *guardUseCase) reject(input *domain.RequireCapInput, err error) error {
	code, _ := apperrors.CodeOf(err)
	g.logger.Debug("capability check rejected",
		slog.String("tenant_id", input.TenantID),
		slog.String("capability", input.Capability),
		slog.String("code", code),
	)
	return err
}

// NewGuardUseCase creates a GuardUseCase. env gates the development bypass.
func NewGuardUseCase(
	codec service.TokenCodec,
	cache service.TenantStateCache,
	env domain.Environment,
	logger *slog.Logger,
) GuardUseCase {
	return &guardUseCase{
		codec:  codec,
		cache:  cache,
		env:    env,
		logger: logger,
		now:    time.Now,
	}
}

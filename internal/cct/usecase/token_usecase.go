package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/cct/service"
	apperrors "github.com/allisson/cct/internal/errors"
)

// IssuancePolicy holds the issuance bounds. Durations are truncated to whole seconds.
type IssuancePolicy struct {
	// Environment decides whether caller-supplied capabilities are honored.
	Environment domain.Environment
	// DefaultTTL applies when the caller does not ask for a TTL.
	DefaultTTL time.Duration
	// MinTTL and MaxTTL bound the requested TTL.
	MinTTL time.Duration
	MaxTTL time.Duration
	// Bucket is the granularity "now" is floored to, so identical requests within
	// one bucket produce byte-identical tokens.
	Bucket time.Duration
}

// DefaultIssuancePolicy returns the production policy: 1h default TTL bounded to
// [1m, 12h] with 60s buckets.
func DefaultIssuancePolicy() IssuancePolicy {
	return IssuancePolicy{
		Environment: domain.EnvironmentProduction,
		DefaultTTL:  time.Hour,
		MinTTL:      time.Minute,
		MaxTTL:      12 * time.Hour,
		Bucket:      time.Minute,
	}
}

// ttlSeconds resolves the requested TTL to whole seconds within [MinTTL, MaxTTL].
func (p IssuancePolicy) ttlSeconds(requested *int64) int64 {
	minTTL := max(int64(p.MinTTL/time.Second), 1)
	maxTTL := max(int64(p.MaxTTL/time.Second), minTTL)

	ttl := int64(p.DefaultTTL / time.Second)
	if requested != nil {
		ttl = *requested
	}
	return min(max(ttl, minTTL), maxTTL)
}

func (p IssuancePolicy) bucketSeconds() int64 {
	return max(int64(p.Bucket/time.Second), 1)
}

// tokenUseCase implements TokenUseCase.
type tokenUseCase struct {
	policy IssuancePolicy
	codec  service.TokenCodec
	cache  service.TenantStateCache
	logger *slog.Logger
	now    func() time.Time
}

// Issue mints a token for input.ClientID.
//
// This method:
//  1. Bounds the requested TTL with the policy
//  2. Reads the tenant state (cache allowed) and refuses blocked or expired contracts
//  3. Floors "now" to the policy bucket
//  4. Clamps exp to the contract end so no token outlives the contract
//  5. Signs caps from tenant state; a caller override is only honored outside production
//
// iat is never later than the real clock, so bucketing never extends validity.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "clientId is required")
	}

	ttl := t.policy.ttlSeconds(input.TTLSec)

	state, err := t.cache.Get(ctx, clientID, false)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get tenant state")
	}

	now := t.now()
	if state.IsBlockedAt(now) {
		return nil, domain.ErrTenantBlocked
	}
	if state.IsContractExpiredAt(now) {
		return nil, domain.ErrTenantContractExpired
	}

	bucket := t.policy.bucketSeconds()
	nowSec := now.Unix()
	bucketNow := nowSec / bucket * bucket

	exp := bucketNow + ttl
	if state.ActiveUntil != nil {
		exp = min(exp, state.ActiveUntil.Unix())
	}
	if exp <= nowSec {
		return nil, domain.ErrTenantContractExpired
	}

	caps := state.Caps
	if len(input.Caps) > 0 {
		if t.policy.Environment.AllowsCapabilityOverride() {
			caps = input.Caps
		} else {
			t.logger.Warn("ignoring capability override outside development",
				slog.String("tenant_id", clientID),
				slog.String("environment", string(t.policy.Environment)),
			)
		}
	}

	token, claims, err := t.codec.Issue(domain.IssueInput{
		ClientID:       clientID,
		Caps:           caps,
		TTLSec:         exp - bucketNow,
		Rev:            state.Rev,
		PeriodStartSec: domain.UnixPtr(state.Billing.PeriodStart),
		PeriodEndSec:   domain.UnixPtr(state.Billing.PeriodEnd),
		NowSec:         &bucketNow,
	})
	if err != nil {
		return nil, err
	}

	return &domain.IssueTokenOutput{
		Token:           token,
		ClientID:        claims.ClientID,
		Caps:            claims.Caps,
		Rev:             claims.Rev,
		IssuedAt:        claims.IssuedAt,
		ExpiresAt:       claims.ExpiresAt,
		PeriodStart:     claims.PeriodStart,
		PeriodEnd:       claims.PeriodEnd,
		BucketRemaining: bucketNow + bucket - nowSec,
	}, nil
}

// Verify delegates to the codec.
func (t *tokenUseCase) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	return t.codec.Verify(token)
}

// NewTokenUseCase creates a TokenUseCase governed by policy.
func NewTokenUseCase(
	policy IssuancePolicy,
	codec service.TokenCodec,
	cache service.TenantStateCache,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		policy: policy,
		codec:  codec,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

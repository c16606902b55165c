package app

import (
	"context"
	"fmt"

	cctHTTP "github.com/allisson/cct/internal/cct/http"
	cctRepository "github.com/allisson/cct/internal/cct/repository"
	cctService "github.com/allisson/cct/internal/cct/service"
	cctUseCase "github.com/allisson/cct/internal/cct/usecase"
	"github.com/allisson/cct/internal/config"
)

// SigningSecret returns the token signing secret, decrypted through KMS when configured.
// An empty secret is not an error here; the codec rejects it at first use.
func (c *Container) SigningSecret() ([]byte, error) {
	var err error
	c.signingSecretInit.Do(func() {
		c.signingSecret, err = c.initSigningSecret()
		if err != nil {
			c.initErrors["signingSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingSecret"]; exists {
		return nil, storedErr
	}
	return c.signingSecret, nil
}

// TokenCodec returns the HMAC token codec.
func (c *Container) TokenCodec() (cctService.TokenCodec, error) {
	var err error
	c.tokenCodecInit.Do(func() {
		c.tokenCodec, err = c.initTokenCodec()
		if err != nil {
			c.initErrors["tokenCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// TenantStateSource returns the tenant state source selected by TENANT_STATE_SOURCE.
func (c *Container) TenantStateSource() (cctService.TenantStateSource, error) {
	var err error
	c.tenantStateSourceInit.Do(func() {
		c.tenantStateSource, err = c.initTenantStateSource()
		if err != nil {
			c.initErrors["tenantStateSource"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantStateSource"]; exists {
		return nil, storedErr
	}
	return c.tenantStateSource, nil
}

// TenantStateCache returns the process-wide tenant state cache.
func (c *Container) TenantStateCache() (cctService.TenantStateCache, error) {
	var err error
	c.tenantStateCacheInit.Do(func() {
		c.tenantStateCache, err = c.initTenantStateCache()
		if err != nil {
			c.initErrors["tenantStateCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantStateCache"]; exists {
		return nil, storedErr
	}
	return c.tenantStateCache, nil
}

// IssuerKeyVerifier returns the verifier guarding issuance and tenant admin routes.
func (c *Container) IssuerKeyVerifier() cctService.IssuerKeyVerifier {
	c.issuerKeyVerifierInit.Do(func() {
		c.issuerKeyVerifier = cctService.NewIssuerKeyVerifier(c.config.CCTIssuerKeyHash)
	})
	return c.issuerKeyVerifier
}

// IssuancePolicy returns the issuance bounds from configuration.
func (c *Container) IssuancePolicy() cctUseCase.IssuancePolicy {
	return IssuancePolicyFromConfig(c.config)
}

// GuardUseCase returns the authorization guard.
func (c *Container) GuardUseCase() (cctUseCase.GuardUseCase, error) {
	var err error
	c.guardUseCaseInit.Do(func() {
		c.guardUseCase, err = c.initGuardUseCase()
		if err != nil {
			c.initErrors["guardUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["guardUseCase"]; exists {
		return nil, storedErr
	}
	return c.guardUseCase, nil
}

// TokenUseCase returns the token issuance and verification use case.
func (c *Container) TokenUseCase() (cctUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TenantStateUseCase returns the tenant state administration use case.
func (c *Container) TenantStateUseCase() (cctUseCase.TenantStateUseCase, error) {
	var err error
	c.tenantStateUseCaseInit.Do(func() {
		c.tenantStateUseCase, err = c.initTenantStateUseCase()
		if err != nil {
			c.initErrors["tenantStateUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantStateUseCase"]; exists {
		return nil, storedErr
	}
	return c.tenantStateUseCase, nil
}

// TokenHandler returns the HTTP handler for token issuance and verification.
func (c *Container) TokenHandler() (*cctHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// TenantHandler returns the HTTP handler for tenant state administration.
func (c *Container) TenantHandler() (*cctHTTP.TenantHandler, error) {
	var err error
	c.tenantHandlerInit.Do(func() {
		c.tenantHandler, err = c.initTenantHandler()
		if err != nil {
			c.initErrors["tenantHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantHandler"]; exists {
		return nil, storedErr
	}
	return c.tenantHandler, nil
}

// IssuancePolicyFromConfig builds the issuance policy from configuration.
func IssuancePolicyFromConfig(cfg *config.Config) cctUseCase.IssuancePolicy {
	return cctUseCase.IssuancePolicy{
		Environment: cfg.Environment(),
		DefaultTTL:  cfg.CCTDefaultTTL,
		MinTTL:      cfg.CCTMinTTL,
		MaxTTL:      cfg.CCTMaxTTL,
		Bucket:      cfg.CCTIssueBucket,
	}
}

// initSigningSecret resolves CCT_SECRET, decrypting it when CCT_SECRET_KMS_KEY_URI is set.
func (c *Container) initSigningSecret() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	resolver := cctService.NewSecretResolver(c.config.CCTSecret, c.config.CCTSecretKMSKeyURI)
	secret, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token signing secret: %w", err)
	}
	if len(secret) == 0 {
		c.Logger().Warn("CCT_SECRET is not set, token issuance and verification will fail")
	}
	return secret, nil
}

// initTokenCodec creates the token codec with the resolved signing secret.
func (c *Container) initTokenCodec() (cctService.TokenCodec, error) {
	secret, err := c.SigningSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing secret for token codec: %w", err)
	}
	return cctService.NewTokenCodec(secret), nil
}

// initTenantStateSource creates the repository tenant state is read from.
func (c *Container) initTenantStateSource() (cctService.TenantStateSource, error) {
	switch c.config.TenantStateSource {
	case config.TenantStateSourceRedis:
		client, err := c.Redis()
		if err != nil {
			return nil, fmt.Errorf("failed to get redis for tenant state source: %w", err)
		}
		return cctRepository.NewRedisTenantStateRepository(client, c.config.RedisKeyPrefix), nil
	case config.TenantStateSourceDatabase:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tenant state source: %w", err)
		}

		// Select the appropriate repository based on the database driver
		switch c.config.DBDriver {
		case "mysql":
			return cctRepository.NewMySQLTenantStateRepository(db), nil
		case "postgres":
			return cctRepository.NewPostgreSQLTenantStateRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	default:
		return nil, fmt.Errorf("unsupported tenant state source: %s", c.config.TenantStateSource)
	}
}

// initTenantStateCache creates the tenant state cache over the configured source.
func (c *Container) initTenantStateCache() (cctService.TenantStateCache, error) {
	source, err := c.TenantStateSource()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant state source for cache: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for tenant state cache: %w", err)
	}

	return cctService.NewTenantStateCache(
		source,
		c.config.CCTCacheTTL,
		businessMetrics,
		c.Logger(),
	), nil
}

// initGuardUseCase creates the guard use case.
func (c *Container) initGuardUseCase() (cctUseCase.GuardUseCase, error) {
	codec, err := c.TokenCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get token codec for guard use case: %w", err)
	}

	cache, err := c.TenantStateCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant state cache for guard use case: %w", err)
	}

	baseUseCase := cctUseCase.NewGuardUseCase(codec, cache, c.config.Environment(), c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for guard use case: %w", err)
		}
		return cctUseCase.NewGuardUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTokenUseCase creates the token use case.
func (c *Container) initTokenUseCase() (cctUseCase.TokenUseCase, error) {
	codec, err := c.TokenCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get token codec for token use case: %w", err)
	}

	cache, err := c.TenantStateCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant state cache for token use case: %w", err)
	}

	baseUseCase := cctUseCase.NewTokenUseCase(c.IssuancePolicy(), codec, cache, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return cctUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTenantStateUseCase creates the tenant state use case.
func (c *Container) initTenantStateUseCase() (cctUseCase.TenantStateUseCase, error) {
	cache, err := c.TenantStateCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant state cache for tenant state use case: %w", err)
	}

	baseUseCase := cctUseCase.NewTenantStateUseCase(cache)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for tenant state use case: %w", err)
		}
		return cctUseCase.NewTenantStateUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTokenHandler creates the token HTTP handler.
func (c *Container) initTokenHandler() (*cctHTTP.TokenHandler, error) {
	useCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}
	return cctHTTP.NewTokenHandler(useCase, c.Logger()), nil
}

// initTenantHandler creates the tenant HTTP handler.
func (c *Container) initTenantHandler() (*cctHTTP.TenantHandler, error) {
	useCase, err := c.TenantStateUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant state use case for tenant handler: %w", err)
	}
	return cctHTTP.NewTenantHandler(useCase, c.Logger()), nil
}

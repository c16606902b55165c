package http

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/cct/internal/cct/domain"
	cctUseCase "github.com/allisson/cct/internal/cct/usecase"
	"github.com/allisson/cct/internal/httputil"
)

// Requirement describes the capability a route demands of the presented token.
type Requirement struct {
	// Capability is the fixed capability name required by the route.
	Capability string
	// CapabilityParam names a path parameter holding the capability. It takes
	// precedence over Capability when set.
	CapabilityParam string
	// TenantParam names a path parameter holding the tenant id the token must be
	// bound to. Empty accepts any tenant and trusts the token's cid.
	TenantParam string
	// AllowMissingInDev lets tokenless requests through in development only.
	AllowMissingInDev bool
}

func (r Requirement) input(c *gin.Context, token string) *domain.RequireCapInput {
	capability := r.Capability
	if r.CapabilityParam != "" {
		capability = c.Param(r.CapabilityParam)
	}

	tenantID := domain.AnyTenant
	if r.TenantParam != "" {
		tenantID = c.Param(r.TenantParam)
	}

	fresh, _ := strconv.ParseBool(c.Query("fresh"))

	return &domain.RequireCapInput{
		Token:             token,
		TenantID:          tenantID,
		Capability:        capability,
		AllowMissingInDev: r.AllowMissingInDev,
		FreshState:        fresh,
	}
}

// RequireCapabilityMiddleware authorizes the request with the guard and stores the
// resulting grant in the request context (see GetGrant).
//
// Rejections are answered with the guard's code in the error field: 401 for an expired
// token, 403 for any other rejection and 500 when the signing secret is missing or the
// tenant state cannot be read. A "fresh=true" query parameter bypasses the tenant state
// cache for the check.
//
// Usage:
//
//	router.POST("/v1/notifications/:tenant_id",
//	    RequireCapabilityMiddleware(guardUseCase, Requirement{Capability: "push", TenantParam: "tenant_id"}, logger),
//	    handler)
func RequireCapabilityMiddleware(
	guardUseCase cctUseCase.GuardUseCase,
	requirement Requirement,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := requirement.input(c, ExtractToken(c))

		grant, err := guardUseCase.RequireCap(c.Request.Context(), input)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithGrant(c.Request.Context(), grant))
		c.Next()
	}
}

package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/allisson/cct/internal/cct/domain"
	cctService "github.com/allisson/cct/internal/cct/service"
	apperrors "github.com/allisson/cct/internal/errors"
	"github.com/allisson/cct/internal/httputil"
)

// IssuerKeyHeader carries the shared key of trusted issuers and operators.
const IssuerKeyHeader = "X-Issuer-Key"

// IssuerKeyMiddleware restricts issuance and tenant administration routes to callers
// presenting the issuer key.
//
// When no issuer key hash is configured the routes are open in development and closed
// (403) everywhere else. A missing or wrong key yields 401.
func IssuerKeyMiddleware(
	verifier cctService.IssuerKeyVerifier,
	env domain.Environment,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Configured() {
			if env.AllowsMissingToken() {
				c.Next()
				return
			}
			logger.Warn("issuer key is not configured, rejecting privileged request",
				slog.String("path", c.FullPath()))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		if !verifier.Verify(c.GetHeader(IssuerKeyHeader)) {
			logger.Debug("issuer key verification failed", slog.String("client_ip", c.ClientIP()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/cct/http/dto"
	cctUseCase "github.com/allisson/cct/internal/cct/usecase"
	apperrors "github.com/allisson/cct/internal/errors"
	"github.com/allisson/cct/internal/httputil"
)

// TenantHandler handles tenant state administration and capability checks.
type TenantHandler struct {
	tenantStateUseCase cctUseCase.TenantStateUseCase
	logger             *slog.Logger
	now                func() time.Time
}

// NewTenantHandler creates a new tenant handler with required dependencies.
func NewTenantHandler(tenantStateUseCase cctUseCase.TenantStateUseCase, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{
		tenantStateUseCase: tenantStateUseCase,
		logger:             logger,
		now:                time.Now,
	}
}

// GetStateHandler returns the cached snapshot of a tenant.
// GET /v1/cct/tenants/:tenant_id/state - Requires the issuer key.
// A "fresh=true" query parameter reads the source and refreshes the cache.
func (h *TenantHandler) GetStateHandler(c *gin.Context) {
	fresh, err := parseFresh(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	state, err := h.tenantStateUseCase.Get(c.Request.Context(), c.Param("tenant_id"), fresh)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTenantStateToResponse(state, h.now()))
}

// InvalidateHandler drops a tenant from the cache so the next check reads the source.
// POST /v1/cct/tenants/:tenant_id/invalidate - Requires the issuer key.
// Returns 204 No Content.
func (h *TenantHandler) InvalidateHandler(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("tenant_id"))
	if tenantID == domain.AnyTenant {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "tenant id is required"), h.logger)
		return
	}

	if err := h.tenantStateUseCase.Invalidate(c.Request.Context(), tenantID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("tenant state invalidated", slog.String("tenant_id", tenantID))
	c.Status(http.StatusNoContent)
}

// InvalidateAllHandler empties the tenant state cache.
// POST /v1/cct/cache/invalidate - Requires the issuer key.
// Returns 204 No Content.
func (h *TenantHandler) InvalidateAllHandler(c *gin.Context) {
	if err := h.tenantStateUseCase.Invalidate(c.Request.Context(), domain.AnyTenant); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("tenant state cache cleared")
	c.Status(http.StatusNoContent)
}

// CheckCapabilityHandler answers a capability check that RequireCapabilityMiddleware
// already granted.
// GET /v1/cct/tenants/:tenant_id/capabilities/:capability
func (h *TenantHandler) CheckCapabilityHandler(c *gin.Context) {
	grant, ok := GetGrant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, domain.ErrMissingCCT, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(grant))
}

func parseFresh(c *gin.Context) (bool, error) {
	value := c.Query("fresh")
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

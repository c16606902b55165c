package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/cct/http/dto"
	cctUseCase "github.com/allisson/cct/internal/cct/usecase"
	apperrors "github.com/allisson/cct/internal/errors"
	"github.com/allisson/cct/internal/httputil"
	customValidation "github.com/allisson/cct/internal/validation"
)

// TokenHandler handles HTTP requests for capability token issuance and verification.
type TokenHandler struct {
	tokenUseCase cctUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase cctUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueTokenHandler issues a capability token for a tenant.
// POST /v1/cct/token - Requires the issuer key.
// Returns 200 OK with the token. Identical requests within one issuance bucket return
// the same token, so the response is marked cacheable until the bucket ends.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", max(output.BucketRemaining, 0)))
	c.JSON(http.StatusOK, dto.MapIssueTokenOutputToResponse(output))
}

// VerifyTokenHandler verifies a token presented in the body ({"token": ...}) or in the
// request headers. It does not consult tenant state.
// POST /v1/cct/verify
// Returns 200 {"ok":true,"payload":...}, or {"ok":false,"error":<code>} with 401 for an
// expired token, 403 for any other rejection and 500 for a missing signing secret.
func (h *TokenHandler) VerifyTokenHandler(c *gin.Context) {
	token := tokenFromHeaders(c)

	if token == "" && c.Request.ContentLength != 0 {
		var req dto.VerifyTokenRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
		if err := req.Validate(); err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}
		token = strings.TrimSpace(req.Token)
	}

	if token == "" {
		h.rejectVerify(c, domain.ErrMissingCCT)
		return
	}

	claims, err := h.tokenUseCase.Verify(c.Request.Context(), token)
	if err != nil {
		h.rejectVerify(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyTokenResponse{OK: true, Payload: claims})
}

func (h *TokenHandler) rejectVerify(c *gin.Context, err error) {
	code, ok := apperrors.CodeOf(err)
	if !ok {
		code = "internal_error"
	}

	status := httputil.StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("token verification failed", slog.Any("error", err))
	} else {
		h.logger.Debug("token rejected", slog.String("code", code))
	}

	c.JSON(status, dto.VerifyTokenResponse{OK: false, Error: code})
}

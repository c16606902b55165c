package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/cct/internal/cct/domain"
	apperrors "github.com/allisson/cct/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func runHandler(t *testing.T, handle func(c *gin.Context)) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handle(c)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedCode  int
		expectedError string
	}{
		{
			name:          "not found",
			err:           apperrors.Wrap(apperrors.ErrNotFound, "tenant"),
			expectedCode:  http.StatusNotFound,
			expectedError: "not_found",
		},
		{
			name:          "invalid input",
			err:           apperrors.Wrap(apperrors.ErrInvalidInput, "tenant id is required"),
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "invalid_input",
		},
		{
			name:          "unauthorized",
			err:           apperrors.ErrUnauthorized,
			expectedCode:  http.StatusUnauthorized,
			expectedError: "unauthorized",
		},
		{
			name:          "forbidden",
			err:           apperrors.ErrForbidden,
			expectedCode:  http.StatusForbidden,
			expectedError: "forbidden",
		},
		{
			name:          "coded forbidden error reports its code",
			err:           domain.ErrCCTRevoked,
			expectedCode:  http.StatusForbidden,
			expectedError: "cct_revoked",
		},
		{
			name:          "coded unauthorized error reports its code",
			err:           domain.ErrCCTExpired,
			expectedCode:  http.StatusUnauthorized,
			expectedError: "cct_expired",
		},
		{
			name:          "coded error without kind is internal",
			err:           domain.ErrCCTMissingSecret,
			expectedCode:  http.StatusInternalServerError,
			expectedError: "cct_missing_secret",
		},
		{
			name:          "wrapped codec error reports outer code",
			err:           errors.Join(domain.ErrInvalidCCT, domain.ErrBadSignature),
			expectedCode:  http.StatusForbidden,
			expectedError: "invalid_cct",
		},
		{
			name:          "unknown error",
			err:           errors.New("connection refused"),
			expectedCode:  http.StatusInternalServerError,
			expectedError: "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := runHandler(t, func(c *gin.Context) {
				HandleErrorGin(c, tt.err, createTestLogger())
			})

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, tt.expectedCode, StatusOf(tt.err))
		})
	}
}

func TestHandleErrorGin_InternalErrorHidesDetails(t *testing.T) {
	_, response := runHandler(t, func(c *gin.Context) {
		HandleErrorGin(c, errors.New("password=hunter2"), nil)
	})

	assert.Equal(t, "An internal error occurred", response.Message)
	assert.NotContains(t, response.Message, "hunter2")
}

func TestHandleBadRequestGin(t *testing.T) {
	w, response := runHandler(t, func(c *gin.Context) {
		HandleBadRequestGin(c, errors.New("invalid json"), createTestLogger())
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", response.Error)
	assert.Equal(t, "invalid json", response.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	w, response := runHandler(t, func(c *gin.Context) {
		HandleValidationErrorGin(c, errors.New("tenant_id: cannot be blank."), createTestLogger())
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", response.Error)
	assert.Equal(t, "tenant_id: cannot be blank.", response.Message)
}

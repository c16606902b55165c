package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allisson/cct/internal/cct/domain"
	cctMocks "github.com/allisson/cct/internal/cct/usecase/mocks"
)

func TestRunShowTenantState(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	activeUntil := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	state := domain.NewTenantState("acme")
	state.Rev = 7
	state.Caps = []string{"push"}
	state.ActiveUntil = &activeUntil
	state.Blocked = true
	state.BlockedReason = "chargeback"

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &cctMocks.MockTenantStateUseCase{}
		mockUseCase.On("Get", ctx, "acme", false).Return(state, nil)

		var out bytes.Buffer
		err := RunShowTenantState(ctx, mockUseCase, logger, &out, "acme", false, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Revision:         7")
		require.Contains(t, out.String(), "Active until:     2099-01-01T00:00:00Z")
		require.Contains(t, out.String(), "Blocked now:      true")
		require.Contains(t, out.String(), "Blocked until:    -")
		require.Contains(t, out.String(), "Blocked reason:   chargeback")
		require.Contains(t, out.String(), "Contract expired: false")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output-fresh", func(t *testing.T) {
		mockUseCase := &cctMocks.MockTenantStateUseCase{}
		mockUseCase.On("Get", ctx, "acme", true).Return(state, nil)

		var out bytes.Buffer
		err := RunShowTenantState(ctx, mockUseCase, logger, &out, "acme", true, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"tenantId": "acme"`)
		require.Contains(t, out.String(), `"rev": 7`)
		require.Contains(t, out.String(), `"blockedNow": true`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("source-error", func(t *testing.T) {
		mockUseCase := &cctMocks.MockTenantStateUseCase{}
		mockUseCase.On("Get", ctx, "acme", false).Return(nil, errors.New("connection refused"))

		err := RunShowTenantState(ctx, mockUseCase, logger, &bytes.Buffer{}, "acme", false, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to get tenant state")
	})

	t.Run("missing-tenant-id", func(t *testing.T) {
		err := RunShowTenantState(ctx, &cctMocks.MockTenantStateUseCase{}, logger, &bytes.Buffer{}, "", false, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "tenant id is required")
	})
}

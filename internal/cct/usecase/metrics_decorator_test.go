package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/cct/usecase"
	usecaseMocks "github.com/allisson/cct/internal/cct/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics to avoid dependency issues.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordGuardDecision(ctx context.Context, capability, decision string) {
	m.Called(ctx, capability, decision)
}

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "cct", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "cct", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func expectGuardMetrics(m *mockBusinessMetrics, ctx context.Context, status string) {
	expectMetrics(m, ctx, "guard_require_cap", status)
	m.On("RecordGuardDecision", ctx, "push", status).Return().Once()
}

func TestGuardUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	input := &domain.RequireCapInput{Token: "token", TenantID: "acme", Capability: "push"}

	t.Run("RequireCap allowed", func(t *testing.T) {
		mockNext := &usecaseMocks.MockGuardUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewGuardUseCaseWithMetrics(mockNext, mockMetrics)

		grant := &domain.Grant{ClientID: "acme", Caps: []string{"push"}}
		mockNext.On("RequireCap", ctx, input).Return(grant, nil).Once()
		expectGuardMetrics(mockMetrics, ctx, "allowed")

		res, err := uc.RequireCap(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, grant, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("RequireCap dev bypass", func(t *testing.T) {
		mockNext := &usecaseMocks.MockGuardUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewGuardUseCaseWithMetrics(mockNext, mockMetrics)

		grant := &domain.Grant{ClientID: "acme", Caps: []string{"push"}, DevBypass: true}
		mockNext.On("RequireCap", ctx, input).Return(grant, nil).Once()
		expectGuardMetrics(mockMetrics, ctx, "dev_bypass")

		_, err := uc.RequireCap(ctx, input)
		assert.NoError(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("RequireCap rejected with code", func(t *testing.T) {
		mockNext := &usecaseMocks.MockGuardUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewGuardUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("RequireCap", ctx, input).Return(nil, domain.ErrCCTRevoked).Once()
		expectGuardMetrics(mockMetrics, ctx, "cct_revoked")

		res, err := uc.RequireCap(ctx, input)
		assert.ErrorIs(t, err, domain.ErrCCTRevoked)
		assert.Nil(t, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("RequireCap uncoded error", func(t *testing.T) {
		mockNext := &usecaseMocks.MockGuardUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewGuardUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("RequireCap", ctx, input).Return(nil, errors.New("boom")).Once()
		expectGuardMetrics(mockMetrics, ctx, "error")

		_, err := uc.RequireCap(ctx, input)
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})
}

func TestTokenUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Issue success", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

		input := &domain.IssueTokenInput{ClientID: "acme"}
		output := &domain.IssueTokenOutput{Token: "t", ClientID: "acme"}
		mockNext.On("Issue", ctx, input).Return(output, nil).Once()
		expectMetrics(mockMetrics, ctx, "token_issue", "success")

		res, err := uc.Issue(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, output, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Issue blocked", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

		input := &domain.IssueTokenInput{ClientID: "acme"}
		mockNext.On("Issue", ctx, input).Return(nil, domain.ErrTenantBlocked).Once()
		expectMetrics(mockMetrics, ctx, "token_issue", "blocked")

		res, err := uc.Issue(ctx, input)
		assert.ErrorIs(t, err, domain.ErrTenantBlocked)
		assert.Nil(t, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Verify expired", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("Verify", ctx, "token").Return(nil, domain.ErrExpired).Once()
		expectMetrics(mockMetrics, ctx, "token_verify", "expired")

		res, err := uc.Verify(ctx, "token")
		assert.ErrorIs(t, err, domain.ErrExpired)
		assert.Nil(t, res)
		mockMetrics.AssertExpectations(t)
	})
}

func TestTenantStateUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Get success", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTenantStateUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTenantStateUseCaseWithMetrics(mockNext, mockMetrics)

		state := domain.NewTenantState("acme")
		mockNext.On("Get", ctx, "acme", false).Return(state, nil).Once()
		expectMetrics(mockMetrics, ctx, "tenant_state_get", "success")

		res, err := uc.Get(ctx, "acme", false)
		assert.NoError(t, err)
		assert.Equal(t, state, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Invalidate one and all", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTenantStateUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTenantStateUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("Invalidate", ctx, "acme").Return(nil).Once()
		mockNext.On("Invalidate", ctx, domain.AnyTenant).Return(nil).Once()
		expectMetrics(mockMetrics, ctx, "tenant_state_invalidate", "success")
		expectMetrics(mockMetrics, ctx, "tenant_state_invalidate_all", "success")

		assert.NoError(t, uc.Invalidate(ctx, "acme"))
		assert.NoError(t, uc.Invalidate(ctx, domain.AnyTenant))
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

// Package mocks provides mock implementations of the cct use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/cct/internal/cct/domain"
)

// MockGuardUseCase is a mock implementation of GuardUseCase for testing.
type MockGuardUseCase struct {
	mock.Mock
}

// RequireCap mocks the RequireCap method of GuardUseCase.
func (m *MockGuardUseCase) RequireCap(ctx context.Context, input *domain.RequireCapInput) (*domain.Grant, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Grant), args.Error(1)
}

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of TokenUseCase.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssueTokenOutput), args.Error(1)
}

// Verify mocks the Verify method of TokenUseCase.
func (m *MockTokenUseCase) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claims), args.Error(1)
}

// MockTenantStateUseCase is a mock implementation of TenantStateUseCase for testing.
type MockTenantStateUseCase struct {
	mock.Mock
}

// Get mocks the Get method of TenantStateUseCase.
func (m *MockTenantStateUseCase) Get(ctx context.Context, tenantID string, fresh bool) (*domain.TenantState, error) {
	args := m.Called(ctx, tenantID, fresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantState), args.Error(1)
}

// Invalidate mocks the Invalidate method of TenantStateUseCase.
func (m *MockTenantStateUseCase) Invalidate(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

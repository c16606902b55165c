package dto

import (
	"time"

	"github.com/allisson/cct/internal/cct/domain"
)

// IssueTokenResponse represents an issued capability token.
type IssueTokenResponse struct {
	Token       string   `json:"token"`
	ClientID    string   `json:"clientId"`
	Caps        []string `json:"caps"`
	Rev         int64    `json:"rev"`
	IssuedAt    int64    `json:"iat"`
	ExpiresAt   int64    `json:"exp"`
	PeriodStart *int64   `json:"periodStart,omitempty"`
	PeriodEnd   *int64   `json:"periodEnd,omitempty"`
}

// MapIssueTokenOutputToResponse converts the issuance output to an API response.
func MapIssueTokenOutputToResponse(output *domain.IssueTokenOutput) IssueTokenResponse {
	return IssueTokenResponse{
		Token:       output.Token,
		ClientID:    output.ClientID,
		Caps:        output.Caps,
		Rev:         output.Rev,
		IssuedAt:    output.IssuedAt,
		ExpiresAt:   output.ExpiresAt,
		PeriodStart: output.PeriodStart,
		PeriodEnd:   output.PeriodEnd,
	}
}

// VerifyTokenResponse is the outcome of a token verification: the decoded payload when
// OK, the rejection code otherwise.
type VerifyTokenResponse struct {
	OK      bool           `json:"ok"`
	Payload *domain.Claims `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// CapabilityCheckResponse reports a granted capability check.
type CapabilityCheckResponse struct {
	OK        bool     `json:"ok"`
	ClientID  string   `json:"cid"`
	Caps      []string `json:"caps"`
	DevBypass bool     `json:"devBypass,omitempty"`
}

// MapGrantToResponse converts a guard grant to an API response.
func MapGrantToResponse(grant *domain.Grant) CapabilityCheckResponse {
	return CapabilityCheckResponse{
		OK:        true,
		ClientID:  grant.ClientID,
		Caps:      grant.Caps,
		DevBypass: grant.DevBypass,
	}
}

// TenantStateResponse represents a tenant state snapshot along with its evaluation
// at response time.
type TenantStateResponse struct {
	*domain.TenantState
	BlockedNow      bool `json:"blockedNow"`
	ContractExpired bool `json:"contractExpired"`
}

// MapTenantStateToResponse converts a tenant snapshot to an API response evaluated at now.
func MapTenantStateToResponse(state *domain.TenantState, now time.Time) TenantStateResponse {
	return TenantStateResponse{
		TenantState:     state,
		BlockedNow:      state.IsBlockedAt(now),
		ContractExpired: state.IsContractExpiredAt(now),
	}
}

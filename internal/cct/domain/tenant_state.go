package domain

import (
	"strings"
	"time"
)

// EntitlementStatus is the lifecycle status of one capability subscription.
type EntitlementStatus string

const (
	EntitlementActive            EntitlementStatus = "active"
	EntitlementCancelAtPeriodEnd EntitlementStatus = "cancel_at_period_end"
	EntitlementInactive          EntitlementStatus = "inactive"
)

// ParseEntitlementStatus maps raw input onto a known status. Unrecognized input is inactive.
func ParseEntitlementStatus(value any) EntitlementStatus {
	s, _ := value.(string)
	switch status := EntitlementStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case EntitlementActive, EntitlementCancelAtPeriodEnd:
		return status
	default:
		return EntitlementInactive
	}
}

// EntitlementState is the lifecycle record of one capability. It is informational:
// authorization reads TenantState.Caps membership, not this record.
type EntitlementState struct {
	Status            EntitlementStatus `json:"status"`
	ActivatedAt       *time.Time        `json:"activatedAt"`
	CancelRequestedAt *time.Time        `json:"cancelRequestedAt"`
	DeactivatedAt     *time.Time        `json:"deactivatedAt"`
	UpdatedAt         *time.Time        `json:"updatedAt"`
}

// BillingPeriod holds the current billing period bounds.
type BillingPeriod struct {
	PeriodStart *time.Time `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"`
}

// TenantState is the normalized entitlement snapshot of a tenant. Snapshots handed out
// by the tenant state cache are shared between callers and must not be mutated.
type TenantState struct {
	TenantID      string                      `json:"tenantId"`
	Rev           int64                       `json:"rev"`
	Caps          []string                    `json:"caps"`
	ActiveUntil   *time.Time                  `json:"activeUntil"`
	WillNotRenew  bool                        `json:"willNotRenew"`
	Blocked       bool                        `json:"blocked"`
	BlockedUntil  *time.Time                  `json:"blockedUntil"`
	BlockedReason string                      `json:"blockedReason"`
	Billing       BillingPeriod               `json:"billing"`
	Entitlements  map[string]EntitlementState `json:"entitlements"`
}

// RawTenantState is a tenant record as read from a source, before normalization.
type RawTenantState map[string]any

// NewTenantState returns the zero state used for tenants with no record: rev 0,
// no capabilities, not blocked.
func NewTenantState(tenantID string) *TenantState {
	return &TenantState{
		TenantID:     tenantID,
		Caps:         []string{},
		Entitlements: map[string]EntitlementState{},
	}
}

// NormalizeTenantState builds a typed snapshot from a raw record. It never fails:
// malformed dates become nil, malformed counters become 0 and capability lists are
// normalized with NormalizeCapabilities. activeUntil falls back to billing.periodEnd.
// Entitlement keys are stored in CapabilityKey form.
func NormalizeTenantState(tenantID string, raw RawTenantState) *TenantState {
	state := NewTenantState(tenantID)
	if raw == nil {
		return state
	}

	if rev, ok := ParseNonNegativeInt(raw["rev"]); ok {
		state.Rev = rev
	}
	state.Caps = NormalizeCapabilities(raw["caps"])
	state.WillNotRenew = parseBool(raw["willNotRenew"])
	state.Blocked = parseBool(raw["blocked"])
	state.BlockedUntil = ParseTimestamp(raw["blockedUntil"])
	if reason, ok := raw["blockedReason"].(string); ok {
		state.BlockedReason = strings.TrimSpace(reason)
	}

	if billing, ok := raw["billing"].(map[string]any); ok {
		state.Billing.PeriodStart = ParseTimestamp(billing["periodStart"])
		state.Billing.PeriodEnd = ParseTimestamp(billing["periodEnd"])
	}

	state.ActiveUntil = ParseTimestamp(raw["activeUntil"])
	if state.ActiveUntil == nil {
		state.ActiveUntil = state.Billing.PeriodEnd
	}

	if entitlements, ok := raw["entitlements"].(map[string]any); ok {
		for name, value := range entitlements {
			key := CapabilityKey(name)
			if key == "" {
				continue
			}
			record, _ := value.(map[string]any)
			state.Entitlements[key] = EntitlementState{
				Status:            ParseEntitlementStatus(record["status"]),
				ActivatedAt:       ParseTimestamp(record["activatedAt"]),
				CancelRequestedAt: ParseTimestamp(record["cancelRequestedAt"]),
				DeactivatedAt:     ParseTimestamp(record["deactivatedAt"]),
				UpdatedAt:         ParseTimestamp(record["updatedAt"]),
			}
		}
	}

	return state
}

// HasCapability reports whether the tenant currently holds capability.
func (s *TenantState) HasCapability(capability string) bool {
	return ContainsCapability(s.Caps, capability)
}

// Entitlement returns the lifecycle record for capability, looked up case-insensitively.
func (s *TenantState) Entitlement(capability string) (EntitlementState, bool) {
	e, ok := s.Entitlements[CapabilityKey(capability)]
	return e, ok
}

// IsBlockedAt reports whether the tenant is blocked at now. A block with no end is permanent.
func (s *TenantState) IsBlockedAt(now time.Time) bool {
	if !s.Blocked {
		return false
	}
	return s.BlockedUntil == nil || s.BlockedUntil.After(now)
}

// IsContractExpiredAt reports whether now is past the contract end, if one is set.
func (s *TenantState) IsContractExpiredAt(now time.Time) bool {
	return s.ActiveUntil != nil && now.After(*s.ActiveUntil)
}

func parseBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

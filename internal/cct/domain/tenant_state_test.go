package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCapabilities(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{name: "nil", input: nil, expected: []string{}},
		{name: "not a list", input: "push", expected: []string{}},
		{
			name:     "dedupe case-insensitively keeping first spelling",
			input:    []string{"Push", "sms", "PUSH", " sms ", "Email"},
			expected: []string{"Push", "sms", "Email"},
		},
		{name: "drop empties", input: []string{"", "  ", "push"}, expected: []string{"push"}},
		{
			name:     "any slice skips non-strings",
			input:    []any{"push", 3, nil, "Notifications", true},
			expected: []string{"push", "Notifications"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCapabilities(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestContainsCapability(t *testing.T) {
	caps := []string{"Notifications", "push"}

	assert.True(t, ContainsCapability(caps, "notifications"))
	assert.True(t, ContainsCapability(caps, " PUSH "))
	assert.False(t, ContainsCapability(caps, "sms"))
	assert.False(t, ContainsCapability(caps, ""))
	assert.False(t, ContainsCapability(nil, "push"))
}

func TestParseEntitlementStatus(t *testing.T) {
	assert.Equal(t, EntitlementActive, ParseEntitlementStatus("active"))
	assert.Equal(t, EntitlementActive, ParseEntitlementStatus(" ACTIVE "))
	assert.Equal(t, EntitlementCancelAtPeriodEnd, ParseEntitlementStatus("cancel_at_period_end"))
	assert.Equal(t, EntitlementInactive, ParseEntitlementStatus("inactive"))
	assert.Equal(t, EntitlementInactive, ParseEntitlementStatus("trialing"))
	assert.Equal(t, EntitlementInactive, ParseEntitlementStatus(nil))
	assert.Equal(t, EntitlementInactive, ParseEntitlementStatus(1))
}

func decodeRaw(t *testing.T, doc string) RawTenantState {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(doc))
	dec.UseNumber()
	var raw RawTenantState
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestNormalizeTenantState(t *testing.T) {
	t.Run("nil record yields zero state", func(t *testing.T) {
		state := NormalizeTenantState("acme", nil)
		assert.Equal(t, "acme", state.TenantID)
		assert.Equal(t, int64(0), state.Rev)
		assert.Equal(t, []string{}, state.Caps)
		assert.False(t, state.Blocked)
		assert.Nil(t, state.ActiveUntil)
		assert.NotNil(t, state.Entitlements)
	})

	t.Run("full document", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"rev": 5,
			"caps": ["Push", "push", " sms ", ""],
			"willNotRenew": true,
			"blocked": true,
			"blockedUntil": "2030-01-01T00:00:00Z",
			"blockedReason": "  chargeback ",
			"billing": {"periodStart": 1735689600, "periodEnd": "2025-02-01T00:00:00Z"},
			"entitlements": {
				"Push": {"status": "active", "activatedAt": 1735689600000},
				"sms": {"status": "weird", "updatedAt": "garbage"}
			}
		}`)

		state := NormalizeTenantState("acme", raw)

		assert.Equal(t, int64(5), state.Rev)
		assert.Equal(t, []string{"Push", "sms"}, state.Caps)
		assert.True(t, state.WillNotRenew)
		assert.True(t, state.Blocked)
		require.NotNil(t, state.BlockedUntil)
		assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *state.BlockedUntil)
		assert.Equal(t, "chargeback", state.BlockedReason)

		require.NotNil(t, state.Billing.PeriodStart)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *state.Billing.PeriodStart)
		require.NotNil(t, state.Billing.PeriodEnd)
		require.NotNil(t, state.ActiveUntil)
		assert.Equal(t, *state.Billing.PeriodEnd, *state.ActiveUntil)

		push, ok := state.Entitlement("PUSH")
		require.True(t, ok)
		assert.Equal(t, EntitlementActive, push.Status)
		require.NotNil(t, push.ActivatedAt)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *push.ActivatedAt)

		sms, ok := state.Entitlement("sms")
		require.True(t, ok)
		assert.Equal(t, EntitlementInactive, sms.Status)
		assert.Nil(t, sms.UpdatedAt)
	})

	t.Run("explicit activeUntil wins over billing period end", func(t *testing.T) {
		raw := RawTenantState{
			"activeUntil": "2026-06-01T00:00:00Z",
			"billing":     map[string]any{"periodEnd": "2026-01-01T00:00:00Z"},
		}
		state := NormalizeTenantState("acme", raw)
		require.NotNil(t, state.ActiveUntil)
		assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), *state.ActiveUntil)
	})

	t.Run("malformed fields normalize instead of failing", func(t *testing.T) {
		raw := RawTenantState{
			"rev":          -4,
			"caps":         "push",
			"blocked":      "yes",
			"blockedUntil": map[string]any{"foo": 1},
			"billing":      "monthly",
			"entitlements": []any{"push"},
		}
		state := NormalizeTenantState("acme", raw)
		assert.Equal(t, int64(0), state.Rev)
		assert.Equal(t, []string{}, state.Caps)
		assert.False(t, state.Blocked)
		assert.Nil(t, state.BlockedUntil)
		assert.Nil(t, state.ActiveUntil)
		assert.Empty(t, state.Entitlements)
	})

	t.Run("out of range revision normalizes to zero", func(t *testing.T) {
		state := NormalizeTenantState("acme", RawTenantState{"rev": json.Number("9223372036854775808")})
		assert.Equal(t, int64(0), state.Rev)
	})
}

func TestTenantState_IsBlockedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&TenantState{}).IsBlockedAt(now))
	assert.True(t, (&TenantState{Blocked: true}).IsBlockedAt(now))
	assert.True(t, (&TenantState{Blocked: true, BlockedUntil: &future}).IsBlockedAt(now))
	assert.False(t, (&TenantState{Blocked: true, BlockedUntil: &past}).IsBlockedAt(now))
	assert.False(t, (&TenantState{Blocked: true, BlockedUntil: &now}).IsBlockedAt(now))
}

func TestTenantState_IsContractExpiredAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.False(t, (&TenantState{}).IsContractExpiredAt(now))
	assert.True(t, (&TenantState{ActiveUntil: &past}).IsContractExpiredAt(now))
	assert.False(t, (&TenantState{ActiveUntil: &future}).IsContractExpiredAt(now))
	assert.False(t, (&TenantState{ActiveUntil: &now}).IsContractExpiredAt(now))
}

func TestTenantState_HasCapability(t *testing.T) {
	state := &TenantState{Caps: []string{"Notifications"}}
	assert.True(t, state.HasCapability("notifications"))
	assert.False(t, state.HasCapability("push"))
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, EnvironmentProduction, ParseEnvironment(""))
	assert.Equal(t, EnvironmentProduction, ParseEnvironment("prod"))
	assert.Equal(t, EnvironmentProduction, ParseEnvironment("PRODUCTION"))
	assert.Equal(t, EnvironmentDevelopment, ParseEnvironment("development"))
	assert.Equal(t, EnvironmentDevelopment, ParseEnvironment("dev"))
	assert.Equal(t, EnvironmentDevelopment, ParseEnvironment(" Local "))
	assert.Equal(t, EnvironmentStaging, ParseEnvironment("staging"))
	assert.Equal(t, EnvironmentTest, ParseEnvironment("test"))
}

func TestEnvironment_Gates(t *testing.T) {
	assert.False(t, EnvironmentProduction.AllowsMissingToken())
	assert.False(t, EnvironmentProduction.AllowsCapabilityOverride())
	assert.False(t, EnvironmentStaging.AllowsMissingToken())
	assert.True(t, EnvironmentStaging.AllowsCapabilityOverride())
	assert.True(t, EnvironmentDevelopment.AllowsMissingToken())
	assert.True(t, EnvironmentDevelopment.AllowsCapabilityOverride())
}

func TestError(t *testing.T) {
	assert.Equal(t, "cct_revoked", ErrCCTRevoked.Error())
	assert.Equal(t, "cct_revoked", ErrCCTRevoked.ErrorCode())
	assert.Nil(t, ErrMissingSecret.Unwrap())
	assert.NotNil(t, ErrExpired.Unwrap())
}

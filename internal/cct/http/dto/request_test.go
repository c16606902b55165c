package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/cct/internal/cct/domain"
)

func TestIssueTokenRequest_Validate(t *testing.T) {
	ttl := int64(300)

	tests := []struct {
		name      string
		request   IssueTokenRequest
		shouldErr bool
	}{
		{name: "minimal", request: IssueTokenRequest{ClientID: "acme"}},
		{name: "with ttl and caps", request: IssueTokenRequest{ClientID: "acme", TTLSec: &ttl, Caps: []string{"push", "sms"}}},
		{name: "missing client id", request: IssueTokenRequest{}, shouldErr: true},
		{name: "blank client id", request: IssueTokenRequest{ClientID: "   "}, shouldErr: true},
		{name: "client id with slash", request: IssueTokenRequest{ClientID: "acme/eu"}, shouldErr: true},
		{name: "invalid capability", request: IssueTokenRequest{ClientID: "acme", Caps: []string{"push now"}}, shouldErr: true},
		{
			name:      "too many capabilities",
			request:   IssueTokenRequest{ClientID: "acme", Caps: strings.Fields(strings.Repeat("cap ", MaxRequestedCaps+1))},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIssueTokenRequest_ToDomain(t *testing.T) {
	ttl := int64(300)
	request := IssueTokenRequest{ClientID: " acme ", TTLSec: &ttl, Caps: []string{"push"}}

	input := request.ToDomain()

	assert.Equal(t, "acme", input.ClientID)
	assert.Equal(t, &ttl, input.TTLSec)
	assert.Equal(t, []string{"push"}, input.Caps)
}

func TestVerifyTokenRequest_Validate(t *testing.T) {
	assert.NoError(t, (&VerifyTokenRequest{Token: "a.b.c"}).Validate())
	assert.Error(t, (&VerifyTokenRequest{}).Validate())
	assert.Error(t, (&VerifyTokenRequest{Token: " "}).Validate())
}

func TestMapTenantStateToResponse(t *testing.T) {
	now := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	blockedUntil := now.Add(time.Hour)

	state := domain.NewTenantState("acme")
	state.Blocked = true
	state.BlockedUntil = &blockedUntil

	response := MapTenantStateToResponse(state, now)
	assert.True(t, response.BlockedNow)
	assert.False(t, response.ContractExpired)

	response = MapTenantStateToResponse(state, blockedUntil.Add(time.Second))
	assert.False(t, response.BlockedNow)
}

func TestMapGrantToResponse(t *testing.T) {
	response := MapGrantToResponse(&domain.Grant{ClientID: "acme", Caps: []string{"push"}, DevBypass: true})

	assert.True(t, response.OK)
	assert.Equal(t, "acme", response.ClientID)
	assert.True(t, response.DevBypass)
}

// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/allisson/cct/internal/cct/domain"
	customValidation "github.com/allisson/cct/internal/validation"
)

// MaxRequestedCaps bounds the capability override list of an issuance request.
const MaxRequestedCaps = 64

// IssueTokenRequest contains the parameters for issuing a capability token.
type IssueTokenRequest struct {
	ClientID string `json:"clientId"`
	// TTLSec is optional; the configured default applies when omitted and any value
	// is clamped to the configured bounds.
	TTLSec *int64 `json:"ttlSec"`
	// Caps overrides the tenant capabilities outside production only.
	Caps []string `json:"caps"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Identifier,
		),
		validation.Field(&r.Caps,
			validation.Length(0, MaxRequestedCaps),
			validation.Each(customValidation.Identifier),
		),
	)
}

// ToDomain converts the request into the issuance input.
func (r *IssueTokenRequest) ToDomain() *domain.IssueTokenInput {
	return &domain.IssueTokenInput{
		ClientID: strings.TrimSpace(r.ClientID),
		TTLSec:   r.TTLSec,
		Caps:     r.Caps,
	}
}

// VerifyTokenRequest contains a token to verify. The token may also be sent in the
// X-CCT header or with the CCT authorization scheme.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the verify token request is valid.
func (r *VerifyTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

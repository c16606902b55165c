package domain

import (
	apperrors "github.com/allisson/cct/internal/errors"
)

// Error is a CCT rejection with a stable wire code. It unwraps to the generic
// application error that decides its HTTP status; errors with no kind map to 500.
type Error struct {
	code string
	kind error
}

func newError(code string, kind error) *Error {
	return &Error{code: code, kind: kind}
}

// Error returns the wire code.
func (e *Error) Error() string {
	return e.code
}

// ErrorCode returns the wire code.
func (e *Error) ErrorCode() string {
	return e.code
}

// Unwrap exposes the generic application error (ErrForbidden, ErrUnauthorized or nil).
func (e *Error) Unwrap() error {
	return e.kind
}

// Token codec errors.
var (
	// ErrMissingSecret indicates the signing secret is not configured.
	ErrMissingSecret = newError("missing_secret", nil)

	ErrBadFormat    = newError("bad_format", apperrors.ErrForbidden)
	ErrBadSignature = newError("bad_signature", apperrors.ErrForbidden)
	ErrBadPayload   = newError("bad_payload", apperrors.ErrForbidden)
	ErrBadVersion   = newError("bad_version", apperrors.ErrForbidden)
	ErrBadCID       = newError("bad_cid", apperrors.ErrForbidden)
	ErrBadCaps      = newError("bad_caps", apperrors.ErrForbidden)
	ErrBadTimes     = newError("bad_times", apperrors.ErrForbidden)
	ErrBadExp       = newError("bad_exp", apperrors.ErrForbidden)

	// ErrExpired is reported separately from other rejections because the client
	// should re-authenticate rather than escalate.
	ErrExpired = newError("expired", apperrors.ErrUnauthorized)
)

// Authorization guard errors.
var (
	ErrMissingCCT         = newError("missing_cct", apperrors.ErrForbidden)
	ErrCCTMissingSecret   = newError("cct_missing_secret", nil)
	ErrCCTExpired         = newError("cct_expired", apperrors.ErrUnauthorized)
	ErrInvalidCCT         = newError("invalid_cct", apperrors.ErrForbidden)
	ErrCCTMissingCap      = newError("cct_missing_cap", apperrors.ErrForbidden)
	ErrCCTTenantMismatch  = newError("cct_tenant_mismatch", apperrors.ErrForbidden)
	ErrCCTBlocked         = newError("cct_blocked", apperrors.ErrForbidden)
	ErrCCTContractExpired = newError("cct_contract_expired", apperrors.ErrForbidden)
	ErrCCTRevoked         = newError("cct_revoked", apperrors.ErrForbidden)
)

// Issuance policy errors.
var (
	ErrTenantBlocked         = newError("blocked", apperrors.ErrForbidden)
	ErrTenantContractExpired = newError("contract_expired", apperrors.ErrForbidden)
)

// ErrTenantStateNotFound is returned by tenant state sources when the tenant has no
// record. It is the only source error the cache turns into a zero-value state.
var ErrTenantStateNotFound = apperrors.Wrap(apperrors.ErrNotFound, "tenant state not found")

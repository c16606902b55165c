package service

import (
	"strings"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/cct/internal/errors"
)

// issuerKeyVerifier implements IssuerKeyVerifier against an Argon2id hash.
type issuerKeyVerifier struct {
	hasher *pwdhash.PasswordHasher
	hash   string
}

// NewIssuerKeyVerifier creates an IssuerKeyVerifier for hash. An empty hash yields a
// verifier that is not configured and rejects every key.
func NewIssuerKeyVerifier(hash string) IssuerKeyVerifier {
	return &issuerKeyVerifier{
		hasher: newIssuerKeyHasher(),
		hash:   strings.TrimSpace(hash),
	}
}

func (v *issuerKeyVerifier) Configured() bool {
	return v.hash != ""
}

// Verify performs a constant-time comparison of key against the configured hash.
func (v *issuerKeyVerifier) Verify(key string) bool {
	if v.hash == "" || key == "" {
		return false
	}
	ok, err := v.hasher.Verify([]byte(key), v.hash)
	if err != nil {
		return false
	}
	return ok
}

// HashIssuerKey hashes a plaintext issuer key for the CCT_ISSUER_KEY_HASH setting.
func HashIssuerKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "issuer key must not be blank")
	}
	hash, err := newIssuerKeyHasher().Hash([]byte(key))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash issuer key")
	}
	return hash, nil
}

// newIssuerKeyHasher uses the Moderate policy for a balance between security and performance.
func newIssuerKeyHasher() *pwdhash.PasswordHasher {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}
	return hasher
}

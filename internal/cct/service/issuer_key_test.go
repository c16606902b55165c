package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/cct/internal/errors"
)

func TestIssuerKeyVerifier(t *testing.T) {
	hash, err := HashIssuerKey("issuer-key-abc123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	t.Run("Success_MatchingKey", func(t *testing.T) {
		verifier := NewIssuerKeyVerifier(hash)
		assert.True(t, verifier.Configured())
		assert.True(t, verifier.Verify("issuer-key-abc123"))
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		verifier := NewIssuerKeyVerifier(hash)
		assert.False(t, verifier.Verify("issuer-key-xyz"))
		assert.False(t, verifier.Verify(""))
	})

	t.Run("Error_NotConfigured", func(t *testing.T) {
		verifier := NewIssuerKeyVerifier("  ")
		assert.False(t, verifier.Configured())
		assert.False(t, verifier.Verify("issuer-key-abc123"))
	})

	t.Run("Error_MalformedHash", func(t *testing.T) {
		verifier := NewIssuerKeyVerifier("not-a-hash")
		assert.False(t, verifier.Verify("issuer-key-abc123"))
	})
}

func TestHashIssuerKey_Blank(t *testing.T) {
	hash, err := HashIssuerKey(" ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, hash)
}

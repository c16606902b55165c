package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cctService "github.com/allisson/cct/internal/cct/service"
)

// localKeyURI is a fixed localsecrets key so a second keeper can decrypt.
const localKeyURI = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

func TestRunCreateSigningSecret(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	secretLine := regexp.MustCompile(`CCT_SECRET="([^"]+)"`)

	t.Run("plaintext", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunCreateSigningSecret(ctx, logger, &out, ""))

		match := secretLine.FindStringSubmatch(out.String())
		require.Len(t, match, 2)
		assert.Len(t, match[1], 43)
		assert.NotContains(t, out.String(), "CCT_SECRET_KMS_KEY_URI")
	})

	t.Run("kms", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunCreateSigningSecret(ctx, logger, &out, localKeyURI))

		assert.Contains(t, out.String(), `CCT_SECRET_KMS_KEY_URI="`+localKeyURI+`"`)
		match := secretLine.FindStringSubmatch(out.String())
		require.Len(t, match, 2)

		secret, err := cctService.NewSecretResolver(match[1], localKeyURI).Resolve(ctx)
		require.NoError(t, err)
		assert.Len(t, secret, 43)
	})

	t.Run("kms-error", func(t *testing.T) {
		err := RunCreateSigningSecret(ctx, logger, &bytes.Buffer{}, "unknown://key")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}

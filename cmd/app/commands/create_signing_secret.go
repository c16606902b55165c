package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gocloud.dev/secrets"

	cctService "github.com/allisson/cct/internal/cct/service"
)

// signingSecretLength is the number of random bytes in a generated signing secret.
const signingSecretLength = 32

// RunCreateSigningSecret generates a random token signing secret.
//
// Without kmsKeyURI the secret is printed as CCT_SECRET. With kmsKeyURI the secret is
// encrypted by the keeper at that URI (gcpkms://, awskms://, azurekeyvault://,
// hashivault://, base64key://) and printed as base64 ciphertext together with
// CCT_SECRET_KMS_KEY_URI. The ciphertext is decrypted once more before printing so a
// keeper that cannot decrypt is reported here rather than at server start.
//
// Security: never use base64key:// outside local development.
func RunCreateSigningSecret(ctx context.Context, logger *slog.Logger, w io.Writer, kmsKeyURI string) error {
	raw := make([]byte, signingSecretLength)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate signing secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	kmsKeyURI = strings.TrimSpace(kmsKeyURI)
	if kmsKeyURI == "" {
		logger.Info("signing secret generated")
		_, _ = fmt.Fprintln(w, "# Token signing secret (plaintext)")
		_, _ = fmt.Fprintf(w, "CCT_SECRET=\"%s\"\n", secret)
		return nil
	}

	keeper, err := secrets.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, []byte(secret))
	if err != nil {
		return fmt.Errorf("failed to encrypt signing secret with KMS: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(ciphertext)

	resolved, err := cctService.NewSecretResolver(encoded, kmsKeyURI).Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify encrypted signing secret: %w", err)
	}
	if string(resolved) != secret {
		return fmt.Errorf("encrypted signing secret does not decrypt to the generated secret")
	}

	logger.Info("signing secret generated", slog.Bool("kms", true))
	_, _ = fmt.Fprintln(w, "# Token signing secret (KMS mode)")
	_, _ = fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintf(w, "CCT_SECRET_KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(w, "CCT_SECRET=\"%s\"\n", encoded)
	return nil
}

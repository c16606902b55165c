package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cctService "github.com/allisson/cct/internal/cct/service"
)

// issuerKeyLength is the number of random bytes in a generated issuer key.
const issuerKeyLength = 32

// RunHashIssuerKey prints the CCT_ISSUER_KEY_HASH value for key. When key is empty a
// random key is generated and printed once; only its hash should be stored.
func RunHashIssuerKey(logger *slog.Logger, w io.Writer, key string) error {
	generated := key == ""
	if generated {
		raw := make([]byte, issuerKeyLength)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("failed to generate issuer key: %w", err)
		}
		key = base64.RawURLEncoding.EncodeToString(raw)
	}

	hash, err := cctService.HashIssuerKey(key)
	if err != nil {
		return fmt.Errorf("failed to hash issuer key: %w", err)
	}

	logger.Info("issuer key hashed", slog.Bool("generated", generated))

	_, _ = fmt.Fprintln(w, "# Issuer key configuration")
	if generated {
		_, _ = fmt.Fprintln(w, "# Send this key in the X-Issuer-Key header. It is not shown again.")
		_, _ = fmt.Fprintf(w, "# ISSUER_KEY=%s\n", key)
	}
	_, _ = fmt.Fprintf(w, "CCT_ISSUER_KEY_HASH='%s'\n", hash)
	return nil
}

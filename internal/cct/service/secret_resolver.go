package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// secretResolver implements SecretResolver for a plaintext secret or a KMS-wrapped one.
type secretResolver struct {
	secret    string
	kmsKeyURI string
}

// NewSecretResolver creates a SecretResolver. When kmsKeyURI is empty the secret is used
// as is. Otherwise secret must hold base64 ciphertext produced by the keeper at kmsKeyURI
// (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://).
func NewSecretResolver(secret, kmsKeyURI string) SecretResolver {
	return &secretResolver{
		secret:    secret,
		kmsKeyURI: strings.TrimSpace(kmsKeyURI),
	}
}

// Resolve returns the plaintext secret. A blank secret resolves to nil without error so
// the codec reports the missing secret at first use.
func (s *secretResolver) Resolve(ctx context.Context) ([]byte, error) {
	if s.secret == "" {
		return nil, nil
	}
	if s.kmsKeyURI == "" {
		return []byte(s.secret), nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted signing secret: %w", err)
	}

	keeper, err := secrets.OpenKeeper(ctx, s.kmsKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt signing secret: %w", err)
	}
	return plaintext, nil
}

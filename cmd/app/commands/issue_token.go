package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/cct/internal/cct/domain"
	cctService "github.com/allisson/cct/internal/cct/service"
	cctUseCase "github.com/allisson/cct/internal/cct/usecase"
)

// TokenVerifier is the part of the token use case verify-token needs.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Claims, error)
}

type codecVerifier struct {
	codec cctService.TokenCodec
}

// NewCodecVerifier verifies tokens with codec alone, without a tenant state source.
func NewCodecVerifier(codec cctService.TokenCodec) TokenVerifier {
	return &codecVerifier{codec: codec}
}

func (v *codecVerifier) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	return v.codec.Verify(token)
}

// RunIssueToken mints a token for clientID under the configured issuance policy, the
// same way the POST /v1/cct/token endpoint does. ttlSec <= 0 selects the default TTL.
// caps overrides the tenant capabilities outside production only.
func RunIssueToken(
	ctx context.Context,
	tokenUseCase cctUseCase.TokenUseCase,
	logger *slog.Logger,
	w io.Writer,
	clientID string,
	ttlSec int64,
	caps []string,
	format string,
) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return fmt.Errorf("client id is required")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	input := &domain.IssueTokenInput{ClientID: clientID, Caps: caps}
	if ttlSec > 0 {
		input.TTLSec = &ttlSec
	}

	output, err := tokenUseCase.Issue(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("token issued",
		slog.String("client_id", output.ClientID),
		slog.Int64("rev", output.Rev),
		slog.Int64("exp", output.ExpiresAt),
	)

	if format == "json" {
		return writeJSON(w, map[string]any{
			"token":       output.Token,
			"clientId":    output.ClientID,
			"caps":        output.Caps,
			"rev":         output.Rev,
			"iat":         output.IssuedAt,
			"exp":         output.ExpiresAt,
			"periodStart": output.PeriodStart,
			"periodEnd":   output.PeriodEnd,
		})
	}

	_, _ = fmt.Fprintf(w, "Token:      %s\n", output.Token)
	_, _ = fmt.Fprintf(w, "Client ID:  %s\n", output.ClientID)
	_, _ = fmt.Fprintf(w, "Caps:       %s\n", strings.Join(output.Caps, ", "))
	_, _ = fmt.Fprintf(w, "Revision:   %d\n", output.Rev)
	_, _ = fmt.Fprintf(w, "Issued at:  %s\n", formatUnix(output.IssuedAt))
	_, _ = fmt.Fprintf(w, "Expires at: %s\n", formatUnix(output.ExpiresAt))
	return nil
}

// RunVerifyToken checks a token signature, structure and expiry and prints its claims.
// A rejected token is reported as an error carrying the rejection code.
func RunVerifyToken(
	ctx context.Context,
	verifier TokenVerifier,
	logger *slog.Logger,
	w io.Writer,
	token string,
	format string,
) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	claims, err := verifier.Verify(ctx, token)
	if err != nil {
		logger.Warn("token rejected", slog.Any("error", err))
		return fmt.Errorf("token rejected: %w", err)
	}

	if format == "json" {
		return writeJSON(w, map[string]any{"ok": true, "payload": claims})
	}

	_, _ = fmt.Fprintln(w, "Token is valid")
	_, _ = fmt.Fprintf(w, "Client ID:  %s\n", claims.ClientID)
	_, _ = fmt.Fprintf(w, "Caps:       %s\n", strings.Join(claims.Caps, ", "))
	_, _ = fmt.Fprintf(w, "Revision:   %d\n", claims.Rev)
	_, _ = fmt.Fprintf(w, "Issued at:  %s\n", formatUnix(claims.IssuedAt))
	_, _ = fmt.Fprintf(w, "Expires at: %s\n", formatUnix(claims.ExpiresAt))
	return nil
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/cct/internal/cct/http/dto"
	cctUseCase "github.com/allisson/cct/internal/cct/usecase"
)

// RunShowTenantState prints the normalized snapshot the guard would evaluate for
// tenantID. fresh reads the source instead of the cache; a CLI process starts with an
// empty cache, so both paths hit the source once.
func RunShowTenantState(
	ctx context.Context,
	tenantStateUseCase cctUseCase.TenantStateUseCase,
	logger *slog.Logger,
	w io.Writer,
	tenantID string,
	fresh bool,
	format string,
) error {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return fmt.Errorf("tenant id is required")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	state, err := tenantStateUseCase.Get(ctx, tenantID, fresh)
	if err != nil {
		return fmt.Errorf("failed to get tenant state: %w", err)
	}
	logger.Debug("tenant state loaded", slog.String("tenant_id", tenantID), slog.Int64("rev", state.Rev))

	now := time.Now()
	if format == "json" {
		return writeJSON(w, dto.MapTenantStateToResponse(state, now))
	}

	_, _ = fmt.Fprintf(w, "Tenant:           %s\n", state.TenantID)
	_, _ = fmt.Fprintf(w, "Revision:         %d\n", state.Rev)
	_, _ = fmt.Fprintf(w, "Caps:             %s\n", strings.Join(state.Caps, ", "))
	_, _ = fmt.Fprintf(w, "Active until:     %s\n", formatTime(state.ActiveUntil))
	_, _ = fmt.Fprintf(w, "Will not renew:   %t\n", state.WillNotRenew)
	_, _ = fmt.Fprintf(w, "Blocked now:      %t\n", state.IsBlockedAt(now))
	if state.Blocked {
		_, _ = fmt.Fprintf(w, "Blocked until:    %s\n", formatTime(state.BlockedUntil))
		_, _ = fmt.Fprintf(w, "Blocked reason:   %s\n", state.BlockedReason)
	}
	_, _ = fmt.Fprintf(w, "Contract expired: %t\n", state.IsContractExpiredAt(now))
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/allisson/cct/internal/cct/domain"
	apperrors "github.com/allisson/cct/internal/errors"
	"github.com/allisson/cct/internal/metrics"
)

const (
	// DefaultTenantStateTTL is used when no cache TTL is configured.
	DefaultTenantStateTTL = 15 * time.Second
	// MinTenantStateTTL and MaxTenantStateTTL bound the effective TTL.
	MinTenantStateTTL = time.Second
	MaxTenantStateTTL = 5 * time.Minute

	// tenantStateLoadTimeout bounds one source read. Loads are detached from the
	// caller's cancellation because other callers may be waiting on the same load.
	tenantStateLoadTimeout = 10 * time.Second
)

type tenantStateEntry struct {
	state     *domain.TenantState
	expiresAt time.Time
}

// tenantStateCache implements TenantStateCache on top of a singleflight.Group.
//
// Every tenant has a generation counter and the cache has a global epoch. A load
// captures both when it starts and only stores its result if neither changed, so a
// load that was already running when Invalidate was called cannot repopulate the
// entry with data read before the invalidation.
type tenantStateCache struct {
	source  TenantStateSource
	ttl     time.Duration
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]tenantStateEntry
	gens    map[string]uint64
	epoch   uint64
	group   *singleflight.Group
}

// NewTenantStateCache creates a TenantStateCache reading from source. A zero ttl selects
// DefaultTenantStateTTL; any ttl is clamped to [MinTenantStateTTL, MaxTenantStateTTL].
func NewTenantStateCache(
	source TenantStateSource,
	ttl time.Duration,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) TenantStateCache {
	if ttl == 0 {
		ttl = DefaultTenantStateTTL
	}
	return &tenantStateCache{
		source:  source,
		ttl:     ttl,
		metrics: businessMetrics,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]tenantStateEntry),
		gens:    make(map[string]uint64),
		group:   &singleflight.Group{},
	}
}

// ClampTenantStateTTL bounds ttl to [MinTenantStateTTL, MaxTenantStateTTL].
func ClampTenantStateTTL(ttl time.Duration) time.Duration {
	return min(max(ttl, MinTenantStateTTL), MaxTenantStateTTL)
}

// Get serves a fresh cache entry when one exists and otherwise joins or starts the
// tenant's single in-flight load. Waiters honor ctx; the load itself does not.
func (c *tenantStateCache) Get(
	ctx context.Context,
	tenantID string,
	bypassCache bool,
) (*domain.TenantState, error) {
	if !bypassCache {
		if state, ok := c.lookup(tenantID); ok {
			c.metrics.RecordOperation(ctx, "cct", "tenant_state_lookup", "hit")
			return state, nil
		}
	}

	c.mu.Lock()
	group := c.group
	if bypassCache {
		// Detach from any running load so this call reads the source again, and
		// keep that older load from overwriting the result.
		c.gens[tenantID]++
		group.Forget(tenantID)
	}
	gen, epoch := c.gens[tenantID], c.epoch
	c.mu.Unlock()

	status := "miss"
	if bypassCache {
		status = "bypass"
	}
	c.metrics.RecordOperation(ctx, "cct", "tenant_state_lookup", status)

	loadCtx := context.WithoutCancel(ctx)
	ch := group.DoChan(tenantID, func() (any, error) {
		// A load that finished between the miss above and this call has already
		// stored a fresh entry.
		if !bypassCache {
			if state, ok := c.lookup(tenantID); ok {
				return state, nil
			}
		}
		return c.load(loadCtx, tenantID, gen, epoch)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.TenantState), nil
	}
}

// Invalidate drops one tenant, or every tenant for domain.AnyTenant.
func (c *tenantStateCache) Invalidate(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tenantID == domain.AnyTenant {
		c.entries = make(map[string]tenantStateEntry)
		c.gens = make(map[string]uint64)
		c.epoch++
		c.group = &singleflight.Group{}
		c.logger.Info("tenant state cache cleared")
		return
	}

	delete(c.entries, tenantID)
	c.gens[tenantID]++
	c.group.Forget(tenantID)
	c.logger.Info("tenant state invalidated", slog.String("tenant_id", tenantID))
}

func (c *tenantStateCache) lookup(tenantID string) (*domain.TenantState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[tenantID]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.After(c.now()) {
		delete(c.entries, tenantID)
		return nil, false
	}
	return entry.state, true
}

// load reads and normalizes one tenant. A missing record becomes the zero state;
// read errors are returned and never cached.
func (c *tenantStateCache) load(
	ctx context.Context,
	tenantID string,
	gen, epoch uint64,
) (*domain.TenantState, error) {
	ctx, cancel := context.WithTimeout(ctx, tenantStateLoadTimeout)
	defer cancel()

	start := time.Now()
	raw, err := c.source.LoadTenantState(ctx, tenantID)

	var state *domain.TenantState
	switch {
	case err == nil:
		state = domain.NormalizeTenantState(tenantID, raw)
	case apperrors.Is(err, apperrors.ErrNotFound):
		state = domain.NewTenantState(tenantID)
	default:
		c.metrics.RecordDuration(ctx, "cct", "tenant_state_load", time.Since(start), "error")
		c.logger.Error("failed to load tenant state",
			slog.String("tenant_id", tenantID),
			slog.Any("error", err),
		)
		return nil, apperrors.Wrap(err, "failed to load tenant state")
	}
	c.metrics.RecordDuration(ctx, "cct", "tenant_state_load", time.Since(start), "success")

	c.mu.Lock()
	if c.gens[tenantID] == gen && c.epoch == epoch {
		c.entries[tenantID] = tenantStateEntry{
			state:     state,
			expiresAt: c.now().Add(ClampTenantStateTTL(c.ttl)),
		}
	}
	c.mu.Unlock()

	return state, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/allisson/cct/internal/cct/domain"
	apperrors "github.com/allisson/cct/internal/errors"
)

// DefaultRedisKeyPrefix namespaces tenant documents in Redis.
const DefaultRedisKeyPrefix = "cct:tenant:"

// RedisTenantStateRepository reads tenant state documents stored as JSON strings
// under keyPrefix+tenantID.
type RedisTenantStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

// LoadTenantState retrieves the document of tenantID. A missing key yields
// domain.ErrTenantStateNotFound; connection errors are returned wrapped.
func (r *RedisTenantStateRepository) LoadTenantState(
	ctx context.Context,
	tenantID string,
) (domain.RawTenantState, error) {
	document, err := r.client.Get(ctx, r.key(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTenantStateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant state")
	}

	return decodeTenantStateDocument(document)
}

func (r *RedisTenantStateRepository) key(tenantID string) string {
	return r.keyPrefix + tenantID
}

// NewRedisTenantStateRepository creates a new Redis tenant state repository.
// An empty keyPrefix selects DefaultRedisKeyPrefix.
func NewRedisTenantStateRepository(client *redis.Client, keyPrefix string) *RedisTenantStateRepository {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisTenantStateRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/database"
	apperrors "github.com/allisson/cct/internal/errors"
)

// PostgreSQLTenantStateRepository reads tenant state documents from a JSONB column.
// Uses transaction support via database.GetTx().
type PostgreSQLTenantStateRepository struct {
	db *sql.DB
}

// LoadTenantState retrieves the document of tenantID. Returns domain.ErrTenantStateNotFound
// if the tenant has no row, or an error if the query or decoding fails.
func (p *PostgreSQLTenantStateRepository) LoadTenantState(
	ctx context.Context,
	tenantID string,
) (domain.RawTenantState, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT document FROM tenant_states WHERE tenant_id = $1`

	var document []byte
	if err := querier.QueryRowContext(ctx, query, tenantID).Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantStateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant state")
	}

	return decodeTenantStateDocument(document)
}

// NewPostgreSQLTenantStateRepository creates a new PostgreSQL tenant state repository.
func NewPostgreSQLTenantStateRepository(db *sql.DB) *PostgreSQLTenantStateRepository {
	return &PostgreSQLTenantStateRepository{db: db}
}

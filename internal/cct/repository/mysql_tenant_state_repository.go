package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/database"
	apperrors "github.com/allisson/cct/internal/errors"
)

// MySQLTenantStateRepository reads tenant state documents from a JSON column.
// Uses transaction support via database.GetTx().
type MySQLTenantStateRepository struct {
	db *sql.DB
}

// LoadTenantState retrieves the document of tenantID. Returns domain.ErrTenantStateNotFound
// if the tenant has no row, or an error if the query or decoding fails.
func (m *MySQLTenantStateRepository) LoadTenantState(
	ctx context.Context,
	tenantID string,
) (domain.RawTenantState, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT document FROM tenant_states WHERE tenant_id = ?`

	var document []byte
	if err := querier.QueryRowContext(ctx, query, tenantID).Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantStateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant state")
	}

	return decodeTenantStateDocument(document)
}

// NewMySQLTenantStateRepository creates a new MySQL tenant state repository.
func NewMySQLTenantStateRepository(db *sql.DB) *MySQLTenantStateRepository {
	return &MySQLTenantStateRepository{db: db}
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/cct/internal/cct/domain"
	"github.com/allisson/cct/internal/cct/service"
)

// Every repository satisfies the cache source contract.
var (
	_ service.TenantStateSource = (*PostgreSQLTenantStateRepository)(nil)
	_ service.TenantStateSource = (*MySQLTenantStateRepository)(nil)
	_ service.TenantStateSource = (*RedisTenantStateRepository)(nil)
)

const tenantDocument = `{"rev":12,"caps":["push","sms"],"blocked":false,"billing":{"periodEnd":"2030-01-01T00:00:00Z"}}`

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestSQLTenantStateRepositories_LoadTenantState(t *testing.T) {
	ctx := context.Background()

	repos := []struct {
		name  string
		query string
		build func(db *sql.DB) service.TenantStateSource
	}{
		{
			name:  "PostgreSQL",
			query: `SELECT document FROM tenant_states WHERE tenant_id = $1`,
			build: func(db *sql.DB) service.TenantStateSource { return NewPostgreSQLTenantStateRepository(db) },
		},
		{
			name:  "MySQL",
			query: `SELECT document FROM tenant_states WHERE tenant_id = ?`,
			build: func(db *sql.DB) service.TenantStateSource { return NewMySQLTenantStateRepository(db) },
		},
	}

	for _, repo := range repos {
		t.Run(repo.name+"/Success_DecodesDocument", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery(regexp.QuoteMeta(repo.query)).
				WithArgs("acme").
				WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(tenantDocument)))

			raw, err := repo.build(db).LoadTenantState(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, json.Number("12"), raw["rev"])
			assert.Equal(t, []any{"push", "sms"}, raw["caps"])

			state := domain.NormalizeTenantState("acme", raw)
			assert.Equal(t, int64(12), state.Rev)
			require.NotNil(t, state.ActiveUntil)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(repo.name+"/Error_NotFound", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery(regexp.QuoteMeta(repo.query)).
				WithArgs("ghost").
				WillReturnError(sql.ErrNoRows)

			raw, err := repo.build(db).LoadTenantState(ctx, "ghost")
			assert.ErrorIs(t, err, domain.ErrTenantStateNotFound)
			assert.Nil(t, raw)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(repo.name+"/Error_QueryFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			dbErr := errors.New("connection reset")
			mock.ExpectQuery(regexp.QuoteMeta(repo.query)).
				WithArgs("acme").
				WillReturnError(dbErr)

			raw, err := repo.build(db).LoadTenantState(ctx, "acme")
			assert.ErrorIs(t, err, dbErr)
			assert.NotErrorIs(t, err, domain.ErrTenantStateNotFound)
			assert.Contains(t, err.Error(), "failed to get tenant state")
			assert.Nil(t, raw)
		})

		t.Run(repo.name+"/Error_MalformedDocument", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery(regexp.QuoteMeta(repo.query)).
				WithArgs("acme").
				WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(`[1,2,3]`)))

			_, err := repo.build(db).LoadTenantState(ctx, "acme")
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "failed to decode tenant state document")
		})

		t.Run(repo.name+"/Success_NullDocument", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery(regexp.QuoteMeta(repo.query)).
				WithArgs("acme").
				WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(`null`)))

			raw, err := repo.build(db).LoadTenantState(ctx, "acme")
			require.NoError(t, err)
			assert.Nil(t, raw)
		})
	}
}

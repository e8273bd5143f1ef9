package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/customer-data/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, nil }

func (m mockResult) RowsAffected() (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.rowsAffected, nil
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "nil_error", err: nil, sentinel: nil},
		{name: "sql_no_rows", err: sql.ErrNoRows, sentinel: store.ErrNotFound},
		{
			name:     "unique_violation",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "addresses_pkey"},
			sentinel: store.ErrDuplicate,
		},
		{
			name:     "foreign_key_violation",
			err:      &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "customers_address_id_fkey"},
			sentinel: store.ErrInvalidEntity,
		},
		{
			name:     "check_violation",
			err:      &pgconn.PgError{Code: checkViolationCode, ConstraintName: "customers_customer_type_check"},
			sentinel: store.ErrInvalidEntity,
		},
		{
			name:     "not_null_violation",
			err:      &pgconn.PgError{Code: notNullViolationCode, ColumnName: "external_id"},
			sentinel: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			if tt.sentinel == nil {
				assert.NoError(t, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tt.sentinel)
		})
	}

	t.Run("unmapped_error_passes_through", func(t *testing.T) {
		original := errors.New("connection reset by peer")
		assert.Same(t, original, MapError(original))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrCustomerNotFound))
	assert.False(t, IsNotFoundError(store.ErrDuplicate))
}

func TestCheckRowsAffected(t *testing.T) {
	require.Error(t, CheckRowsAffected(nil, nil))

	assert.NoError(t, CheckRowsAffected(mockResult{rowsAffected: 1}, store.ErrCustomerNotFound))
	assert.ErrorIs(t, CheckRowsAffected(mockResult{}, store.ErrCustomerNotFound), store.ErrCustomerNotFound)
	assert.ErrorIs(t, CheckRowsAffected(mockResult{}, nil), store.ErrNotFound)

	err := CheckRowsAffected(mockResult{err: errors.New("driver does not support RowsAffected")}, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

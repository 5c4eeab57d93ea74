package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/rma-api/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("timeout")))
}

func TestIsReferenceConflict(t *testing.T) {
	assert.True(t, isReferenceConflict(&pgconn.PgError{Code: "23505", ConstraintName: "rma_requests_reference_code_key"}))
	assert.False(t, isReferenceConflict(&pgconn.PgError{Code: "23505", ConstraintName: "rma_requests_pkey"}))
	assert.False(t, isReferenceConflict(&pgconn.PgError{Code: "23503", ConstraintName: "rma_requests_reference_code_key"}))
	assert.False(t, isReferenceConflict(errors.New("23505")))
}

func TestStorageErr_ConservaAmbosErrores(t *testing.T) {
	err := storageErr("get rma", pgx.ErrTxClosed)

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, pgx.ErrTxClosed)
	assert.Contains(t, err.Error(), "get rma")
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "x", *nullable("x"))
	assert.Equal(t, "", deref(nil))
	assert.True(t, isNoRows(pgx.ErrNoRows))
}

package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/rma-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isReferenceConflict violación del UNIQUE de rma_requests.reference_code.
func isReferenceConflict(err error) bool {
	var pgErr *pgconn.PgError
	return isUniqueViolation(err) && errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "reference_code")
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// storageErr envuelve un error del driver conservando ErrStorage y el error original.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// nullable convierte "" en NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// nullIfEmpty convierte cadenas vacías a NULL en los parámetros de escritura.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isUniqueViolation detecta violación de restricción única (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

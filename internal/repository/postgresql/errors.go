package postgresql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// isPgError reports whether err is a postgres error with the given code,
// optionally restricted to one constraint.
func isPgError(err error, code string, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func isUniqueViolation(err error, constraint string) bool {
	return isPgError(err, uniqueViolation, constraint)
}

func isForeignKeyViolation(err error, constraint string) bool {
	return isPgError(err, foreignKeyViolation, constraint)
}

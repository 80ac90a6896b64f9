package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeUndefinedFunction   = "42883"
)

func pgCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

// IsDuplicateConstraintError checks if the error is a unique violation for a
// specific constraint. An empty constraint name matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	code, constraint, ok := pgCode(err)
	if !ok || code != codeUniqueViolation {
		return false
	}
	return constraintName == "" || constraint == constraintName
}

// IsForeignKeyViolation reports whether a referenced row is missing.
func IsForeignKeyViolation(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == codeForeignKeyViolation
}

// IsCheckViolation reports a failed CHECK constraint.
func IsCheckViolation(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == codeCheckViolation
}

// IsUndefinedFunction is returned when an extension function (pg_trgm's
// similarity, for instance) is not installed.
func IsUndefinedFunction(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == codeUndefinedFunction
}

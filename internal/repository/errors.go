package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	PgErrUniqueViolation     = "23505"
	PgErrForeignKeyViolation = "23503"
	PgErrCheckViolation      = "23514"
	PgErrSerialization       = "40001"
)

func IsPgErrorWithCode(err error, code string) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == code
}

// ViolatedConstraint имя ограничения из ошибки postgres, "" если его нет.
func ViolatedConstraint(err error) string {
	pgErr, ok := asPgError(err)
	if !ok {
		return ""
	}
	return pgErr.ConstraintName
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

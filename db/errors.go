package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err came from a UNIQUE constraint on either backend.
func IsUniqueViolation(err error) bool {
	return matches(err, pgUniqueViolation, "UNIQUE constraint failed")
}

func IsForeignKeyViolation(err error) bool {
	return matches(err, pgForeignKeyViolation, "FOREIGN KEY constraint failed")
}

func IsCheckViolation(err error) bool {
	return matches(err, pgCheckViolation, "CHECK constraint failed")
}

func matches(err error, pgCode, sqliteText string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCode
	}
	return strings.Contains(err.Error(), sqliteText)
}

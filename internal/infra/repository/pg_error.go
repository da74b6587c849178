package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE
const (
	pgUniqueViolation = "23505"
	pgDuplicateTable  = "42P07"
	pgUndefinedTable  = "42P01"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// 指定した列を含む制約のユニーク違反か
func isUniqueViolationOn(err error, column string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return strings.Contains(pgErr.ConstraintName, column) || strings.Contains(pgErr.Detail, column)
}

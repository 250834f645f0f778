package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
)

// Postgres SQLSTATE codes for a schema the query depends on being absent.
var missingSchemaCodes = map[string]bool{
	"42P01": true, // undefined_table
	"42703": true, // undefined_column
	"42704": true, // undefined_object
}

const pgUniqueViolation = "23505"

// storeError classifies an error returned by the store. AppErrors pass
// through unchanged; a missing row becomes notFound (when given); a missing
// table or column becomes QUERY_CONFIGURATION; anything else is a
// PERSISTENCE_FAILURE. Nothing is retried.
func storeError(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if isMissingSchema(err) {
		return apperrors.Wrap(apperrors.ErrQueryConfiguration, err)
	}
	return apperrors.Wrap(apperrors.ErrPersistenceFailure, err)
}

func isMissingSchema(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return missingSchemaCodes[pgErr.Code]
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

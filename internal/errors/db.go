package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError maps database errors to AppError instances:
//   - context deadline/cancellation → internal TIMEOUT/CANCELED
//   - pgx.ErrNoRows → storage RECORD_NOT_FOUND
//   - unique violations → storage DUPLICATE_JOB
//   - other PostgreSQL errors → storage STORAGE_FAILED
//
// Errors that are not recognized database errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewInternalError(ErrCodeTimeout, "database operation timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewInternalError(ErrCodeCanceled, "database operation was canceled", err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return NewStorageError(ErrCodeRecordNotFound, "record not found", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return NewStorageError(ErrCodeDuplicateJob, "job URL already recorded", pgErr).
				WithContext("constraint", pgErr.ConstraintName)
		case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
			return NewValidationError(ErrCodeInvalidRequest, "invalid record", pgErr).
				WithContext("column", pgErr.ColumnName)
		default:
			return NewStorageError(ErrCodeStorageFailed, "database error", pgErr).
				WithContext("pg_code", pgErr.Code)
		}
	}

	return err
}

// IsDuplicate reports whether err marks an insert that lost a uniqueness race.
func IsDuplicate(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeDuplicateJob
}

// IsNotFound reports whether err marks a lookup that matched no rows.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeRecordNotFound
}

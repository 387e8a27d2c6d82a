package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds. Services wrap the underlying cause as fmt.Errorf("%w: %w", kind, cause)
// so callers can match the kind and still reach the original error.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUpload       = errors.New("upload failed")
	ErrStorage      = errors.New("storage failure")
	ErrNotFound     = errors.New("not found")
	ErrDeletion     = errors.New("deletion failed")
	ErrAuth         = errors.New("authentication failed")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	// ErrStale accompanies a previous cache snapshot returned after a failed refresh.
	ErrStale = errors.New("cache refresh failed; serving previous snapshot")
)

func wrap(kind, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Postgres SQLSTATE codes inspected when mapping database failures.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

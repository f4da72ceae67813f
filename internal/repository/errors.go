package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write lost to a concurrent change or
	// violated a unique constraint.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is returned for foreign key and check violations.
	ErrInvalidInput = errors.New("invalid input")
)

// pg error codes we map explicitly.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// wrapError annotates err with op and maps driver errors onto the
// repository sentinels. Context errors are preserved for callers.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, ErrConflict)
		case pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, ErrInvalidInput)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/openlearn/openlearn-backend/repositories"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations
const uniqueViolation = "23505"

// errNoRowsAffected marks UPDATE/DELETE statements that matched nothing
var errNoRowsAffected = errors.New("no rows affected")

// rowScanner is the subset of *sql.Rows the scan helpers need
type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// isUniqueViolation reports whether the error is a unique constraint
// violation from the driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// translateError maps driver-level errors onto the repository sentinels
// so services never inspect pq internals
func translateError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, errNoRowsAffected):
		return fmt.Errorf("%s: %w", entity, repositories.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", entity, repositories.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", entity, err)
	}
}

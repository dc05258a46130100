package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a referenced row is absent or not
	// visible to the acting user.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on a unique constraint violation.
	ErrConflict = errors.New("already exists")

	// ErrForeignKey is returned when a row references a missing parent.
	ErrForeignKey = errors.New("referenced row does not exist")
)

// classify maps driver errors onto the store's sentinel errors, keeping
// the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		}
		// Primary result code only; fall back to the message.
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			if strings.Contains(liteErr.Error(), "FOREIGN KEY") {
				return fmt.Errorf("%w: %w", ErrForeignKey, err)
			}
			if strings.Contains(liteErr.Error(), "UNIQUE") {
				return fmt.Errorf("%w: %w", ErrConflict, err)
			}
		}
	}

	return err
}

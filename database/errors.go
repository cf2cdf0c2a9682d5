// backend/database/errors.go
package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by identifier matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert would violate a unique key. The
// callers treat it as a no-op signal, not a failure: the row they tried to
// create already exists.
var ErrDuplicate = errors.New("duplicate record")

const mysqlDuplicateEntry = 1062

// classifyDuplicate converts a MySQL duplicate-entry error into ErrDuplicate
// and passes every other error through unchanged.
func classifyDuplicate(err error) error {
	if err == nil {
		return nil
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrDuplicate
	}
	return err
}

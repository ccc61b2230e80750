package models

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

// Engine sentinels. Callers match with errors.Is; the messages reach the
// client verbatim so they stay short and stable.
var (
	ErrQuantityNotNumeric = errors.New("quantity is not numeric")
	ErrQuantityNegative   = errors.New("quantity cannot be negative")
	ErrQuantityOutOfRange = errors.New("gram part must be between 0 and 999")
	ErrUnitKindMismatch   = errors.New("unit kinds do not match")
	ErrDuplicateEntry     = errors.New("duplicate ledger entry id")
	ErrBalanceConflict    = errors.New("daily balance was modified concurrently")
)

// IsDuplicateKeyError reports a MySQL 1062 unique violation. Reference
// numbers and daily-balance dates carry unique indexes, so a duplicate key
// is how the database tells us a writer lost a race or a client re-sent.
func IsDuplicateKeyError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "spotmarket/internal/config"
	intdb "spotmarket/internal/db"
	"spotmarket/internal/domain"
)

type store struct {
	DB      *sql.DB
	Dialect string
}

func (s store) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s store) q(query string) string {
	return intdb.Rebind(s.Dialect, query)
}

// storeErr classifies a driver error: an expired deadline is a timeout, anything else a persistence failure.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.TimeoutError{Service: "store", Err: err}
	}
	return domain.PersistenceError{Op: op, Err: err}
}

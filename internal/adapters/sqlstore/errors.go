package sqlstore

import (
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	defaultConflictError = "El registro ya existe"
)

// storeError classifies a driver error. message is the caller-facing text, op names the failed operation.
func storeError(err error, message, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.NewNotFoundError(message)
	}
	if isUniqueViolation(err) {
		return core.NewConflictError(defaultConflictError)
	}
	return core.NewStoreError(message, fmt.Errorf("failed to %s: %w", op, err))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

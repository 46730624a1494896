package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/neighborly/pkg/resilience"
)

// Querier is the subset of pgxpool.Pool used by read-only repositories.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RetryableQuery runs a read query and scans the rows, retrying once on
// transient connection failures. The retry budget is small because these
// queries sit on a user-facing request path.
func RetryableQuery[T any](ctx context.Context, db Querier, operationName, query string, args []any, scanner func(pgx.Rows) (T, error)) (T, error) {
	config := resilience.QuickRetryConfig()
	config.RetryableChecker = IsRetryable

	result, err := resilience.Retry(ctx, config, operationName, func(ctx context.Context) (interface{}, error) {
		rows, err := db.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		return scanner(rows)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

// IsRetryable determines if a PostgreSQL error should be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"53300", // too_many_connections
			"57P01", // admin_shutdown
			"57P03", // cannot_connect_now
			"08000", "08003", "08006": // connection_exception
			return true
		default:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"server closed",
		"unexpected eof",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}

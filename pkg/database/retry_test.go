package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no rows", pgx.ErrNoRows, false},
		{"cancelled", context.Canceled, false},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"unknown", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

type failingQuerier struct {
	err   error
	calls int
}

func (f *failingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.calls++
	return nil, f.err
}

func TestRetryableQueryRetriesTransientErrors(t *testing.T) {
	q := &failingQuerier{err: errors.New("connection reset by peer")}

	_, err := RetryableQuery(context.Background(), q, "test.query", "SELECT 1", nil, func(pgx.Rows) (int, error) {
		return 1, nil
	})

	assert.Error(t, err)
	assert.Equal(t, 2, q.calls)
}

func TestRetryableQueryDoesNotRetryPermanentErrors(t *testing.T) {
	q := &failingQuerier{err: &pgconn.PgError{Code: "42P01"}}

	_, err := RetryableQuery(context.Background(), q, "test.query", "SELECT 1", nil, func(pgx.Rows) (int, error) {
		return 1, nil
	})

	assert.Error(t, err)
	assert.Equal(t, 1, q.calls)
}

package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/neighborly/pkg/database"
	"github.com/richxcame/neighborly/pkg/tracing"
)

const tracerName = "requests"

// Pool is the part of pgxpool.Pool the repository uses.
type Pool interface {
	database.Querier
	Ping(ctx context.Context) error
}

var _ Pool = (*pgxpool.Pool)(nil)

// Repository reads help requests from PostgreSQL.
type Repository struct {
	db Pool
}

// NewRepository creates a new requests repository
func NewRepository(db Pool) *Repository {
	return &Repository{db: db}
}

const listCandidatesQuery = `
	SELECT id, title, category, COALESCE(description, ''), COALESCE(urgency, 'normal'),
	       COALESCE(time_window, ''), latitude, longitude, created_at, user_id, status,
	       expires_at, completed_at
	FROM requests
	WHERE status = $1
	  AND latitude IS NOT NULL AND longitude IS NOT NULL
	  AND ($2::uuid IS NULL OR user_id <> $2::uuid)
	  AND latitude BETWEEN $3 AND $4
	  AND longitude BETWEEN $5 AND $6
	  AND ($7 OR expires_at IS NULL OR expires_at > $8)
	  AND ($9 OR completed_at IS NULL)
`

// ListCandidates returns located requests inside the filter's bounding box.
func (r *Repository) ListCandidates(ctx context.Context, filter ListFilter) ([]CandidateRequest, error) {
	var exclude any
	if filter.ExcludeUserID != uuid.Nil {
		exclude = filter.ExcludeUserID
	}

	args := []any{
		filter.Status,
		exclude,
		filter.Box.MinLatitude, filter.Box.MaxLatitude,
		filter.Box.MinLongitude, filter.Box.MaxLongitude,
		filter.IncludeExpired, filter.Now,
		filter.IncludeCompleted,
	}

	var candidates []CandidateRequest
	err := tracing.TraceDBQuery(ctx, tracerName, "list_candidates", func(ctx context.Context) error {
		var err error
		candidates, err = database.RetryableQuery(ctx, r.db, "requests.list_candidates", listCandidatesQuery, args, scanCandidates)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate requests: %w", err)
	}
	return candidates, nil
}

const countByCategoryQuery = `
	SELECT category, COUNT(*) AS count
	FROM requests
	WHERE status = $1 AND created_at >= $2
	GROUP BY category
	ORDER BY count DESC, category ASC
	LIMIT $3
`

// CountByCategory aggregates request counts per category in a window.
func (r *Repository) CountByCategory(ctx context.Context, status string, since time.Time, limit int) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := tracing.TraceDBQuery(ctx, tracerName, "count_by_category", func(ctx context.Context) error {
		var err error
		counts, err = database.RetryableQuery(ctx, r.db, "requests.count_by_category", countByCategoryQuery,
			[]any{status, since, limit}, scanCategoryCounts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by category: %w", err)
	}
	return counts, nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("database pool not configured")
	}
	return r.db.Ping(ctx)
}

func scanCandidates(rows pgx.Rows) ([]CandidateRequest, error) {
	candidates := make([]CandidateRequest, 0)
	for rows.Next() {
		var c CandidateRequest
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Category,
			&c.Description,
			&c.Urgency,
			&c.TimeWindow,
			&c.Latitude,
			&c.Longitude,
			&c.CreatedAt,
			&c.UserID,
			&c.Status,
			&c.ExpiresAt,
			&c.CompletedAt,
		); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func scanCategoryCounts(rows pgx.Rows) ([]CategoryCount, error) {
	counts := make([]CategoryCount, 0)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

package requests

import (
	"context"
	"time"
)

// Store is the read-only candidate store.
type Store interface {
	// ListCandidates returns located requests matching filter. Rows outside
	// filter.Box may be returned; callers apply the exact distance test.
	ListCandidates(ctx context.Context, filter ListFilter) ([]CandidateRequest, error)
	// CountByCategory counts requests with status created at or after since,
	// ordered by count desc then category asc, truncated to limit.
	CountByCategory(ctx context.Context, status string, since time.Time, limit int) ([]CategoryCount, error)
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryStore)(nil)
)

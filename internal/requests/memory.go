package requests

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	requests []CandidateRequest
	err      error
}

// NewMemoryStore creates a store seeded with requests.
func NewMemoryStore(requests ...CandidateRequest) *MemoryStore {
	s := &MemoryStore{}
	s.Add(requests...)
	return s
}

// Add appends requests to the store.
func (s *MemoryStore) Add(requests ...CandidateRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, requests...)
}

// FailWith makes every subsequent call return err; nil restores normal behaviour.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// ListCandidates filters stored requests the way the SQL query does.
func (s *MemoryStore) ListCandidates(_ context.Context, filter ListFilter) ([]CandidateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	out := make([]CandidateRequest, 0, len(s.requests))
	for _, r := range s.requests {
		if r.Status != filter.Status {
			continue
		}
		coord, ok := r.Coordinate()
		if !ok || !filter.Box.Contains(coord) {
			continue
		}
		if r.UserID == filter.ExcludeUserID && filter.ExcludeUserID != uuid.Nil {
			continue
		}
		if !filter.IncludeExpired && r.Expired(filter.Now) {
			continue
		}
		if !filter.IncludeCompleted && r.Completed() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// CountByCategory aggregates stored requests per category.
func (s *MemoryStore) CountByCategory(_ context.Context, status string, since time.Time, limit int) ([]CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	counts := make(map[string]int)
	for _, r := range s.requests {
		if r.Status == status && !r.CreatedAt.Before(since) {
			counts[r.Category]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping reports the configured failure, if any.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

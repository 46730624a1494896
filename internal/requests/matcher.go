package requests

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/geo"
)

// Matcher finds candidate requests near a coordinate.
type Matcher struct {
	store Store
	now   func() time.Time
}

// NewMatcher creates a matcher over store.
func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store, now: time.Now}
}

// SetClock replaces the clock used for expiry checks.
func (m *Matcher) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// GetNearbyRequests returns candidates within q.RadiusKm of q.Origin,
// nearest first. Candidates without coordinates are skipped. The radius test
// uses the exact great-circle distance; DistanceKm is rounded for output.
func (m *Matcher) GetNearbyRequests(ctx context.Context, q NearbyQuery) ([]NearbyRequest, error) {
	if !q.Origin.Valid() {
		return nil, ErrInvalidOrigin
	}
	if q.RadiusKm <= 0 {
		return nil, ErrInvalidRadius
	}
	if q.Status == "" {
		q.Status = StatusOpen
	}

	candidates, err := m.store.ListCandidates(ctx, ListFilter{
		Status:           q.Status,
		ExcludeUserID:    q.ExcludeUserID,
		Box:              geo.BoundingBoxAround(q.Origin, q.RadiusKm),
		Now:              m.now().UTC(),
		IncludeExpired:   q.IncludeExpired,
		IncludeCompleted: q.IncludeCompleted,
	})
	if err != nil {
		return nil, err
	}

	type scored struct {
		request NearbyRequest
		exact   float64
	}

	now := m.now().UTC()
	matches := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		// Stores may over-return; every rule is re-checked here.
		if c.Status != q.Status || (q.ExcludeUserID != uuid.Nil && c.UserID == q.ExcludeUserID) {
			continue
		}
		if (!q.IncludeExpired && c.Expired(now)) || (!q.IncludeCompleted && c.Completed()) {
			continue
		}
		coord, ok := c.Coordinate()
		if !ok {
			continue
		}
		d := geo.Distance(q.Origin, coord)
		if d > q.RadiusKm {
			continue
		}
		matches = append(matches, scored{
			request: NearbyRequest{CandidateRequest: c, DistanceKm: geo.RoundKm(d)},
			exact:   d,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].exact != matches[j].exact {
			return matches[i].exact < matches[j].exact
		}
		return strings.Compare(matches[i].request.ID.String(), matches[j].request.ID.String()) < 0
	})

	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	out := make([]NearbyRequest, len(matches))
	for i, match := range matches {
		out[i] = match.request
	}
	return out, nil
}

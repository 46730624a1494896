package requests

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow    = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	testOrigin = geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060}
)

func ptr[T any](v T) *T { return &v }

// offsetNorth returns a point km north of the origin.
func offsetNorth(km float64) (*float64, *float64) {
	lat := testOrigin.Latitude + km/111.195
	return ptr(lat), ptr(testOrigin.Longitude)
}

func newCandidate(km float64, mutate ...func(*CandidateRequest)) CandidateRequest {
	lat, lng := offsetNorth(km)
	c := CandidateRequest{
		ID:        uuid.New(),
		Title:     "Need help",
		Category:  "groceries",
		Urgency:   UrgencyNormal,
		Latitude:  lat,
		Longitude: lng,
		CreatedAt: testNow.Add(-time.Hour),
		UserID:    uuid.New(),
		Status:    StatusOpen,
	}
	for _, m := range mutate {
		m(&c)
	}
	return c
}

func newTestMatcher(store Store) *Matcher {
	m := NewMatcher(store)
	m.SetClock(func() time.Time { return testNow })
	return m
}

// ====== VALIDATION ======

func TestGetNearbyRequests_RejectsInvalidInput(t *testing.T) {
	m := newTestMatcher(NewMemoryStore())

	_, err := m.GetNearbyRequests(context.Background(), NearbyQuery{
		Origin:   geo.Coordinate{Latitude: 91, Longitude: 0},
		RadiusKm: 5,
	})
	assert.ErrorIs(t, err, ErrInvalidOrigin)

	_, err = m.GetNearbyRequests(context.Background(), NearbyQuery{
		Origin:   geo.Coordinate{Latitude: math.NaN(), Longitude: 0},
		RadiusKm: 5,
	})
	assert.ErrorIs(t, err, ErrInvalidOrigin)

	for _, radius := range []float64{0, -1} {
		_, err = m.GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: radius})
		assert.ErrorIs(t, err, ErrInvalidRadius)
	}
}

// ====== MATCHING ======

func TestGetNearbyRequests_SortsByDistanceAndFiltersRadius(t *testing.T) {
	far := newCandidate(4.0)
	near := newCandidate(0.5)
	mid := newCandidate(2.0)
	outside := newCandidate(6.0)

	m := newTestMatcher(NewMemoryStore(far, near, mid, outside))
	got, err := m.GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, near.ID, got[0].ID)
	assert.Equal(t, mid.ID, got[1].ID)
	assert.Equal(t, far.ID, got[2].ID)
	assert.InDelta(t, 0.5, got[0].DistanceKm, 0.01)
	assert.InDelta(t, 4.0, got[2].DistanceKm, 0.01)
}

// pointAt walks km from origin along an initial bearing in degrees.
func pointAt(origin geo.Coordinate, bearing, km float64) (*float64, *float64) {
	lat1 := origin.Latitude * math.Pi / 180
	lon1 := origin.Longitude * math.Pi / 180
	theta := bearing * math.Pi / 180
	delta := km / geo.EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1), math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))
	return ptr(lat2 * 180 / math.Pi), ptr(lon2 * 180 / math.Pi)
}

func TestGetNearbyRequests_KeepsCandidatesJustInsideRadius(t *testing.T) {
	origins := []geo.Coordinate{
		{Latitude: 0, Longitude: 0},
		testOrigin,
		{Latitude: -54.8019, Longitude: -68.3030},
	}
	for _, origin := range origins {
		store := NewMemoryStore()
		for bearing := 0.0; bearing < 360; bearing += 30 {
			inside := newCandidate(0)
			inside.Latitude, inside.Longitude = pointAt(origin, bearing, 4.995)
			outside := newCandidate(0)
			outside.Latitude, outside.Longitude = pointAt(origin, bearing, 5.05)
			store.Add(inside, outside)
		}

		got, err := newTestMatcher(store).GetNearbyRequests(context.Background(), NearbyQuery{Origin: origin, RadiusKm: 5})
		require.NoError(t, err)
		assert.Len(t, got, 12, "origin %v", origin)
		for _, r := range got {
			assert.LessOrEqual(t, r.DistanceKm, 5.0)
		}
	}
}

func TestGetNearbyRequests_NorthEdgeOfEquatorialCircle(t *testing.T) {
	edge := newCandidate(0, func(c *CandidateRequest) {
		c.Latitude = ptr(0.04494)
		c.Longitude = ptr(0.0)
	})

	got, err := newTestMatcher(NewMemoryStore(edge)).GetNearbyRequests(context.Background(), NearbyQuery{
		Origin:   geo.Coordinate{Latitude: 0, Longitude: 0},
		RadiusKm: 5,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, edge.ID, got[0].ID)
}

func TestGetNearbyRequests_SkipsUnlocatedAndForeignStatus(t *testing.T) {
	unlocated := newCandidate(1, func(c *CandidateRequest) { c.Latitude = nil })
	completed := newCandidate(1, func(c *CandidateRequest) { c.Status = StatusCompleted })
	open := newCandidate(1)

	m := newTestMatcher(NewMemoryStore(unlocated, completed, open))
	got, err := m.GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestGetNearbyRequests_ExcludesRequester(t *testing.T) {
	requester := uuid.New()
	own := newCandidate(1, func(c *CandidateRequest) { c.UserID = requester })
	other := newCandidate(1.5)

	m := newTestMatcher(NewMemoryStore(own, other))

	got, err := m.GetNearbyRequests(context.Background(), NearbyQuery{
		Origin: testOrigin, RadiusKm: 5, ExcludeUserID: requester,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].ID)

	got, err = m.GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: 5})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetNearbyRequests_ExpiryAndCompletionFlags(t *testing.T) {
	expired := newCandidate(1, func(c *CandidateRequest) { c.ExpiresAt = ptr(testNow.Add(-time.Minute)) })
	expiresLater := newCandidate(1.2, func(c *CandidateRequest) { c.ExpiresAt = ptr(testNow.Add(time.Hour)) })
	markedDone := newCandidate(1.4, func(c *CandidateRequest) { c.CompletedAt = ptr(testNow.Add(-time.Hour)) })

	m := newTestMatcher(NewMemoryStore(expired, expiresLater, markedDone))

	got, err := m.GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expiresLater.ID, got[0].ID)

	got, err = m.GetNearbyRequests(context.Background(), NearbyQuery{
		Origin: testOrigin, RadiusKm: 5, IncludeExpired: true, IncludeCompleted: true,
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestGetNearbyRequests_LimitAndEmpty(t *testing.T) {
	m := newTestMatcher(NewMemoryStore(newCandidate(1), newCandidate(2), newCandidate(3)))

	got, err := m.GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: 5, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	empty := newTestMatcher(NewMemoryStore())
	got, err = empty.GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: 5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetNearbyRequests_PropagatesStoreError(t *testing.T) {
	store := NewMemoryStore(newCandidate(1))
	storeErr := errors.New("connection refused")
	store.FailWith(storeErr)

	_, err := newTestMatcher(store).GetNearbyRequests(context.Background(), NearbyQuery{Origin: testOrigin, RadiusKm: 5})
	assert.ErrorIs(t, err, storeErr)
}

// ====== TRENDING COUNTS ======

func TestMemoryStore_CountByCategory(t *testing.T) {
	since := testNow.Add(-24 * time.Hour)
	store := NewMemoryStore(
		newCandidate(1, func(c *CandidateRequest) { c.Category = "delivery" }),
		newCandidate(1, func(c *CandidateRequest) { c.Category = "delivery" }),
		newCandidate(1, func(c *CandidateRequest) { c.Category = "groceries" }),
		newCandidate(1, func(c *CandidateRequest) { c.Category = "blanket" }),
		newCandidate(1, func(c *CandidateRequest) {
			c.Category = "old"
			c.CreatedAt = since.Add(-time.Minute)
		}),
		newCandidate(1, func(c *CandidateRequest) {
			c.Category = "closed"
			c.Status = StatusCompleted
		}),
	)

	got, err := store.CountByCategory(context.Background(), StatusOpen, since, 2)
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Category: "delivery", Count: 2},
		{Category: "blanket", Count: 1},
	}, got)
}

package requests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCandidateRequest_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var c CandidateRequest
	assert.False(t, c.Expired(now))

	c.ExpiresAt = ptr(now)
	assert.True(t, c.Expired(now))

	c.ExpiresAt = ptr(now.Add(time.Second))
	assert.False(t, c.Expired(now))
}

func TestCandidateRequest_Coordinate(t *testing.T) {
	c := CandidateRequest{Latitude: ptr(1.5)}
	_, ok := c.Coordinate()
	assert.False(t, ok)

	c.Longitude = ptr(2.5)
	coord, ok := c.Coordinate()
	assert.True(t, ok)
	assert.Equal(t, 1.5, coord.Latitude)
	assert.Equal(t, 2.5, coord.Longitude)
}

package weather

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) any {
	t.Helper()
	var raw any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestExtractConditions_FullPayload(t *testing.T) {
	s := ExtractConditions(decode(t, livePayload))

	assert.Equal(t, "Rain", s.Condition)
	assert.Equal(t, "moderate rain", s.Description)
	require.NotNil(t, s.Temperature)
	assert.InDelta(t, 22.5, *s.Temperature, 1e-9)
	require.NotNil(t, s.FeelsLike)
	require.NotNil(t, s.Humidity)
	assert.InDelta(t, 88, *s.Humidity, 1e-9)
	require.NotNil(t, s.WindSpeed)
	require.NotNil(t, s.Visibility)
	assert.InDelta(t, 6000, *s.Visibility, 1e-9)
	assert.InDelta(t, 1.2, s.RainfallLastHour, 1e-9)
	assert.True(t, s.MentionsRain())
}

func TestExtractConditions_Defaults(t *testing.T) {
	s := ExtractConditions(decode(t, `{"main": {"temp": 31}}`))

	assert.Equal(t, "Unknown", s.Condition)
	assert.Equal(t, "", s.Description)
	require.NotNil(t, s.Temperature)
	assert.InDelta(t, 31, *s.Temperature, 1e-9)
	assert.Nil(t, s.FeelsLike)
	assert.Nil(t, s.Humidity)
	assert.Nil(t, s.WindSpeed)
	assert.Nil(t, s.Visibility)
	assert.Zero(t, s.RainfallLastHour)
	assert.False(t, s.MentionsRain())
}

func TestExtractConditions_WrongShapes(t *testing.T) {
	inputs := []any{
		nil,
		"rain",
		[]any{1, 2},
		decode(t, `{"weather": [], "main": "hot", "rain": {"1h": "lots"}}`),
		decode(t, `{"weather": ["Rain"], "wind": {"speed": null}}`),
	}

	for _, in := range inputs {
		s := ExtractConditions(in)
		require.NotNil(t, s)
		assert.Equal(t, "Unknown", s.Condition)
		assert.Nil(t, s.Temperature)
		assert.Nil(t, s.WindSpeed)
		assert.Zero(t, s.RainfallLastHour)
	}
}

func TestSnapshotMentionsRain(t *testing.T) {
	var nilSnapshot *Snapshot
	assert.False(t, nilSnapshot.MentionsRain())
	assert.True(t, (&Snapshot{Condition: "Clouds", Description: "Light RAIN later"}).MentionsRain())
	assert.True(t, (&Snapshot{Condition: "Rain"}).MentionsRain())
	assert.False(t, (&Snapshot{Condition: "Drizzle"}).MentionsRain())
}

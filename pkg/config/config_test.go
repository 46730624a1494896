package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load("test-service")
	require.NoError(t, err)

	assert.Equal(t, "test-service", cfg.Server.ServiceName)
	assert.Equal(t, DefaultSuggestionRadiusKm, cfg.Suggestions.RadiusKm)
	assert.Equal(t, DefaultCandidateCap, cfg.Suggestions.CandidateCap)
	assert.Equal(t, 5*time.Second, cfg.Weather.Timeout())
	assert.Equal(t, 10*time.Minute, cfg.Weather.CacheTTL())
	assert.False(t, cfg.Weather.DemoMode)
	assert.Empty(t, cfg.Weather.APIKey)
}

func TestLoadWeatherSettings(t *testing.T) {
	t.Run("demo flag accepts 1", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DEMO_WEATHER", "1")

		cfg, err := Load("test-service")
		require.NoError(t, err)
		assert.True(t, cfg.Weather.DemoMode)
	})

	t.Run("demo flag accepts true", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DEMO_WEATHER", "true")

		cfg, err := Load("test-service")
		require.NoError(t, err)
		assert.True(t, cfg.Weather.DemoMode)
	})

	t.Run("custom radius and key", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("SUGGESTION_RADIUS_KM", "7.5")
		os.Setenv("OPENWEATHER_API_KEY", "abc")

		cfg, err := Load("test-service")
		require.NoError(t, err)
		assert.Equal(t, 7.5, cfg.Suggestions.RadiusKm)
		assert.Equal(t, "abc", cfg.Weather.APIKey)
	})
}

func TestLoadValidation(t *testing.T) {
	t.Run("weather timeout exceeds maximum", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("WEATHER_TIMEOUT_SECONDS", "999")

		_, err := Load("test-service")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WEATHER_TIMEOUT_SECONDS")
		assert.Contains(t, err.Error(), "exceeds maximum")
	})

	t.Run("negative radius", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("SUGGESTION_RADIUS_KM", "-1")

		_, err := Load("test-service")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SUGGESTION_RADIUS_KM")
	})

	t.Run("unknown timezone", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("SUGGESTION_TIMEZONE", "Mars/Olympus")

		_, err := Load("test-service")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SUGGESTION_TIMEZONE")
	})

	t.Run("invalid breaker overrides", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("CB_SERVICE_OVERRIDES", `{invalid json}`)

		_, err := Load("test-service")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CB_SERVICE_OVERRIDES")
	})
}

func TestCircuitBreakerSettingsFor(t *testing.T) {
	cfg := CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		TimeoutSeconds:   30,
		IntervalSeconds:  60,
		ServiceOverrides: map[string]CircuitBreakerSettings{
			"openweathermap": {FailureThreshold: 2, TimeoutSeconds: 10},
		},
	}

	weather := cfg.SettingsFor("openweathermap")
	assert.Equal(t, 2, weather.FailureThreshold)
	assert.Equal(t, 10, weather.TimeoutSeconds)
	assert.Equal(t, 1, weather.SuccessThreshold)
	assert.Equal(t, 60, weather.IntervalSeconds)

	other := cfg.SettingsFor("unknown")
	assert.Equal(t, 5, other.FailureThreshold)
}

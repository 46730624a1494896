package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locationRequest struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Urgency   string  `validate:"omitempty,urgency"`
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"bounds", 90, -180, false},
		{"kathmandu", 27.7172, 85.3240, false},
		{"latitude too high", 90.0001, 0, true},
		{"longitude too low", 0, -180.5, true},
		{"nan", math.NaN(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCoordinates_ReportsBothFields(t *testing.T) {
	err := ValidateCoordinates(100, 200)
	require.Error(t, err)

	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, ve.Errors, "latitude")
	assert.Contains(t, ve.Errors, "longitude")
	assert.Contains(t, ve.Error(), "validation failed: latitude")
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(locationRequest{Latitude: 10, Longitude: 20, Urgency: "High"}))

	err := ValidateStruct(locationRequest{Latitude: 91, Longitude: 20, Urgency: "whenever"})
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 2)
	assert.Equal(t, "failed latitude validation", ve.Errors["Latitude"])
	assert.Equal(t, "failed urgency validation", ve.Errors["Urgency"])
}

func TestValidationError_AddErrorNilMap(t *testing.T) {
	ve := &ValidationError{}
	assert.False(t, ve.HasErrors())
	ve.AddError("radius_km", "too large")
	assert.True(t, ve.HasErrors())
}

func TestRegisterGinRules(t *testing.T) {
	assert.NoError(t, RegisterGinRules())
}

package validation

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Urgency tiers accepted on help requests
var urgencyTiers = []string{"emergency", "high", "normal", "low"}

var rules = map[string]validator.Func{
	"latitude":  validateLatitude,
	"longitude": validateLongitude,
	"urgency":   validateUrgency,
}

func validLatitude(v float64) bool {
	return !math.IsNaN(v) && v >= -90.0 && v <= 90.0
}

func validLongitude(v float64) bool {
	return !math.IsNaN(v) && v >= -180.0 && v <= 180.0
}

func validateLatitude(fl validator.FieldLevel) bool {
	return validLatitude(fl.Field().Float())
}

func validateLongitude(fl validator.FieldLevel) bool {
	return validLongitude(fl.Field().Float())
}

func validateUrgency(fl validator.FieldLevel) bool {
	value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	for _, tier := range urgencyTiers {
		if value == tier {
			return true
		}
	}
	return false
}

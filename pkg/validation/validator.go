package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validate is the global validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New()
	if err := registerRules(Validate); err != nil {
		panic(err)
	}
}

// RegisterGinRules installs the custom rules on gin's binding validator so
// `binding:"latitude"` style tags work in handlers.
func RegisterGinRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return registerRules(v)
}

func registerRules(v *validator.Validate) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s rule: %w", tag, err)
		}
	}
	return nil
}

// ValidationError collects per-field validation messages
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// NewValidationError converts validator errors into a ValidationError
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fe := range errs {
		ve.AddError(fe.Field(), fmt.Sprintf("failed %s validation", fe.Tag()))
	}
	return ve
}

// Error lists field messages in field order
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Errors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AddError records a message for field
func (e *ValidationError) AddError(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string]string)
	}
	e.Errors[field] = message
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateStruct validates a struct and returns a ValidationError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidateCoordinates validates latitude and longitude
func ValidateCoordinates(latitude, longitude float64) error {
	ve := &ValidationError{}
	if !validLatitude(latitude) {
		ve.AddError("latitude", fmt.Sprintf("must be between -90 and 90, got: %g", latitude))
	}
	if !validLongitude(longitude) {
		ve.AddError("longitude", fmt.Sprintf("must be between -180 and 180, got: %g", longitude))
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Package validation centralizes request input validation.
package validation

import (
	"fmt"
	"strings"

	machina "github.com/avaldeso/machina"
	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to Echo's validation
// interface. Handlers call c.Validate(&req) and receive a domain
// validation error with per-field messages.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance.
//
// Usage in server setup:
//
//	e.Validator = validation.NewValidator()
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// Validate validates a struct using its validation tags.
// Returns an EINVALID domain error carrying field-level messages.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		return machina.ErrorWithFields(FormatValidationErrors(validationErrors))
	}
	return err
}

// FormatValidationErrors converts validator errors to user-friendly
// per-field messages.
func FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["_error"] = err.Error()
		return errors
	}

	for _, fieldErr := range validationErrors {
		fieldName := strings.ToLower(fieldErr.Field())

		switch fieldErr.Tag() {
		case "required":
			errors[fieldName] = "is required"
		case "email":
			errors[fieldName] = "must be a valid email address"
		case "min":
			errors[fieldName] = fmt.Sprintf("must be at least %s", fieldErr.Param())
		case "max":
			errors[fieldName] = fmt.Sprintf("must be no more than %s", fieldErr.Param())
		case "uuid":
			errors[fieldName] = "must be a valid UUID"
		case "alphanum":
			errors[fieldName] = "must contain only letters and numbers"
		case "gte":
			errors[fieldName] = fmt.Sprintf("must be greater than or equal to %s", fieldErr.Param())
		case "gt":
			errors[fieldName] = fmt.Sprintf("must be greater than %s", fieldErr.Param())
		case "oneof":
			errors[fieldName] = fmt.Sprintf("must be one of: %s", fieldErr.Param())
		default:
			errors[fieldName] = fmt.Sprintf("failed validation: %s", fieldErr.Tag())
		}
	}

	return errors
}

// Package validation checks fleet file entries before they are monitored.
//
// It uses go-playground/validator for the struct tags on models.HostConfig
// and adds the checks tags cannot express. Errors are reported per field
// using the field's name in the fleet file.
//
// # Usage Example
//
//	v := validation.New()
//	result := v.ValidateHost(host)
//	if !result.Valid {
//	    for _, err := range result.Errors {
//	        fmt.Printf("%s: %s\n", err.Field, err.Message)
//	    }
//	}
package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"evalgo.org/fleetstatus/models"
)

// Validator validates host configuration entries.
type Validator struct {
	// structValidator validates Go struct constraints and tags
	structValidator *validator.Validate
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the fleet file key that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// String joins the errors into one line.
func (r *ValidationResult) String() string {
	if r.Valid {
		return "valid"
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// New creates a new Validator that reports fields by their JSON names.
func New() *Validator {
	sv := validator.New(validator.WithRequiredStructEnabled())
	sv.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{structValidator: sv}
}

// ValidateHost validates one fleet entry.
func (v *Validator) ValidateHost(host models.HostConfig) *ValidationResult {
	var errs []ValidationError

	if err := v.structValidator.Struct(host); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return &ValidationResult{
				Valid:  false,
				Errors: []ValidationError{{Field: "host", Message: err.Error()}},
			}
		}
		for _, fe := range verrs {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Message: messageFor(fe),
				Value:   fe.Value(),
			})
		}
	}

	errs = append(errs, validateMetricsEndpoint(host.MetricsEndpoint)...)

	return &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// validateMetricsEndpoint requires an http(s) URL with a host, which the
// url tag alone does not.
func validateMetricsEndpoint(endpoint string) []ValidationError {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		// Already reported by the url tag
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return []ValidationError{{
			Field:   "agentUrl",
			Message: "Agent URL must use http or https",
			Value:   endpoint,
		}}
	}
	if u.Host == "" {
		return []ValidationError{{
			Field:   "agentUrl",
			Message: "Agent URL must include a host",
			Value:   endpoint,
		}}
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "ip|hostname_rfc1123":
		return "Must be an IP address or hostname"
	case "url":
		return "Invalid URL"
	default:
		return fmt.Sprintf("Failed %q check", fe.Tag())
	}
}

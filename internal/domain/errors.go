package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error kinds. Every error returned by the services wraps exactly one of these.
var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState indicates the operation would break a lifecycle or default-address rule.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)

var (
	ErrCustomerNotFound     = fmt.Errorf("%w: customer not found", ErrNotFound)
	ErrAddressNotFound      = fmt.Errorf("%w: address not found", ErrNotFound)
	ErrNoDefaultAddress     = fmt.Errorf("%w: no default address found for customer", ErrNotFound)
	ErrOrganizationNotFound = fmt.Errorf("%w: organization not found", ErrNotFound)

	ErrEmailExists          = fmt.Errorf("%w: customer with this email already exists", ErrConflict)
	ErrPhoneExists          = fmt.Errorf("%w: customer with this phone number already exists", ErrConflict)
	ErrDefaultAddressExists = fmt.Errorf("%w: customer already has a default address", ErrConflict)
	ErrAlreadyExists        = fmt.Errorf("%w: entity already exists", ErrConflict)

	ErrAlreadyRegistered   = fmt.Errorf("%w: customer is already registered", ErrInvalidState)
	ErrAddressNotOwned     = fmt.Errorf("%w: address does not belong to customer", ErrInvalidState)
	ErrUnsetDefault        = fmt.Errorf("%w: cannot unset default address without setting another", ErrInvalidState)
	ErrDeleteOnlyAddress   = fmt.Errorf("%w: cannot delete the only address", ErrInvalidState)
	ErrDeleteDefault       = fmt.Errorf("%w: cannot delete the default address, set another address as default first", ErrInvalidState)
)

// ErrMissingOrganization means a caller reached a tenant-scoped query without an
// organization in the context. It belongs to no kind and surfaces as an internal error.
var ErrMissingOrganization = errors.New("organization missing from context")

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError collects field errors. It unwraps to ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, rule, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}

// FromValidator converts validator/v10 output into a ValidationError. Other errors pass through.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

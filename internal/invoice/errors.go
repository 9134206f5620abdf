package invoice

import (
	"errors"
	"fmt"
	"strings"
)

// Common invoice service errors
var (
	// ErrInvoiceNotFound is returned when the invoice does not exist or the caller may not see it.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrDuplicateInvoice is returned when the owner already has an invoice with the same invoice id.
	ErrDuplicateInvoice = errors.New("invoice id already exists for this owner")

	// ErrInvalidInvoice is matched by ValidationErrors so callers can test for shape failures.
	ErrInvalidInvoice = errors.New("invalid invoice")
)

// ServiceError wraps errors with the service operation that failed.
type ServiceError struct {
	// Op is the operation that failed (e.g., "Create", "Share").
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// wrap wraps err as a ServiceError unless it is nil or already one.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}
	return &ServiceError{Op: op, Err: err}
}

// ValidationError describes one problem with an invoice field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil || e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors collects every field problem found in one invoice, in field order.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	return strings.Join(errs.Messages(), "; ")
}

// Is reports ErrInvalidInvoice as a match.
func (errs ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInvoice
}

// Messages returns one line per problem.
func (errs ValidationErrors) Messages() []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/customer-data/internal/store"
)

// Common service errors. Callers check for them with errors.Is; the API
// layer maps them to HTTP status codes.
var (
	// ErrCustomerNotFound indicates that the customer addressed by an
	// operation does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrCustomerNotFound = errors.New("customer not found")
)

// CustomerServiceError is a custom error type for customer service errors.
type CustomerServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CustomerServiceError.
func (e *CustomerServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("customer service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("customer service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CustomerServiceError) Unwrap() error {
	return e.Err
}

// NewCustomerServiceError wraps a store failure for operation.
// Not-found conditions collapse to ErrCustomerNotFound.
func NewCustomerServiceError(operation, message string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrCustomerNotFound
	}
	return &CustomerServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/customer-data/internal/api/shared"
	"github.com/phrazzld/customer-data/internal/domain"
	"github.com/phrazzld/customer-data/internal/service"
	"github.com/phrazzld/customer-data/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Not found errors
	case errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		validationErrs validator.ValidationErrors
		fieldErr       *domain.ValidationError
	)

	switch {
	case errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Customer not found"

	case errors.As(err, &fieldErr):
		return fmt.Sprintf("Invalid %s: %s", fieldErr.Field, fieldErr.Message)

	case errors.Is(err, store.ErrDuplicate):
		return "Customer data conflicts with an existing record"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)

	case errors.Is(err, domain.ErrInvalidCustomerType):
		return "Invalid customer_type: invalid value"

	case errors.Is(err, domain.ErrInvalidInternalID):
		return "Invalid id"

	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		first := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fieldName(first.Namespace()), getValidationTagMessage(first.Tag()))
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// fieldName turns a validator namespace such as
// "CustomerRequest.shopping_lists[0].products" into "shopping_lists[0].products".
func fieldName(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and sanitized message appropriate for
// err. A non-empty message overrides the sanitized one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

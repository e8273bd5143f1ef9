package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/customer-data/internal/domain"
)

// getPathInt64 extracts a positive integer identifier from the URL path
// parameters.
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrValidation)
	}
	return id, nil
}

// getRequiredQuery returns the named query parameter, failing when it is
// absent or empty.
func getRequiredQuery(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	return value, nil
}

// getPathString returns the named URL path parameter, failing when it is
// empty.
func getPathString(r *http.Request, paramName string) (string, error) {
	value := chi.URLParam(r, paramName)
	if value == "" {
		return "", domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	return value, nil
}

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/customer-data/internal/api/shared"
	"github.com/phrazzld/customer-data/internal/domain"
	"github.com/phrazzld/customer-data/internal/platform/logger"
	"github.com/phrazzld/customer-data/internal/service"
)

// Path and query parameter names used by CustomerHandler.
const (
	ParamID            = "id"
	ParamExternalID    = "external_id"
	ParamCompanyNumber = "company_number"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	matcher service.CustomerMatcher
	logger  *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(matcher service.CustomerMatcher, logger *slog.Logger) *CustomerHandler {
	if matcher == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("matcher cannot be nil for CustomerHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CustomerHandler{
		matcher: matcher,
		logger:  logger.With(slog.String("component", "customer_handler")),
	}
}

// RegisterRoutes mounts the customer endpoints under /customers.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/company", h.LoadCompanyCustomer)
		r.Get("/person", h.LoadPersonCustomer)
		r.Post("/", h.CreateCustomer)
		r.Put("/{"+ParamID+"}", h.UpdateCustomer)
		r.Post("/{"+ParamExternalID+"}/shopping-lists", h.AddShoppingList)
	})
}

// LoadCompanyCustomer handles GET /customers/company requests.
// It always answers 200 with the match result; an unmatched company has no
// customer and no match term.
func (h *CustomerHandler) LoadCompanyCustomer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	externalID, err := getRequiredQuery(r, ParamExternalID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	companyNumber := r.URL.Query().Get(ParamCompanyNumber)

	matches, err := h.matcher.LoadCompanyCustomer(r.Context(), externalID, companyNumber)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load company customer")
		return
	}

	log.Debug("company customer loaded",
		slog.String("external_id", externalID),
		slog.String("match_term", string(matches.MatchTerm)))
	shared.RespondWithJSON(w, r, http.StatusOK, matches)
}

// LoadPersonCustomer handles GET /customers/person requests.
func (h *CustomerHandler) LoadPersonCustomer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	externalID, err := getRequiredQuery(r, ParamExternalID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	matches, err := h.matcher.LoadPersonCustomer(r.Context(), externalID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load person customer")
		return
	}

	log.Debug("person customer loaded",
		slog.String("external_id", externalID),
		slog.Bool("matched", matches.Matched()))
	shared.RespondWithJSON(w, r, http.StatusOK, matches)
}

// CreateCustomer handles POST /customers requests.
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CustomerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.matcher.CreateCustomerRecord(r.Context(), req.ToDomain(0))
	if err != nil {
		h.respondWriteError(w, r, err, "Failed to create customer")
		return
	}

	log.Info("customer created via API",
		slog.Int64("internal_id", created.InternalID),
		slog.String("external_id", created.ExternalID))
	shared.RespondWithJSON(w, r, http.StatusCreated, created)
}

// UpdateCustomer handles PUT /customers/{id} requests.
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathInt64(r, ParamID)
	if err != nil {
		log.Warn("invalid customer id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	var req CustomerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.matcher.UpdateCustomerRecord(r.Context(), req.ToDomain(id)); err != nil {
		h.respondWriteError(w, r, err, "Failed to update customer")
		return
	}

	log.Info("customer updated via API", slog.Int64("internal_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// AddShoppingList handles POST /customers/{external_id}/shopping-lists
// requests. The customer is resolved by external ID before the list is
// appended.
func (h *CustomerHandler) AddShoppingList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	externalID, err := getPathString(r, ParamExternalID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ShoppingListRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	matches, err := h.matcher.LoadPersonCustomer(r.Context(), externalID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load customer")
		return
	}
	if !matches.Matched() {
		HandleAPIError(w, r, service.ErrCustomerNotFound, "")
		return
	}

	if err := h.matcher.UpdateShoppingList(r.Context(), matches.Customer, req.ToDomain()); err != nil {
		h.respondWriteError(w, r, err, "Failed to add shopping list")
		return
	}

	log.Info("shopping list added via API",
		slog.String("external_id", externalID),
		slog.Int("products", len(req.Products)))
	w.WriteHeader(http.StatusNoContent)
}

// decodeAndValidate reads the JSON body into dst and validates it, writing
// a 400 response on failure.
func (h *CustomerHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := shared.DecodeJSON(w, r, dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// respondWriteError keeps the detailed message for client errors and uses
// the generic fallback only for server-side failures.
func (h *CustomerHandler) respondWriteError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, service.ErrCustomerNotFound) {
		HandleAPIError(w, r, err, "")
		return
	}
	HandleAPIError(w, r, err, fallback)
}

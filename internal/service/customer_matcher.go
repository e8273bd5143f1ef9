package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/customer-data/internal/domain"
	"github.com/phrazzld/customer-data/internal/platform/logger"
	"github.com/phrazzld/customer-data/internal/store"
)

// CustomerMatcher resolves inbound customer identifications against stored
// customers and forwards writes to the store.
type CustomerMatcher interface {
	// LoadCompanyCustomer resolves a company by external ID, falling back to
	// its company number. A record whose master external ID equals
	// externalID is reported as a duplicate of the external ID match.
	LoadCompanyCustomer(ctx context.Context, externalID, companyNumber string) (*domain.CustomerMatches, error)

	// LoadPersonCustomer resolves a person by external ID only.
	LoadPersonCustomer(ctx context.Context, externalID string) (*domain.CustomerMatches, error)

	// CreateCustomerRecord persists a new customer and returns it with its
	// assigned internal ID.
	CreateCustomerRecord(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)

	// UpdateCustomerRecord persists the current state of an existing customer.
	UpdateCustomerRecord(ctx context.Context, customer *domain.Customer) error

	// UpdateShoppingList appends list to the customer and persists the
	// customer. The list stays appended in memory even if persisting fails.
	UpdateShoppingList(ctx context.Context, customer *domain.Customer, list domain.ShoppingList) error
}

// customerMatcherImpl implements the CustomerMatcher interface
type customerMatcherImpl struct {
	customers store.CustomerStore
	logger    *slog.Logger
}

// NewCustomerMatcher creates a new CustomerMatcher
// It returns an error if the customer store is nil.
func NewCustomerMatcher(customers store.CustomerStore, logger *slog.Logger) (CustomerMatcher, error) {
	if customers == nil {
		return nil, domain.NewValidationError("customers", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &customerMatcherImpl{
		customers: customers,
		logger:    logger.With(slog.String("component", "customer_matcher")),
	}, nil
}

// LoadCompanyCustomer implements CustomerMatcher.LoadCompanyCustomer
func (m *customerMatcherImpl) LoadCompanyCustomer(
	ctx context.Context,
	externalID, companyNumber string,
) (*domain.CustomerMatches, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)
	matches := domain.NewCustomerMatches()

	customer, err := m.customers.FindByExternalID(ctx, externalID)
	if err != nil {
		log.Error("failed to look up company by external id",
			slog.String("error", err.Error()),
			slog.String("external_id", externalID))
		return nil, NewCustomerServiceError("load_company", "failed to look up by external id", err)
	}

	if customer != nil {
		matches.Customer = customer
		matches.MatchTerm = domain.MatchTermExternalID

		duplicate, err := m.customers.FindDuplicateByMasterExternalID(ctx, externalID, customer.InternalID)
		if err != nil {
			log.Error("failed to look up company duplicates",
				slog.String("error", err.Error()),
				slog.String("external_id", externalID))
			return nil, NewCustomerServiceError("load_company", "failed to look up by master external id", err)
		}
		if duplicate != nil {
			matches.AddDuplicate(duplicate)
		}

		log.Debug("company matched by external id",
			slog.String("external_id", externalID),
			slog.Int64("internal_id", customer.InternalID),
			slog.Bool("has_duplicates", matches.HasDuplicates()))
		return matches, nil
	}

	if companyNumber == "" {
		log.Debug("company not matched, no company number to fall back on",
			slog.String("external_id", externalID))
		return matches, nil
	}

	customer, err = m.customers.FindByCompanyNumber(ctx, companyNumber)
	if err != nil {
		log.Error("failed to look up company by company number",
			slog.String("error", err.Error()),
			slog.String("company_number", companyNumber))
		return nil, NewCustomerServiceError("load_company", "failed to look up by company number", err)
	}

	if customer != nil {
		matches.Customer = customer
		matches.MatchTerm = domain.MatchTermCompanyNumber
		log.Debug("company matched by company number",
			slog.String("company_number", companyNumber),
			slog.Int64("internal_id", customer.InternalID))
	}

	return matches, nil
}

// LoadPersonCustomer implements CustomerMatcher.LoadPersonCustomer
func (m *customerMatcherImpl) LoadPersonCustomer(ctx context.Context, externalID string) (*domain.CustomerMatches, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)
	matches := domain.NewCustomerMatches()

	customer, err := m.customers.FindByExternalID(ctx, externalID)
	if err != nil {
		log.Error("failed to look up person by external id",
			slog.String("error", err.Error()),
			slog.String("external_id", externalID))
		return nil, NewCustomerServiceError("load_person", "failed to look up by external id", err)
	}

	if customer != nil {
		matches.Customer = customer
		matches.MatchTerm = domain.MatchTermExternalID
	}

	log.Debug("person lookup finished",
		slog.String("external_id", externalID),
		slog.Bool("matched", matches.Matched()))
	return matches, nil
}

// CreateCustomerRecord implements CustomerMatcher.CreateCustomerRecord
func (m *customerMatcherImpl) CreateCustomerRecord(
	ctx context.Context,
	customer *domain.Customer,
) (*domain.Customer, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	var created *domain.Customer
	err := m.inTransaction(ctx, func(ctx context.Context, customers store.CustomerStore) error {
		var err error
		created, err = customers.Create(ctx, customer)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		log.Error("failed to create customer",
			slog.String("error", err.Error()),
			slog.String("external_id", customer.ExternalID))
		return nil, NewCustomerServiceError("create", "failed to create customer", err)
	}

	log.Info("customer record created",
		slog.Int64("internal_id", created.InternalID),
		slog.String("external_id", created.ExternalID))
	return created, nil
}

// UpdateCustomerRecord implements CustomerMatcher.UpdateCustomerRecord
func (m *customerMatcherImpl) UpdateCustomerRecord(ctx context.Context, customer *domain.Customer) error {
	err := m.inTransaction(ctx, func(ctx context.Context, customers store.CustomerStore) error {
		return customers.Update(ctx, customer)
	})
	return m.updateError(ctx, "update", customer, err)
}

// UpdateShoppingList implements CustomerMatcher.UpdateShoppingList
func (m *customerMatcherImpl) UpdateShoppingList(
	ctx context.Context,
	customer *domain.Customer,
	list domain.ShoppingList,
) error {
	customer.AddShoppingList(list)

	err := m.inTransaction(ctx, func(ctx context.Context, customers store.CustomerStore) error {
		if err := customers.UpdateShoppingList(ctx, list); err != nil {
			return err
		}
		return customers.Update(ctx, customer)
	})
	return m.updateError(ctx, "update_shopping_list", customer, err)
}

// updateError classifies the outcome of an update-style operation.
func (m *customerMatcherImpl) updateError(ctx context.Context, operation string, customer *domain.Customer, err error) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	switch {
	case err == nil:
		log.Info("customer record updated",
			slog.String("operation", operation),
			slog.Int64("internal_id", customer.InternalID),
			slog.Int("shopping_lists", len(customer.ShoppingLists)))
		return nil
	case errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, store.ErrNotFound):
		log.Debug("customer to update does not exist",
			slog.String("operation", operation),
			slog.Int64("internal_id", customer.InternalID))
		return ErrCustomerNotFound
	default:
		log.Error("failed to update customer",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
			slog.Int64("internal_id", customer.InternalID))
		return NewCustomerServiceError(operation, "failed to update customer", err)
	}
}

// inTransaction runs fn on a transaction-bound store and commits once fn
// succeeds. A store already bound to a caller's transaction is used as is.
func (m *customerMatcherImpl) inTransaction(
	ctx context.Context,
	fn func(ctx context.Context, customers store.CustomerStore) error,
) error {
	db := m.customers.DB()
	if db == nil {
		return fn(ctx, m.customers)
	}

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, m.customers.WithTx(tx))
	})
}

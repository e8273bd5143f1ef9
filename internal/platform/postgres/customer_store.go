package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/customer-data/internal/domain"
	"github.com/phrazzld/customer-data/internal/platform/logger"
	"github.com/phrazzld/customer-data/internal/store"
)

const selectCustomer = `
	SELECT internal_id, external_id, master_external_id, name, customer_type, company_number, address_id
	FROM customers`

// Queries used by PostgresCustomerStore.
// Lookups take the lowest internal_id when several rows match.
const (
	queryCustomerByExternalID = selectCustomer + `
	WHERE external_id = $1
	ORDER BY internal_id LIMIT 1`

	queryCustomerByMasterExternalID = selectCustomer + `
	WHERE master_external_id = $1
	ORDER BY internal_id LIMIT 1`

	queryDuplicateByMasterExternalID = selectCustomer + `
	WHERE master_external_id = $1 AND internal_id <> $2
	ORDER BY internal_id LIMIT 1`

	queryCustomerByCompanyNumber = selectCustomer + `
	WHERE company_number = $1
	ORDER BY internal_id LIMIT 1`

	queryAddressByID = `
	SELECT street, city, postal_code
	FROM addresses
	WHERE address_id = $1`

	queryShoppingListsByCustomer = `
	SELECT sl.products
	FROM customer_shoppinglists cs
	JOIN shoppinglists sl ON sl.shoppinglist_id = cs.shoppinglist_id
	WHERE cs.customer_id = $1
	ORDER BY cs.position`

	queryLinkedAddressID = `
	SELECT address_id FROM customers WHERE internal_id = $1`

	queryShoppingListByKey = `
	SELECT shoppinglist_id
	FROM shoppinglists
	WHERE products_key = $1
	ORDER BY shoppinglist_id LIMIT 1`

	insertCustomer = `
	INSERT INTO customers (internal_id, external_id, master_external_id, name, customer_type, company_number, address_id)
	VALUES ($1, $2, $3, $4, $5, $6, NULL)`

	insertAddress = `
	INSERT INTO addresses (address_id, street, city, postal_code)
	VALUES ($1, $2, $3, $4)`

	linkAddress = `
	UPDATE customers SET address_id = $1 WHERE internal_id = $2`

	insertShoppingList = `
	INSERT INTO shoppinglists (shoppinglist_id, products, products_key)
	VALUES ($1, $2, $3)`

	insertShoppingListLink = `
	INSERT INTO customer_shoppinglists (customer_id, shoppinglist_id)
	VALUES ($1, $2)`

	updateCustomer = `
	UPDATE customers
	SET external_id = $1, master_external_id = $2, name = $3, customer_type = $4, company_number = $5
	WHERE internal_id = $6`

	deleteShoppingListLinks = `
	DELETE FROM customer_shoppinglists WHERE customer_id = $1`
)

// PostgresCustomerStore implements the store.CustomerStore interface
// using a PostgreSQL database as the storage backend.
//
// Every method runs its statements on the context it was given; the store
// holds no cursor or other per-call state between calls.
type PostgresCustomerStore struct {
	db     store.DBTX
	pool   *sql.DB
	ids    store.IDAllocator
	logger *slog.Logger
}

// NewPostgresCustomerStore creates a new PostgreSQL implementation of the CustomerStore interface.
// db may be a *sql.DB or a *sql.Tx. A nil ids uses MaxPlusOneAllocator and
// a nil logger uses slog.Default().
func NewPostgresCustomerStore(db store.DBTX, ids store.IDAllocator, logger *slog.Logger) *PostgresCustomerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if ids == nil {
		ids = MaxPlusOneAllocator{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, _ := db.(*sql.DB)

	return &PostgresCustomerStore{
		db:     db,
		pool:   pool,
		ids:    ids,
		logger: logger.With(slog.String("component", "customer_store")),
	}
}

// Ensure PostgresCustomerStore implements store.CustomerStore interface
var _ store.CustomerStore = (*PostgresCustomerStore)(nil)

// WithTx implements store.CustomerStore.WithTx
func (s *PostgresCustomerStore) WithTx(tx *sql.Tx) store.CustomerStore {
	return &PostgresCustomerStore{
		db:     tx,
		ids:    s.ids,
		logger: s.logger,
	}
}

// DB implements store.CustomerStore.DB
func (s *PostgresCustomerStore) DB() *sql.DB {
	return s.pool
}

// NextID implements store.CustomerStore.NextID
func (s *PostgresCustomerStore) NextID(ctx context.Context, table string) (int64, error) {
	return s.ids.NextID(ctx, s.db, table)
}

// FindByExternalID implements store.CustomerStore.FindByExternalID
func (s *PostgresCustomerStore) FindByExternalID(ctx context.Context, externalID string) (*domain.Customer, error) {
	return s.findOne(ctx, queryCustomerByExternalID, "external_id", externalID)
}

// FindByMasterExternalID implements store.CustomerStore.FindByMasterExternalID
func (s *PostgresCustomerStore) FindByMasterExternalID(ctx context.Context, masterExternalID string) (*domain.Customer, error) {
	return s.findOne(ctx, queryCustomerByMasterExternalID, "master_external_id", masterExternalID)
}

// FindDuplicateByMasterExternalID implements store.CustomerStore.FindDuplicateByMasterExternalID
func (s *PostgresCustomerStore) FindDuplicateByMasterExternalID(
	ctx context.Context,
	masterExternalID string,
	excludeInternalID int64,
) (*domain.Customer, error) {
	return s.findOne(ctx, queryDuplicateByMasterExternalID, "master_external_id", masterExternalID, excludeInternalID)
}

// FindByCompanyNumber implements store.CustomerStore.FindByCompanyNumber
func (s *PostgresCustomerStore) FindByCompanyNumber(ctx context.Context, companyNumber string) (*domain.Customer, error) {
	return s.findOne(ctx, queryCustomerByCompanyNumber, "company_number", companyNumber)
}

// findOne loads the first customer matched by query and hydrates it.
// value binds $1 and extra binds the following placeholders.
// A missing row is reported as (nil, nil).
func (s *PostgresCustomerStore) findOne(
	ctx context.Context,
	query, key, value string,
	extra ...any,
) (*domain.Customer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("looking up customer", slog.String(key, value))

	var (
		c             domain.Customer
		master        sql.NullString
		customerType  string
		companyNumber sql.NullString
		addressID     sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, query, append([]any{value}, extra...)...).Scan(
		&c.InternalID,
		&c.ExternalID,
		&master,
		&c.Name,
		&customerType,
		&companyNumber,
		&addressID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("customer not found", slog.String(key, value))
			return nil, nil
		}
		log.Error("failed to query customer",
			slog.String("error", err.Error()),
			slog.String(key, value))
		return nil, store.NewStoreError("customer", "find", "failed to query customer", MapError(err))
	}

	c.MasterExternalID = master.String
	c.CompanyNumber = companyNumber.String
	c.CustomerType, err = domain.ParseCustomerType(customerType)
	if err != nil {
		log.Error("stored customer has unknown type",
			slog.Int64("internal_id", c.InternalID),
			slog.String("customer_type", customerType))
		return nil, store.NewStoreError("customer", "find", "malformed customer row",
			errors.Join(store.ErrInvalidEntity, err))
	}

	if err := s.hydrate(ctx, &c, addressID); err != nil {
		return nil, err
	}

	log.Debug("customer retrieved",
		slog.Int64("internal_id", c.InternalID),
		slog.Bool("has_address", c.Address != nil),
		slog.Int("shopping_lists", len(c.ShoppingLists)))
	return &c, nil
}

// hydrate attaches the linked address and every associated shopping list,
// in association order. A dangling address link is treated as no address.
func (s *PostgresCustomerStore) hydrate(ctx context.Context, c *domain.Customer, addressID sql.NullInt64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if addressID.Valid {
		var a domain.Address
		err := s.db.QueryRowContext(ctx, queryAddressByID, addressID.Int64).Scan(
			&a.Street,
			&a.City,
			&a.PostalCode,
		)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			log.Warn("linked address row is missing, treating customer as having no address",
				slog.Int64("internal_id", c.InternalID),
				slog.Int64("address_id", addressID.Int64))
		case err != nil:
			log.Error("failed to load address",
				slog.String("error", err.Error()),
				slog.Int64("address_id", addressID.Int64))
			return store.NewStoreError("address", "hydrate", "failed to load address", MapError(err))
		default:
			c.Address = &a
		}
	}

	rows, err := s.db.QueryContext(ctx, queryShoppingListsByCustomer, c.InternalID)
	if err != nil {
		log.Error("failed to query shopping lists",
			slog.String("error", err.Error()),
			slog.Int64("internal_id", c.InternalID))
		return store.NewStoreError("shopping_list", "hydrate", "failed to query shopping lists", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	c.ShoppingLists = []domain.ShoppingList{}
	for rows.Next() {
		var products string
		if err := rows.Scan(&products); err != nil {
			return store.NewStoreError("shopping_list", "hydrate", "failed to scan shopping list", err)
		}
		c.AddShoppingList(domain.ParseShoppingList(products))
	}
	if err := rows.Err(); err != nil {
		return store.NewStoreError("shopping_list", "hydrate", "failed to read shopping lists", err)
	}

	return nil
}

// Create implements store.CustomerStore.Create
// The internal ID is written back to customer only once every row is stored.
func (s *PostgresCustomerStore) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := customer.Validate(); err != nil {
		log.Warn("customer validation failed during create",
			slog.String("error", err.Error()),
			slog.String("external_id", customer.ExternalID))
		return nil, err
	}

	id, err := s.ids.NextID(ctx, s.db, store.TableCustomers)
	if err != nil {
		log.Error("failed to allocate customer id", slog.String("error", err.Error()))
		return nil, store.NewStoreError("customer", "create", "failed to allocate internal id", err)
	}

	_, err = s.db.ExecContext(ctx, insertCustomer,
		id,
		customer.ExternalID,
		nullString(customer.MasterExternalID),
		customer.Name,
		string(customer.CustomerType),
		nullString(customer.CompanyNumber),
	)
	if err != nil {
		log.Error("failed to insert customer",
			slog.String("error", err.Error()),
			slog.String("external_id", customer.ExternalID))
		return nil, store.NewStoreError("customer", "create", "failed to insert customer row", MapError(err))
	}

	if customer.Address != nil {
		if err := s.linkNewAddress(ctx, id, *customer.Address); err != nil {
			return nil, err
		}
	}

	if err := s.linkShoppingLists(ctx, id, customer.ShoppingLists); err != nil {
		return nil, err
	}

	customer.InternalID = id

	log.Info("customer created",
		slog.Int64("internal_id", id),
		slog.String("external_id", customer.ExternalID),
		slog.String("customer_type", string(customer.CustomerType)),
		slog.Int("shopping_lists", len(customer.ShoppingLists)))
	return customer, nil
}

// Update implements store.CustomerStore.Update
func (s *PostgresCustomerStore) Update(ctx context.Context, customer *domain.Customer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := customer.ValidateForUpdate(); err != nil {
		log.Warn("customer validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("internal_id", customer.InternalID))
		return err
	}

	result, err := s.db.ExecContext(ctx, updateCustomer,
		customer.ExternalID,
		nullString(customer.MasterExternalID),
		customer.Name,
		string(customer.CustomerType),
		nullString(customer.CompanyNumber),
		customer.InternalID,
	)
	if err != nil {
		log.Error("failed to update customer",
			slog.String("error", err.Error()),
			slog.Int64("internal_id", customer.InternalID))
		return store.NewStoreError("customer", "update", "failed to update customer row",
			errors.Join(store.ErrUpdateFailed, MapError(err)))
	}

	if err := CheckRowsAffected(result, store.ErrCustomerNotFound); err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			log.Debug("customer not found for update", slog.Int64("internal_id", customer.InternalID))
			return store.ErrCustomerNotFound
		}
		return store.NewStoreError("customer", "update", "failed to check affected rows", err)
	}

	if customer.Address != nil {
		var addressID sql.NullInt64
		if err := s.db.QueryRowContext(ctx, queryLinkedAddressID, customer.InternalID).Scan(&addressID); err != nil {
			log.Error("failed to read linked address",
				slog.String("error", err.Error()),
				slog.Int64("internal_id", customer.InternalID))
			return store.NewStoreError("address", "update", "failed to read linked address", MapError(err))
		}
		// An already linked address is left untouched.
		if !addressID.Valid {
			if err := s.linkNewAddress(ctx, customer.InternalID, *customer.Address); err != nil {
				return err
			}
		}
	}

	if _, err := s.db.ExecContext(ctx, deleteShoppingListLinks, customer.InternalID); err != nil {
		log.Error("failed to remove shopping list links",
			slog.String("error", err.Error()),
			slog.Int64("internal_id", customer.InternalID))
		return store.NewStoreError("shopping_list", "update", "failed to remove shopping list links", MapError(err))
	}

	if err := s.linkShoppingLists(ctx, customer.InternalID, customer.ShoppingLists); err != nil {
		return err
	}

	log.Info("customer updated",
		slog.Int64("internal_id", customer.InternalID),
		slog.String("external_id", customer.ExternalID),
		slog.Int("shopping_lists", len(customer.ShoppingLists)))
	return nil
}

// UpdateShoppingList implements store.CustomerStore.UpdateShoppingList
func (s *PostgresCustomerStore) UpdateShoppingList(ctx context.Context, list domain.ShoppingList) error {
	logger.FromContextOrDefault(ctx, s.logger).Debug("shopping list hook invoked, nothing to persist",
		slog.Int("products", len(list.Products)))
	return nil
}

// linkNewAddress stores address under a fresh id and links it to the customer.
func (s *PostgresCustomerStore) linkNewAddress(ctx context.Context, customerID int64, address domain.Address) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	addressID, err := s.ids.NextID(ctx, s.db, store.TableAddresses)
	if err != nil {
		return store.NewStoreError("address", "create", "failed to allocate address id", err)
	}

	if _, err := s.db.ExecContext(ctx, insertAddress,
		addressID,
		address.Street,
		address.City,
		address.PostalCode,
	); err != nil {
		log.Error("failed to insert address",
			slog.String("error", err.Error()),
			slog.Int64("internal_id", customerID))
		return store.NewStoreError("address", "create", "failed to insert address row", MapError(err))
	}

	if _, err := s.db.ExecContext(ctx, linkAddress, addressID, customerID); err != nil {
		log.Error("failed to link address",
			slog.String("error", err.Error()),
			slog.Int64("internal_id", customerID),
			slog.Int64("address_id", addressID))
		return store.NewStoreError("address", "create", "failed to link address", MapError(err))
	}

	log.Debug("address linked",
		slog.Int64("internal_id", customerID),
		slog.Int64("address_id", addressID))
	return nil
}

// linkShoppingLists inserts one association row per list, in order.
func (s *PostgresCustomerStore) linkShoppingLists(ctx context.Context, customerID int64, lists []domain.ShoppingList) error {
	for _, list := range lists {
		listID, err := s.ensureShoppingList(ctx, list)
		if err != nil {
			return err
		}

		if _, err := s.db.ExecContext(ctx, insertShoppingListLink, customerID, listID); err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to link shopping list",
				slog.String("error", err.Error()),
				slog.Int64("internal_id", customerID),
				slog.Int64("shoppinglist_id", listID))
			return store.NewStoreError("shopping_list", "link", "failed to link shopping list", MapError(err))
		}
	}
	return nil
}

// ensureShoppingList returns the id of the stored list with the same
// content, inserting a new row only when none exists.
func (s *PostgresCustomerStore) ensureShoppingList(ctx context.Context, list domain.ShoppingList) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	key := ShoppingListKey(list)

	var listID int64
	err := s.db.QueryRowContext(ctx, queryShoppingListByKey, key).Scan(&listID)
	if err == nil {
		log.Debug("reusing stored shopping list", slog.Int64("shoppinglist_id", listID))
		return listID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to look up shopping list", slog.String("error", err.Error()))
		return 0, store.NewStoreError("shopping_list", "lookup", "failed to look up shopping list", MapError(err))
	}

	listID, err = s.ids.NextID(ctx, s.db, store.TableShoppingLists)
	if err != nil {
		return 0, store.NewStoreError("shopping_list", "create", "failed to allocate shopping list id", err)
	}

	if _, err := s.db.ExecContext(ctx, insertShoppingList, listID, list.String(), key); err != nil {
		log.Error("failed to insert shopping list",
			slog.String("error", err.Error()),
			slog.Int64("shoppinglist_id", listID))
		return 0, store.NewStoreError("shopping_list", "create", "failed to insert shopping list", MapError(err))
	}

	log.Debug("shopping list stored",
		slog.Int64("shoppinglist_id", listID),
		slog.Int("products", len(list.Products)))
	return listID, nil
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

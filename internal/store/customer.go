package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/customer-data/internal/domain"
)

// Tables that carry a store-assigned numeric identity.
const (
	TableCustomers     = "customers"
	TableAddresses     = "addresses"
	TableShoppingLists = "shoppinglists"
)

// CustomerStore defines the interface for customer data persistence.
// Every find returns the fully hydrated customer, including its address and
// shopping lists in association order.
type CustomerStore interface {
	// FindByExternalID returns the customer with the given external ID,
	// or nil when no row matches.
	FindByExternalID(ctx context.Context, externalID string) (*domain.Customer, error)

	// FindByMasterExternalID returns the customer whose master external ID
	// equals the given value, or nil when no row matches.
	FindByMasterExternalID(ctx context.Context, masterExternalID string) (*domain.Customer, error)

	// FindDuplicateByMasterExternalID is FindByMasterExternalID restricted to
	// rows other than excludeInternalID, so a record that names itself as its
	// master never hides a different alias.
	FindDuplicateByMasterExternalID(
		ctx context.Context,
		masterExternalID string,
		excludeInternalID int64,
	) (*domain.Customer, error)

	// FindByCompanyNumber returns the customer registered under the given
	// company number, or nil when no row matches.
	FindByCompanyNumber(ctx context.Context, companyNumber string) (*domain.Customer, error)

	// Create assigns a fresh internal ID to the customer and persists it,
	// together with its address and shopping-list associations.
	// Shopping lists whose content is already stored are reused.
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)

	// Update overwrites the scalar fields of an existing customer, links an
	// address if none is linked yet, and replaces all shopping-list
	// associations with the ones currently on the customer.
	// An already linked address is never modified.
	// Returns ErrCustomerNotFound if no customer has the given internal ID.
	Update(ctx context.Context, customer *domain.Customer) error

	// UpdateShoppingList is a per-list persistence hook. It performs no
	// writes; shopping lists are persisted through Update.
	UpdateShoppingList(ctx context.Context, list domain.ShoppingList) error

	// NextID returns the next identity for one of the id-bearing tables.
	NextID(ctx context.Context, table string) (int64, error)

	// WithTx returns a CustomerStore that runs every statement in tx.
	WithTx(tx *sql.Tx) CustomerStore

	// DB returns the connection pool the store was built with, or nil when
	// the store is bound to a transaction owned by someone else.
	DB() *sql.DB
}

// IDAllocator hands out identities for new rows. Implementations run their
// statements on the supplied DBTX so that allocation happens inside the
// caller's transaction.
type IDAllocator interface {
	NextID(ctx context.Context, db DBTX, table string) (int64, error)
}

//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/phrazzld/customer-data/internal/domain"
	"github.com/phrazzld/customer-data/internal/platform/postgres"
	"github.com/phrazzld/customer-data/internal/store"
	"github.com/phrazzld/customer-data/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, tx *sql.Tx, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, tx.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestPostgresCustomerStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	t.Run("create then reload", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresCustomerStore(tx, nil, nil)

			created, err := s.Create(ctx, &domain.Customer{
				ExternalID:    "it-ext-1",
				Name:          "Alice",
				CustomerType:  domain.CustomerTypePerson,
				Address:       &domain.Address{Street: "Main St 1", City: "Gothenburg", PostalCode: "41101"},
				ShoppingLists: []domain.ShoppingList{domain.NewShoppingList("milk", "bread")},
			})
			require.NoError(t, err)
			assert.Positive(t, created.InternalID)

			loaded, err := s.FindByExternalID(ctx, "it-ext-1")
			require.NoError(t, err)
			require.NotNil(t, loaded)

			assert.Equal(t, created.InternalID, loaded.InternalID)
			assert.Equal(t, "Alice", loaded.Name)
			assert.Empty(t, loaded.MasterExternalID)
			assert.Equal(t, created.Address, loaded.Address)
			assert.Equal(t, []domain.ShoppingList{domain.NewShoppingList("milk", "bread")}, loaded.ShoppingLists)
		})
	})

	t.Run("empty external id and partial address round trip", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresCustomerStore(tx, nil, nil)

			created, err := s.Create(ctx, &domain.Customer{
				CustomerType: domain.CustomerTypePerson,
				Address:      &domain.Address{Street: "Main 1"},
			})
			require.NoError(t, err)

			loaded, err := s.FindByExternalID(ctx, "")
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, created.InternalID, loaded.InternalID)
			assert.Equal(t, &domain.Address{Street: "Main 1"}, loaded.Address)
		})
	})

	t.Run("self-aliased primary does not hide another alias", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresCustomerStore(tx, nil, nil)

			primary, err := s.Create(ctx, &domain.Customer{
				ExternalID: "it-m1", MasterExternalID: "it-m1", CustomerType: domain.CustomerTypeCompany,
			})
			require.NoError(t, err)
			alias, err := s.Create(ctx, &domain.Customer{
				ExternalID: "it-m1-alias", MasterExternalID: "it-m1", CustomerType: domain.CustomerTypeCompany,
			})
			require.NoError(t, err)

			duplicate, err := s.FindDuplicateByMasterExternalID(ctx, "it-m1", primary.InternalID)
			require.NoError(t, err)
			require.NotNil(t, duplicate)
			assert.Equal(t, alias.InternalID, duplicate.InternalID)
		})
	})

	t.Run("identical lists share one row", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresCustomerStore(tx, nil, nil)
			list := domain.NewShoppingList("it-coffee", "it-tea")

			a, err := s.Create(ctx, &domain.Customer{
				ExternalID: "it-a", CustomerType: domain.CustomerTypePerson,
				ShoppingLists: []domain.ShoppingList{list},
			})
			require.NoError(t, err)
			b, err := s.Create(ctx, &domain.Customer{
				ExternalID: "it-b", CustomerType: domain.CustomerTypePerson,
				ShoppingLists: []domain.ShoppingList{list},
			})
			require.NoError(t, err)

			assert.Equal(t, 1, countRows(t, tx,
				"SELECT COUNT(*) FROM shoppinglists WHERE products_key = $1", postgres.ShoppingListKey(list)))

			var idA, idB int64
			require.NoError(t, tx.QueryRowContext(ctx,
				"SELECT shoppinglist_id FROM customer_shoppinglists WHERE customer_id = $1", a.InternalID).Scan(&idA))
			require.NoError(t, tx.QueryRowContext(ctx,
				"SELECT shoppinglist_id FROM customer_shoppinglists WHERE customer_id = $1", b.InternalID).Scan(&idB))
			assert.Equal(t, idA, idB)
		})
	})

	t.Run("update replaces associations", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresCustomerStore(tx, nil, nil)

			c, err := s.Create(ctx, &domain.Customer{
				ExternalID:   "it-upd",
				CustomerType: domain.CustomerTypeCompany,
				ShoppingLists: []domain.ShoppingList{
					domain.NewShoppingList("it-a"),
					domain.NewShoppingList("it-b"),
				},
			})
			require.NoError(t, err)

			c.ShoppingLists = []domain.ShoppingList{domain.NewShoppingList("it-c")}
			c.Address = &domain.Address{Street: "Harbour 3", City: "Malmo", PostalCode: "21100"}
			require.NoError(t, s.Update(ctx, c))

			loaded, err := s.FindByExternalID(ctx, "it-upd")
			require.NoError(t, err)
			assert.Equal(t, []domain.ShoppingList{domain.NewShoppingList("it-c")}, loaded.ShoppingLists)
			require.NotNil(t, loaded.Address)
			assert.Equal(t, "Malmo", loaded.Address.City)

			// A second update leaves the linked address alone
			c.Address = &domain.Address{Street: "Elsewhere 9", City: "Lund", PostalCode: "22100"}
			require.NoError(t, s.Update(ctx, c))

			loaded, err = s.FindByExternalID(ctx, "it-upd")
			require.NoError(t, err)
			assert.Equal(t, "Malmo", loaded.Address.City)
		})
	})

	t.Run("update of unknown customer", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresCustomerStore(tx, nil, nil)

			err := s.Update(ctx, &domain.Customer{
				InternalID: 987654321, ExternalID: "it-none", CustomerType: domain.CustomerTypePerson,
			})
			assert.ErrorIs(t, err, store.ErrCustomerNotFound)
		})
	})

	t.Run("next id is max plus one", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresCustomerStore(tx, nil, nil)

			_, err := tx.ExecContext(ctx, "DELETE FROM customer_shoppinglists")
			require.NoError(t, err)
			_, err = tx.ExecContext(ctx, "DELETE FROM shoppinglists")
			require.NoError(t, err)

			next, err := s.NextID(ctx, store.TableShoppingLists)
			require.NoError(t, err)
			assert.Equal(t, int64(1), next)

			for _, id := range []int64{3, 7, 2} {
				_, err := tx.ExecContext(ctx,
					"INSERT INTO shoppinglists (shoppinglist_id, products, products_key) VALUES ($1, 'x', $2)",
					id, fmt.Sprintf("key-%d", id))
				require.NoError(t, err)
			}

			next, err = s.NextID(ctx, store.TableShoppingLists)
			require.NoError(t, err)
			assert.Equal(t, int64(8), next)
		})
	})
}

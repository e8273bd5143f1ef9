package postgres

import (
	"context"
	"fmt"

	"github.com/phrazzld/customer-data/internal/store"
)

// primaryKeys lists the id-bearing tables and their identity columns.
// Table names are interpolated into SQL, so only these are accepted.
var primaryKeys = map[string]string{
	store.TableCustomers:     "internal_id",
	store.TableAddresses:     "address_id",
	store.TableShoppingLists: "shoppinglist_id",
}

// MaxPlusOneAllocator allocates identities by scanning the current maximum
// identity of a table and adding one; an empty table yields 1.
//
// Two writers allocating concurrently for the same table can receive the
// same value. Callers must serialize writers or swap in an allocator backed
// by a sequence.
type MaxPlusOneAllocator struct{}

// Ensure MaxPlusOneAllocator implements store.IDAllocator
var _ store.IDAllocator = MaxPlusOneAllocator{}

// NextID implements store.IDAllocator.
func (MaxPlusOneAllocator) NextID(ctx context.Context, db store.DBTX, table string) (int64, error) {
	pk, ok := primaryKeys[table]
	if !ok {
		return 0, fmt.Errorf("%w: no identity column for table %q", store.ErrInvalidEntity, table)
	}

	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", pk, table)

	var next int64
	if err := db.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", table, MapError(err))
	}
	return next, nil
}

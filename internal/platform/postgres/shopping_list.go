package postgres

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/phrazzld/customer-data/internal/domain"
)

// ShoppingListKey returns the canonical content key of a shopping list.
//
// Each product is length-prefixed before hashing, so lists whose joined
// product strings coincide (["a, b"] and ["a", "b"]) still get distinct keys,
// while lists with identical ordered products always share one.
func ShoppingListKey(list domain.ShoppingList) string {
	h := sha256.New()
	var size [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(size[:], uint64(len(list.Products)))
	h.Write(size[:n])
	for _, product := range list.Products {
		n = binary.PutUvarint(size[:], uint64(len(product)))
		h.Write(size[:n])
		h.Write([]byte(product))
	}

	return hex.EncodeToString(h.Sum(nil))
}

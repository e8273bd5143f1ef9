package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerMatches(t *testing.T) {
	t.Parallel()

	m := NewCustomerMatches()
	assert.False(t, m.Matched())
	assert.False(t, m.HasDuplicates())
	assert.Equal(t, MatchTermNone, m.MatchTerm)

	m.Customer = &Customer{InternalID: 1, ExternalID: "E1"}
	m.MatchTerm = MatchTermExternalID
	m.AddDuplicate(&Customer{InternalID: 2, MasterExternalID: "E1"})

	assert.True(t, m.Matched())
	assert.True(t, m.HasDuplicates())
	assert.Len(t, m.Duplicates, 1)
}

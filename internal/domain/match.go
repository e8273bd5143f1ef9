package domain

// MatchTerm names the lookup strategy that located a customer.
type MatchTerm string

// Match terms reported in CustomerMatches.
const (
	MatchTermNone          MatchTerm = ""
	MatchTermExternalID    MatchTerm = "ExternalId"
	MatchTermCompanyNumber MatchTerm = "CompanyNumber"
)

// CustomerMatches is the transient outcome of resolving an inbound
// identification against stored customers.
type CustomerMatches struct {
	Customer   *Customer   `json:"customer,omitempty"`
	MatchTerm  MatchTerm   `json:"match_term,omitempty"`
	Duplicates []*Customer `json:"duplicates"`
}

// NewCustomerMatches returns an empty result with no match.
func NewCustomerMatches() *CustomerMatches {
	return &CustomerMatches{Duplicates: []*Customer{}}
}

// Matched reports whether a primary customer was found.
func (m *CustomerMatches) Matched() bool {
	return m.Customer != nil
}

// HasDuplicates reports whether any duplicate records were attached.
func (m *CustomerMatches) HasDuplicates() bool {
	return len(m.Duplicates) > 0
}

// AddDuplicate records a secondary customer found alongside the primary match.
func (m *CustomerMatches) AddDuplicate(duplicate *Customer) {
	m.Duplicates = append(m.Duplicates, duplicate)
}

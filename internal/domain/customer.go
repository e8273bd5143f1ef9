package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CustomerType distinguishes private persons from companies.
type CustomerType string

// Supported customer types. The values are persisted verbatim.
const (
	CustomerTypePerson  CustomerType = "Person"
	CustomerTypeCompany CustomerType = "Company"
)

// ProductSeparator joins the products of a shopping list in its stored form.
const ProductSeparator = ", "

// Validation errors for Customer
var (
	ErrInvalidCustomerType = errors.New("invalid customer type")
	ErrInvalidInternalID   = errors.New("customer internal ID must be positive")
)

// IsValid reports whether t is one of the supported customer types.
func (t CustomerType) IsValid() bool {
	return t == CustomerTypePerson || t == CustomerTypeCompany
}

// ParseCustomerType converts a stored or transmitted value into a CustomerType.
func ParseCustomerType(value string) (CustomerType, error) {
	t := CustomerType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCustomerType, value)
	}
	return t, nil
}

// Address is a postal address owned by exactly one customer.
// It has no identity of its own. Fields are stored as given, empty included.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// ShoppingList is an ordered sequence of product names.
type ShoppingList struct {
	Products []string `json:"products"`
}

// NewShoppingList builds a shopping list from the given products, preserving order.
func NewShoppingList(products ...string) ShoppingList {
	return ShoppingList{Products: append([]string{}, products...)}
}

// ParseShoppingList reverses String: it splits a stored product string on
// ProductSeparator. An empty string yields an empty list.
func ParseShoppingList(stored string) ShoppingList {
	if stored == "" {
		return ShoppingList{Products: []string{}}
	}
	return ShoppingList{Products: strings.Split(stored, ProductSeparator)}
}

// String returns the stored form of the list.
func (s ShoppingList) String() string {
	return strings.Join(s.Products, ProductSeparator)
}

// Customer is a person or company known to the upstream system by ExternalID.
//
// InternalID is assigned by the store on creation and never changes afterwards.
// MasterExternalID, when set, marks this record as an alias of the customer
// whose ExternalID it names. Empty optional strings are stored as NULL.
type Customer struct {
	InternalID       int64          `json:"internal_id"`
	ExternalID       string         `json:"external_id"`
	MasterExternalID string         `json:"master_external_id,omitempty"`
	Name             string         `json:"name"`
	CustomerType     CustomerType   `json:"customer_type"`
	CompanyNumber    string         `json:"company_number,omitempty"`
	Address          *Address       `json:"address,omitempty"`
	ShoppingLists    []ShoppingList `json:"shopping_lists"`
}

// AddShoppingList appends a shopping list to the customer's collection.
func (c *Customer) AddShoppingList(list ShoppingList) {
	c.ShoppingLists = append(c.ShoppingLists, list)
}

// Validate checks that the Customer can be persisted. Only the customer type
// is constrained; every other field, empty strings included, is stored as given.
// Failures wrap both ErrValidation and the specific cause.
func (c *Customer) Validate() error {
	if !c.CustomerType.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidCustomerType, c.CustomerType)
	}
	return nil
}

// ValidateForUpdate additionally requires a store-assigned internal ID.
func (c *Customer) ValidateForUpdate() error {
	if c.InternalID <= 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidInternalID)
	}
	return c.Validate()
}

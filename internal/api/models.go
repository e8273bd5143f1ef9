package api

import "github.com/phrazzld/customer-data/internal/domain"

// AddressRequest is the address part of a customer payload.
// Fields are stored as sent, empty ones included.
type AddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// ShoppingListRequest is one ordered list of product names.
type ShoppingListRequest struct {
	Products []string `json:"products" validate:"required"`
}

// CustomerRequest defines the payload for creating and updating customers.
type CustomerRequest struct {
	ExternalID       string                `json:"external_id"                  validate:"required"`
	MasterExternalID string                `json:"master_external_id,omitempty"`
	Name             string                `json:"name"`
	CustomerType     string                `json:"customer_type"                validate:"required,oneof=Person Company"`
	CompanyNumber    string                `json:"company_number,omitempty"`
	Address          *AddressRequest       `json:"address,omitempty"`
	ShoppingLists    []ShoppingListRequest `json:"shopping_lists,omitempty"     validate:"dive"`
}

// ToDomain converts the request into a customer with the given internal ID.
func (r CustomerRequest) ToDomain(internalID int64) *domain.Customer {
	customer := &domain.Customer{
		InternalID:       internalID,
		ExternalID:       r.ExternalID,
		MasterExternalID: r.MasterExternalID,
		Name:             r.Name,
		CustomerType:     domain.CustomerType(r.CustomerType),
		CompanyNumber:    r.CompanyNumber,
		ShoppingLists:    make([]domain.ShoppingList, 0, len(r.ShoppingLists)),
	}

	if r.Address != nil {
		customer.Address = &domain.Address{
			Street:     r.Address.Street,
			City:       r.Address.City,
			PostalCode: r.Address.PostalCode,
		}
	}

	for _, list := range r.ShoppingLists {
		customer.AddShoppingList(list.ToDomain())
	}
	return customer
}

// ToDomain converts the request into a shopping list.
func (r ShoppingListRequest) ToDomain() domain.ShoppingList {
	return domain.NewShoppingList(r.Products...)
}

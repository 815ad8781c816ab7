package domain

import "time"

// DefaultCountry is applied to addresses created without a country.
const DefaultCountry = "USA"

// Address is a shipping/billing destination in a customer's address book.
type Address struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"-"`
	CustomerID     string    `json:"customerId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Phone          string    `json:"phone,omitempty"`
	Street         string    `json:"street"`
	Apartment      string    `json:"apartment,omitempty"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	PostalCode     string    `json:"postalCode"`
	Country        string    `json:"country"`
	IsDefault      bool      `json:"isDefault"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AddressPatch carries the fields of a partial address update. Nil means unchanged.
type AddressPatch struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	Street     *string
	Apartment  *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
}

// Empty reports whether the patch changes nothing.
func (p AddressPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Street == nil &&
		p.Apartment == nil && p.City == nil && p.State == nil && p.PostalCode == nil && p.Country == nil
}

// AddressStats summarises one customer's address book.
type AddressStats struct {
	Total            int            `json:"total"`
	HasDefault       bool           `json:"hasDefault"`
	DefaultAddressID string         `json:"defaultAddressId,omitempty"`
	ByCountry        map[string]int `json:"byCountry"`
}

package domain

import "time"

// Customer is a shopper record owned by an organization. Guests have no UserID;
// registered customers point at the identity provider's user.
type Customer struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	IsGuest        bool      `json:"isGuest"`
	UserID         *string   `json:"userId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CustomerPatch carries the fields of a partial customer update. Nil means unchanged.
type CustomerPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	IsGuest   *bool
	UserID    *string
}

// Empty reports whether the patch changes nothing.
func (p CustomerPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Phone == nil && p.IsGuest == nil && p.UserID == nil
}

// CustomerFilter narrows FindAll. A nil IsGuest returns both kinds.
type CustomerFilter struct {
	IsGuest *bool
	Search  string
}

// CustomerWithAddresses is a customer together with its address book.
type CustomerWithAddresses struct {
	Customer
	Addresses []Address `json:"addresses"`
}

// CustomerStats summarises a customer's address book.
type CustomerStats struct {
	Customer          Customer `json:"customer"`
	AddressCount      int      `json:"addressCount"`
	HasDefaultAddress bool     `json:"hasDefaultAddress"`
}

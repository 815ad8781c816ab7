package importer

import (
	"context"
	"strings"
	"testing"

	"backoffice/internal/domain"
	addresssvc "backoffice/internal/service/address"
	customersvc "backoffice/internal/service/customer"
	"backoffice/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubCustomers struct {
	byEmail map[string]*domain.Customer
	inputs  []customersvc.CreateCustomerInput
	orgs    []string
}

func (s *stubCustomers) GetOrCreateByEmail(ctx context.Context, in customersvc.CreateCustomerInput) (*domain.Customer, bool, error) {
	orgID, _ := tenant.OrganizationID(ctx)
	s.orgs = append(s.orgs, orgID)
	if c, ok := s.byEmail[in.Email]; ok {
		return c, false, nil
	}
	if err := domain.Validate(in); err != nil {
		return nil, false, err
	}
	s.inputs = append(s.inputs, in)
	c := &domain.Customer{
		ID:        "c-" + in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		IsGuest:   in.IsGuest,
		UserID:    in.UserID,
	}
	s.byEmail[in.Email] = c
	return c, true, nil
}

type stubAddresses struct {
	items []addresssvc.CreateAddressInput
}

func (s *stubAddresses) FindByCustomerID(_ context.Context, customerID, orgID string) ([]domain.Address, error) {
	var out []domain.Address
	for _, in := range s.items {
		if in.CustomerID == customerID {
			out = append(out, domain.Address{CustomerID: customerID, OrganizationID: orgID, Street: in.Street})
		}
	}
	return out, nil
}

func (s *stubAddresses) Create(_ context.Context, in addresssvc.CreateAddressInput, orgID string) (*domain.Address, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	s.items = append(s.items, in)
	return &domain.Address{ID: "a", CustomerID: in.CustomerID, OrganizationID: orgID}, nil
}

// rollbackTx restores both stores when a block fails, like a database rollback.
type rollbackTx struct {
	customers *stubCustomers
	addresses *stubAddresses
	calls     int
	rollbacks int
}

func (tx *rollbackTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	byEmail := make(map[string]*domain.Customer, len(tx.customers.byEmail))
	for k, v := range tx.customers.byEmail {
		byEmail[k] = v
	}
	inputs := append([]customersvc.CreateCustomerInput(nil), tx.customers.inputs...)
	items := append([]addresssvc.CreateAddressInput(nil), tx.addresses.items...)

	if err := fn(ctx); err != nil {
		tx.rollbacks++
		tx.customers.byEmail = byEmail
		tx.customers.inputs = inputs
		tx.addresses.items = items
		return err
	}
	return nil
}

const csvData = `email,first_name,last_name,phone,user_id,street,apartment,city,state,postal_code,country
ada@x.com,Ada,Lovelace,+1001,user-1,1 Main St,,Springfield,IL,62701,
,,,,,2 Side St,4B,Springfield,IL,62702,CAN
grace@x.com,Grace,Hopper,,,,,,,,
,,,,,,,,,,
`

func TestCSVImporter_Run(t *testing.T) {
	customers := &stubCustomers{byEmail: map[string]*domain.Customer{}}
	addresses := &stubAddresses{}
	imp := NewCSVImporter(strings.NewReader(csvData), customers, addresses, nil, "org-1", zaptest.NewLogger(t))

	res, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{CustomersCreated: 2, AddressesCreated: 2}, res)
	assert.Equal(t, []string{"org-1", "org-1"}, customers.orgs)

	require.Len(t, customers.inputs, 2)
	assert.False(t, customers.inputs[0].IsGuest)
	require.NotNil(t, customers.inputs[0].UserID)
	assert.Equal(t, "user-1", *customers.inputs[0].UserID)
	assert.True(t, customers.inputs[1].IsGuest)
	assert.Nil(t, customers.inputs[1].UserID)

	require.Len(t, addresses.items, 2)
	assert.Equal(t, "c-ada@x.com", addresses.items[0].CustomerID)
	assert.Equal(t, "Ada", addresses.items[0].FirstName)
	assert.Equal(t, "+1001", addresses.items[0].Phone)
	assert.Equal(t, "2 Side St", addresses.items[1].Street)
	assert.Equal(t, "4B", addresses.items[1].Apartment)
	assert.Equal(t, "CAN", addresses.items[1].Country)
}

func TestCSVImporter_RerunSkipsExistingAddressBooks(t *testing.T) {
	customers := &stubCustomers{byEmail: map[string]*domain.Customer{}}
	addresses := &stubAddresses{}

	_, err := NewCSVImporter(strings.NewReader(csvData), customers, addresses, nil, "org-1", nil).Run(context.Background())
	require.NoError(t, err)

	res, err := NewCSVImporter(strings.NewReader(csvData), customers, addresses, nil, "org-1", nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{CustomersExisting: 2}, res)
	assert.Len(t, addresses.items, 2)
}

func TestCSVImporter_Errors(t *testing.T) {
	cases := map[string]string{
		"missing email column": "name,street\nAda,1 Main St\n",
		"orphan address":       "email,street\n,1 Main St\n",
		"invalid customer":     "email,first_name,last_name\nnot-an-email,Ada,Lovelace\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			customers := &stubCustomers{byEmail: map[string]*domain.Customer{}}
			_, err := NewCSVImporter(strings.NewReader(data), customers, &stubAddresses{}, nil, "org-1", nil).Run(context.Background())
			assert.Error(t, err)
		})
	}

	customers := &stubCustomers{byEmail: map[string]*domain.Customer{}}
	_, err := NewCSVImporter(strings.NewReader("email,first_name,last_name\nnot-an-email,Ada,Lovelace\n"), customers, &stubAddresses{}, nil, "org-1", nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVImporter_FailedBlockRollsBackAndRerunRepairs(t *testing.T) {
	const broken = `email,first_name,last_name,phone,user_id,street,apartment,city,state,postal_code,country
ada@x.com,Ada,Lovelace,,,1 Main St,,,IL,62701,
grace@x.com,Grace,Hopper,,,9 Navy Rd,,Arlington,VA,22201,
`
	const fixed = `email,first_name,last_name,phone,user_id,street,apartment,city,state,postal_code,country
ada@x.com,Ada,Lovelace,,,1 Main St,,Springfield,IL,62701,
,,,,,2 Side St,,Springfield,IL,62702,
grace@x.com,Grace,Hopper,,,9 Navy Rd,,Arlington,VA,22201,
`
	customers := &stubCustomers{byEmail: map[string]*domain.Customer{}}
	addresses := &stubAddresses{}
	tx := &rollbackTx{customers: customers, addresses: addresses}

	_, err := NewCSVImporter(strings.NewReader(broken), customers, addresses, tx, "org-1", nil).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, 1, tx.rollbacks)
	assert.Empty(t, customers.byEmail)
	assert.Empty(t, addresses.items)

	res, err := NewCSVImporter(strings.NewReader(fixed), customers, addresses, tx, "org-1", nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{CustomersCreated: 2, AddressesCreated: 3}, res)
	assert.Equal(t, 3, tx.calls)
	require.Len(t, addresses.items, 3)
	assert.Equal(t, "c-ada@x.com", addresses.items[1].CustomerID)
	assert.Equal(t, "2 Side St", addresses.items[1].Street)
}

func TestCSVImporter_FillsEmptyAddressBookOfExistingCustomer(t *testing.T) {
	customers := &stubCustomers{byEmail: map[string]*domain.Customer{
		"ada@x.com": {ID: "c-ada", Email: "ada@x.com", FirstName: "Ada", LastName: "Lovelace"},
	}}
	addresses := &stubAddresses{}

	res, err := NewCSVImporter(strings.NewReader(csvData), customers, addresses, nil, "org-1", nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{CustomersCreated: 1, CustomersExisting: 1, AddressesCreated: 2}, res)
	require.Len(t, addresses.items, 2)
	assert.Equal(t, "c-ada", addresses.items[0].CustomerID)
	assert.Equal(t, "c-ada", addresses.items[1].CustomerID)
}

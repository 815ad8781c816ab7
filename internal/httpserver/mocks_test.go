package httpserver

import (
	"context"

	"backoffice/internal/domain"
	addresssvc "backoffice/internal/service/address"
	customersvc "backoffice/internal/service/customer"
	"github.com/stretchr/testify/mock"
)

type stubOrganizations struct {
	org *domain.Organization
	err error
}

func (s *stubOrganizations) GetByKey(_ context.Context, _ string) (*domain.Organization, error) {
	return s.org, s.err
}

type mockCustomers struct {
	mock.Mock
}

func customerResult(args mock.Arguments) (*domain.Customer, error) {
	c, _ := args.Get(0).(*domain.Customer)
	return c, args.Error(1)
}

func (m *mockCustomers) FindAll(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]domain.Customer)
	return items, args.Error(1)
}

func (m *mockCustomers) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	return customerResult(m.Called(ctx, id))
}

func (m *mockCustomers) FindByIDWithAddresses(ctx context.Context, id string) (*domain.CustomerWithAddresses, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.CustomerWithAddresses)
	return c, args.Error(1)
}

func (m *mockCustomers) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return customerResult(m.Called(ctx, email))
}

func (m *mockCustomers) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return customerResult(m.Called(ctx, phone))
}

func (m *mockCustomers) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	args := m.Called(ctx, term)
	items, _ := args.Get(0).([]domain.Customer)
	return items, args.Error(1)
}

func (m *mockCustomers) Create(ctx context.Context, in customersvc.CreateCustomerInput) (*domain.Customer, error) {
	return customerResult(m.Called(ctx, in))
}

func (m *mockCustomers) CreateGuest(ctx context.Context, in customersvc.CreateGuestInput) (*domain.Customer, error) {
	return customerResult(m.Called(ctx, in))
}

func (m *mockCustomers) ConvertGuestToRegistered(ctx context.Context, customerID, userID string) (*domain.Customer, error) {
	return customerResult(m.Called(ctx, customerID, userID))
}

func (m *mockCustomers) Update(ctx context.Context, id string, in customersvc.UpdateCustomerInput) (*domain.Customer, error) {
	return customerResult(m.Called(ctx, id, in))
}

func (m *mockCustomers) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCustomers) GetStats(ctx context.Context, id string) (*domain.CustomerStats, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.CustomerStats)
	return s, args.Error(1)
}

func (m *mockCustomers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockCustomers) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *mockCustomers) GetOrCreateByEmail(ctx context.Context, in customersvc.CreateCustomerInput) (*domain.Customer, bool, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*domain.Customer)
	return c, args.Bool(1), args.Error(2)
}

type mockAddresses struct {
	mock.Mock
}

func addressResult(args mock.Arguments) (*domain.Address, error) {
	a, _ := args.Get(0).(*domain.Address)
	return a, args.Error(1)
}

func (m *mockAddresses) FindByCustomerID(ctx context.Context, customerID, orgID string) ([]domain.Address, error) {
	args := m.Called(ctx, customerID, orgID)
	items, _ := args.Get(0).([]domain.Address)
	return items, args.Error(1)
}

func (m *mockAddresses) FindByID(ctx context.Context, id, orgID string) (*domain.Address, error) {
	return addressResult(m.Called(ctx, id, orgID))
}

func (m *mockAddresses) FindDefaultByCustomerID(ctx context.Context, customerID, orgID string) (*domain.Address, error) {
	return addressResult(m.Called(ctx, customerID, orgID))
}

func (m *mockAddresses) Create(ctx context.Context, in addresssvc.CreateAddressInput, orgID string) (*domain.Address, error) {
	return addressResult(m.Called(ctx, in, orgID))
}

func (m *mockAddresses) Update(ctx context.Context, id string, in addresssvc.UpdateAddressInput, orgID string) (*domain.Address, error) {
	return addressResult(m.Called(ctx, id, in, orgID))
}

func (m *mockAddresses) SetAsDefault(ctx context.Context, customerID, addressID, orgID string) (*domain.Address, error) {
	return addressResult(m.Called(ctx, customerID, addressID, orgID))
}

func (m *mockAddresses) Delete(ctx context.Context, id, orgID string) error {
	return m.Called(ctx, id, orgID).Error(0)
}

func (m *mockAddresses) VerifyOwnership(ctx context.Context, addressID, customerID, orgID string) (bool, error) {
	args := m.Called(ctx, addressID, customerID, orgID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAddresses) GetCustomerAddressStats(ctx context.Context, customerID, orgID string) (*domain.AddressStats, error) {
	args := m.Called(ctx, customerID, orgID)
	s, _ := args.Get(0).(*domain.AddressStats)
	return s, args.Error(1)
}

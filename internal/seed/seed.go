package seed

import (
	"context"
	"fmt"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	addresssvc "backoffice/internal/service/address"
	customersvc "backoffice/internal/service/customer"
	"backoffice/internal/tenant"
	"go.uber.org/zap"
)

const (
	OrganizationKey  = "demo"
	organizationName = "Demo Organization"
)

type OrganizationWriter interface {
	Upsert(ctx context.Context, org domain.Organization) (*domain.Organization, error)
}

type CustomerWriter interface {
	GetOrCreateByEmail(ctx context.Context, in customersvc.CreateCustomerInput) (*domain.Customer, bool, error)
}

type AddressWriter interface {
	FindByCustomerID(ctx context.Context, customerID, orgID string) ([]domain.Address, error)
	Create(ctx context.Context, in addresssvc.CreateAddressInput, orgID string) (*domain.Address, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type customerSeed struct {
	customer  customersvc.CreateCustomerInput
	addresses []addresssvc.CreateAddressInput
}

func strPtr(s string) *string { return &s }

var demoCustomers = []customerSeed{
	{
		customer: customersvc.CreateCustomerInput{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+15555550100",
			UserID:    strPtr("demo-user-ada"),
		},
		addresses: []addresssvc.CreateAddressInput{
			{FirstName: "Ada", LastName: "Lovelace", Street: "12 Analytical Way", City: "Springfield", State: "IL", PostalCode: "62701"},
			{FirstName: "Ada", LastName: "Lovelace", Street: "400 Engine Ave", Apartment: "Suite 3", City: "Chicago", State: "IL", PostalCode: "60601", IsDefault: true},
		},
	},
	{
		customer: customersvc.CreateCustomerInput{
			FirstName: "Grace",
			LastName:  "Hopper",
			Email:     "grace@example.com",
			IsGuest:   true,
		},
		addresses: []addresssvc.CreateAddressInput{
			{FirstName: "Grace", LastName: "Hopper", Street: "1 Compiler Ct", City: "Arlington", State: "VA", PostalCode: "22201"},
		},
	},
}

// Apply inserts demo data for manual testing through the services, so every invariant holds.
// Each customer is seeded in one transaction. Re-running it leaves non-empty address books untouched.
func Apply(ctx context.Context, orgs OrganizationWriter, customers CustomerWriter, addresses AddressWriter, tx Transactor, log *zap.Logger) error {
	log = logger.OrNop(log)
	org, err := orgs.Upsert(ctx, domain.Organization{Key: OrganizationKey, Name: organizationName})
	if err != nil {
		return fmt.Errorf("ensure organization: %w", err)
	}
	ctx = tenant.WithOrganizationID(ctx, org.ID)

	for _, s := range demoCustomers {
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			return seedCustomer(ctx, s, org.ID, customers, addresses, log)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func seedCustomer(ctx context.Context, s customerSeed, orgID string, customers CustomerWriter, addresses AddressWriter, log *zap.Logger) error {
	c, created, err := customers.GetOrCreateByEmail(ctx, s.customer)
	if err != nil {
		return fmt.Errorf("seed customer %s: %w", s.customer.Email, err)
	}
	if !created {
		existing, err := addresses.FindByCustomerID(ctx, c.ID, orgID)
		if err != nil {
			return fmt.Errorf("seed addresses for %s: %w", c.Email, err)
		}
		if len(existing) > 0 {
			log.Info("seed customer exists", zap.String("email", c.Email))
			return nil
		}
	}
	for _, in := range s.addresses {
		in.CustomerID = c.ID
		if _, err := addresses.Create(ctx, in, orgID); err != nil {
			return fmt.Errorf("seed address for %s: %w", c.Email, err)
		}
	}
	log.Info("seed customer ready", zap.String("email", c.Email), zap.Bool("created", created), zap.Int("addresses", len(s.addresses)))
	return nil
}

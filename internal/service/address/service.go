package address

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	addressrepo "backoffice/internal/repository/address"
	"backoffice/internal/tenant"
	"go.uber.org/zap"
)

type customerReader interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages customer address books and keeps at most one default address per customer.
type Service struct {
	repo      addressrepo.Repository
	customers customerReader
	tx        transactor
	log       *zap.Logger
}

func New(repo addressrepo.Repository, customers customerReader, tx transactor, log *zap.Logger) *Service {
	if tx == nil {
		tx = noTx{}
	}
	log = logger.OrNop(log)
	return &Service{
		repo:      repo,
		customers: customers,
		tx:        tx,
		log:       log.Named("address.service"),
	}
}

// CreateAddressInput captures a new address. Country defaults to domain.DefaultCountry.
type CreateAddressInput struct {
	CustomerID string `json:"customerId" validate:"required"`
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Street     string `json:"street" validate:"required,max=200"`
	Apartment  string `json:"apartment" validate:"omitempty,max=100"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"omitempty,max=64"`
	IsDefault  bool   `json:"isDefault"`
}

// UpdateAddressInput is a partial update. IsDefault=true only reassigns the default;
// the other fields of that request are ignored.
type UpdateAddressInput struct {
	FirstName  *string `json:"firstName" validate:"omitnil,min=1,max=100"`
	LastName   *string `json:"lastName" validate:"omitnil,min=1,max=100"`
	Phone      *string `json:"phone" validate:"omitnil,max=32"`
	Street     *string `json:"street" validate:"omitnil,min=1,max=200"`
	Apartment  *string `json:"apartment" validate:"omitnil,max=100"`
	City       *string `json:"city" validate:"omitnil,min=1,max=100"`
	State      *string `json:"state" validate:"omitnil,min=1,max=100"`
	PostalCode *string `json:"postalCode" validate:"omitnil,min=1,max=20"`
	Country    *string `json:"country" validate:"omitnil,min=1,max=64"`
	IsDefault  *bool   `json:"isDefault"`
}

// FindByCustomerID lists the customer's addresses, default first.
func (s *Service) FindByCustomerID(ctx context.Context, customerID, orgID string) ([]domain.Address, error) {
	if err := s.ensureCustomer(ctx, customerID, orgID); err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, customerID, orgID)
}

func (s *Service) FindByID(ctx context.Context, id, orgID string) (*domain.Address, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id), orgID)
}

func (s *Service) FindDefaultByCustomerID(ctx context.Context, customerID, orgID string) (*domain.Address, error) {
	if err := s.ensureCustomer(ctx, customerID, orgID); err != nil {
		return nil, err
	}
	return s.repo.GetDefaultByCustomer(ctx, customerID, orgID)
}

// Create adds an address. The customer's first address always becomes the default;
// a later address requested as default takes the role over from the previous one.
func (s *Service) Create(ctx context.Context, in CreateAddressInput, orgID string) (*domain.Address, error) {
	a, err := newAddress(in)
	if err != nil {
		return nil, err
	}

	var created *domain.Address
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureCustomer(ctx, a.CustomerID, orgID); err != nil {
			return err
		}
		count, err := s.repo.CountByCustomer(ctx, a.CustomerID, orgID)
		if err != nil {
			return err
		}
		a.IsDefault = count == 0

		created, err = s.repo.Create(ctx, a, orgID)
		if err != nil {
			return err
		}
		if in.IsDefault && !created.IsDefault {
			created, err = s.repo.SetDefault(ctx, created.CustomerID, created.ID, orgID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("address created",
		zap.String("address_id", created.ID),
		zap.String("customer_id", created.CustomerID),
		zap.Bool("default", created.IsDefault),
	)
	return created, nil
}

// Update applies a partial update or, when IsDefault is true, makes the address the default.
func (s *Service) Update(ctx context.Context, id string, in UpdateAddressInput, orgID string) (*domain.Address, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	current, err := s.FindByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}

	if in.IsDefault != nil {
		if *in.IsDefault {
			if current.IsDefault {
				return current, nil
			}
			return s.repo.SetDefault(ctx, current.CustomerID, current.ID, orgID)
		}
		if current.IsDefault {
			return nil, domain.ErrUnsetDefault
		}
	}

	updated, err := s.repo.Update(ctx, current.ID, domain.AddressPatch{
		FirstName:  trimmed(in.FirstName),
		LastName:   trimmed(in.LastName),
		Phone:      trimmed(in.Phone),
		Street:     trimmed(in.Street),
		Apartment:  trimmed(in.Apartment),
		City:       trimmed(in.City),
		State:      trimmed(in.State),
		PostalCode: trimmed(in.PostalCode),
		Country:    trimmed(in.Country),
	}, orgID)
	if err != nil {
		return nil, err
	}
	s.log.Info("address updated", zap.String("address_id", updated.ID))
	return updated, nil
}

// SetAsDefault makes addressID the customer's default, demoting the previous one.
func (s *Service) SetAsDefault(ctx context.Context, customerID, addressID, orgID string) (*domain.Address, error) {
	if err := s.ensureCustomer(ctx, customerID, orgID); err != nil {
		return nil, err
	}
	a, err := s.FindByID(ctx, addressID, orgID)
	if err != nil {
		return nil, err
	}
	if a.CustomerID != customerID {
		return nil, domain.ErrAddressNotOwned
	}
	if a.IsDefault {
		return a, nil
	}
	return s.repo.SetDefault(ctx, customerID, a.ID, orgID)
}

// Delete removes an address. The only address and the default address cannot be removed.
func (s *Service) Delete(ctx context.Context, id, orgID string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.FindByID(ctx, id, orgID)
		if err != nil {
			return err
		}
		count, err := s.repo.CountByCustomer(ctx, a.CustomerID, orgID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return domain.ErrDeleteOnlyAddress
		}
		if a.IsDefault {
			return domain.ErrDeleteDefault
		}
		return s.repo.Delete(ctx, a.ID, orgID)
	})
	if err != nil {
		return err
	}
	s.log.Info("address deleted", zap.String("address_id", id))
	return nil
}

// VerifyOwnership reports whether addressID belongs to customerID. A missing address is not an error.
func (s *Service) VerifyOwnership(ctx context.Context, addressID, customerID, orgID string) (bool, error) {
	a, err := s.FindByID(ctx, addressID, orgID)
	switch {
	case err == nil:
		return a.CustomerID == customerID, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) GetCustomerAddressStats(ctx context.Context, customerID, orgID string) (*domain.AddressStats, error) {
	addrs, err := s.FindByCustomerID(ctx, customerID, orgID)
	if err != nil {
		return nil, err
	}
	stats := &domain.AddressStats{Total: len(addrs), ByCountry: make(map[string]int)}
	for _, a := range addrs {
		stats.ByCountry[a.Country]++
		if a.IsDefault {
			stats.HasDefault = true
			stats.DefaultAddressID = a.ID
		}
	}
	return stats, nil
}

func (s *Service) ensureCustomer(ctx context.Context, customerID, orgID string) error {
	_, err := s.customers.GetByID(tenant.WithOrganizationID(ctx, orgID), strings.TrimSpace(customerID))
	return err
}

func newAddress(in CreateAddressInput) (domain.Address, error) {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	in.Country = strings.TrimSpace(in.Country)
	if in.Country == "" {
		in.Country = domain.DefaultCountry
	}
	if err := domain.Validate(in); err != nil {
		return domain.Address{}, err
	}
	return domain.Address{
		CustomerID: in.CustomerID,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Phone:      strings.TrimSpace(in.Phone),
		Street:     strings.TrimSpace(in.Street),
		Apartment:  strings.TrimSpace(in.Apartment),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    in.Country,
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

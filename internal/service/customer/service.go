package customer

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	custrepo "backoffice/internal/repository/customer"
	"go.uber.org/zap"
)

type addressLister interface {
	ListByCustomer(ctx context.Context, customerID, orgID string) ([]domain.Address, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the customer directory: identity uniqueness and the guest/registered lifecycle.
// The organization is taken from ctx (see package tenant).
type Service struct {
	repo      custrepo.Repository
	addresses addressLister
	tx        transactor
	log       *zap.Logger
}

// New creates a Service. A nil tx runs multi-step operations without a transaction.
func New(repo custrepo.Repository, addresses addressLister, tx transactor, log *zap.Logger) *Service {
	if tx == nil {
		tx = noTx{}
	}
	log = logger.OrNop(log)
	return &Service{
		repo:      repo,
		addresses: addresses,
		tx:        tx,
		log:       log.Named("customer.service"),
	}
}

// CreateCustomerInput captures the fields accepted when registering a customer.
type CreateCustomerInput struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	Phone     string  `json:"phone" validate:"omitempty,max=32"`
	IsGuest   bool    `json:"isGuest"`
	UserID    *string `json:"userId" validate:"omitempty,max=128"`
}

// CreateGuestInput captures the fields collected at guest checkout.
type CreateGuestInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

// UpdateCustomerInput is a partial update; nil fields are left unchanged.
type UpdateCustomerInput struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1,max=100"`
	Email     *string `json:"email" validate:"omitnil,email,max=254"`
	Phone     *string `json:"phone" validate:"omitnil,max=32"`
}

// FindAll lists customers, optionally narrowed by guest status and a case-insensitive search term.
func (s *Service) FindAll(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	var (
		items []domain.Customer
		err   error
	)
	switch {
	case filter.IsGuest == nil:
		items, err = s.repo.List(ctx)
	case *filter.IsGuest:
		items, err = s.repo.ListGuests(ctx)
	default:
		items, err = s.repo.ListRegistered(ctx)
	}
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Customer, 0, len(items))
	for _, c := range items {
		if term == "" || matches(c, term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// FindByIDWithAddresses returns the customer together with its address book.
func (s *Service) FindByIDWithAddresses(ctx context.Context, id string) (*domain.CustomerWithAddresses, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	addrs, err := s.addresses.ListByCustomer(ctx, c.ID, c.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &domain.CustomerWithAddresses{Customer: *c, Addresses: addrs}, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *Service) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return s.repo.GetByPhone(ctx, strings.TrimSpace(phone))
}

// Search returns no results for a blank term.
func (s *Service) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Customer{}, nil
	}
	return s.repo.Search(ctx, term)
}

// Create registers a customer. Email is checked before phone, so a double collision reports the email.
func (s *Service) Create(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error) {
	c, err := newCustomer(in)
	if err != nil {
		return nil, err
	}

	var created *domain.Customer
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, c.Email, ""); err != nil {
			return err
		}
		if err := s.ensurePhoneFree(ctx, c.Phone, ""); err != nil {
			return err
		}
		created, err = s.repo.Create(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("customer created", zap.String("customer_id", created.ID), zap.Bool("guest", created.IsGuest))
	return created, nil
}

// CreateGuest is idempotent on email: an existing customer (guest or registered) is returned unchanged.
func (s *Service) CreateGuest(ctx context.Context, in CreateGuestInput) (*domain.Customer, error) {
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	created, err := s.repo.Create(ctx, domain.Customer{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Phone:     in.Phone,
		IsGuest:   true,
	})
	if errors.Is(err, domain.ErrEmailExists) {
		// Lost a race with a concurrent checkout for the same email.
		return s.repo.GetByEmail(ctx, in.Email)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("guest customer created", zap.String("customer_id", created.ID))
	return created, nil
}

// ConvertGuestToRegistered links a guest to a user account. It fails for customers already registered.
func (s *Service) ConvertGuestToRegistered(ctx context.Context, customerID, userID string) (*domain.Customer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.NewValidationError("userId", "required", "userId is required")
	}

	var updated *domain.Customer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		if !c.IsGuest {
			return domain.ErrAlreadyRegistered
		}
		registered := false
		updated, err = s.repo.Update(ctx, c.ID, domain.CustomerPatch{IsGuest: &registered, UserID: &userID})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("guest converted to registered", zap.String("customer_id", updated.ID))
	return updated, nil
}

// Update applies a partial update, rejecting an email or phone that belongs to another customer.
func (s *Service) Update(ctx context.Context, id string, in UpdateCustomerInput) (*domain.Customer, error) {
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := domain.Validate(in); err != nil {
		return nil, err
	}

	var updated *domain.Customer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.FindByID(ctx, id)
		if err != nil {
			return err
		}

		patch := domain.CustomerPatch{FirstName: trimmed(in.FirstName), LastName: trimmed(in.LastName)}
		if in.Email != nil {
			if *in.Email != normalizeEmail(current.Email) {
				if err := s.ensureEmailFree(ctx, *in.Email, current.ID); err != nil {
					return err
				}
			}
			patch.Email = in.Email
		}
		if in.Phone != nil {
			phone := strings.TrimSpace(*in.Phone)
			if phone != current.Phone {
				if err := s.ensurePhoneFree(ctx, phone, current.ID); err != nil {
					return err
				}
			}
			patch.Phone = &phone
		}

		updated, err = s.repo.Update(ctx, current.ID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("customer updated", zap.String("customer_id", updated.ID))
	return updated, nil
}

// Delete removes the customer; its addresses go with it through the storage cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.log.Info("customer deleted", zap.String("customer_id", c.ID))
	return nil
}

func (s *Service) GetStats(ctx context.Context, id string) (*domain.CustomerStats, error) {
	withAddresses, err := s.FindByIDWithAddresses(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := &domain.CustomerStats{
		Customer:     withAddresses.Customer,
		AddressCount: len(withAddresses.Addresses),
	}
	for _, a := range withAddresses.Addresses {
		if a.IsDefault {
			stats.HasDefaultAddress = true
			break
		}
	}
	return stats, nil
}

// ExistsByEmail treats only a not-found lookup as absence; other failures are returned.
func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	return found(err)
}

// ExistsByPhone treats only a not-found lookup as absence; other failures are returned.
func (s *Service) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, nil
	}
	_, err := s.repo.GetByPhone(ctx, phone)
	return found(err)
}

// GetOrCreateByEmail returns the customer owning in.Email, creating it when absent.
// The boolean reports whether a new record was created.
func (s *Service) GetOrCreateByEmail(ctx context.Context, in CreateCustomerInput) (*domain.Customer, bool, error) {
	existing, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	created, err := s.Create(ctx, in)
	if errors.Is(err, domain.ErrEmailExists) {
		existing, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	other, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if other.ID != exceptID {
			return domain.ErrEmailExists
		}
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) ensurePhoneFree(ctx context.Context, phone, exceptID string) error {
	if phone == "" {
		return nil
	}
	other, err := s.repo.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if other.ID != exceptID {
			return domain.ErrPhoneExists
		}
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func newCustomer(in CreateCustomerInput) (domain.Customer, error) {
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.UserID = trimmed(in.UserID)
	if in.UserID != nil && *in.UserID == "" {
		in.UserID = nil
	}
	if err := domain.Validate(in); err != nil {
		return domain.Customer{}, err
	}
	if in.IsGuest && in.UserID != nil {
		return domain.Customer{}, domain.NewValidationError("userId", "excluded_with", "guest customers cannot reference a user")
	}
	if !in.IsGuest && in.UserID == nil {
		return domain.Customer{}, domain.NewValidationError("userId", "required_without", "registered customers require a userId")
	}
	return domain.Customer{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Phone:     in.Phone,
		IsGuest:   in.IsGuest,
		UserID:    in.UserID,
	}, nil
}

func matches(c domain.Customer, term string) bool {
	for _, field := range []string{c.FirstName, c.LastName, c.Email, c.Phone} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
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

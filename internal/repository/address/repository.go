package address

import (
	"context"

	"backoffice/internal/domain"
)

// Repository persists addresses. Every call is scoped to an organization.
type Repository interface {
	ListByCustomer(ctx context.Context, customerID, orgID string) ([]domain.Address, error)
	CountByCustomer(ctx context.Context, customerID, orgID string) (int, error)
	GetByID(ctx context.Context, id, orgID string) (*domain.Address, error)
	GetDefaultByCustomer(ctx context.Context, customerID, orgID string) (*domain.Address, error)
	Create(ctx context.Context, a domain.Address, orgID string) (*domain.Address, error)
	Update(ctx context.Context, id string, patch domain.AddressPatch, orgID string) (*domain.Address, error)
	// SetDefault demotes the customer's current default and promotes addressID in one transaction.
	SetDefault(ctx context.Context, customerID, addressID, orgID string) (*domain.Address, error)
	Delete(ctx context.Context, id, orgID string) error
}

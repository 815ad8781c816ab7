package customer

import (
	"context"

	"backoffice/internal/domain"
)

// Repository persists and fetches customers of the organization carried by ctx (see package tenant).
type Repository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	ListRegistered(ctx context.Context) ([]domain.Customer, error)
	ListGuests(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Search(ctx context.Context, term string) ([]domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, id string, patch domain.CustomerPatch) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

package organization

import (
	"context"

	"backoffice/internal/domain"
)

// Repository resolves and registers tenants.
type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Organization, error)
	Create(ctx context.Context, org domain.Organization) (*domain.Organization, error)
	Upsert(ctx context.Context, org domain.Organization) (*domain.Organization, error)
}

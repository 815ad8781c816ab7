package organization

import (
	"context"
	"errors"

	"backoffice/internal/db"
	"backoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Organization, error) {
	const q = `
SELECT id::text, key, name, created_at
FROM organizations
WHERE key = $1
`
	return scanOrganization(r.pool.QueryRow(ctx, q, key))
}

func (r *postgresRepo) Create(ctx context.Context, org domain.Organization) (*domain.Organization, error) {
	const q = `
INSERT INTO organizations (key, name)
VALUES ($1, $2)
RETURNING id::text, key, name, created_at
`
	out, err := scanOrganization(r.pool.QueryRow(ctx, q, org.Key, org.Name))
	if _, dup := db.UniqueViolation(err); dup {
		return nil, domain.ErrAlreadyExists
	}
	return out, err
}

func (r *postgresRepo) Upsert(ctx context.Context, org domain.Organization) (*domain.Organization, error) {
	const q = `
INSERT INTO organizations (key, name)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text, key, name, created_at
`
	return scanOrganization(r.pool.QueryRow(ctx, q, org.Key, org.Name))
}

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var o domain.Organization
	if err := row.Scan(&o.ID, &o.Key, &o.Name, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &o, nil
}

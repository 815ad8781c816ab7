package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/db"
	"backoffice/internal/domain"
	"backoffice/internal/logger"
	"backoffice/internal/tenant"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const customerColumns = `id::text, organization_id::text, first_name, last_name, email, coalesce(phone, ''), is_guest, user_id, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, log *zap.Logger) Repository {
	log = logger.OrNop(log)
	return &postgresRepo{pool: pool, log: log.Named("customer.repo")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	return r.list(ctx, "")
}

func (r *postgresRepo) ListRegistered(ctx context.Context) ([]domain.Customer, error) {
	return r.list(ctx, "AND NOT is_guest")
}

func (r *postgresRepo) ListGuests(ctx context.Context) ([]domain.Customer, error) {
	return r.list(ctx, "AND is_guest")
}

func (r *postgresRepo) list(ctx context.Context, cond string) ([]domain.Customer, error) {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + customerColumns + `
FROM customers
WHERE organization_id = $1 ` + cond + `
ORDER BY created_at DESC, id`
	return r.queryCustomers(ctx, q, orgID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + customerColumns + `
FROM customers
WHERE organization_id = $1 AND id = $2
LIMIT 1`
	return r.scanCustomer(db.Conn(ctx, r.pool).QueryRow(ctx, q, orgID, id))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + customerColumns + `
FROM customers
WHERE organization_id = $1 AND lower(email) = lower($2)
LIMIT 1`
	return r.scanCustomer(db.Conn(ctx, r.pool).QueryRow(ctx, q, orgID, email))
}

func (r *postgresRepo) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + customerColumns + `
FROM customers
WHERE organization_id = $1 AND phone = $2
LIMIT 1`
	return r.scanCustomer(db.Conn(ctx, r.pool).QueryRow(ctx, q, orgID, phone))
}

func (r *postgresRepo) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + customerColumns + `
FROM customers
WHERE organization_id = $1
  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2 OR coalesce(phone, '') ILIKE $2
       OR (first_name || ' ' || last_name) ILIKE $2)
ORDER BY created_at DESC, id`
	return r.queryCustomers(ctx, q, orgID, "%"+escapeLike(term)+"%")
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return nil, err
	}
	q := `
INSERT INTO customers (organization_id, first_name, last_name, email, phone, is_guest, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + customerColumns
	return r.scanCustomer(db.Conn(ctx, r.pool).QueryRow(
		ctx,
		q,
		orgID,
		c.FirstName,
		c.LastName,
		strings.ToLower(c.Email),
		nullIfEmpty(c.Phone),
		c.IsGuest,
		c.UserID,
	))
}

func (r *postgresRepo) Update(ctx context.Context, id string, patch domain.CustomerPatch) (*domain.Customer, error) {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 7)
	args := []any{orgID, id}
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		set("email", strings.ToLower(*patch.Email))
	}
	if patch.Phone != nil {
		set("phone", nullIfEmpty(*patch.Phone))
	}
	if patch.IsGuest != nil {
		set("is_guest", *patch.IsGuest)
	}
	if patch.UserID != nil {
		set("user_id", nullIfEmpty(*patch.UserID))
	}
	sets = append(sets, "updated_at = now()")

	q := `UPDATE customers SET ` + strings.Join(sets, ", ") + `
WHERE organization_id = $1 AND id = $2
RETURNING ` + customerColumns
	return r.scanCustomer(db.Conn(ctx, r.pool).QueryRow(ctx, q, args...))
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	orgID, err := orgFrom(ctx)
	if err != nil {
		return err
	}
	const q = `DELETE FROM customers WHERE organization_id = $1 AND id = $2`
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, q, orgID, id)
	if err != nil {
		if db.InvalidInput(err) {
			return domain.ErrCustomerNotFound
		}
		r.log.Error("delete customer", zap.String("customer_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *postgresRepo) queryCustomers(ctx context.Context, q string, args ...any) ([]domain.Customer, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		r.log.Error("query customers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Customer, 0)
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.IsGuest,
		&c.UserID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.InvalidInput(err) {
			return nil, domain.ErrCustomerNotFound
		}
		if constraint, ok := db.UniqueViolation(err); ok {
			return nil, conflictFor(constraint)
		}
		r.log.Error("scan customer", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func conflictFor(constraint string) error {
	switch constraint {
	case "customers_org_email_key":
		return domain.ErrEmailExists
	case "customers_org_phone_key":
		return domain.ErrPhoneExists
	default:
		return domain.ErrAlreadyExists
	}
}

func orgFrom(ctx context.Context) (string, error) {
	orgID, ok := tenant.OrganizationID(ctx)
	if !ok {
		return "", domain.ErrMissingOrganization
	}
	return orgID, nil
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

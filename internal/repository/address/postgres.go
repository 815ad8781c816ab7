package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/db"
	"backoffice/internal/domain"
	"backoffice/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const addressColumns = `id::text, organization_id::text, customer_id::text, first_name, last_name, phone, street, apartment,
       city, state, postal_code, country, is_default, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
	tx   *db.Transactor
	log  *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, tx *db.Transactor, log *zap.Logger) Repository {
	log = logger.OrNop(log)
	return &postgresRepo{pool: pool, tx: tx, log: log.Named("address.repo")}
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID, orgID string) ([]domain.Address, error) {
	q := `SELECT ` + addressColumns + `
FROM addresses
WHERE organization_id = $1 AND customer_id = $2
ORDER BY is_default DESC, created_at, id`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, q, orgID, customerID)
	if err != nil {
		if db.InvalidInput(err) {
			return []domain.Address{}, nil
		}
		r.log.Error("list addresses", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Address, 0)
	for rows.Next() {
		a, err := r.scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		if db.InvalidInput(err) {
			return []domain.Address{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) CountByCustomer(ctx context.Context, customerID, orgID string) (int, error) {
	const q = `SELECT count(*) FROM addresses WHERE organization_id = $1 AND customer_id = $2`
	var n int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, q, orgID, customerID).Scan(&n); err != nil {
		if db.InvalidInput(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id, orgID string) (*domain.Address, error) {
	q := `SELECT ` + addressColumns + `
FROM addresses
WHERE organization_id = $1 AND id = $2`
	return r.scanAddress(db.Conn(ctx, r.pool).QueryRow(ctx, q, orgID, id))
}

func (r *postgresRepo) GetDefaultByCustomer(ctx context.Context, customerID, orgID string) (*domain.Address, error) {
	q := `SELECT ` + addressColumns + `
FROM addresses
WHERE organization_id = $1 AND customer_id = $2 AND is_default`
	a, err := r.scanAddress(db.Conn(ctx, r.pool).QueryRow(ctx, q, orgID, customerID))
	if errors.Is(err, domain.ErrAddressNotFound) {
		return nil, domain.ErrNoDefaultAddress
	}
	return a, err
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address, orgID string) (*domain.Address, error) {
	q := `
INSERT INTO addresses (organization_id, customer_id, first_name, last_name, phone, street, apartment,
                       city, state, postal_code, country, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + addressColumns
	return r.scanAddress(db.Conn(ctx, r.pool).QueryRow(
		ctx,
		q,
		orgID,
		a.CustomerID,
		a.FirstName,
		a.LastName,
		a.Phone,
		a.Street,
		a.Apartment,
		a.City,
		a.State,
		a.PostalCode,
		a.Country,
		a.IsDefault,
	))
}

func (r *postgresRepo) Update(ctx context.Context, id string, patch domain.AddressPatch, orgID string) (*domain.Address, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id, orgID)
	}

	sets := make([]string, 0, 10)
	args := []any{orgID, id}
	set := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	set("first_name", patch.FirstName)
	set("last_name", patch.LastName)
	set("phone", patch.Phone)
	set("street", patch.Street)
	set("apartment", patch.Apartment)
	set("city", patch.City)
	set("state", patch.State)
	set("postal_code", patch.PostalCode)
	set("country", patch.Country)
	sets = append(sets, "updated_at = now()")

	q := `UPDATE addresses SET ` + strings.Join(sets, ", ") + `
WHERE organization_id = $1 AND id = $2
RETURNING ` + addressColumns
	return r.scanAddress(db.Conn(ctx, r.pool).QueryRow(ctx, q, args...))
}

func (r *postgresRepo) SetDefault(ctx context.Context, customerID, addressID, orgID string) (*domain.Address, error) {
	var out *domain.Address
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		conn := db.Conn(ctx, r.pool)
		// Demote first: the partial unique index allows a single default per customer.
		const demote = `
UPDATE addresses SET is_default = FALSE, updated_at = now()
WHERE organization_id = $1 AND customer_id = $2 AND is_default AND id <> $3`
		if _, err := conn.Exec(ctx, demote, orgID, customerID, addressID); err != nil {
			return err
		}
		promote := `
UPDATE addresses SET is_default = TRUE, updated_at = now()
WHERE organization_id = $1 AND customer_id = $2 AND id = $3
RETURNING ` + addressColumns
		a, err := r.scanAddress(conn.QueryRow(ctx, promote, orgID, customerID, addressID))
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info("default address changed", zap.String("customer_id", customerID), zap.String("address_id", addressID))
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id, orgID string) error {
	const q = `DELETE FROM addresses WHERE organization_id = $1 AND id = $2`
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, q, orgID, id)
	if err != nil {
		if db.InvalidInput(err) {
			return domain.ErrAddressNotFound
		}
		r.log.Error("delete address", zap.String("address_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

func (r *postgresRepo) scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID,
		&a.OrganizationID,
		&a.CustomerID,
		&a.FirstName,
		&a.LastName,
		&a.Phone,
		&a.Street,
		&a.Apartment,
		&a.City,
		&a.State,
		&a.PostalCode,
		&a.Country,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.InvalidInput(err) {
			return nil, domain.ErrAddressNotFound
		}
		if _, ok := db.UniqueViolation(err); ok {
			return nil, domain.ErrDefaultAddressExists
		}
		r.log.Error("scan address", zap.Error(err))
		return nil, err
	}
	return &a, nil
}

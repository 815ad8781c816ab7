package address

import (
	"context"
	"testing"

	"backoffice/internal/db"
	"backoffice/internal/dbtest"
	"backoffice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) (Repository, string, string) {
	t.Helper()
	pool := dbtest.Pool(t)
	orgID := dbtest.Organization(t, pool, "acme")

	var customerID string
	err := pool.QueryRow(context.Background(), `
INSERT INTO customers (organization_id, first_name, last_name, email, is_guest)
VALUES ($1, 'Ada', 'Lovelace', 'ada@x.com', TRUE)
RETURNING id::text`, orgID).Scan(&customerID)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	return NewPostgres(pool, db.NewTransactor(pool, log), log), orgID, customerID
}

func sample(customerID string, isDefault bool) domain.Address {
	return domain.Address{
		CustomerID: customerID,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Street:     "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    domain.DefaultCountry,
		IsDefault:  isDefault,
	}
}

func TestPostgres_CreateListCount(t *testing.T) {
	repo, orgID, customerID := setup(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, sample(customerID, true), orgID)
	require.NoError(t, err)
	second, err := repo.Create(ctx, sample(customerID, false), orgID)
	require.NoError(t, err)

	n, err := repo.CountByCustomer(ctx, customerID, orgID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := repo.ListByCustomer(ctx, customerID, orgID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)

	def, err := repo.GetDefaultByCustomer(ctx, customerID, orgID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, def.ID)
}

func TestPostgres_SecondDefaultRejected(t *testing.T) {
	repo, orgID, customerID := setup(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, sample(customerID, true), orgID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, sample(customerID, true), orgID)
	assert.ErrorIs(t, err, domain.ErrDefaultAddressExists)
}

func TestPostgres_SetDefaultSwapsAtomically(t *testing.T) {
	repo, orgID, customerID := setup(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, sample(customerID, true), orgID)
	require.NoError(t, err)
	second, err := repo.Create(ctx, sample(customerID, false), orgID)
	require.NoError(t, err)

	promoted, err := repo.SetDefault(ctx, customerID, second.ID, orgID)
	require.NoError(t, err)
	assert.True(t, promoted.IsDefault)

	demoted, err := repo.GetByID(ctx, first.ID, orgID)
	require.NoError(t, err)
	assert.False(t, demoted.IsDefault)

	// An unknown target leaves the current default in place.
	_, err = repo.SetDefault(ctx, customerID, "00000000-0000-0000-0000-000000000000", orgID)
	require.ErrorIs(t, err, domain.ErrAddressNotFound)
	def, err := repo.GetDefaultByCustomer(ctx, customerID, orgID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
}

func TestPostgres_UpdateAndDelete(t *testing.T) {
	repo, orgID, customerID := setup(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, sample(customerID, false), orgID)
	require.NoError(t, err)

	city := "Shelbyville"
	updated, err := repo.Update(ctx, a.ID, domain.AddressPatch{City: &city}, orgID)
	require.NoError(t, err)
	assert.Equal(t, "Shelbyville", updated.City)
	assert.Equal(t, "1 Main St", updated.Street)

	_, err = repo.GetDefaultByCustomer(ctx, customerID, orgID)
	assert.ErrorIs(t, err, domain.ErrNoDefaultAddress)

	require.NoError(t, repo.Delete(ctx, a.ID, orgID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID, orgID), domain.ErrAddressNotFound)
	_, err = repo.GetByID(ctx, "bogus", orgID)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

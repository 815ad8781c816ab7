package customer

import (
	"context"
	"testing"

	"backoffice/internal/db"
	"backoffice/internal/dbtest"
	"backoffice/internal/domain"
	"backoffice/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func strPtr(s string) *string { return &s }

func TestPostgres_CreateAndLookup(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := tenant.WithOrganizationID(context.Background(), dbtest.Organization(t, pool, "acme"))
	repo := NewPostgres(pool, zaptest.NewLogger(t))

	created, err := repo.Create(ctx, domain.Customer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Phone:     "+15550001",
		UserID:    strPtr("user-1"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byPhone, err := repo.GetByPhone(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPhone.ID)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestPostgres_UniqueConstraints(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := tenant.WithOrganizationID(context.Background(), dbtest.Organization(t, pool, "acme"))
	repo := NewPostgres(pool, zaptest.NewLogger(t))

	_, err := repo.Create(ctx, domain.Customer{FirstName: "A", LastName: "A", Email: "a@x.com", Phone: "+1", IsGuest: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.Customer{FirstName: "B", LastName: "B", Email: "A@X.com", IsGuest: true})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	_, err = repo.Create(ctx, domain.Customer{FirstName: "C", LastName: "C", Email: "c@x.com", Phone: "+1", IsGuest: true})
	assert.ErrorIs(t, err, domain.ErrPhoneExists)

	// Customers without a phone never collide on it.
	_, err = repo.Create(ctx, domain.Customer{FirstName: "D", LastName: "D", Email: "d@x.com", IsGuest: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Customer{FirstName: "E", LastName: "E", Email: "e@x.com", IsGuest: true})
	require.NoError(t, err)
}

func TestPostgres_ScopedToOrganization(t *testing.T) {
	pool := dbtest.Pool(t)
	acme := tenant.WithOrganizationID(context.Background(), dbtest.Organization(t, pool, "acme"))
	globex := tenant.WithOrganizationID(context.Background(), dbtest.Organization(t, pool, "globex"))
	repo := NewPostgres(pool, zaptest.NewLogger(t))

	c, err := repo.Create(acme, domain.Customer{FirstName: "A", LastName: "A", Email: "a@x.com", IsGuest: true})
	require.NoError(t, err)

	_, err = repo.GetByID(globex, c.ID)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = repo.Create(globex, domain.Customer{FirstName: "A", LastName: "A", Email: "a@x.com", IsGuest: true})
	require.NoError(t, err)

	_, err = repo.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingOrganization)
}

func TestPostgres_ListSearchUpdateDelete(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := tenant.WithOrganizationID(context.Background(), dbtest.Organization(t, pool, "acme"))
	repo := NewPostgres(pool, zaptest.NewLogger(t))

	guest, err := repo.Create(ctx, domain.Customer{FirstName: "Grace", LastName: "Hopper", Email: "grace@x.com", IsGuest: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", UserID: strPtr("u1")})
	require.NoError(t, err)

	guests, err := repo.ListGuests(ctx)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, guest.ID, guests[0].ID)

	registered, err := repo.ListRegistered(ctx)
	require.NoError(t, err)
	assert.Len(t, registered, 1)

	found, err := repo.Search(ctx, "grace hop")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = repo.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found)

	isGuest := false
	updated, err := repo.Update(ctx, guest.ID, domain.CustomerPatch{IsGuest: &isGuest, UserID: strPtr("u2"), Phone: strPtr("+2")})
	require.NoError(t, err)
	assert.False(t, updated.IsGuest)
	require.NotNil(t, updated.UserID)
	assert.Equal(t, "u2", *updated.UserID)
	assert.Equal(t, "+2", updated.Phone)

	require.NoError(t, repo.Delete(ctx, guest.ID))
	assert.ErrorIs(t, repo.Delete(ctx, guest.ID), domain.ErrCustomerNotFound)
}

func TestPostgres_RollbackDiscardsWrites(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := tenant.WithOrganizationID(context.Background(), dbtest.Organization(t, pool, "acme"))
	repo := NewPostgres(pool, zaptest.NewLogger(t))
	tx := db.NewTransactor(pool, zaptest.NewLogger(t))

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, domain.Customer{FirstName: "A", LastName: "A", Email: "a@x.com", IsGuest: true}); err != nil {
			return err
		}
		_, err := repo.Create(ctx, domain.Customer{FirstName: "B", LastName: "B", Email: "a@x.com", IsGuest: true})
		return err
	})
	require.ErrorIs(t, err, domain.ErrEmailExists)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

package organization

import (
	"context"
	"testing"

	"backoffice/internal/dbtest"
	"backoffice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_CreateUpsertGet(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Organization{Key: "acme", Name: "Acme"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, domain.Organization{Key: "acme", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	upserted, err := repo.Upsert(ctx, domain.Organization{Key: "acme", Name: "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, upserted.ID)

	got, err := repo.GetByKey(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)

	_, err = repo.GetByKey(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
}

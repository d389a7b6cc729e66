package user

import (
	"context"
	"testing"

	domain "family-recipes-go/internal/domain/user"
	"family-recipes-go/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookup(t *testing.T) {
	repo := NewPostgres(testhelpers.NewSQLite(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "hash", Name: "Ann"}))

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	byID, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name)

	exists, err := repo.EmailExists(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := NewPostgres(testhelpers.NewSQLite(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "hash", Name: "Ann"}))
	err := repo.Create(ctx, &domain.User{ID: "u-2", Email: "ann@example.com", PasswordHash: "hash", Name: "Other Ann"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

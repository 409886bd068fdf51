package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/infrastructure/db/sqlstore"
	"github.com/userdesk/user-management/internal/testutil"
)

func newUser(email string, role domain.Role) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		Name:         "Test",
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := sqlstore.NewUserRepository(testutil.OpenInMemoryDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("a@x.com", domain.RoleUser))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)
	require.Equal(t, domain.RoleUser, byID.Role)
	require.Equal(t, "hash", byID.PasswordHash)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
}

func TestUserRepository_IDsAreSequential(t *testing.T) {
	repo := sqlstore.NewUserRepository(testutil.OpenInMemoryDB(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, newUser("a@x.com", domain.RoleUser))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newUser("b@x.com", domain.RoleAdmin))
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, first.ID, users[0].ID)
	require.Equal(t, domain.RoleAdmin, users[1].Role)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := sqlstore.NewUserRepository(testutil.OpenInMemoryDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("a@x.com", domain.RoleUser))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("a@x.com", domain.RoleUser))
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_Update(t *testing.T) {
	repo := sqlstore.NewUserRepository(testutil.OpenInMemoryDB(t))
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("a@x.com", domain.RoleUser))
	require.NoError(t, err)
	other, err := repo.Create(ctx, newUser("b@x.com", domain.RoleUser))
	require.NoError(t, err)

	u.Name = "Renamed"
	u.Role = domain.RoleAdmin
	updated, err := repo.Update(ctx, u)
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, domain.RoleAdmin, updated.Role)

	other.Email = "a@x.com"
	_, err = repo.Update(ctx, other)
	require.ErrorIs(t, err, domain.ErrUserExists)

	_, err = repo.Update(ctx, &domain.User{ID: 999, Email: "z@x.com", Role: domain.RoleUser})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	repo := sqlstore.NewUserRepository(testutil.OpenInMemoryDB(t))
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("a@x.com", domain.RoleUser))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, u.ID))

	_, err = repo.FindByID(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	require.ErrorIs(t, repo.Delete(ctx, u.ID), domain.ErrUserNotFound)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := sqlstore.NewUserRepository(testutil.OpenInMemoryDB(t))

	_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), sqlstore.Config{Driver: "oracle"})
	require.Error(t, err)
}

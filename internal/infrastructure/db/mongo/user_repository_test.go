package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/userdesk/user-management/internal/core/domain"
)

func TestUserRepository_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns sequence id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: bson.D{{Key: "_id", Value: "users"}, {Key: "seq", Value: int64(7)}}}},
			mtest.CreateSuccessResponse(),
		)

		now := time.Now().UTC()
		created, err := repo.Create(context.Background(), &domain.User{
			Name: "A", Email: "a@x.com", PasswordHash: "h", Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(mt, err)
		require.Equal(mt, int64(7), created.ID)
		require.Equal(mt, domain.RoleUser, created.Role)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: bson.D{{Key: "_id", Value: "users"}, {Key: "seq", Value: int64(8)}}}},
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}),
		)

		_, err := repo.Create(context.Background(), &domain.User{Email: "a@x.com", Role: domain.RoleUser})
		require.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(3)},
			{Key: "name", Value: "C"},
			{Key: "email", Value: "c@x.com"},
			{Key: "password_hash", Value: "h"},
			{Key: "role", Value: "admin"},
			{Key: "created_at", Value: int64(1700000000)},
			{Key: "updated_at", Value: int64(1700000000)},
		}))

		u, err := repo.FindByID(context.Background(), 3)
		require.NoError(mt, err)
		require.Equal(mt, "c@x.com", u.Email)
		require.True(mt, u.IsAdmin())
		require.Equal(mt, time.Unix(1700000000, 0).UTC(), u.CreatedAt)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
		require.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		require.ErrorIs(mt, repo.Delete(context.Background(), 42), domain.ErrUserNotFound)
	})

	mt.Run("delete existing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.Delete(context.Background(), 42))
	})
}

package repository

import (
	"context"
	"testing"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newParent(email string) *models.User {
	return &models.User{
		Email:            email,
		Password:         "hashedpassword",
		Name:             "Jane Doe",
		ChildAge:         6,
		RecordingConsent: true,
		ProfileCompleted: true,
	}
}

func TestUserRepository_Create(t *testing.T) {
	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	repo := NewUserRepository(tdb.Database)
	ctx := context.Background()

	t.Run("successfully creates user", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		user := newParent("test@example.com")
		err := repo.Create(ctx, user)

		require.NoError(t, err)
		assert.False(t, user.ID.IsZero())
		assert.NotZero(t, user.CreatedAt)
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("returns error for duplicate email", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		require.NoError(t, repo.Create(ctx, newParent("duplicate@example.com")))
		err := repo.Create(ctx, newParent("duplicate@example.com"))

		assert.Equal(t, apperrors.ErrUserAlreadyExists, err)
	})
}

func TestUserRepository_Find(t *testing.T) {
	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	repo := NewUserRepository(tdb.Database)
	ctx := context.Background()

	tdb.ClearCollection(t, usersCollection)
	user := newParent("find@example.com")
	user.ProblemDescription = "Mixes up V and B"
	require.NoError(t, repo.Create(ctx, user))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)

		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
		assert.Equal(t, 6, found.ChildAge)
		assert.True(t, found.RecordingConsent)
		assert.Equal(t, "Mixes up V and B", found.ProblemDescription)
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "find@example.com")

		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, primitive.NewObjectID())

		assert.Nil(t, found)
		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})
}

func TestUserRepository_Update(t *testing.T) {
	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	repo := NewUserRepository(tdb.Database)
	ctx := context.Background()

	t.Run("updates only the given fields", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		user := newParent("update@example.com")
		require.NoError(t, repo.Create(ctx, user))

		age := 7
		consent := false
		region := "UK"
		updated, err := repo.Update(ctx, user.ID, &models.UpdateUserRequest{
			ChildAge:         &age,
			RecordingConsent: &consent,
			Region:           &region,
		})

		require.NoError(t, err)
		assert.Equal(t, 7, updated.ChildAge)
		assert.False(t, updated.RecordingConsent)
		assert.Equal(t, "UK", updated.Region)
		assert.Equal(t, "Jane Doe", updated.Name)
		assert.Equal(t, "update@example.com", updated.Email)
		assert.True(t, updated.UpdatedAt.After(user.UpdatedAt) || updated.UpdatedAt.Equal(user.UpdatedAt))
	})

	t.Run("returns error for non-existent user", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		name := "New Name"
		_, err := repo.Update(ctx, primitive.NewObjectID(), &models.UpdateUserRequest{Name: &name})

		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	repo := NewUserRepository(tdb.Database)
	ctx := context.Background()

	t.Run("replaces the hash", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		user := newParent("rehash@example.com")
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, repo.UpdatePassword(ctx, user.ID, "$2a$12$upgraded"))

		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "$2a$12$upgraded", found.Password)
		assert.Equal(t, user.ChildAge, found.ChildAge)
	})

	t.Run("unknown user", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		err := repo.UpdatePassword(ctx, primitive.NewObjectID(), "$2a$12$x")
		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	repo := NewUserRepository(tdb.Database)
	ctx := context.Background()

	t.Run("deletes existing user", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		user := newParent("delete@example.com")
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, repo.Delete(ctx, user.ID))

		_, err := repo.FindByID(ctx, user.ID)
		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})

	t.Run("returns error for non-existent user", func(t *testing.T) {
		tdb.ClearCollection(t, usersCollection)

		assert.Equal(t, apperrors.ErrUserNotFound, repo.Delete(ctx, primitive.NewObjectID()))
	})
}

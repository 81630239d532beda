package list

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

func TestCreateMapsUniqueViolation(t *testing.T) {
	fx := newListFixture(t)
	repo := NewRepo(fx.db)
	ctx := context.Background()

	first := models.ListEntry{
		ID:      uuid.NewString(),
		UserID:  fx.userID,
		AnimeID: fx.animeID,
		Status:  models.StatusWatching,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := first
	second.ID = uuid.NewString()
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetScopedToOwner(t *testing.T) {
	fx := newListFixture(t)
	repo := NewRepo(fx.db)
	ctx := context.Background()

	e := models.ListEntry{
		ID:      uuid.NewString(),
		UserID:  fx.userID,
		AnimeID: fx.animeID,
		Status:  models.StatusCompleted,
	}
	require.NoError(t, repo.Create(ctx, e))

	got, err := repo.Get(ctx, e.ID, fx.userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusCompleted, got.Status)

	otherID, _ := fx.newUser(t)
	got, err = repo.Get(ctx, e.ID, otherID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

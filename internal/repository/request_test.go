package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"refugio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRepository_Integration(t *testing.T) {
	repo := NewRequestRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	owner := &models.User{Username: fmt.Sprintf("prot_%d", ts), Email: fmt.Sprintf("prot_%d@e.com", ts), Password: "x", IsStaff: true, IsActive: true}
	adopter := &models.User{Username: fmt.Sprintf("adop_%d", ts), Email: fmt.Sprintf("adop_%d@e.com", ts), Password: "x", IsActive: true}
	testDB.Create(owner)
	testDB.Create(adopter)

	animal := &models.Animal{Name: "Luna", Species: "dog", OwnerID: owner.ID}
	testDB.Create(animal)

	t.Run("Upsert creates then updates in place", func(t *testing.T) {
		first := &models.AdoptionRequest{
			UserID:   adopter.ID,
			AnimalID: animal.ID,
			FormData: models.JSONMap{"vivienda": "piso"},
		}
		created, err := repo.Upsert(ctx, first)
		require.NoError(t, err)
		assert.True(t, created)

		second := &models.AdoptionRequest{
			UserID:   adopter.ID,
			AnimalID: animal.ID,
			FormData: models.JSONMap{"vivienda": "casa con jardin"},
		}
		created, err = repo.Upsert(ctx, second)
		require.NoError(t, err)
		assert.False(t, created)

		reqs, err := repo.ListByAnimal(ctx, animal.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, "casa con jardin", reqs[0].FormData["vivienda"])
	})

	t.Run("ListByUser preloads animal", func(t *testing.T) {
		reqs, err := repo.ListByUser(ctx, adopter.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, "Luna", reqs[0].Animal.Name)
	})

	t.Run("DeleteByAnimalAndUser removes the pair", func(t *testing.T) {
		err := repo.DeleteByAnimalAndUser(ctx, animal.ID, adopter.ID)
		assert.NoError(t, err)

		err = repo.DeleteByAnimalAndUser(ctx, animal.ID, adopter.ID)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestAnimalRepository_AssignAdopter_Integration(t *testing.T) {
	animals := NewAnimalRepository(testDB)
	requests := NewRequestRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	owner := &models.User{Username: fmt.Sprintf("sh_%d", ts), Email: fmt.Sprintf("sh_%d@e.com", ts), Password: "x", IsStaff: true, IsActive: true}
	winner := &models.User{Username: fmt.Sprintf("win_%d", ts), Email: fmt.Sprintf("win_%d@e.com", ts), Password: "x", IsActive: true}
	rival := &models.User{Username: fmt.Sprintf("riv_%d", ts), Email: fmt.Sprintf("riv_%d@e.com", ts), Password: "x", IsActive: true}
	testDB.Create(owner)
	testDB.Create(winner)
	testDB.Create(rival)

	animal := &models.Animal{Name: "Rocky", Species: "dog", OwnerID: owner.ID}
	require.NoError(t, animals.Create(ctx, animal))

	for _, u := range []*models.User{winner, rival} {
		_, err := requests.Upsert(ctx, &models.AdoptionRequest{UserID: u.ID, AnimalID: animal.ID, FormData: models.JSONMap{}})
		require.NoError(t, err)
	}

	require.NoError(t, animals.AssignAdopter(ctx, animal.ID, winner.ID))

	got, err := animals.GetVisible(ctx, animal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AdopterID)
	assert.Equal(t, winner.ID, *got.AdopterID)

	// Winner's request is gone, the rival's survives for explicit rejection.
	remaining, err := requests.ListByAnimal(ctx, animal.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, rival.ID, remaining[0].UserID)
}

func TestAnimalRepository_Visibility_Integration(t *testing.T) {
	repo := NewAnimalRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	active := &models.User{Username: fmt.Sprintf("act_%d", ts), Email: fmt.Sprintf("act_%d@e.com", ts), Password: "x", IsStaff: true, IsActive: true}
	blocked := &models.User{Username: fmt.Sprintf("blk_%d", ts), Email: fmt.Sprintf("blk_%d@e.com", ts), Password: "x", IsStaff: true, IsActive: false}
	testDB.Create(active)
	testDB.Create(blocked)

	visible := &models.Animal{Name: fmt.Sprintf("Vis_%d", ts), OwnerID: active.ID}
	hidden := &models.Animal{Name: fmt.Sprintf("Hid_%d", ts), OwnerID: blocked.ID}
	require.NoError(t, repo.Create(ctx, visible))
	require.NoError(t, repo.Create(ctx, hidden))

	t.Run("ListAvailable excludes inactive owners", func(t *testing.T) {
		list, err := repo.ListAvailable(ctx, AnimalListOptions{})
		require.NoError(t, err)

		ids := make(map[uint]bool, len(list))
		for _, a := range list {
			ids[a.ID] = true
		}
		assert.True(t, ids[visible.ID])
		assert.False(t, ids[hidden.ID])
	})

	t.Run("GetVisible hides inactive owner's animal as 404", func(t *testing.T) {
		_, err := repo.GetVisible(ctx, hidden.ID)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("Search is case-insensitive", func(t *testing.T) {
		list, err := repo.ListAvailable(ctx, AnimalListOptions{Search: fmt.Sprintf("vis_%d", ts)})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, visible.ID, list[0].ID)
	})
}

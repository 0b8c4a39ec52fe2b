package inmem

import (
	"context"
	"errors"
	"testing"

	"github.com/dekarrin/simone/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AutomataRepository_Create_roundTrip(t *testing.T) {
	repo := NewAutomataRepository()
	owner := uuid.New()

	created, err := repo.Create(context.Background(), dao.Automaton{
		OwnerID: owner,
		Name:    "div3",
		JSON:    []byte(`{"states":["q0"],"alphabet":[],"transitions":[],"initial_state":"q0","final_states":["q0"]}`),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.JSON, got.JSON)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.OwnerID, got.OwnerID)
}

func Test_AutomataRepository_Create_duplicateNameForOwner_rejected(t *testing.T) {
	repo := NewAutomataRepository()
	owner := uuid.New()

	_, err := repo.Create(context.Background(), dao.Automaton{OwnerID: owner, Name: "div3", JSON: []byte("{}")})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), dao.Automaton{OwnerID: owner, Name: "div3", JSON: []byte("{}")})
	assert.True(t, errors.Is(err, dao.ErrConstraintViolation))
}

func Test_AutomataRepository_Create_sameNameDifferentOwner_allowed(t *testing.T) {
	repo := NewAutomataRepository()

	_, err := repo.Create(context.Background(), dao.Automaton{OwnerID: uuid.New(), Name: "div3", JSON: []byte("{}")})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), dao.Automaton{OwnerID: uuid.New(), Name: "div3", JSON: []byte("{}")})
	assert.NoError(t, err)
}

func Test_AutomataRepository_Delete_removesFromOwnerIndex(t *testing.T) {
	repo := NewAutomataRepository()
	owner := uuid.New()

	created, err := repo.Create(context.Background(), dao.Automaton{OwnerID: owner, Name: "div3", JSON: []byte("{}")})
	require.NoError(t, err)

	_, err = repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)

	all, err := repo.GetAllByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.GetByID(context.Background(), created.ID)
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

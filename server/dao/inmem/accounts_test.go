package inmem

import (
	"context"
	"errors"
	"testing"

	"github.com/dekarrin/simone/server/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AccountsRepository_Create_roundTrip(t *testing.T) {
	repo := NewAccountsRepository()

	created, err := repo.Create(context.Background(), dao.Account{Username: "alice", Password: "hashed"})
	require.NoError(t, err)
	assert.NotEqual(t, dao.Account{}.ID, created.ID)

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Username, got.Username)
}

func Test_AccountsRepository_Create_duplicateUsername_rejected(t *testing.T) {
	repo := NewAccountsRepository()

	_, err := repo.Create(context.Background(), dao.Account{Username: "alice", Password: "hashed"})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), dao.Account{Username: "alice", Password: "other"})
	assert.True(t, errors.Is(err, dao.ErrConstraintViolation))
}

func Test_AccountsRepository_GetByUsername_notFound(t *testing.T) {
	repo := NewAccountsRepository()

	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

func Test_AccountsRepository_Delete_removesFromUsernameIndex(t *testing.T) {
	repo := NewAccountsRepository()

	created, err := repo.Create(context.Background(), dao.Account{Username: "alice", Password: "hashed"})
	require.NoError(t, err)

	_, err = repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = repo.GetByUsername(context.Background(), "alice")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/dao/inmem"
	"github.com/dekarrin/simone/server/serr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Service_CreateAccount_duplicateUsername_rejected(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}

	_, err := svc.CreateAccount(context.Background(), "alice", "hunter2", dao.Normal)
	require.NoError(t, err)

	_, err = svc.CreateAccount(context.Background(), "alice", "different-pw", dao.Normal)
	assert.True(t, errors.Is(err, serr.ErrAlreadyExists))
}

func Test_Service_Login_correctPassword_succeeds(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}

	created, err := svc.CreateAccount(context.Background(), "alice", "hunter2", dao.Normal)
	require.NoError(t, err)

	acc, err := svc.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, acc.ID)
}

func Test_Service_Login_wrongPassword_rejected(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}

	_, err := svc.CreateAccount(context.Background(), "alice", "hunter2", dao.Normal)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "wrong-password")
	assert.True(t, errors.Is(err, serr.ErrBadCredentials))
}

func Test_Service_Login_unknownUsername_rejected(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}

	_, err := svc.Login(context.Background(), "nobody", "hunter2")
	assert.True(t, errors.Is(err, serr.ErrBadCredentials))
}

func Test_Service_Logout_invalidatesLastLoginCheck(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}

	created, err := svc.CreateAccount(context.Background(), "alice", "hunter2", dao.Normal)
	require.NoError(t, err)

	before, err := svc.Logout(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, before.LastLogoutTime.IsZero())
}

func Test_Service_UpdatePassword_thenLoginWithOldPassword_rejected(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}

	created, err := svc.CreateAccount(context.Background(), "alice", "hunter2", dao.Normal)
	require.NoError(t, err)

	_, err = svc.UpdatePassword(context.Background(), created.ID.String(), "new-password")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "hunter2")
	assert.True(t, errors.Is(err, serr.ErrBadCredentials))

	acc, err := svc.Login(context.Background(), "alice", "new-password")
	require.NoError(t, err)
	assert.Equal(t, created.ID, acc.ID)
}

package middle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/dao/inmem"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RequireAuth_missingToken_rejectedBefore401(t *testing.T) {
	db := inmem.NewDatastore()

	var reachedNext bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reachedNext = true
	})

	h := RequireAuth(db.Accounts(), []byte("01234567890123456789012345678901"), 0)(next)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/automata/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.False(t, reachedNext, "next handler must not run when auth is required and missing")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_GenerateJWT_and_validate_roundTrip(t *testing.T) {
	db := inmem.NewDatastore()
	secret := []byte("01234567890123456789012345678901")

	acc, err := db.Accounts().Create(context.Background(), dao.Account{
		Username: "alice",
		Password: "hashed",
	})
	require.NoError(t, err)

	tok, err := GenerateJWT(secret, acc)
	require.NoError(t, err)

	got, err := validateAndLookupJWTAccount(context.Background(), tok, secret, db.Accounts())
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
}

func Test_GenerateJWT_invalidatedByLogout(t *testing.T) {
	db := inmem.NewDatastore()
	secret := []byte("01234567890123456789012345678901")

	acc, err := db.Accounts().Create(context.Background(), dao.Account{Username: "alice", Password: "hashed"})
	require.NoError(t, err)

	tok, err := GenerateJWT(secret, acc)
	require.NoError(t, err)

	acc.LastLogoutTime = time.Now()
	acc, err = db.Accounts().Update(context.Background(), acc.ID, acc)
	require.NoError(t, err)

	_, err = validateAndLookupJWTAccount(context.Background(), tok, secret, db.Accounts())
	assert.Error(t, err)
}

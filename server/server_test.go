package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/simone/server/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "01234567890123456789012345678901"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(Config{TokenSecret: []byte(testSecret)})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func Test_Server_GetInfo_unauthenticated(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodGet, "/api/v1/info", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func Test_Server_CreateAutomaton_withoutToken_rejected(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/v1/automata", "", map[string]string{"name": "div3"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func Test_Server_LoginAndCreateAndAcceptAutomaton(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, err := srv.CreateAccount(context.Background(), "alice", "hunter2", dao.Normal)
	require.NoError(t, err)

	loginResp := doJSON(t, ts, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "alice",
		"password": "hunter2",
	})
	defer loginResp.Body.Close()
	require.Equal(t, http.StatusCreated, loginResp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(loginResp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)

	createResp := doJSON(t, ts, http.MethodPost, "/api/v1/automata", login.Token, map[string]string{
		"name":  "ab-star",
		"regex": "a*b",
	})
	defer createResp.Body.Close()
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(createResp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	acceptResp := doJSON(t, ts, http.MethodPost, "/api/v1/automata/"+created.ID+"/accept", login.Token, map[string]string{
		"string": "aaab",
	})
	defer acceptResp.Body.Close()
	require.Equal(t, http.StatusOK, acceptResp.StatusCode)

	var accepted struct {
		Accepted bool `json:"accepted"`
	}
	require.NoError(t, json.NewDecoder(acceptResp.Body).Decode(&accepted))
	assert.True(t, accepted.Accepted)
}

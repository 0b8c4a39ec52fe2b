package automata

import (
	"context"
	"errors"
	"testing"

	"github.com/dekarrin/simone/internal/automaton"
	"github.com/dekarrin/simone/server/dao/inmem"
	"github.com/dekarrin/simone/server/serr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func div3(t *testing.T) *automaton.Automaton {
	t.Helper()
	a := automaton.New()
	require.NoError(t, a.AddState("q0", true))
	require.NoError(t, a.AddState("q1", false))
	require.NoError(t, a.SetInitial("q0"))
	require.NoError(t, a.AddTransition("q0", "1", "q1"))
	require.NoError(t, a.AddTransition("q1", "1", "q0"))
	return a
}

func Test_Service_Create_roundTripsByteForByte(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}
	owner := uuid.New()
	a := div3(t)

	created, err := svc.Create(context.Background(), owner, "div3", a)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	wantJSON, err := a.Encode()
	require.NoError(t, err)
	gotJSON, err := got.Automaton.Encode()
	require.NoError(t, err)
	assert.Equal(t, wantJSON, gotJSON)
}

func Test_Service_Create_duplicateNameForOwner_rejected(t *testing.T) {
	svc := Service{DB: inmem.NewDatastore()}
	owner := uuid.New()

	_, err := svc.Create(context.Background(), owner, "div3", div3(t))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, "div3", div3(t))
	assert.True(t, errors.Is(err, serr.ErrAlreadyExists))
}

func Test_CompileRegex_invalid_returnsBadArgument(t *testing.T) {
	_, err := CompileRegex("|a")
	assert.True(t, errors.Is(err, serr.ErrBadArgument))
}

func Test_CompileGrammar_valid(t *testing.T) {
	a, err := CompileGrammar("S -> 1A\nA -> 1S\nA -> &")
	require.NoError(t, err)
	accepted, err := a.Accept("11")
	require.NoError(t, err)
	assert.True(t, accepted)
}

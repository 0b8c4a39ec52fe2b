package grammar

import (
	"testing"

	"github.com/dekarrin/simone/internal/automaton"
	"github.com/stretchr/testify/assert"
)

// aStarB accepts a*b: zero or more "a" followed by exactly one "b".
func aStarB(t *testing.T) *automaton.Automaton {
	t.Helper()
	a := automaton.New()
	assert.NoError(t, a.AddState("S", false))
	assert.NoError(t, a.AddState("B", true))
	assert.NoError(t, a.SetInitial("S"))
	assert.NoError(t, a.AddTransition("S", "a", "S"))
	assert.NoError(t, a.AddTransition("S", "b", "B"))

	return a
}

func Test_FromAutomaton_ToAutomaton_roundtrip(t *testing.T) {
	orig := aStarB(t)

	g := FromAutomaton(orig)
	rebuilt, err := g.ToAutomaton()
	if !assert.NoError(t, err) {
		return
	}

	for _, s := range []string{"", "b", "ab", "aaab", "a", "ba", "bb"} {
		want, err := orig.Accept(s)
		assert.NoError(t, err)
		got, err := rebuilt.Accept(s)
		assert.NoError(t, err)
		assert.Equal(t, want, got, "input %q", s)
	}
}

func Test_FromAutomaton_acceptingInitialAddsPrimedStart(t *testing.T) {
	// accepts "" plus any number of "a"s
	aStar := automaton.New()
	assert.NoError(t, aStar.AddState("S", true))
	assert.NoError(t, aStar.SetInitial("S"))
	assert.NoError(t, aStar.AddTransition("S", "a", "S"))

	g := FromAutomaton(aStar)

	assert.Equal(t, "S'", g.InitialSymbol())

	prods := g.Productions("S'")
	found := false
	for _, p := range prods {
		if p.IsEpsilon() {
			found = true
		}
	}
	assert.True(t, found, "expected S' to have an epsilon production")

	rebuilt, err := g.ToAutomaton()
	if assert.NoError(t, err) {
		accepted, err := rebuilt.Accept("")
		assert.NoError(t, err)
		assert.True(t, accepted)
	}
}

func Test_Parse_String_roundtrip(t *testing.T) {
	text := "S -> aA | b\nA -> aA | a"

	g, err := Parse(text)
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, "S", g.InitialSymbol())
	assert.Equal(t, text, g.String())
}

func Test_Parse_invalid(t *testing.T) {
	testCases := []string{
		"not a rule at all",
		"S -> abc",
		"-> a",
	}

	for _, tc := range testCases {
		t.Run(tc, func(t *testing.T) {
			_, err := Parse(tc)
			assert.Error(t, err)
		})
	}
}

func Test_Parse_emptyString(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
}

func Test_Parse_epsilon(t *testing.T) {
	g, err := Parse("S -> a | &")
	if !assert.NoError(t, err) {
		return
	}

	a, err := g.ToAutomaton()
	if !assert.NoError(t, err) {
		return
	}

	accepted, err := a.Accept("")
	assert.NoError(t, err)
	assert.True(t, accepted)

	accepted, err = a.Accept("a")
	assert.NoError(t, err)
	assert.True(t, accepted)

	accepted, err = a.Accept("aa")
	assert.NoError(t, err)
	assert.False(t, accepted)
}

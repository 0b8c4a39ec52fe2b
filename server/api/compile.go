package api

import (
	"net/http"

	"github.com/dekarrin/simone/internal/automaton"
	"github.com/dekarrin/simone/server/automata"
	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/middle"
	"github.com/dekarrin/simone/server/result"
)

// unpersistedModel renders an automaton that has not been (and will not be)
// stored as a record: compile endpoints return the compiled form directly
// without an ID, URI, or owner.
func unpersistedModel(a *automaton.Automaton) AutomatonModel {
	return AutomatonModel{
		States:          a.States(),
		Alphabet:        a.Alphabet(),
		InitialState:    a.Initial(),
		AcceptingStates: a.AcceptingStates(),
		Transitions:     a.TransitionTable(),
	}
}

// HTTPCompileRegex returns a HandlerFunc that compiles a regular expression
// into a DFA and returns it in persistence format, without storing it.
func (api API) HTTPCompileRegex() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCompileRegex)
}

func (api API) epCompileRegex(req *http.Request) result.Result {
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	var body RegexCompileRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	a, err := automata.CompileRegex(body.Regex)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	return result.OK(unpersistedModel(a), "account '%s' compiled a regex", acc.Username)
}

// HTTPCompileGrammar returns a HandlerFunc that converts a right-linear
// grammar into an automaton and returns it in persistence format, without
// storing it.
func (api API) HTTPCompileGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCompileGrammar)
}

func (api API) epCompileGrammar(req *http.Request) result.Result {
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	var body GrammarCompileRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	a, err := automata.CompileGrammar(body.Grammar)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	return result.OK(unpersistedModel(a), "account '%s' compiled a grammar", acc.Username)
}

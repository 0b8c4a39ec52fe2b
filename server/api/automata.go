package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dekarrin/simone/internal/automaton"
	"github.com/dekarrin/simone/server/automata"
	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/middle"
	"github.com/dekarrin/simone/server/result"
	"github.com/dekarrin/simone/server/serr"
	"github.com/google/uuid"
)

// AutomataService is the subset of automata.Service that the API handlers
// need. Declared as an interface so tests can substitute a fake backend.
type AutomataService interface {
	GetAll(ctx context.Context, owner uuid.UUID) ([]automata.Record, error)
	Get(ctx context.Context, id uuid.UUID) (automata.Record, error)
	Create(ctx context.Context, owner uuid.UUID, name string, a *automaton.Automaton) (automata.Record, error)
	Update(ctx context.Context, id uuid.UUID, a *automaton.Automaton) (automata.Record, error)
	Delete(ctx context.Context, id uuid.UUID) (automata.Record, error)
}

// detailModel renders the full transition-table view of a stored automaton.
func detailModel(rec automata.Record) AutomatonModel {
	m := AutomatonModel{
		URI:             PathPrefix + "/automata/" + rec.ID.String(),
		ID:              rec.ID.String(),
		Name:            rec.Name,
		OwnerID:         rec.OwnerID.String(),
		States:          rec.Automaton.States(),
		Alphabet:        rec.Automaton.Alphabet(),
		InitialState:    rec.Automaton.Initial(),
		AcceptingStates: rec.Automaton.AcceptingStates(),
		Transitions:     rec.Automaton.TransitionTable(),
	}
	return m
}

// summaryModel renders the listing view of a stored automaton, omitting its
// transition structure.
func summaryModel(rec automata.Record) AutomatonModel {
	return AutomatonModel{
		URI:     PathPrefix + "/automata/" + rec.ID.String(),
		ID:      rec.ID.String(),
		Name:    rec.Name,
		OwnerID: rec.OwnerID.String(),
	}
}

func (api API) HTTPGetAllAutomata() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllAutomata)
}

func (api API) epGetAllAutomata(req *http.Request) result.Result {
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	recs, err := api.Automata.GetAll(req.Context(), acc.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]AutomatonModel, len(recs))
	for i := range recs {
		resp[i] = summaryModel(recs[i])
	}

	return result.OK(resp, "account '%s' got all automata", acc.Username)
}

func (api API) HTTPCreateAutomaton() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateAutomaton)
}

func (api API) epCreateAutomaton(req *http.Request) result.Result {
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	var create CreateAutomatonRequest
	if err := parseJSON(req, &create); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if create.Regex != "" && create.Grammar != "" {
		return result.BadRequest("only one of regex or grammar may be set", "both regex and grammar set")
	}

	var a *automaton.Automaton
	var err error
	switch {
	case create.Regex != "":
		a, err = automata.CompileRegex(create.Regex)
	case create.Grammar != "":
		a, err = automata.CompileGrammar(create.Grammar)
	default:
		a = automaton.New()
	}
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	rec, err := api.Automata.Create(req.Context(), acc.ID, create.Name, a)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict(err.Error(), "automaton '%s' creation: %s", create.Name, err.Error())
		}
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(detailModel(rec), "account '%s' created automaton '%s'", acc.Username, rec.Name)
}

func (api API) HTTPGetAutomaton() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAutomaton)
}

func (api API) epGetAutomaton(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	rec, r := api.lookupOwnedAutomaton(req, acc, id)
	if r != nil {
		return *r
	}

	return result.OK(detailModel(rec), "account '%s' got automaton '%s'", acc.Username, rec.Name)
}

func (api API) HTTPDeleteAutomaton() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteAutomaton)
}

func (api API) epDeleteAutomaton(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	rec, r := api.lookupOwnedAutomaton(req, acc, id)
	if r != nil {
		return *r
	}

	deleted, err := api.Automata.Delete(req.Context(), id)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	return result.NoContent("account '%s' deleted automaton '%s'", acc.Username, deleted.Name)
}

// transformEndpoint builds a handler that applies a single-automaton
// transform (determinize, minimize, complement, relabel) and persists the
// result back over the same record.
func (api API) transformEndpoint(transform func(*automaton.Automaton) (*automaton.Automaton, error)) http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, func(req *http.Request) result.Result {
		id := requireIDParam(req)
		acc := req.Context().Value(middle.AuthUser).(dao.Account)

		rec, r := api.lookupOwnedAutomaton(req, acc, id)
		if r != nil {
			return *r
		}

		transformed, err := transform(rec.Automaton)
		if err != nil {
			return result.BadRequest(err.Error(), err.Error())
		}

		updated, err := api.Automata.Update(req.Context(), id, transformed)
		if err != nil {
			return result.InternalServerError(err.Error())
		}

		return result.OK(detailModel(updated), "account '%s' transformed automaton '%s'", acc.Username, updated.Name)
	})
}

func (api API) HTTPDeterminizeAutomaton() http.HandlerFunc {
	return api.transformEndpoint(func(a *automaton.Automaton) (*automaton.Automaton, error) {
		return a.Determinize(), nil
	})
}

func (api API) HTTPMinimizeAutomaton() http.HandlerFunc {
	return api.transformEndpoint((*automaton.Automaton).Minimize)
}

func (api API) HTTPComplementAutomaton() http.HandlerFunc {
	return api.transformEndpoint(func(a *automaton.Automaton) (*automaton.Automaton, error) {
		return a.Complement(), nil
	})
}

func (api API) HTTPAcceptAutomaton() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epAcceptAutomaton)
}

func (api API) epAcceptAutomaton(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	rec, r := api.lookupOwnedAutomaton(req, acc, id)
	if r != nil {
		return *r
	}

	var body AcceptRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	accepted, err := rec.Automaton.Accept(body.String)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	return result.OK(AcceptResponse{String: body.String, Accepted: accepted}, "account '%s' tested input against automaton '%s'", acc.Username, rec.Name)
}

// HTTPUpdateAutomaton returns a HandlerFunc that replaces the stored
// automaton for an existing record with the one given in the request body,
// which must be in the JSON persistence format produced by GET/compile
// endpoints (states/alphabet/transitions/initial_state/accepting_states).
func (api API) HTTPUpdateAutomaton() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epUpdateAutomaton)
}

func (api API) epUpdateAutomaton(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	if _, r := api.lookupOwnedAutomaton(req, acc, id); r != nil {
		return *r
	}

	body, err := automatonFromPersistedBody(req)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	updated, err := api.Automata.Update(req.Context(), id, body)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	return result.OK(detailModel(updated), "account '%s' replaced automaton '%s'", acc.Username, updated.Name)
}

// combineEndpoint builds a handler for union/intersect: combines the
// path-referenced automaton with another one the caller owns, and stores
// the result as a new automaton record under the requested name.
func (api API) combineEndpoint(combine func(a, b *automaton.Automaton) *automaton.Automaton) http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, func(req *http.Request) result.Result {
		id := requireIDParam(req)
		acc := req.Context().Value(middle.AuthUser).(dao.Account)

		rec, r := api.lookupOwnedAutomaton(req, acc, id)
		if r != nil {
			return *r
		}

		var body CombineRequest
		if err := parseJSON(req, &body); err != nil {
			return result.BadRequest(err.Error(), err.Error())
		}

		otherID, err := uuid.Parse(body.WithID)
		if err != nil {
			return result.BadRequest("with_id: not a valid ID", err.Error())
		}

		other, r := api.lookupOwnedAutomaton(req, acc, otherID)
		if r != nil {
			return *r
		}

		combined := combine(rec.Automaton, other.Automaton)

		created, err := api.Automata.Create(req.Context(), acc.ID, body.Name, combined)
		if err != nil {
			if errors.Is(err, serr.ErrAlreadyExists) {
				return result.Conflict(err.Error(), "combine result '%s': %s", body.Name, err.Error())
			}
			if errors.Is(err, serr.ErrBadArgument) {
				return result.BadRequest(err.Error(), err.Error())
			}
			return result.InternalServerError(err.Error())
		}

		return result.Created(detailModel(created), "account '%s' combined automata '%s' and '%s' into '%s'", acc.Username, rec.Name, other.Name, created.Name)
	})
}

func (api API) HTTPUnionAutomaton() http.HandlerFunc {
	return api.combineEndpoint((*automaton.Automaton).Union)
}

func (api API) HTTPIntersectAutomaton() http.HandlerFunc {
	return api.combineEndpoint((*automaton.Automaton).Intersection)
}

// automatonFromPersistedBody reads the raw request body and decodes it
// using the same JSON persistence format automaton.Save/Load uses on disk.
func automatonFromPersistedBody(req *http.Request) (*automaton.Automaton, error) {
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read request body: %w", err)
	}

	a, err := automaton.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("malformed automaton JSON: %w", err)
	}
	return a, nil
}

// lookupOwnedAutomaton retrieves the automaton with the given ID and checks
// that acc is permitted to access it (its owner, or an admin). If r is
// non-nil the caller must return *r immediately without using rec.
func (api API) lookupOwnedAutomaton(req *http.Request, acc dao.Account, id uuid.UUID) (rec automata.Record, r *result.Result) {
	rec, err := api.Automata.Get(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			res := result.NotFound()
			return automata.Record{}, &res
		}
		res := result.InternalServerError(err.Error())
		return automata.Record{}, &res
	}

	if rec.OwnerID != acc.ID && acc.Role != dao.Admin {
		res := result.Forbidden("account '%s' (role %s) access of automaton %s: forbidden", acc.Username, acc.Role, id)
		return automata.Record{}, &res
	}

	return rec, nil
}

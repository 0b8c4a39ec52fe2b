// Package automata provides services for creating, storing, and
// transforming automaton records via the server's persistence layer,
// decoupled from the HTTP layer that accesses it.
package automata

import (
	"context"
	"errors"

	"github.com/dekarrin/simone/internal/automaton"
	"github.com/dekarrin/simone/internal/grammar"
	"github.com/dekarrin/simone/internal/regex"
	"github.com/dekarrin/simone/internal/simerr"
	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/serr"
	"github.com/google/uuid"
)

// Service performs automaton record actions and makes calls to server
// persistence to preserve the backend state.
//
// The zero-value of Service is not ready to be used; assign a valid DAO
// store to DB before attempting to use it.
type Service struct {
	// DB is the persistence store of the service.
	DB dao.Store
}

// Record is an automaton record decoded into a usable in-memory Automaton,
// along with the metadata dao.Automaton carries.
type Record struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Automaton *automaton.Automaton
}

func decodeRecord(rec dao.Automaton) (Record, error) {
	a, err := automaton.Decode(rec.JSON)
	if err != nil {
		return Record{}, serr.New("stored automaton record is corrupt", err, serr.ErrDB)
	}
	return Record{ID: rec.ID, OwnerID: rec.OwnerID, Name: rec.Name, Automaton: a}, nil
}

// GetAll returns every automaton record owned by owner.
func (svc Service) GetAll(ctx context.Context, owner uuid.UUID) ([]Record, error) {
	recs, err := svc.DB.Automata().GetAllByOwner(ctx, owner)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	out := make([]Record, len(recs))
	for i := range recs {
		r, err := decodeRecord(recs[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Get returns the automaton record with the given ID.
func (svc Service) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	rec, err := svc.DB.Automata().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return Record{}, serr.ErrNotFound
		}
		return Record{}, serr.WrapDB("could not get automaton", err)
	}

	return decodeRecord(rec)
}

// Create stores a new automaton record owned by owner under name.
//
// The returned error will match serr.ErrAlreadyExists if owner already has
// an automaton with that name, and serr.ErrBadArgument if name is empty.
func (svc Service) Create(ctx context.Context, owner uuid.UUID, name string, a *automaton.Automaton) (Record, error) {
	if name == "" {
		return Record{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	data, err := a.Encode()
	if err != nil {
		return Record{}, serr.New("could not encode automaton", err)
	}

	rec, err := svc.DB.Automata().Create(ctx, dao.Automaton{
		OwnerID: owner,
		Name:    name,
		JSON:    data,
	})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return Record{}, serr.New("an automaton with that name already exists", serr.ErrAlreadyExists)
		}
		return Record{}, serr.WrapDB("could not create automaton", err)
	}

	return decodeRecord(rec)
}

// Update replaces the stored automaton for id with a, preserving its name
// and owner.
func (svc Service) Update(ctx context.Context, id uuid.UUID, a *automaton.Automaton) (Record, error) {
	existing, err := svc.DB.Automata().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return Record{}, serr.ErrNotFound
		}
		return Record{}, serr.WrapDB("", err)
	}

	data, err := a.Encode()
	if err != nil {
		return Record{}, serr.New("could not encode automaton", err)
	}
	existing.JSON = data

	updated, err := svc.DB.Automata().Update(ctx, id, existing)
	if err != nil {
		return Record{}, serr.WrapDB("could not update automaton", err)
	}

	return decodeRecord(updated)
}

// Delete removes the automaton record with the given ID, returning the
// record as it was just before deletion.
func (svc Service) Delete(ctx context.Context, id uuid.UUID) (Record, error) {
	rec, err := svc.DB.Automata().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return Record{}, serr.ErrNotFound
		}
		return Record{}, serr.WrapDB("could not delete automaton", err)
	}

	return decodeRecord(rec)
}

// CompileRegex compiles pattern into a new (unsaved) Automaton.
func CompileRegex(pattern string) (*automaton.Automaton, error) {
	a, err := regex.Compile(pattern)
	if err != nil {
		if errors.Is(err, simerr.ErrInvalidRegex) {
			return nil, serr.New(err.Error(), err, serr.ErrBadArgument)
		}
		return nil, serr.New("could not compile regex", err)
	}
	return a, nil
}

// CompileGrammar parses text as a right-linear grammar and converts it to a
// new (unsaved) Automaton.
func CompileGrammar(text string) (*automaton.Automaton, error) {
	g, err := grammar.Parse(text)
	if err != nil {
		if errors.Is(err, simerr.ErrInvalidGrammar) {
			return nil, serr.New(err.Error(), err, serr.ErrBadArgument)
		}
		return nil, serr.New("could not parse grammar", err)
	}

	a, err := g.ToAutomaton()
	if err != nil {
		return nil, serr.New("could not convert grammar to automaton", err)
	}
	return a, nil
}

// Package dao provides data access objects for use in the simone API
// server.
package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories the server needs.
type Store interface {
	Accounts() AccountRepository
	Automata() AutomatonRepository
	Close() error
}

// AutomatonRepository persists automaton records: an owner, a name unique to
// that owner, and the automaton's JSON persistence-format bytes
// (automaton.Save's output), so the DAO layer never needs to know about the
// automaton package's in-memory representation.
type AutomatonRepository interface {
	Create(ctx context.Context, rec Automaton) (Automaton, error)
	GetByID(ctx context.Context, id uuid.UUID) (Automaton, error)
	GetByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (Automaton, error)
	GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]Automaton, error)
	Update(ctx context.Context, id uuid.UUID, rec Automaton) (Automaton, error)
	Delete(ctx context.Context, id uuid.UUID) (Automaton, error)
	Close() error
}

// Automaton is the persisted record of one automaton: JSON holds the
// automaton.Save-format encoding of its states, alphabet, transitions,
// initial state, and accepting states.
type Automaton struct {
	ID       uuid.UUID // PK, NOT NULL
	OwnerID  uuid.UUID // FK (Many-to-One Account.ID), NOT NULL
	Name     string    // UNIQUE with OwnerID, NOT NULL
	JSON     []byte    // NOT NULL
	Created  time.Time // NOT NULL
	Modified time.Time // NOT NULL
}

// AccountRepository persists API accounts used for authentication.
type AccountRepository interface {
	Create(ctx context.Context, acc Account) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetAll(ctx context.Context) ([]Account, error)
	Update(ctx context.Context, id uuid.UUID, acc Account) (Account, error)
	Delete(ctx context.Context, id uuid.UUID) (Account, error)
	Close() error
}

// Role distinguishes the normal-user/admin split called out in
// SPEC_FULL.md's non-goals (no finer-grained authorization than this).
type Role int

const (
	Normal Role = iota
	Admin
)

func (r Role) String() string {
	switch r {
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Normal, fmt.Errorf("must be one of 'normal' or 'admin'")
	}
}

type Account struct {
	ID             uuid.UUID // PK, NOT NULL
	Username       string    // UNIQUE, NOT NULL
	Password       string    // bcrypt hash, NOT NULL
	Role           Role      // NOT NULL
	Created        time.Time // NOT NULL
	Modified       time.Time
	LastLogoutTime time.Time
	LastLoginTime  time.Time
}

// Package inmem provides an in-memory dao.Store, used for tests and for
// running the server without a database.
package inmem

import (
	"github.com/dekarrin/simone/server/dao"
)

type store struct {
	accounts *AccountsRepository
	automata *AutomataRepository
}

// NewDatastore creates a fresh, empty in-memory dao.Store.
func NewDatastore() dao.Store {
	return &store{
		accounts: NewAccountsRepository(),
		automata: NewAutomataRepository(),
	}
}

func (s *store) Accounts() dao.AccountRepository {
	return s.accounts
}

func (s *store) Automata() dao.AutomatonRepository {
	return s.automata
}

func (s *store) Close() error {
	var err error
	if accErr := s.accounts.Close(); accErr != nil {
		err = accErr
	}
	if autoErr := s.automata.Close(); autoErr != nil {
		err = autoErr
	}
	return err
}

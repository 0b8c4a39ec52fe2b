package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/simone/server/dao"
	"github.com/google/uuid"
)

// NewAccountsRepository creates a new, empty AccountsRepository.
func NewAccountsRepository() *AccountsRepository {
	return &AccountsRepository{
		accounts:        make(map[uuid.UUID]dao.Account),
		byUsernameIndex: make(map[string]uuid.UUID),
	}
}

type AccountsRepository struct {
	accounts        map[uuid.UUID]dao.Account
	byUsernameIndex map[string]uuid.UUID
}

func (r *AccountsRepository) Close() error {
	return nil
}

func (r *AccountsRepository) Create(ctx context.Context, acc dao.Account) (dao.Account, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Account{}, fmt.Errorf("could not generate ID: %w", err)
	}
	acc.ID = newUUID

	if _, ok := r.byUsernameIndex[acc.Username]; ok {
		return dao.Account{}, dao.ErrConstraintViolation
	}

	acc.Created = time.Now()
	acc.LastLogoutTime = time.Now()

	r.accounts[acc.ID] = acc
	r.byUsernameIndex[acc.Username] = acc.ID

	return acc, nil
}

func (r *AccountsRepository) GetAll(ctx context.Context) ([]dao.Account, error) {
	all := make([]dao.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		all = append(all, acc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *AccountsRepository) Update(ctx context.Context, id uuid.UUID, acc dao.Account) (dao.Account, error) {
	existing, ok := r.accounts[id]
	if !ok {
		return dao.Account{}, dao.ErrNotFound
	}

	if acc.Username != existing.Username {
		if _, ok := r.byUsernameIndex[acc.Username]; ok {
			return dao.Account{}, dao.ErrConstraintViolation
		}
	}

	delete(r.byUsernameIndex, existing.Username)
	if acc.ID != id {
		delete(r.accounts, id)
	}
	r.accounts[acc.ID] = acc
	r.byUsernameIndex[acc.Username] = acc.ID

	return acc, nil
}

func (r *AccountsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return dao.Account{}, dao.ErrNotFound
	}
	return acc, nil
}

func (r *AccountsRepository) GetByUsername(ctx context.Context, username string) (dao.Account, error) {
	id, ok := r.byUsernameIndex[username]
	if !ok {
		return dao.Account{}, dao.ErrNotFound
	}
	return r.accounts[id], nil
}

func (r *AccountsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return dao.Account{}, dao.ErrNotFound
	}
	delete(r.byUsernameIndex, acc.Username)
	delete(r.accounts, id)
	return acc, nil
}

package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/simone/server/dao"
	"github.com/google/uuid"
)

// NewAutomataRepository creates a new, empty AutomataRepository.
func NewAutomataRepository() *AutomataRepository {
	return &AutomataRepository{
		records:          make(map[uuid.UUID]dao.Automaton),
		byOwnerIDIndex:   make(map[uuid.UUID][]uuid.UUID),
		byOwnerNameIndex: make(map[uuid.UUID]map[string]uuid.UUID),
	}
}

type AutomataRepository struct {
	records          map[uuid.UUID]dao.Automaton
	byOwnerIDIndex   map[uuid.UUID][]uuid.UUID
	byOwnerNameIndex map[uuid.UUID]map[string]uuid.UUID
}

func (r *AutomataRepository) Close() error {
	return nil
}

func (r *AutomataRepository) Create(ctx context.Context, rec dao.Automaton) (dao.Automaton, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Automaton{}, fmt.Errorf("could not generate ID: %w", err)
	}

	if names, ok := r.byOwnerNameIndex[rec.OwnerID]; ok {
		if _, taken := names[rec.Name]; taken {
			return dao.Automaton{}, dao.ErrConstraintViolation
		}
	}

	now := time.Now()
	rec.ID = newUUID
	rec.Created = now
	rec.Modified = now

	r.records[rec.ID] = rec
	r.byOwnerIDIndex[rec.OwnerID] = append(r.byOwnerIDIndex[rec.OwnerID], rec.ID)
	if r.byOwnerNameIndex[rec.OwnerID] == nil {
		r.byOwnerNameIndex[rec.OwnerID] = make(map[string]uuid.UUID)
	}
	r.byOwnerNameIndex[rec.OwnerID][rec.Name] = rec.ID

	return rec, nil
}

func (r *AutomataRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Automaton, error) {
	rec, ok := r.records[id]
	if !ok {
		return dao.Automaton{}, dao.ErrNotFound
	}
	return rec, nil
}

func (r *AutomataRepository) GetByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (dao.Automaton, error) {
	id, ok := r.byOwnerNameIndex[ownerID][name]
	if !ok {
		return dao.Automaton{}, dao.ErrNotFound
	}
	return r.records[id], nil
}

func (r *AutomataRepository) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]dao.Automaton, error) {
	ids := r.byOwnerIDIndex[ownerID]
	all := make([]dao.Automaton, 0, len(ids))
	for _, id := range ids {
		all = append(all, r.records[id])
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *AutomataRepository) Update(ctx context.Context, id uuid.UUID, rec dao.Automaton) (dao.Automaton, error) {
	existing, ok := r.records[id]
	if !ok {
		return dao.Automaton{}, dao.ErrNotFound
	}

	if rec.Name != existing.Name {
		if names, ok := r.byOwnerNameIndex[rec.OwnerID]; ok {
			if _, taken := names[rec.Name]; taken {
				return dao.Automaton{}, dao.ErrConstraintViolation
			}
		}
	}

	rec.ID = id
	rec.Created = existing.Created
	rec.Modified = time.Now()

	delete(r.byOwnerNameIndex[existing.OwnerID], existing.Name)
	if r.byOwnerNameIndex[rec.OwnerID] == nil {
		r.byOwnerNameIndex[rec.OwnerID] = make(map[string]uuid.UUID)
	}
	r.byOwnerNameIndex[rec.OwnerID][rec.Name] = rec.ID
	r.records[rec.ID] = rec

	return rec, nil
}

func (r *AutomataRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Automaton, error) {
	rec, ok := r.records[id]
	if !ok {
		return dao.Automaton{}, dao.ErrNotFound
	}

	delete(r.byOwnerNameIndex[rec.OwnerID], rec.Name)
	ids := r.byOwnerIDIndex[rec.OwnerID]
	for i, existingID := range ids {
		if existingID == id {
			r.byOwnerIDIndex[rec.OwnerID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	delete(r.records, id)

	return rec, nil
}

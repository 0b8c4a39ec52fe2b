package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/simone/server/dao"
	"github.com/google/uuid"
)

type AutomataDB struct {
	db *sql.DB
}

func (repo *AutomataDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS automata (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		data TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		UNIQUE(owner_id, name)
	);`)
	return wrapDBError(err)
}

func (repo *AutomataDB) Create(ctx context.Context, rec dao.Automaton) (dao.Automaton, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Automaton{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := convertToDB_Time(time.Now())

	_, err = repo.db.ExecContext(ctx, `INSERT INTO automata
		(id, owner_id, name, data, created, modified) VALUES (?, ?, ?, ?, ?, ?)`,
		newUUID.String(), convertToDB_UUID(rec.OwnerID), rec.Name, string(rec.JSON), now, now,
	)
	if err != nil {
		return dao.Automaton{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *AutomataDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Automaton, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, owner_id, name, data, created, modified FROM automata WHERE id = ?;`, id.String())
	return scanAutomaton(row.Scan)
}

func (repo *AutomataDB) GetByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (dao.Automaton, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, owner_id, name, data, created, modified FROM automata WHERE owner_id = ? AND name = ?;`,
		ownerID.String(), name)
	return scanAutomaton(row.Scan)
}

func (repo *AutomataDB) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]dao.Automaton, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, owner_id, name, data, created, modified FROM automata WHERE owner_id = ?;`, ownerID.String())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Automaton
	for rows.Next() {
		rec, err := scanAutomaton(rows.Scan)
		if err != nil {
			return all, err
		}
		all = append(all, rec)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *AutomataDB) Update(ctx context.Context, id uuid.UUID, rec dao.Automaton) (dao.Automaton, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE automata SET name=?, data=?, modified=? WHERE id=?;`,
		rec.Name, string(rec.JSON), convertToDB_Time(time.Now()), id.String(),
	)
	if err != nil {
		return dao.Automaton{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Automaton{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Automaton{}, dao.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (repo *AutomataDB) Delete(ctx context.Context, id uuid.UUID) (dao.Automaton, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM automata WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}
	return curVal, nil
}

func (repo *AutomataDB) Close() error {
	return nil
}

func scanAutomaton(scan func(...any) error) (dao.Automaton, error) {
	var rec dao.Automaton
	var id, ownerID, data string
	var created, modified int64

	err := scan(&id, &ownerID, &rec.Name, &data, &created, &modified)
	if err != nil {
		return rec, wrapDBError(err)
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return rec, fmt.Errorf("stored UUID %q is invalid", id)
	}
	rec.OwnerID, err = uuid.Parse(ownerID)
	if err != nil {
		return rec, fmt.Errorf("stored owner UUID %q is invalid", ownerID)
	}
	rec.JSON = []byte(data)
	rec.Created = convertFromDB_Time(created)
	rec.Modified = convertFromDB_Time(modified)

	return rec, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/simone/server/dao"
	"github.com/google/uuid"
)

type AccountsDB struct {
	db *sql.DB
}

func (repo *AccountsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL,
		last_login_time INTEGER NOT NULL
	);`)
	return wrapDBError(err)
}

func (repo *AccountsDB) Create(ctx context.Context, acc dao.Account) (dao.Account, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Account{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := convertToDB_Time(time.Now())

	_, err = repo.db.ExecContext(ctx, `INSERT INTO accounts
		(id, username, password, role, created, modified, last_logout_time, last_login_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		newUUID.String(), acc.Username, acc.Password, convertToDB_Role(acc.Role),
		now, now, now, convertToDB_Time(acc.LastLoginTime),
	)
	if err != nil {
		return dao.Account{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *AccountsDB) GetAll(ctx context.Context) ([]dao.Account, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, username, password, role, created, modified, last_logout_time, last_login_time FROM accounts;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Account
	for rows.Next() {
		acc, err := scanAccount(rows.Scan)
		if err != nil {
			return all, err
		}
		all = append(all, acc)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *AccountsDB) Update(ctx context.Context, id uuid.UUID, acc dao.Account) (dao.Account, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE accounts SET
		username=?, password=?, role=?, modified=?, last_logout_time=?, last_login_time=? WHERE id=?;`,
		acc.Username, acc.Password, convertToDB_Role(acc.Role),
		convertToDB_Time(time.Now()), convertToDB_Time(acc.LastLogoutTime), convertToDB_Time(acc.LastLoginTime),
		id.String(),
	)
	if err != nil {
		return dao.Account{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Account{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Account{}, dao.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (repo *AccountsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Account, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, username, password, role, created, modified, last_logout_time, last_login_time FROM accounts WHERE id = ?;`, id.String())
	return scanAccount(row.Scan)
}

func (repo *AccountsDB) GetByUsername(ctx context.Context, username string) (dao.Account, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, username, password, role, created, modified, last_logout_time, last_login_time FROM accounts WHERE username = ?;`, username)
	return scanAccount(row.Scan)
}

func (repo *AccountsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Account, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id.String())
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

func (repo *AccountsDB) Close() error {
	return nil
}

func scanAccount(scan func(...any) error) (dao.Account, error) {
	var acc dao.Account
	var id, role string
	var created, modified, logout, login int64

	err := scan(&id, &acc.Username, &acc.Password, &role, &created, &modified, &logout, &login)
	if err != nil {
		return acc, wrapDBError(err)
	}

	acc.ID, err = uuid.Parse(id)
	if err != nil {
		return acc, fmt.Errorf("stored UUID %q is invalid", id)
	}
	acc.Role, err = dao.ParseRole(role)
	if err != nil {
		return acc, fmt.Errorf("stored role %q is invalid: %w", role, err)
	}
	acc.Created = convertFromDB_Time(created)
	acc.Modified = convertFromDB_Time(modified)
	acc.LastLogoutTime = convertFromDB_Time(logout)
	acc.LastLoginTime = convertFromDB_Time(login)

	return acc, nil
}

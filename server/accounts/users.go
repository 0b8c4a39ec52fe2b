package accounts

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/serr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GetAllAccounts returns all accounts currently in persistence.
func (svc Service) GetAllAccounts(ctx context.Context) ([]dao.Account, error) {
	accs, err := svc.DB.Accounts().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	return accs, nil
}

// GetAccount returns the account with the given ID.
func (svc Service) GetAccount(ctx context.Context, id string) (dao.Account, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Account{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	acc, err := svc.DB.Accounts().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Account{}, serr.ErrNotFound
		}
		return dao.Account{}, serr.WrapDB("could not get account", err)
	}

	return acc, nil
}

// CreateAccount creates a new account with the given username and password.
// Returns the newly-created account as it exists after creation.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If an account with that
// username is already present, it will match serr.ErrAlreadyExists. If the
// error occured due to an unexpected problem with the DB, it will match
// serr.ErrDB. Finally, if one of the arguments is invalid, it will match
// serr.ErrBadArgument.
func (svc Service) CreateAccount(ctx context.Context, username, password string, role dao.Role) (dao.Account, error) {
	if username == "" {
		return dao.Account{}, serr.New("username cannot be blank", serr.ErrBadArgument)
	}
	if password == "" {
		return dao.Account{}, serr.New("password cannot be blank", serr.ErrBadArgument)
	}

	_, err := svc.DB.Accounts().GetByUsername(ctx, username)
	if err == nil {
		return dao.Account{}, serr.New("an account with that username already exists", serr.ErrAlreadyExists)
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.Account{}, serr.WrapDB("", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return dao.Account{}, serr.New("password is too long", serr.ErrBadArgument)
		}
		return dao.Account{}, serr.New("password could not be encrypted", err)
	}

	newAccount := dao.Account{
		Username: username,
		Password: base64.StdEncoding.EncodeToString(passHash),
		Role:     role,
	}

	acc, err := svc.DB.Accounts().Create(ctx, newAccount)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Account{}, serr.ErrAlreadyExists
		}
		return dao.Account{}, serr.WrapDB("could not create account", err)
	}

	return acc, nil
}

// UpdatePassword sets the password of the account with the given ID. The new
// password cannot be empty. Returns the updated account.
func (svc Service) UpdatePassword(ctx context.Context, id, password string) (dao.Account, error) {
	if password == "" {
		return dao.Account{}, serr.New("password cannot be empty", serr.ErrBadArgument)
	}
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Account{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	existing, err := svc.DB.Accounts().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Account{}, serr.New("no account with that ID exists", serr.ErrNotFound)
		}
		return dao.Account{}, serr.WrapDB("", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return dao.Account{}, serr.New("password is too long", serr.ErrBadArgument)
		}
		return dao.Account{}, serr.New("password could not be encrypted", err)
	}

	existing.Password = base64.StdEncoding.EncodeToString(passHash)

	updated, err := svc.DB.Accounts().Update(ctx, uuidID, existing)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Account{}, serr.New("no account with that ID exists", serr.ErrNotFound)
		}
		return dao.Account{}, serr.WrapDB("could not update account", err)
	}

	return updated, nil
}

// DeleteAccount deletes the account with the given ID, returning the
// account as it was just before deletion.
func (svc Service) DeleteAccount(ctx context.Context, id string) (dao.Account, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Account{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	acc, err := svc.DB.Accounts().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Account{}, serr.ErrNotFound
		}
		return dao.Account{}, serr.WrapDB("could not delete account", err)
	}

	return acc, nil
}

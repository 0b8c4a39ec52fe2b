package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/middle"
	"github.com/dekarrin/simone/server/result"
	"github.com/dekarrin/simone/server/serr"
)

func accountToModel(acc dao.Account) AccountModel {
	return AccountModel{
		URI:            PathPrefix + "/accounts/" + acc.ID.String(),
		ID:             acc.ID.String(),
		Username:       acc.Username,
		Role:           acc.Role.String(),
		Created:        acc.Created.Format(time.RFC3339),
		Modified:       acc.Modified.Format(time.RFC3339),
		LastLogoutTime: acc.LastLogoutTime.Format(time.RFC3339),
		LastLoginTime:  acc.LastLoginTime.Format(time.RFC3339),
	}
}

// HTTPGetAllAccounts returns a HandlerFunc that retrieves all existing
// accounts. Only an admin account can call this endpoint.
func (api API) HTTPGetAllAccounts() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllAccounts)
}

func (api API) epGetAllAccounts(req *http.Request) result.Result {
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	if acc.Role != dao.Admin {
		return result.Forbidden("account '%s' (role %s): forbidden", acc.Username, acc.Role)
	}

	accs, err := api.Backend.GetAllAccounts(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]AccountModel, len(accs))
	for i := range accs {
		resp[i] = accountToModel(accs[i])
	}

	return result.OK(resp, "account '%s' got all accounts", acc.Username)
}

// HTTPCreateAccount returns a HandlerFunc that creates a new account
// entity. Only an admin account can directly create new accounts.
func (api API) HTTPCreateAccount() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateAccount)
}

func (api API) epCreateAccount(req *http.Request) result.Result {
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	if acc.Role != dao.Admin {
		return result.Forbidden("account '%s' (role %s) creation of new account: forbidden", acc.Username, acc.Role)
	}

	var create AccountModel
	if err := parseJSON(req, &create); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	role := dao.Normal
	if create.Role != "" {
		var err error
		role, err = dao.ParseRole(create.Role)
		if err != nil {
			return result.BadRequest("role: "+err.Error(), err.Error())
		}
	}

	created, err := api.Backend.CreateAccount(req.Context(), create.Username, create.Password, role)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict(err.Error(), "account '%s' creation: %s", create.Username, err.Error())
		}
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(accountToModel(created), "account '%s' created new account '%s'", acc.Username, created.Username)
}

// HTTPGetAccount returns a HandlerFunc that gets an existing account. All
// accounts may view their own entity; only admins may view others'.
func (api API) HTTPGetAccount() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAccount)
}

func (api API) epGetAccount(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	if id != acc.ID && acc.Role != dao.Admin {
		return result.Forbidden("account '%s' (role %s) view of account %s: forbidden", acc.Username, acc.Role, id)
	}

	target, err := api.Backend.GetAccount(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(accountToModel(target), "account '%s' got account '%s'", acc.Username, target.Username)
}

// HTTPUpdatePassword returns a HandlerFunc that updates the password of an
// existing account. All accounts may update their own password; only
// admins may update others'.
func (api API) HTTPUpdatePassword() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epUpdatePassword)
}

func (api API) epUpdatePassword(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	if id != acc.ID && acc.Role != dao.Admin {
		return result.Forbidden("account '%s' (role %s) password update of account %s: forbidden", acc.Username, acc.Role, id)
	}

	var update AccountModel
	if err := parseJSON(req, &update); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	updated, err := api.Backend.UpdatePassword(req.Context(), id.String(), update.Password)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(accountToModel(updated), "account '%s' updated password of account '%s'", acc.Username, updated.Username)
}

// HTTPDeleteAccount returns a HandlerFunc that deletes an account entity.
// Only admin accounts may delete accounts other than themselves.
func (api API) HTTPDeleteAccount() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteAccount)
}

func (api API) epDeleteAccount(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	if id != acc.ID && acc.Role != dao.Admin {
		return result.Forbidden("account '%s' (role %s) deletion of account %s: forbidden", acc.Username, acc.Role, id)
	}

	deleted, err := api.Backend.DeleteAccount(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	return result.NoContent("account '%s' deleted account '%s'", acc.Username, deleted.Username)
}

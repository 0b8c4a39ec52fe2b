package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/middle"
	"github.com/dekarrin/simone/server/result"
	"github.com/dekarrin/simone/server/serr"
)

// HTTPCreateLogin returns a HandlerFunc that uses the API to log in an
// account with a username and password and return the auth token for that
// account.
func (api API) HTTPCreateLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateLogin)
}

func (api API) epCreateLogin(req *http.Request) result.Result {
	loginData := LoginRequest{}
	err := parseJSON(req, &loginData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	acc, err := api.Backend.Login(req.Context(), loginData.Username, loginData.Password)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "account '%s': %s", loginData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	tok, err := middle.GenerateJWT(api.Secret, acc)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{
		Token:     tok,
		AccountID: acc.ID.String(),
	}
	return result.Created(resp, "account '"+acc.Username+"' successfully logged in")
}

// HTTPDeleteLogin returns a HandlerFunc that deletes the active login for
// some account. Only admin accounts can delete logins for accounts other
// than themselves.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the account to log out and the logged-in account of the
// client making the request.
func (api API) HTTPDeleteLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteLogin)
}

func (api API) epDeleteLogin(req *http.Request) result.Result {
	id := requireIDParam(req)
	acc := req.Context().Value(middle.AuthUser).(dao.Account)

	if id != acc.ID && acc.Role != dao.Admin {
		var otherStr string
		other, err := api.Backend.GetAccount(req.Context(), id.String())
		if err != nil {
			if !errors.Is(err, serr.ErrNotFound) {
				return result.InternalServerError("retrieve account for perm checking: %s", err.Error())
			}
			otherStr = fmt.Sprintf("%s", id)
		} else {
			otherStr = "'" + other.Username + "'"
		}

		return result.Forbidden("account '%s' (role %s) logout of account %s: forbidden", acc.Username, acc.Role, otherStr)
	}

	loggedOut, err := api.Backend.Logout(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not log out account: " + err.Error())
	}

	var otherStr string
	if id != acc.ID {
		otherStr = "account '" + loggedOut.Username + "'"
	} else {
		otherStr = "self"
	}

	return result.NoContent("account '%s' successfully logged out %s", acc.Username, otherStr)
}

// Package middle contains HTTP middleware used by the simone API server,
// chiefly JWT-based authentication.
package middle

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/result"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthUser
)

const jwtIssuer = "simone"

// Middleware is an HTTP middleware function.
type Middleware func(next http.Handler) http.Handler

// DontPanic is middleware that recovers from a panic in a later handler and
// converts it into an HTTP-500 response instead of crashing the server.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if panicErr := recover(); panicErr != nil {
					r := result.InternalServerError("panic: %v", panicErr)
					r.Log(req)
					r.WriteResponse(w)
				}
			}()
			next.ServeHTTP(w, req)
		})
	}
}

// AuthHandler is middleware that will accept a request, extract the token
// used for authentication, and make calls to get an Account entity that
// represents the logged-in account from the token.
//
// Keys are added to the request context before the request is passed to the
// next step in the chain. AuthUser will contain the logged-in account, and
// AuthLoggedIn will return whether the account is logged in (only applies
// for optional logins; for non-optional, not being logged in will result in
// an HTTP error being returned before the request is passed to the next
// handler).
type AuthHandler struct {
	db            dao.AccountRepository
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var acc dao.Account

	tok, err := getJWT(req)
	if err != nil {
		if ah.required {
			r := result.Unauthorized("", err.Error())
			r.Log(req)
			time.Sleep(ah.unauthedDelay)
			r.WriteResponse(w)
			return
		}
	} else {
		lookupAcc, err := validateAndLookupJWTAccount(req.Context(), tok, ah.secret, ah.db)
		if err != nil {
			if ah.required {
				r := result.Unauthorized("", err.Error())
				r.Log(req)
				time.Sleep(ah.unauthedDelay)
				r.WriteResponse(w)
				return
			}
		} else {
			acc = lookupAcc
			loggedIn = true
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthUser, acc)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns middleware that rejects any request without a valid
// bearer token with an HTTP-401.
func RequireAuth(db dao.AccountRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      true,
			next:          next,
		}
	}
}

// OptionalAuth returns middleware that populates AuthUser/AuthLoggedIn if a
// valid bearer token is present, but allows the request through regardless.
func OptionalAuth(db dao.AccountRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      false,
			next:          next,
		}
	}
}

func validateAndLookupJWTAccount(ctx context.Context, tok string, secret []byte, db dao.AccountRepository) (dao.Account, error) {
	var acc dao.Account

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		acc, err = db.GetByID(ctx, id)
		if err != nil {
			if err == dao.ErrNotFound {
				return nil, fmt.Errorf("subject does not exist")
			}
			return nil, fmt.Errorf("subject could not be validated")
		}

		return signingKey(secret, acc), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return dao.Account{}, err
	}

	return acc, nil
}

// RequireJWT validates the bearer token on req directly, without involving
// the middleware chain. It is used by handlers that need to re-derive the
// authenticated account outside of AuthHandler, such as login/logout.
func RequireJWT(ctx context.Context, req *http.Request, secret []byte, db dao.AccountRepository) (dao.Account, error) {
	tok, err := getJWT(req)
	if err != nil {
		return dao.Account{}, err
	}

	return validateAndLookupJWTAccount(ctx, tok, secret, db)
}

func getJWT(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	token := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}

// GenerateJWT creates a signed bearer token for the given account.
func GenerateJWT(secret []byte, acc dao.Account) (string, error) {
	claims := &jwt.MapClaims{
		"iss":        jwtIssuer,
		"exp":        time.Now().Add(time.Hour).Unix(),
		"sub":        acc.ID.String(),
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, acc))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// signingKey derives a per-account signing key from the static secret plus
// the account's current password hash and last-logout time, so that
// changing the password or logging out invalidates all previously issued
// tokens without a separate revocation list.
func signingKey(secret []byte, acc dao.Account) []byte {
	var key []byte
	key = append(key, secret...)
	key = append(key, []byte(acc.Password)...)
	key = append(key, []byte(fmt.Sprintf("%d", acc.LastLogoutTime.Unix()))...)
	return key
}

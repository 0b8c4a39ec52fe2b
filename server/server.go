// Package server implements the simone HTTP API: account authentication
// and CRUD plus storage of and transformations on automaton records.
package server

import (
	"context"
	"net/http"

	"github.com/dekarrin/simone/server/accounts"
	"github.com/dekarrin/simone/server/api"
	"github.com/dekarrin/simone/server/automata"
	"github.com/dekarrin/simone/server/dao"
	"github.com/dekarrin/simone/server/middle"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is a fully-wired simone API server, ready to be given to
// http.ListenAndServe or used directly as an http.Handler.
type Server struct {
	router  http.Handler
	db      dao.Store
	backend accounts.Service
}

// New connects to the database described by cfg and wires up a Server ready
// to serve requests.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, err
	}

	backend := accounts.Service{DB: db}

	a := api.API{
		Backend:     backend,
		Automata:    automata.Service{DB: db},
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middle.DontPanic())

	r.Route(api.PathPrefix, func(r chi.Router) {
		optional := middle.OptionalAuth(db.Accounts(), cfg.TokenSecret, cfg.UnauthDelay())
		required := middle.RequireAuth(db.Accounts(), cfg.TokenSecret, cfg.UnauthDelay())

		r.With(optional).Get("/info", a.HTTPGetInfo())

		r.Post("/login", a.HTTPCreateLogin())
		r.With(required).Delete("/login/{id}", a.HTTPDeleteLogin())

		r.Group(func(r chi.Router) {
			r.Use(required)

			r.Get("/accounts", a.HTTPGetAllAccounts())
			r.Post("/accounts", a.HTTPCreateAccount())
			r.Get("/accounts/{id}", a.HTTPGetAccount())
			r.Put("/accounts/{id}/password", a.HTTPUpdatePassword())
			r.Delete("/accounts/{id}", a.HTTPDeleteAccount())

			r.Get("/automata", a.HTTPGetAllAutomata())
			r.Post("/automata", a.HTTPCreateAutomaton())
			r.Get("/automata/{id}", a.HTTPGetAutomaton())
			r.Put("/automata/{id}", a.HTTPUpdateAutomaton())
			r.Delete("/automata/{id}", a.HTTPDeleteAutomaton())
			r.Post("/automata/{id}/accept", a.HTTPAcceptAutomaton())
			r.Post("/automata/{id}/determinize", a.HTTPDeterminizeAutomaton())
			r.Post("/automata/{id}/minimize", a.HTTPMinimizeAutomaton())
			r.Post("/automata/{id}/complement", a.HTTPComplementAutomaton())
			r.Post("/automata/{id}/union", a.HTTPUnionAutomaton())
			r.Post("/automata/{id}/intersect", a.HTTPIntersectAutomaton())

			r.Post("/compile/regex", a.HTTPCompileRegex())
			r.Post("/compile/grammar", a.HTTPCompileGrammar())
		})
	})

	return &Server{router: r, db: db, backend: backend}, nil
}

// ServeHTTP implements http.Handler by delegating to the configured router.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// CreateAccount creates a new account directly, bypassing the HTTP API. Used
// by the server binary to seed an initial admin account on first start.
func (s *Server) CreateAccount(ctx context.Context, username, password string, role dao.Role) (dao.Account, error) {
	return s.backend.CreateAccount(ctx, username, password, role)
}

// Close releases any resources (such as an open DB file) held by the
// server's persistence layer.
func (s *Server) Close() error {
	return s.db.Close()
}

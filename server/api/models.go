package api

// note that these are *not* the DAO models; those are distinct and closer
// to the DB format they are in. Rather these are the models that are
// received from and sent to the client.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	AccountID string `json:"account_id"`
}

type AccountModel struct {
	URI            string `json:"uri"`
	ID             string `json:"id,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	Role           string `json:"role,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	LastLogoutTime string `json:"last_logout,omitempty"`
	LastLoginTime  string `json:"last_login,omitempty"`
}

// InfoModel is returned from the info endpoint with version details on the
// running server.
type InfoModel struct {
	Version struct {
		Server string `json:"server"`
		Simone string `json:"simone"`
	} `json:"version"`
}

// AutomatonModel is the client-facing representation of a stored automaton.
// The automaton's transition structure is only included on detail/compile
// responses, not on listing responses.
type AutomatonModel struct {
	URI      string `json:"uri"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	OwnerID  string `json:"owner_id,omitempty"`
	Created  string `json:"created,omitempty"`
	Modified string `json:"modified,omitempty"`

	States          []string                        `json:"states,omitempty"`
	Alphabet        []string                        `json:"alphabet,omitempty"`
	InitialState    string                          `json:"initial_state,omitempty"`
	AcceptingStates []string                        `json:"accepting_states,omitempty"`
	Transitions     map[string]map[string][]string  `json:"transitions,omitempty"`
}

// CreateAutomatonRequest is the body of a POST /automata request: exactly
// one of Regex or Grammar must be set to seed the new automaton, or neither
// to create an empty one.
type CreateAutomatonRequest struct {
	Name    string `json:"name"`
	Regex   string `json:"regex,omitempty"`
	Grammar string `json:"grammar,omitempty"`
}

// RegexCompileRequest is the body of a POST /compile/regex request.
type RegexCompileRequest struct {
	Regex string `json:"regex"`
}

// GrammarCompileRequest is the body of a POST /compile/grammar request.
type GrammarCompileRequest struct {
	Grammar string `json:"grammar"`
}

// AcceptRequest is the body of a POST /automata/{id}/accept request.
type AcceptRequest struct {
	String string `json:"string"`
}

// AcceptResponse is the response to a POST /automata/{id}/accept request.
type AcceptResponse struct {
	String   string `json:"string"`
	Accepted bool   `json:"accepted"`
}

// CombineRequest is the body of a POST /automata/{id}/union or
// POST /automata/{id}/intersect request: the ID of the other automaton to
// combine with.
type CombineRequest struct {
	WithID string `json:"with_id"`
	Name   string `json:"name"`
}

// Package automaton implements finite automata as a single type capable of
// representing both deterministic and non-deterministic machines: a
// transition may lead to zero, one, or many states, and IsDeterministic
// reports whether every (state, symbol) pair currently leads to at most one.
// Construction, mutation, and membership testing live in this file;
// determinization, pruning, and the other structural transformations live in
// transform.go; JSON and binary persistence live in persist.go.
package automaton

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/simone/internal/simerr"
	"github.com/dekarrin/simone/internal/util"
)

// fatState holds the per-state data of an Automaton: whether the state is
// accepting, and its outgoing transition table (symbol -> set of target state
// names).
type fatState struct {
	name        string
	accepting   bool
	transitions map[string]util.StringSet
}

func newFATState(name string, accepting bool) *fatState {
	return &fatState{
		name:        name,
		accepting:   accepting,
		transitions: map[string]util.StringSet{},
	}
}

func (s *fatState) copy() *fatState {
	cp := &fatState{
		name:        s.name,
		accepting:   s.accepting,
		transitions: make(map[string]util.StringSet, len(s.transitions)),
	}
	for sym, targets := range s.transitions {
		cp.transitions[sym] = targets.Copy()
	}
	return cp
}

// Automaton is a finite automaton over an alphabet of single-character (or,
// for the grammar/regex front ends, single-symbol) strings. It holds its own
// state set, alphabet, transition relation, initial state, and accepting
// set; it has no notion of "current state" - membership testing (Accept)
// walks the machine fresh for each input.
//
// The zero value is not usable; construct one with New.
type Automaton struct {
	states  map[string]*fatState
	initial string
	alpha   util.StringSet
}

// New creates an empty Automaton with no states, no alphabet, and no initial
// state. The first call to AddState also implicitly becomes the initial
// state unless SetInitial is called explicitly afterward.
func New() *Automaton {
	return &Automaton{
		states: map[string]*fatState{},
		alpha:  util.NewStringSet(),
	}
}

// AddState adds a new state with the given name to the automaton. If this is
// the first state added, it becomes the initial state. Returns an error if a
// state with that name already exists.
func (a *Automaton) AddState(name string, accepting bool) error {
	if _, ok := a.states[name]; ok {
		return simerr.New(fmt.Sprintf("state %q already exists", name))
	}

	a.states[name] = newFATState(name, accepting)
	if a.initial == "" {
		a.initial = name
	}
	return nil
}

// RemoveState deletes state from the automaton along with every transition
// that references it, either as a source or as a target. Transitions whose
// target set becomes empty as a result are pruned entirely rather than left
// as a dangling empty set. Returns simerr.ErrUnknownState if no such state
// exists, or an error if state is the initial state (there must always be an
// initial state; callers wanting to discard the initial state should call
// SetInitial with a replacement first).
func (a *Automaton) RemoveState(name string) error {
	if _, ok := a.states[name]; !ok {
		return simerr.Wrapf(simerr.ErrUnknownState, "%q", name)
	}
	if name == a.initial {
		return simerr.New(fmt.Sprintf("cannot remove %q: it is the initial state", name))
	}

	// first pass: drop all outgoing transitions originating at the removed
	// state.
	delete(a.states, name)

	// second pass: for every remaining state, remove the deleted state from
	// any target set that references it, then prune the (state, symbol)
	// entry entirely if the target set is now empty. Doing this in two
	// passes avoids mutating a transition map while a composite target set
	// derived from it is still being read elsewhere in the same call.
	for _, st := range a.states {
		for sym, targets := range st.transitions {
			if targets.Has(name) {
				targets.Remove(name)
			}
			if targets.Empty() {
				delete(st.transitions, sym)
			}
		}
	}
	return nil
}

// AddSymbol adds symbol to the automaton's alphabet even if no transition
// yet uses it. No-op if already present.
func (a *Automaton) AddSymbol(symbol string) {
	a.alpha.Add(symbol)
}

// RemoveSymbol removes symbol from the alphabet and deletes every transition
// that uses it.
func (a *Automaton) RemoveSymbol(symbol string) {
	a.alpha.Remove(symbol)
	for _, st := range a.states {
		delete(st.transitions, symbol)
	}
}

// SetAccepting sets whether state is an accepting state. Returns
// simerr.ErrUnknownState if state does not exist.
func (a *Automaton) SetAccepting(state string, accepting bool) error {
	st, ok := a.states[state]
	if !ok {
		return simerr.Wrapf(simerr.ErrUnknownState, "%q", state)
	}
	st.accepting = accepting
	return nil
}

// SetInitial makes state the initial state. Returns simerr.ErrUnknownState
// if it does not exist.
func (a *Automaton) SetInitial(state string) error {
	if _, ok := a.states[state]; !ok {
		return simerr.Wrapf(simerr.ErrUnknownState, "%q", state)
	}
	a.initial = state
	return nil
}

// AddTransition adds to as a target of the transition from from on symbol.
// Both states must already exist; symbol is added to the alphabet
// automatically if not already present. Adding a transition that already
// exists has no additional effect (the target set is deduplicated), so this
// is how non-deterministic (multi-target) transitions are built up: call it
// more than once for the same (from, symbol) with different to values.
func (a *Automaton) AddTransition(from, symbol, to string) error {
	fromSt, ok := a.states[from]
	if !ok {
		return simerr.Wrapf(simerr.ErrUnknownState, "%q", from)
	}
	if _, ok := a.states[to]; !ok {
		return simerr.Wrapf(simerr.ErrUnknownState, "%q", to)
	}

	a.alpha.Add(symbol)
	if fromSt.transitions[symbol] == nil {
		fromSt.transitions[symbol] = util.NewStringSet()
	}
	fromSt.transitions[symbol].Add(to)
	return nil
}

// RemoveTransition removes to as a target of the transition from from on
// symbol, pruning the (from, symbol) entry if that was its last target.
// No-op (not an error) if the transition did not exist.
func (a *Automaton) RemoveTransition(from, symbol, to string) error {
	fromSt, ok := a.states[from]
	if !ok {
		return simerr.Wrapf(simerr.ErrUnknownState, "%q", from)
	}

	targets, ok := fromSt.transitions[symbol]
	if !ok {
		return nil
	}
	targets.Remove(to)
	if targets.Empty() {
		delete(fromSt.transitions, symbol)
	}
	return nil
}

// HasState returns whether name is a state of the automaton.
func (a *Automaton) HasState(name string) bool {
	_, ok := a.states[name]
	return ok
}

// IsAccepting returns whether state is an accepting state. Returns false
// (with no error) for an unknown state; callers that need to distinguish
// "not accepting" from "does not exist" should check HasState first.
func (a *Automaton) IsAccepting(state string) bool {
	st, ok := a.states[state]
	if !ok {
		return false
	}
	return st.accepting
}

// Initial returns the name of the initial state. Empty if the automaton has
// no states.
func (a *Automaton) Initial() string {
	return a.initial
}

// States returns the automaton's state names with the initial state first,
// followed by the rest in ascending sorted order.
func (a *Automaton) States() []string {
	if a.initial == "" {
		return util.OrderedKeys(a.states)
	}

	rest := make([]string, 0, len(a.states))
	for name := range a.states {
		if name != a.initial {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	out := make([]string, 0, len(a.states))
	out = append(out, a.initial)
	return append(out, rest...)
}

// AcceptingStates returns the names of all accepting states, in ascending
// sorted order.
func (a *Automaton) AcceptingStates() []string {
	names := make([]string, 0)
	for _, name := range a.States() {
		if a.states[name].accepting {
			names = append(names, name)
		}
	}
	return names
}

// Alphabet returns the automaton's symbols in ascending sorted order.
func (a *Automaton) Alphabet() []string {
	names := make([]string, 0, len(a.alpha))
	for sym := range a.alpha {
		names = append(names, sym)
	}
	sort.Strings(names)
	return names
}

// Next returns the set of states reachable from state on symbol, in
// ascending sorted order. Returns nil, simerr.ErrUnknownState if state does
// not exist. A deterministic transition has at most one entry; an undefined
// transition returns an empty (non-nil) slice.
func (a *Automaton) Next(state, symbol string) ([]string, error) {
	st, ok := a.states[state]
	if !ok {
		return nil, simerr.Wrapf(simerr.ErrUnknownState, "%q", state)
	}

	targets, ok := st.transitions[symbol]
	if !ok {
		return []string{}, nil
	}

	out := targets.Elements()
	sort.Strings(out)
	return out, nil
}

// IsDeterministic reports whether every (state, symbol) pair in the
// automaton has at most one target state. An automaton with zero states is
// trivially deterministic.
func (a *Automaton) IsDeterministic() bool {
	for _, st := range a.states {
		for _, targets := range st.transitions {
			if targets.Len() > 1 {
				return false
			}
		}
	}
	return true
}

// Accept reports whether the automaton accepts input, a string whose
// characters are each treated as one symbol. It always tries the
// deterministic fast-path first - a direct O(n) walk of a single current
// state - and falls back to the general frontier walk (which tracks the set
// of all states reachable so far, exploring every branch of a
// non-deterministic transition, but never introducing an epsilon closure -
// this automaton model has no epsilon transitions) the moment the fast path
// hits a multi-target transition and fails with simerr.ErrNonDeterministic.
// That fallback means a non-deterministic automaton is still walked
// correctly and Accept itself never returns ErrNonDeterministic to its
// caller; callers that want the fast path's fail-fast behavior directly
// (asserting the automaton is already deterministic) should call
// AcceptDeterministic instead.
func (a *Automaton) Accept(input string) (bool, error) {
	if a.initial == "" {
		return false, simerr.New("automaton has no initial state")
	}

	accepted, err := a.AcceptDeterministic(input)
	if err == nil {
		return accepted, nil
	}
	if !errors.Is(err, simerr.ErrNonDeterministic) {
		return false, err
	}
	return a.acceptNonDeterministic(input), nil
}

// AcceptDeterministic is the deterministic fast-path membership test: it
// walks a single current state and fails with simerr.ErrNonDeterministic the
// moment it encounters a multi-target transition, rather than silently
// falling back to exploring every branch. Its result coincides with Accept's
// on any genuinely deterministic automaton.
func (a *Automaton) AcceptDeterministic(input string) (bool, error) {
	cur := a.initial
	for i := 0; i < len(input); i++ {
		sym := string(input[i])
		st, ok := a.states[cur]
		if !ok {
			return false, simerr.Wrapf(simerr.ErrUnknownState, "%q", cur)
		}

		targets, ok := st.transitions[sym]
		if !ok || targets.Empty() {
			return false, nil
		}
		if targets.Len() > 1 {
			return false, simerr.ErrNonDeterministic
		}
		for t := range targets {
			cur = t
		}
	}
	return a.IsAccepting(cur), nil
}

func (a *Automaton) acceptNonDeterministic(input string) bool {
	current := util.NewStringSet()
	current.Add(a.initial)

	for i := 0; i < len(input); i++ {
		sym := string(input[i])
		next := util.NewStringSet()
		for state := range current {
			targets := a.states[state].transitions[sym]
			next.AddAll(targets)
		}
		current = next
		if current.Empty() {
			return false
		}
	}

	for state := range current {
		if a.IsAccepting(state) {
			return true
		}
	}
	return false
}

// Clone produces a deep, independent copy of the automaton: mutating the
// clone never affects the original and vice versa. Every transformation that
// is documented as "may clone rather than mutate in place" uses this.
func (a *Automaton) Clone() *Automaton {
	cp := &Automaton{
		states:  make(map[string]*fatState, len(a.states)),
		initial: a.initial,
		alpha:   a.alpha.Copy(),
	}
	for name, st := range a.states {
		cp.states[name] = st.copy()
	}
	return cp
}

// Equal reports whether a and o accept the same data model: the same state
// set, same alphabet, same transition relation, same initial state, and same
// accepting set. State names must match exactly - this is a structural
// comparison, not a language-equivalence check (see transform.go's
// Equivalent for that).
func (a *Automaton) Equal(o *Automaton) bool {
	if o == nil {
		return false
	}
	if a.initial != o.initial {
		return false
	}
	if !a.alpha.Equal(o.alpha) {
		return false
	}
	if len(a.states) != len(o.states) {
		return false
	}
	for name, st := range a.states {
		ost, ok := o.states[name]
		if !ok || ost.accepting != st.accepting {
			return false
		}
		if len(st.transitions) != len(ost.transitions) {
			return false
		}
		for sym, targets := range st.transitions {
			otherTargets, ok := ost.transitions[sym]
			if !ok || !targets.Equal(otherTargets) {
				return false
			}
		}
	}
	return true
}

// TransitionTable returns the raw (state, symbol) -> sorted target list view
// of the automaton, for read-only inspection by a collaborator (the CLI's
// "show" command, or a future GUI's grid widget).
func (a *Automaton) TransitionTable() map[string]map[string][]string {
	table := make(map[string]map[string][]string, len(a.states))
	for name, st := range a.states {
		row := make(map[string][]string, len(st.transitions))
		for sym, targets := range st.transitions {
			elems := targets.Elements()
			sort.Strings(elems)
			row[sym] = elems
		}
		table[name] = row
	}
	return table
}

// String renders the automaton in a single-line debug form:
//
//	<START: "q0", STATES: (q0 [=(a)=> q1, q1], *q1 [=(a)=> q1])>
//
// States are listed in sorted order; accepting states are prefixed with
// '*'. Each state lists its outgoing transitions in sorted symbol order,
// with multi-target transitions comma-joined.
func (a *Automaton) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<START: %q, STATES: (", a.initial))

	states := a.States()
	for i, name := range states {
		st := a.states[name]
		if st.accepting {
			sb.WriteRune('*')
		}
		sb.WriteString(fmt.Sprintf("%q", name))

		syms := util.OrderedKeys(st.transitions)
		if len(syms) > 0 {
			sb.WriteString(" [")
			for j, sym := range syms {
				targets := st.transitions[sym].Elements()
				sort.Strings(targets)
				sb.WriteString(fmt.Sprintf("=(%s)=> %s", sym, strings.Join(targets, ", ")))
				if j+1 < len(syms) {
					sb.WriteString(", ")
				}
			}
			sb.WriteRune(']')
		}

		if i+1 < len(states) {
			sb.WriteString(", ")
		}
	}
	sb.WriteString(")>")

	return sb.String()
}

// Package grammar implements right-linear (regular) grammars and their
// conversion to and from finite automata. A right-linear grammar's
// productions are restricted to the shape N -> aM, N -> a, or N -> & - a
// single terminal optionally followed by a single non-terminal, or the
// empty string - which is exactly expressive enough to generate a regular
// language and to be built mechanically from (or into) an Automaton.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/simone/internal/automaton"
	"github.com/dekarrin/simone/internal/simerr"
	"github.com/dekarrin/simone/internal/util"
)

// Epsilon is the distinguished production body meaning "derives the empty
// string". It is rendered as "&" in textual form, matching the notation the
// automaton-to-grammar conversion already uses internally.
const Epsilon = "&"

// Production is the right-hand side of one right-linear rule: a single
// terminal symbol, and optionally the single non-terminal that follows it.
// A bare Epsilon production has both fields empty.
type Production struct {
	Terminal    string
	NonTerminal string
}

// IsEpsilon reports whether p is the empty production.
func (p Production) IsEpsilon() bool {
	return p.Terminal == "" && p.NonTerminal == ""
}

// String renders the production as it appears in grammar textual form: "a",
// "aB", or "&".
func (p Production) String() string {
	if p.IsEpsilon() {
		return Epsilon
	}
	return p.Terminal + p.NonTerminal
}

// Grammar is a right-linear grammar: a set of non-terminals, each with one
// or more productions, and a distinguished initial non-terminal.
//
// The zero value is not usable; construct one with New.
type Grammar struct {
	initial     string
	productions map[string]map[Production]bool
	order       []string
}

// New creates an empty Grammar.
func New() *Grammar {
	return &Grammar{
		productions: map[string]map[Production]bool{},
	}
}

// InitialSymbol returns the grammar's start non-terminal.
func (g *Grammar) InitialSymbol() string {
	return g.initial
}

// SetInitialSymbol sets the grammar's start non-terminal. It need not
// already have productions.
func (g *Grammar) SetInitialSymbol(symbol string) {
	g.initial = symbol
	g.touch(symbol)
}

// AddProduction adds the rule nonTerminal -> p. No-op if already present. If
// this is the first production ever added to the grammar, nonTerminal also
// becomes the initial symbol.
func (g *Grammar) AddProduction(nonTerminal string, p Production) {
	g.touch(nonTerminal)
	if g.initial == "" {
		g.initial = nonTerminal
	}
	g.productions[nonTerminal][p] = true
}

func (g *Grammar) touch(nonTerminal string) {
	if _, ok := g.productions[nonTerminal]; !ok {
		g.productions[nonTerminal] = map[Production]bool{}
		g.order = append(g.order, nonTerminal)
	}
}

// NonTerminals returns the grammar's non-terminals in the order they were
// first produced (the order String renders them in), not alphabetical
// order.
func (g *Grammar) NonTerminals() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Productions returns the sorted productions of nonTerminal.
func (g *Grammar) Productions(nonTerminal string) []Production {
	bodies := g.productions[nonTerminal]
	out := make([]Production, 0, len(bodies))
	for p := range bodies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// String renders the grammar in its textual form, one line per
// non-terminal in first-produced order:
//
//	S -> aA | bB | a | b
//	A -> aA | a
func (g *Grammar) String() string {
	var sb strings.Builder
	for i, nt := range g.order {
		sb.WriteString(nt)
		sb.WriteString(" -> ")

		prods := g.Productions(nt)
		bodies := make([]string, len(prods))
		for j, p := range prods {
			bodies[j] = p.String()
		}
		sb.WriteString(strings.Join(bodies, " | "))

		if i+1 < len(g.order) {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// Parse reads a Grammar from its textual form: one "N -> body | body | ..."
// line per non-terminal, each body either "&", a single terminal, or a
// terminal immediately followed by a single non-terminal. The first
// non-terminal to appear becomes the initial symbol. Blank lines are
// ignored. Returns simerr.ErrInvalidGrammar if a line does not match this
// shape.
func Parse(text string) (*Grammar, error) {
	g := New()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		nt, body, ok := strings.Cut(line, "->")
		if !ok {
			return nil, simerr.Wrapf(simerr.ErrInvalidGrammar, "missing '->': %q", line)
		}
		nt = strings.TrimSpace(nt)
		if nt == "" {
			return nil, simerr.Wrapf(simerr.ErrInvalidGrammar, "missing non-terminal: %q", line)
		}

		if g.initial == "" {
			g.initial = nt
		}
		g.touch(nt)

		for _, alt := range strings.Split(body, "|") {
			alt = strings.TrimSpace(alt)
			p, err := parseProductionBody(alt)
			if err != nil {
				return nil, simerr.Wrapf(err, "line %q", line)
			}
			g.AddProduction(nt, p)
		}
	}

	if len(g.order) == 0 {
		return nil, simerr.Wrapf(simerr.ErrInvalidGrammar, "empty grammar")
	}

	return g, nil
}

func parseProductionBody(body string) (Production, error) {
	if body == Epsilon {
		return Production{}, nil
	}
	if body == "" {
		return Production{}, simerr.Wrapf(simerr.ErrInvalidGrammar, "empty production body")
	}

	runes := []rune(body)
	if len(runes) == 1 {
		return Production{Terminal: string(runes[0])}, nil
	}
	if len(runes) == 2 {
		return Production{Terminal: string(runes[0]), NonTerminal: string(runes[1])}, nil
	}

	return Production{}, simerr.Wrapf(simerr.ErrInvalidGrammar,
		"production body %q is not a single terminal optionally followed by a single non-terminal", body)
}

// FromAutomaton builds the right-linear grammar that generates exactly the
// language a accepts: for every transition delta(A, x) containing B, the
// rule A -> xB is added, and if B is accepting, A -> x is added too. If a's
// initial state is itself accepting, a fresh start symbol S' is introduced
// with S's productions plus epsilon, so the grammar alone still remembers
// that the empty string is accepted. Grounded on the automaton-to-grammar
// direction of the reference implementation.
func FromAutomaton(a *automaton.Automaton) *Grammar {
	g := New()
	initial := a.Initial()

	for _, state := range a.States() {
		for _, sym := range a.Alphabet() {
			targets, _ := a.Next(state, sym)
			for _, target := range targets {
				g.AddProduction(state, Production{Terminal: sym, NonTerminal: target})
				if a.IsAccepting(target) {
					g.AddProduction(state, Production{Terminal: sym})
				}
			}
		}
	}
	g.touch(initial)
	g.initial = initial

	if a.IsAccepting(initial) {
		newInitial := initial + "'"
		for p := range g.productions[initial] {
			g.AddProduction(newInitial, p)
		}
		g.AddProduction(newInitial, Production{})
		g.initial = newInitial
	}

	return g
}

// ToAutomaton builds the automaton that accepts exactly the language g
// generates. Every non-terminal becomes a state; a single synthetic
// accepting sink state "X" absorbs every terminal-only production. Grounded
// on the reference implementation's grammar-to-NFA construction.
func (g *Grammar) ToAutomaton() (*automaton.Automaton, error) {
	if g.initial == "" {
		return nil, simerr.Wrapf(simerr.ErrInvalidGrammar, "grammar has no initial symbol")
	}

	sink := "X"
	for g.productions[sink] != nil {
		sink += "'"
	}

	a := automaton.New()
	for _, nt := range g.order {
		accepting := nt == g.initial && g.productions[g.initial][Production{}]
		if err := a.AddState(nt, accepting); err != nil {
			return nil, err
		}
	}
	if err := a.AddState(sink, true); err != nil {
		return nil, err
	}
	if err := a.SetInitial(g.initial); err != nil {
		return nil, err
	}

	for _, nt := range g.order {
		for p := range g.productions[nt] {
			if p.IsEpsilon() {
				continue
			}

			target := sink
			if p.NonTerminal != "" {
				target = p.NonTerminal
			}
			if err := a.AddTransition(nt, p.Terminal, target); err != nil {
				return nil, simerr.Wrapf(err, fmt.Sprintf("%s -> %s", nt, p))
			}
		}
	}

	return a, nil
}

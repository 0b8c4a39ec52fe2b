package regex

import (
	"strings"

	"github.com/dekarrin/simone/internal/simerr"
)

// Grammar (each <base> consumes one literal character unless parenthesized):
//
//	<regex>  ::= <term> '|' <regex> | <term>
//	<term>   ::= { <factor> }
//	<factor> ::= <base> { '*' | '?' }
//	<base>   ::= <char> | '(' <regex> ')'
//
// '.' is reserved internally as the concatenation operator's node symbol and
// is stripped from the input before parsing - it is never a literal
// character in this dialect.
type parser struct {
	input string
	pos   int
	nodes int
}

// Parse builds the syntax tree for regex. It does not thread the tree; call
// Thread on the result (or use Compile, which does both) before walking it.
func Parse(regex string) (*Node, error) {
	p := &parser{input: strings.ReplaceAll(regex, ".", "")}

	root, err := p.parseRegexSafe()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, simerr.Wrapf(simerr.ErrInvalidRegex, "unexpected trailing input at position %d", p.pos)
	}
	return root, nil
}

// parseRegexSafe recovers from the out-of-range panics that an incomplete
// expression (e.g. a trailing '|' or an unclosed paren) triggers in the
// recursive-descent helpers, converting them into simerr.ErrInvalidRegex -
// mirroring the reference parser's IndexError-to-RuntimeError translation.
func (p *parser) parseRegexSafe() (root *Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = simerr.Wrapf(simerr.ErrInvalidRegex, "%v", r)
		}
	}()
	return p.regex(), nil
}

func (p *parser) peek() byte {
	return p.input[p.pos]
}

func (p *parser) eat(c byte) {
	if p.peek() != c {
		panic("invalid regex: expected '" + string(c) + "'")
	}
	p.pos++
}

func (p *parser) follow() byte {
	c := p.peek()
	p.eat(c)
	return c
}

func (p *parser) more() bool {
	return p.pos < len(p.input)
}

func (p *parser) regex() *Node {
	term := p.term()
	if p.more() && p.peek() == '|' {
		p.eat('|')
		rhs := p.regex()
		if term == nil || rhs == nil {
			panic("invalid regex: empty alternative")
		}
		p.nodes++
		return &Node{Symbol: "|", Left: term, Right: rhs, Label: p.nodes}
	}
	return term
}

func (p *parser) term() *Node {
	var factor *Node
	for p.more() && p.peek() != ')' && p.peek() != '|' {
		next := p.factor()
		p.nodes++
		factor = concatNode(factor, next, p.nodes)
	}
	return factor
}

// concatNode builds a '.' (concatenation) node joining left and right. If
// left is nil - the first factor in a term - there is nothing to
// concatenate yet, so the node instead stands in for right itself: it takes
// right's symbol and children, keeping only its own new label. This matches
// the reference parser, where the very first factor of a term is wrapped in
// a nominal '.' node that collapses into its right child rather than
// introducing a dangling left-less concatenation.
func concatNode(left, right *Node, label int) *Node {
	if left == nil {
		return &Node{Symbol: right.Symbol, Left: right.Left, Right: right.Right, Label: label}
	}
	return &Node{Symbol: ".", Left: left, Right: right, Label: label}
}

func (p *parser) factor() *Node {
	base := p.base()
	for p.more() && (p.peek() == '*' || p.peek() == '?') {
		op := p.peek()
		p.eat(op)
		p.nodes++
		base = &Node{Symbol: string(op), Left: base, Label: p.nodes}
	}
	return base
}

func (p *parser) base() *Node {
	if p.peek() == '(' {
		p.eat('(')
		r := p.regex()
		p.eat(')')
		return r
	}
	if !isTerminalChar(p.peek()) {
		panic("invalid regex: unexpected character '" + string(p.peek()) + "'")
	}
	p.nodes++
	return newLeaf(string(p.follow()), p.nodes)
}

// isTerminalChar reports whether c is a character the dialect allows as a
// literal terminal leaf: [A-Za-z0-9] or the epsilon symbol '&'. Anything
// else - notably a bare '*' or '?' with no preceding base - is not a valid
// leaf and must be rejected rather than matched literally.
func isTerminalChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '&':
		return true
	default:
		return false
	}
}

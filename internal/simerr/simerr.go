// Package simerr holds the error kinds shared across simone's automaton,
// grammar, and regex packages. Notably, it contains the Error type, which can
// be created with one or more 'cause' errors. Calling errors.Is() on this
// Error type with an argument consisting of any of the errors it has as a
// cause will return true.
package simerr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownState is returned when a mutator is asked to reference a
	// state that is not in the automaton.
	ErrUnknownState = errors.New("state does not exist in the automaton")

	// ErrNonDeterministic is returned when a determinism-requiring operation
	// is invoked on an automaton with a multi-target transition.
	ErrNonDeterministic = errors.New("automaton is not deterministic")

	// ErrInvalidRegex is returned when regex parsing fails.
	ErrInvalidRegex = errors.New("invalid regular expression")

	// ErrInvalidGrammar is returned when grammar text does not match the
	// right-linear shape.
	ErrInvalidGrammar = errors.New("invalid regular grammar")

	// ErrTooManyStates is returned when alphabetic relabeling is requested
	// on an automaton with more than 26 states.
	ErrTooManyStates = errors.New("too many states to relabel alphabetically")
)

// Error is a typed error returned by functions in simone's core packages. It
// contains a message explaining what happened as well as one or more error
// values it considers to be its causes. Error is compatible with the use of
// errors.Is - calling errors.Is on some Error value err along with any value
// of error it holds as one of its causes will return true. This allows for
// easy examination and failure condition checking without needing to resort
// to manual typecasting.
//
// If Error has at least one cause defined, the result of calling Error.Error()
// will be its primary message with the result of calling Error() on its
// first cause appended to it.
//
// Error should not be used directly; call New to create one.
type Error struct {
	msg   string
	cause []error
}

// New creates a new Error with the given message and causes. If msg is empty
// and at least one cause is given, Error() will delegate to the first cause.
func New(msg string, cause ...error) Error {
	return Error{msg: msg, cause: cause}
}

// Wrapf creates a new Error whose message is formatted from format and args,
// with cause as one of its causes.
func Wrapf(cause error, format string, args ...interface{}) Error {
	return Error{msg: fmt.Sprintf(format, args...), cause: []error{cause}}
}

func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}

	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}

	return e.msg
}

// Unwrap gives the causes of Error, for interaction with the errors API. The
// return value will be nil if no causes were defined for it.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether Error either is itself the given target error, or one of
// its causes is.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg {
			return len(e.cause) == len(errTarget.cause)
		}
		return false
	}

	for _, c := range e.cause {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

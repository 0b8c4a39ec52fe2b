package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/simone/internal/automaton"
	"github.com/dekarrin/simone/internal/config"
	"github.com/dekarrin/simone/internal/grammar"
	"github.com/dekarrin/simone/internal/input"
	"github.com/dekarrin/simone/internal/regex"
	"github.com/spf13/pflag"
)

// session holds the one automaton a CLI invocation or REPL works against,
// plus the defaults that shape how bare subcommand arguments are resolved.
type session struct {
	cfg     config.Defaults
	current *automaton.Automaton
}

func newSession(cfg config.Defaults) *session {
	return &session{cfg: cfg}
}

var errNoCurrentAutomaton = errors.New("no automaton is loaded; use \"load\", \"regex\", or \"grammar\" first")

// dispatch runs one subcommand line, identical whether it arrived as
// trailing os.Args or as a REPL input line.
func (s *session) dispatch(args []string) error {
	if len(args) == 0 {
		return nil
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "load":
		return s.cmdLoad(rest)
	case "save":
		return s.cmdSave(rest)
	case "accept":
		return s.cmdAccept(rest)
	case "determinize":
		return s.requireCurrent(func() { s.current = s.current.Determinize() })
	case "minimize":
		return s.cmdMinimize()
	case "complement":
		return s.requireCurrent(func() { s.current = s.current.Complement() })
	case "union":
		return s.cmdCombine(rest, (*automaton.Automaton).Union)
	case "intersect":
		return s.cmdCombine(rest, (*automaton.Automaton).Intersection)
	case "relabel":
		return s.cmdRelabel(rest)
	case "regex":
		return s.cmdRegex(rest)
	case "grammar":
		return s.cmdGrammar(rest)
	case "show":
		return s.cmdShow()
	case "help":
		pflag.Usage()
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unrecognized subcommand %q", cmd)
	}
}

var errQuit = errors.New("quit")

func (s *session) requireCurrent(apply func()) error {
	if s.current == nil {
		return errNoCurrentAutomaton
	}
	apply()
	return nil
}

func (s *session) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load FILE")
	}
	a, err := automaton.Load(s.resolvePath(args[0]))
	if err != nil {
		return err
	}
	s.current = a
	return nil
}

func (s *session) cmdSave(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save FILE")
	}
	if s.current == nil {
		return errNoCurrentAutomaton
	}
	return s.current.Save(s.resolvePath(args[0]))
}

func (s *session) cmdAccept(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: accept STRING")
	}
	if s.current == nil {
		return errNoCurrentAutomaton
	}
	ok, err := s.current.Accept(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", ok)
	return nil
}

func (s *session) cmdCombine(args []string, op func(a, b *automaton.Automaton) *automaton.Automaton) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: union|intersect FILE")
	}
	if s.current == nil {
		return errNoCurrentAutomaton
	}
	other, err := automaton.Load(s.resolvePath(args[0]))
	if err != nil {
		return err
	}
	s.current = op(s.current, other)
	return nil
}

func (s *session) cmdMinimize() error {
	if s.current == nil {
		return errNoCurrentAutomaton
	}
	minimized, err := s.current.Minimize()
	if err != nil {
		return err
	}
	s.current = minimized
	return nil
}

func (s *session) cmdRelabel(args []string) error {
	if s.current == nil {
		return errNoCurrentAutomaton
	}
	scheme := s.cfg.Relabel
	if len(args) == 1 {
		scheme = args[0]
	} else if len(args) > 1 {
		return fmt.Errorf("usage: relabel [numeric|alphabetic]")
	}

	switch scheme {
	case config.RelabelNumeric:
		s.current = s.current.RelabelNumeric()
	case config.RelabelAlphabetic:
		relabeled, err := s.current.RelabelAlphabetic()
		if err != nil {
			return err
		}
		s.current = relabeled
	default:
		return fmt.Errorf("unknown relabel scheme %q", scheme)
	}
	return nil
}

func (s *session) cmdRegex(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: regex PATTERN")
	}
	a, err := regex.Compile(args[0])
	if err != nil {
		return err
	}
	s.current = a
	return nil
}

func (s *session) cmdGrammar(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: grammar FILE")
	}
	data, err := os.ReadFile(s.resolvePath(args[0]))
	if err != nil {
		return err
	}
	g, err := grammar.Parse(string(data))
	if err != nil {
		return err
	}
	a, err := g.ToAutomaton()
	if err != nil {
		return err
	}
	s.current = a
	return nil
}

func (s *session) cmdShow() error {
	if s.current == nil {
		return errNoCurrentAutomaton
	}
	fmt.Println(s.current.String())
	return nil
}

func (s *session) resolvePath(name string) string {
	if name == "" || name[0] == '/' || s.cfg.SaveDir == "" || s.cfg.SaveDir == "." {
		return name
	}
	return s.cfg.SaveDir + string(os.PathSeparator) + name
}

// runREPL drives an interactive session, reading lines until quit or EOF.
func (s *session) runREPL(forceDirect bool) error {
	var reader input.LineReader
	var err error

	if forceDirect || !isInteractiveTTY() {
		reader = input.NewDirectReader(os.Stdin)
	} else {
		reader, err = input.NewInteractiveReader()
		if err != nil {
			return err
		}
	}
	defer reader.Close()

	if icr, ok := reader.(*input.InteractiveLineReader); ok && s.cfg.Prompt != "" {
		icr.SetPrompt(s.cfg.Prompt)
	}

	for {
		line, readErr := reader.ReadLine()
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}

		args := splitLine(line)
		if dispatchErr := s.dispatch(args); dispatchErr != nil {
			if dispatchErr == errQuit {
				return nil
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", dispatchErr.Error())
		}
	}
}

func isInteractiveTTY() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

/*
Simone is an interactive and scriptable tool for building, transforming, and
inspecting finite automata, right-linear grammars, and regexes.

It can be run as a one-shot command, executing a single subcommand and
exiting, or as an interactive REPL that keeps an automaton loaded across
commands.

Usage:

	simone [flags] [subcommand [args...]]

The flags are:

	-v, --version
		Give the current version of simone and then exit.

	-f, --file FILE
		Load the given automaton JSON file as the starting automaton for this
		invocation.

	-c, --config FILE
		Use the provided TOML file for CLI defaults. Defaults to "simone.toml"
		in the current working directory.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading REPL input even if launched in a
		tty with stdin and stdout.

Recognized subcommands, usable both as one-shot arguments and as REPL input
lines:

	load FILE              load an automaton from a JSON file
	save FILE               save the current automaton to a JSON file
	accept STRING           report whether STRING is accepted
	determinize             replace the current automaton with its DFA form
	minimize                replace the current automaton with its minimal DFA
	union FILE               union the current automaton with the one in FILE
	intersect FILE           intersect the current automaton with the one in FILE
	complement               replace the current automaton with its complement
	relabel [numeric|alphabetic]  relabel states, using the config default if omitted
	regex PATTERN           compile PATTERN and make it the current automaton
	grammar FILE            parse a right-linear grammar file into an automaton
	show                     print the current automaton
	help                     print this message
	quit                     exit the REPL

To exit the REPL, type "quit" or send EOF.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/simone/internal/config"
	"github.com/dekarrin/simone/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCommandError indicates an unsuccessful program execution due to a
	// problem running a subcommand.
	ExitCommandError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the session.
	ExitInitError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	startFile   *string = pflag.StringP("file", "f", "", "Load the given automaton JSON file at start")
	configFile  *string = pflag.StringP("config", "c", "simone.toml", "The TOML file holding CLI defaults")
	forceDirect *bool   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, cfgErr := config.Load(*configFile)
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", cfgErr.Error())
		returnCode = ExitInitError
		return
	}

	sess := newSession(cfg)

	if *startFile != "" {
		if err := sess.dispatch([]string{"load", *startFile}); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}

	args := pflag.Args()
	if len(args) > 0 {
		if err := sess.dispatch(args); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitCommandError
		}
		return
	}

	if err := sess.runREPL(*forceDirect); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitCommandError
	}
}

// splitLine tokenizes a REPL line the same way shell-style arguments are
// split: on whitespace, with no quoting support. Subcommand arguments that
// need embedded spaces (grammar text, multi-word regexes) should come from a
// file instead.
func splitLine(line string) []string {
	return strings.Fields(line)
}

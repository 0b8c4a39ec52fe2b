// Package config loads the TOML-based default configuration for the simone
// CLI: the save directory, default relabel scheme, and REPL prompt string.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// RelabelNumeric and RelabelAlphabetic name the two schemes
// automaton.RelabelNumeric/RelabelAlphabetic implement; Default.Relabel must
// be one of these.
const (
	RelabelNumeric    = "numeric"
	RelabelAlphabetic = "alphabetic"
)

// Defaults holds the CLI's configurable defaults, loaded from a TOML file.
// The zero value is a usable set of defaults matching what a fresh install
// would have with no config file present.
type Defaults struct {
	// SaveDir is the directory relative to which bare filenames passed to
	// "load"/"save" are resolved.
	SaveDir string `toml:"save_dir"`

	// Relabel is the scheme used by the "relabel" subcommand when none is
	// given explicitly on the command line: either RelabelNumeric or
	// RelabelAlphabetic.
	Relabel string `toml:"relabel"`

	// Prompt is the string shown at the start of each REPL line.
	Prompt string `toml:"prompt"`
}

// DefaultConfig is what an un-configured session behaves as, matching a
// freshly-generated config file's values.
var DefaultConfig = Defaults{
	SaveDir: ".",
	Relabel: RelabelNumeric,
	Prompt:  "simone> ",
}

// Load reads and parses the TOML config file at path. A missing file is not
// an error; DefaultConfig is returned unchanged in that case, matching the
// CLI's "works with zero setup" behavior.
func Load(path string) (Defaults, error) {
	cfg := DefaultConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig, err
	}

	if cfg.Relabel != RelabelNumeric && cfg.Relabel != RelabelAlphabetic {
		cfg.Relabel = RelabelNumeric
	}

	return cfg, nil
}

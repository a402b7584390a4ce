// Package config turns CLI flags into a validated run configuration, in
// the style of the teacher's meta/config.go: doc-commented fields, a
// DefaultConfig constructor, and a single Validate pass that runs before
// any file is opened.
package config

import (
	"github.com/coregx/acscan/acerr"
)

// Config is everything cmd/acscan needs to run one scan (spec §6).
type Config struct {
	// AutomatonPath is the compiled automaton file to load (positional arg 1).
	AutomatonPath string

	// CapturePath is the packet capture file to scan (positional arg 2).
	CapturePath string

	// DictPath, if non-empty, is a dictionary file to load and wire into
	// every scanner. Requires the loaded automaton to be entirely
	// LookupTable-encoded (§9 Open Questions: "--dict requires a table
	// machine").
	DictPath string

	// DictWidth is the chunk width the dictionary file was built with. It
	// is only meaningful alongside DictPath and must match what the
	// dictionary file itself reports; kept here so validation can catch an
	// obviously-wrong flag value before the file is even opened.
	DictWidth int

	// Threads is the number of scanner workers, and so the number of
	// per-worker queues package pipeline.Reader round-robins across.
	Threads int

	// Verbose switches MatchVerbose-style per-pattern reporting on, the way
	// the C source's -v flag did.
	Verbose bool

	// Timing prints the elapsed-time and throughput summary line
	// (DumpReader.c's gettimeofday-based report).
	Timing bool
}

// DefaultConfig returns the zero-dictionary, single-threaded, quiet
// configuration a bare `acscan <automaton> <capture>` invocation should
// produce once cobra has filled in the positional arguments.
func DefaultConfig() Config {
	return Config{
		Threads:   1,
		DictWidth: 0,
	}
}

// Validate checks flag compatibility before any file is touched (spec §6:
// exit code 1 is reserved for exactly this class of problem). The check that
// --dict is used only with an entirely LookupTable-encoded automaton needs
// the loaded machine and is done by ValidateAgainstMachine.
func (c Config) Validate() error {
	if c.AutomatonPath == "" {
		return &acerr.ConfigError{Message: "an automaton file is required"}
	}
	if c.CapturePath == "" {
		return &acerr.ConfigError{Message: "a capture file is required"}
	}
	if c.Threads < 1 {
		return &acerr.ConfigError{Flag: "threads", Message: "must be at least 1"}
	}
	if c.DictPath != "" && c.DictWidth < 1 {
		return &acerr.ConfigError{Flag: "dict-width", Message: "must be at least 1 when --dict is set"}
	}
	if c.DictPath == "" && c.DictWidth != 0 {
		return &acerr.ConfigError{Flag: "dict-width", Message: "has no effect without --dict"}
	}
	return nil
}

// ValidateAgainstMachine is the second half of the --dict compatibility
// check, run once the automaton file has actually been loaded (spec §9:
// "the compiler maintainers' resolution ... keeps it a hard restriction").
func (c Config) ValidateAgainstMachine(allTableEncoded bool) error {
	if c.DictPath != "" && !allTableEncoded {
		return &acerr.ConfigError{
			Flag:    "dict",
			Message: "requires an automaton built entirely from lookup-table states",
			Err:     acerr.ErrDictRequiresTableMachine,
		}
	}
	return nil
}

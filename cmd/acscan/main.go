// Command acscan scans a packet capture file against a compiled
// Aho-Corasick automaton, optionally skipping previously-seen chunks via a
// content-addressed dictionary (spec §6).
package main

import (
	"os"

	"github.com/coregx/acscan/acerr"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(acerr.ExitCode(err))
	}
}

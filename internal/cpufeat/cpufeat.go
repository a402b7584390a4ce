// Package cpufeat reports which hardware acceleration the current CPU
// offers for the popcount-heavy rank computation in package automaton.
//
// It mirrors the feature-detection idiom the teacher package used to gate
// its SIMD prefilters (golang.org/x/sys/cpu queried once at init), but here
// the result is diagnostic only: internal/bitset always calls
// math/bits.OnesCount16, and the Go compiler itself substitutes a native
// POPCNT/CNT instruction on amd64/arm64 when the running CPU supports one.
// Nothing in this package changes which code path bitset takes; it only lets
// callers (notably the --timing CLI summary) report whether the popcount
// rank computation in this run is hardware-accelerated or running the
// portable fallback.
package cpufeat

import "golang.org/x/sys/cpu"

// HasHardwarePopcount reports whether the running CPU exposes a population
// count instruction usable by math/bits.OnesCount16 (POPCNT on amd64, part of
// the base ARMv8 ISA on arm64). On every other architecture this is false
// and OnesCount16 runs its portable fallback.
func HasHardwarePopcount() bool {
	return hasHardwarePopcount
}

var hasHardwarePopcount = detectHardwarePopcount()

func detectHardwarePopcount() bool {
	if cpu.X86.HasPOPCNT {
		return true
	}
	if cpu.ARM64.HasASIMD {
		return true
	}
	return false
}

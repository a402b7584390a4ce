package main

import "testing"

func TestNewRootCommandRegistersExpectedFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"dict", "dict-width", "threads", "verbose", "timing"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not registered", name)
		}
	}
}

func TestNewRootCommandRequiresTwoPositionalArgs(t *testing.T) {
	cmd := newRootCommand()
	if err := cmd.Args(cmd, []string{"only-one"}); err == nil {
		t.Fatal("expected Args to reject a single positional argument")
	}
	if err := cmd.Args(cmd, []string{"automaton.bin", "capture.bin"}); err != nil {
		t.Fatalf("Args() error = %v, want nil for exactly two arguments", err)
	}
}

func TestMegabitsPerSecondZeroElapsedIsZero(t *testing.T) {
	if got := megabitsPerSecond(1000, 0); got != 0 {
		t.Errorf("megabitsPerSecond with zero elapsed = %v, want 0", got)
	}
}

package config

import (
	"errors"
	"testing"

	"github.com/coregx/acscan/acerr"
)

func TestDefaultConfigIsSingleThreadedNoDict(t *testing.T) {
	c := DefaultConfig()
	if c.Threads != 1 {
		t.Errorf("Threads = %d, want 1", c.Threads)
	}
	if c.DictPath != "" {
		t.Errorf("DictPath = %q, want empty", c.DictPath)
	}
}

func TestValidateRequiresAutomatonAndCapturePaths(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err == nil {
		t.Fatal("expected Validate to reject a config with no automaton/capture paths")
	}
	c.AutomatonPath = "m.bin"
	if err := c.Validate(); err == nil {
		t.Fatal("expected Validate to still reject a config with no capture path")
	}
	c.CapturePath = "cap.bin"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidateRejectsZeroThreads(t *testing.T) {
	c := DefaultConfig()
	c.AutomatonPath, c.CapturePath = "m.bin", "cap.bin"
	c.Threads = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected Validate to reject Threads == 0")
	}
}

func TestValidateRequiresDictWidthWithDict(t *testing.T) {
	c := DefaultConfig()
	c.AutomatonPath, c.CapturePath = "m.bin", "cap.bin"
	c.DictPath = "dict.bin"
	if err := c.Validate(); err == nil {
		t.Fatal("expected Validate to reject --dict without --dict-width")
	}
	c.DictWidth = 8
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidateRejectsDictWidthWithoutDict(t *testing.T) {
	c := DefaultConfig()
	c.AutomatonPath, c.CapturePath = "m.bin", "cap.bin"
	c.DictWidth = 8
	if err := c.Validate(); err == nil {
		t.Fatal("expected Validate to reject --dict-width without --dict")
	}
}

func TestValidateAgainstMachineRejectsNonTableMachineWithDict(t *testing.T) {
	c := DefaultConfig()
	c.DictPath = "dict.bin"
	err := c.ValidateAgainstMachine(false)
	if !errors.Is(err, acerr.ErrDictRequiresTableMachine) {
		t.Fatalf("ValidateAgainstMachine(false) error = %v, want ErrDictRequiresTableMachine", err)
	}
}

func TestValidateAgainstMachineAcceptsTableMachineWithDict(t *testing.T) {
	c := DefaultConfig()
	c.DictPath = "dict.bin"
	if err := c.ValidateAgainstMachine(true); err != nil {
		t.Fatalf("ValidateAgainstMachine(true) error = %v, want nil", err)
	}
}

func TestValidateAgainstMachineIgnoredWithoutDict(t *testing.T) {
	c := DefaultConfig()
	if err := c.ValidateAgainstMachine(false); err != nil {
		t.Fatalf("ValidateAgainstMachine without --dict error = %v, want nil", err)
	}
}

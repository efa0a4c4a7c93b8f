package telemetry

import "testing"

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup("not-a-level"); err == nil {
		t.Fatal("Setup: expected error for unknown level name")
	}
}

func TestSetupAcceptsKnownLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if err := Setup(lvl); err != nil {
			t.Fatalf("Setup(%q): %v", lvl, err)
		}
	}
}

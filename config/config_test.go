package config

import (
	"flag"
	"testing"

	"github.com/quay/rpmdb/backend"
)

func TestRegisterFlagsOverridesDefaults(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse([]string{"-backend", "sqlite", "-no-fsync", "-db-perms", "384"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Backend != "sqlite" {
		t.Fatalf("Backend = %q, want sqlite", c.Backend)
	}
	if !c.NoFsync {
		t.Fatal("NoFsync = false, want true")
	}
	if c.DBPerms != 0o600 {
		t.Fatalf("DBPerms = %o, want 600", c.DBPerms)
	}
	if c.MmapSize != Default().MmapSize {
		t.Fatalf("MmapSize = %d, want default unchanged", c.MmapSize)
	}
}

func TestRegisterFlagsParsesMinWrites(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse([]string{"-min-writes"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.MinWrites {
		t.Fatal("MinWrites = false, want true")
	}
}

func TestVariantRejectsUnknownBackend(t *testing.T) {
	c := Config{Backend: "made-up"}
	if _, err := c.Variant(); err == nil {
		t.Fatal("Variant: expected error for unknown backend")
	}
}

func TestVariantMapsEveryRecognizedName(t *testing.T) {
	cases := map[string]backend.Variant{
		"legacy_ro": backend.Legacy,
		"bdb":       backend.Bdb,
		"lmdb":      backend.Lmdb,
		"sqlite":    backend.Sqlite,
		"file":      backend.File,
		"dummy":     backend.Dummy,
	}
	for name, want := range cases {
		c := Config{Backend: name}
		got, err := c.Variant()
		if err != nil {
			t.Fatalf("Variant(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("Variant(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestOptionsAppliesDirModeAndTuning(t *testing.T) {
	c := Config{DBPerms: 0o640, MmapSize: 1 << 20, CacheSize: 2 << 20, NoFsync: true}
	opt := c.Options("/tmp/db", backend.ReadWrite)
	if opt.Dir != "/tmp/db" || opt.Mode != backend.ReadWrite {
		t.Fatalf("Options dir/mode mismatch: %+v", opt)
	}
	if opt.MmapSize != 1<<20 || opt.CacheSize != 2<<20 || !opt.NoFsync {
		t.Fatalf("Options tuning mismatch: %+v", opt)
	}
}

func TestOptionsCarriesMinWrites(t *testing.T) {
	c := Config{MinWrites: true}
	opt := c.Options("/tmp/db", backend.ReadOnly)
	if !opt.MinWrites {
		t.Fatal("Options: MinWrites not carried through")
	}
}

// Package config parses the recognized package-database options
// (backend selection and its tuning knobs) from a flag set, and turns
// them into the arguments [backend.Open] and [pkgdb.Open] expect.
package config

import (
	"flag"
	"fmt"
	"io/fs"

	"github.com/quay/rpmdb/backend"
)

// Config is the resolved value of every recognized option.
type Config struct {
	Backend   string
	MmapSize  int64
	CacheSize int64
	NoFsync   bool
	DBPerms   uint
	MinWrites bool
}

// Default returns the built-in configuration: the legacy_ro backend, a
// 16 MiB mmap hint, an 8 MiB cache hint, and 0644 database permissions.
func Default() Config {
	return Config{
		Backend:   "legacy_ro",
		MmapSize:  16 << 20,
		CacheSize: 8 << 20,
		DBPerms:   0o644,
	}
}

// RegisterFlags binds fs's flags to c's fields, seeded with whatever c
// already holds (normally [Default]'s values).
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Backend, "backend", c.Backend, "storage backend: legacy_ro, bdb, lmdb, sqlite, file, dummy")
	fs.Int64Var(&c.MmapSize, "mmap-size", c.MmapSize, "backend mmap size hint, in bytes")
	fs.Int64Var(&c.CacheSize, "cache-size", c.CacheSize, "backend cache size hint, in bytes")
	fs.BoolVar(&c.NoFsync, "no-fsync", c.NoFsync, "best-effort disable fsync/fdatasync in the backend")
	fs.UintVar(&c.DBPerms, "db-perms", c.DBPerms, "unix file mode for created database files")
	fs.BoolVar(&c.MinWrites, "min-writes", c.MinWrites, "skip optional secondary index writes")
}

// Variant resolves the configured backend name to a [backend.Variant].
func (c *Config) Variant() (backend.Variant, error) {
	switch c.Backend {
	case "legacy_ro", "legacy":
		return backend.Legacy, nil
	case "bdb":
		return backend.Bdb, nil
	case "lmdb":
		return backend.Lmdb, nil
	case "sqlite":
		return backend.Sqlite, nil
	case "file":
		return backend.File, nil
	case "dummy":
		return backend.Dummy, nil
	default:
		return 0, fmt.Errorf("config: unknown backend %q", c.Backend)
	}
}

// Options builds the [backend.Options] dir and mode combine with, for
// opening a store under this configuration. Tag is left unset; callers
// fill it in per store (pkgdb.OpenWithOptions does this automatically).
func (c *Config) Options(dir string, mode backend.Mode) backend.Options {
	return backend.Options{
		Dir:       dir,
		Mode:      mode,
		Perm:      fs.FileMode(c.DBPerms),
		MmapSize:  int(c.MmapSize),
		CacheSize: int(c.CacheSize),
		NoFsync:   c.NoFsync,
		MinWrites: c.MinWrites,
	}
}

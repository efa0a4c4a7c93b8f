// Package backend defines the storage-engine contract that the package
// database facade dispatches against, and the concrete engines that
// implement it.
package backend

import (
	"errors"
	"io/fs"

	"github.com/quay/rpmdb/indexset"
)

// Mode selects whether a [Handle] may be mutated.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// SearchMode selects how [Cursor.IdxGet] matches a secondary-index key.
type SearchMode int

const (
	SearchExact SearchMode = iota
	SearchPrefix
)

// Variant identifies a concrete storage engine.
type Variant int

const (
	Legacy Variant = iota
	Bdb
	Lmdb
	Sqlite
	File
	Dummy
)

func (v Variant) String() string {
	switch v {
	case Legacy:
		return "legacy"
	case Bdb:
		return "bdb"
	case Lmdb:
		return "lmdb"
	case Sqlite:
		return "sqlite"
	case File:
		return "file"
	case Dummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// Handle is an opened, single-tag storage engine: one primary store or one
// secondary index.
type Handle interface {
	// Close releases the handle. Idempotent on a handle that failed to open.
	Close() error
	// Sync flushes pending writes to stable storage.
	Sync() error
	// Verify performs whatever consistency check the engine supports. A
	// backend with no such check reports nil.
	Verify() error
	// ReadOnly reports whether the handle rejects mutating cursors.
	ReadOnly() bool
	// CursorOpen begins a transaction-scoped cursor. write must be false for
	// a ReadOnly handle.
	CursorOpen(write bool) (Cursor, error)
}

// Cursor is the unit of work against a [Handle]: every read and write of a
// primary or secondary store happens through one.
//
// A Cursor used against a primary store only calls the Pkg* methods; one
// used against a secondary index only calls the Idx* methods. Implementors
// may make the unused half of the interface a hard error.
type Cursor interface {
	Close() error

	// PkgGet returns the blob stored under hdrNum.
	PkgGet(hdrNum uint32) (blob []byte, ok bool, err error)
	// PkgPut stores blob under hdrNum, overwriting any existing value.
	PkgPut(hdrNum uint32, blob []byte) error
	// PkgDel removes the record stored under hdrNum.
	PkgDel(hdrNum uint32) error
	// PkgNew allocates and returns the next unused hdrNum; it does not
	// store anything.
	PkgNew() (uint32, error)
	// PkgNext advances an iteration over the primary store, started by the
	// cursor's first call. Records come in hdrNum order, except from a
	// legacy hash database, which yields them bucket by bucket.
	PkgNext() (hdrNum uint32, blob []byte, ok bool, err error)

	// IdxGet returns the index set stored under key.
	IdxGet(key []byte, search SearchMode) (*indexset.Set, bool, error)
	// IdxPut stores set under key, overwriting any existing value.
	IdxPut(key []byte, set *indexset.Set) error
	// IdxDel removes the whole index set stored under key.
	IdxDel(key []byte) error
	// IdxNext advances an iteration over the index, started by the cursor's
	// first call. Sets come in key order, except from a legacy hash
	// database, which yields them bucket by bucket.
	IdxNext() (key []byte, set *indexset.Set, ok bool, err error)
}

// Options configure [Open].
type Options struct {
	// Dir is the directory holding the backend's on-disk files.
	Dir string
	// Tag names the store within Dir: "" for the primary store, or an index
	// tag name for a secondary index.
	Tag  string
	Mode Mode
	Perm fs.FileMode

	// MmapSize hints at the memory-mapped region size a backend should
	// request, in bytes. Zero lets the backend pick its own default.
	MmapSize int
	// CacheSize hints at the backend's page/row cache size, in bytes. Zero
	// lets the backend pick its own default.
	CacheSize int
	// NoFsync disables fsync/fdatasync on write commit, best-effort, for
	// backends that support the tradeoff.
	NoFsync bool

	// MinWrites tells [pkgdb.OpenWithOptions] to skip opening and writing
	// secondary indexes, keeping only the primary store current. No
	// backend reads this field itself; Options is just the bag
	// config.Config already threads through to pkgdb.
	MinWrites bool
}

// ErrUnsupported is returned by [Open] for a [Variant] recognized by name
// but not implemented by this reader (no writable Go library exists in the
// dependency set this module draws from).
var ErrUnsupported = errors.New("backend: variant not supported")

// Open binds a [Handle] to v using opt.
func Open(v Variant, opt Options) (Handle, error) {
	switch v {
	case Legacy:
		return openLegacy(opt)
	case File:
		return openFile(opt)
	case Sqlite:
		return openSqlite(opt)
	case Dummy:
		return openDummy(opt)
	case Bdb, Lmdb:
		return nil, ErrUnsupported
	default:
		return nil, ErrUnsupported
	}
}

package backend

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quay/rpmdb/indexset"
	"github.com/quay/rpmdb/internal/legacydb"
)

// legacyHandle adapts [legacydb.DB] to [Handle]. The legacy reader is
// read-only by construction: the format is understood, not written.
type legacyHandle struct {
	f  *os.File
	db *legacydb.DB
}

func openLegacy(opt Options) (Handle, error) {
	if opt.Mode == ReadWrite {
		return nil, fmt.Errorf("backend: legacy variant is read-only")
	}
	name := opt.Tag
	if name == "" {
		name = "Packages"
	}
	f, err := os.Open(filepath.Join(opt.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("backend: legacy: %w", err)
	}
	db, err := legacydb.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("backend: legacy: %w", err)
	}
	return &legacyHandle{f: f, db: db}, nil
}

func (h *legacyHandle) Close() error   { return h.f.Close() }
func (h *legacyHandle) Sync() error    { return nil }
func (h *legacyHandle) Verify() error  { return nil }
func (h *legacyHandle) ReadOnly() bool { return true }

func (h *legacyHandle) CursorOpen(write bool) (Cursor, error) {
	if write {
		return nil, fmt.Errorf("backend: legacy: %w", ErrReadOnlyCursor)
	}
	return &legacyCursor{h: h}, nil
}

// ErrReadOnlyCursor is returned by CursorOpen(write=true) against a handle
// whose backend cannot mutate.
var ErrReadOnlyCursor = fmt.Errorf("backend: read-only handle")

// legacyCursor walks the legacy db by key, interpreting the key as a
// big-endian hdrNum for the primary store or as an opaque index key
// otherwise. The legacy reader has no notion of which; the facade decides
// by which store it opened this handle as.
type legacyCursor struct {
	h      *legacyHandle
	iter   *legacydb.Cursor
	hash   bool
	bucket uint32
}

func (c *legacyCursor) Close() error { return nil }

func (c *legacyCursor) PkgGet(hdrNum uint32) ([]byte, bool, error) {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], hdrNum)
	cur, ok, err := c.h.db.Lookup(key[:])
	if err != nil || !ok {
		return nil, ok, wrapLegacyErr(err)
	}
	return cur.Value(), true, nil
}

func (c *legacyCursor) PkgPut(uint32, []byte) error { return writeOnReadOnly() }
func (c *legacyCursor) PkgDel(uint32) error         { return writeOnReadOnly() }
func (c *legacyCursor) PkgNew() (uint32, error)     { return 0, writeOnReadOnly() }

func (c *legacyCursor) PkgNext() (uint32, []byte, bool, error) {
	key, val, ok, err := c.next()
	if err != nil || !ok {
		return 0, nil, false, err
	}
	if len(key) != 4 {
		return 0, nil, false, fmt.Errorf("backend: legacy: primary key length %d, want 4", len(key))
	}
	return binary.BigEndian.Uint32(key), val, true, nil
}

// next advances the cursor to the following (key, value) pair, crossing
// bucket boundaries for hash databases: a hash bucket's chain ending is not
// the end of the table, only of that bucket, per MaxBucket's contract.
func (c *legacyCursor) next() ([]byte, []byte, bool, error) {
	if c.iter == nil {
		c.hash = c.h.db.Kind() == legacydb.KindHash
		it, err := c.h.db.First()
		if err != nil {
			return nil, nil, false, wrapLegacyErr(err)
		}
		c.iter = it
	}
	for {
		ok, err := c.iter.Next()
		if err != nil {
			return nil, nil, false, wrapLegacyErr(err)
		}
		if ok {
			return c.iter.Key(), c.iter.Value(), true, nil
		}
		if !c.hash || c.bucket >= c.h.db.MaxBucket() {
			return nil, nil, false, nil
		}
		c.bucket++
		it, err := c.h.db.BucketCursor(c.bucket)
		if err != nil {
			return nil, nil, false, wrapLegacyErr(err)
		}
		c.iter = it
	}
}

func (c *legacyCursor) IdxGet(key []byte, search SearchMode) (*indexset.Set, bool, error) {
	var cur *legacydb.Cursor
	var ok bool
	var err error
	switch search {
	case SearchExact:
		cur, ok, err = c.h.db.Lookup(key)
	case SearchPrefix:
		cur, err = c.h.db.LookupGE(key)
		ok = err == nil && cur.Key() != nil && hasPrefix(cur.Key(), key)
	}
	if err != nil || !ok {
		return nil, ok, wrapLegacyErr(err)
	}
	set, derr := indexset.Decode(cur.Value(), false)
	if derr != nil {
		return nil, false, fmt.Errorf("backend: legacy: %w", derr)
	}
	return set, true, nil
}

func (c *legacyCursor) IdxPut([]byte, *indexset.Set) error { return writeOnReadOnly() }
func (c *legacyCursor) IdxDel([]byte) error                { return writeOnReadOnly() }

func (c *legacyCursor) IdxNext() ([]byte, *indexset.Set, bool, error) {
	key, val, ok, err := c.next()
	if err != nil || !ok {
		return nil, nil, false, err
	}
	set, derr := indexset.Decode(val, false)
	if derr != nil {
		return nil, nil, false, fmt.Errorf("backend: legacy: %w", derr)
	}
	return key, set, true, nil
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func wrapLegacyErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("backend: legacy: %w", err)
}

func writeOnReadOnly() error { return ErrReadOnlyCursor }

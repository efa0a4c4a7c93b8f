package backend

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/quay/rpmdb/indexset"
)

var primaryBucket = []byte("primary")
var indexBucket = []byte("index")

// fileHandle is the single-file, memory-mapped modern backend: one bbolt
// database per store (primary or a given index tag), opened under a
// directory shared by every other store of the same [pkgdb.PkgDb].
type fileHandle struct {
	db       *bolt.DB
	readOnly bool
}

func openFile(opt Options) (Handle, error) {
	name := opt.Tag
	if name == "" {
		name = "primary"
	}
	perm := opt.Perm
	if perm == 0 {
		perm = 0o644
	}
	boltOpt := &bolt.Options{
		ReadOnly: opt.Mode == ReadOnly,
		NoSync:   opt.NoFsync,
	}
	if opt.MmapSize > 0 {
		boltOpt.InitialMmapSize = opt.MmapSize
	}
	db, err := bolt.Open(filepath.Join(opt.Dir, name+".kv"), perm, boltOpt)
	if err != nil {
		return nil, fmt.Errorf("backend: file: %w", err)
	}
	if opt.Mode == ReadWrite {
		err := db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(primaryBucket)
			if err != nil {
				return err
			}
			_, err = tx.CreateBucketIfNotExists(indexBucket)
			return err
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("backend: file: %w", err)
		}
	}
	return &fileHandle{db: db, readOnly: opt.Mode == ReadOnly}, nil
}

func (h *fileHandle) Close() error   { return h.db.Close() }
func (h *fileHandle) Sync() error    { return h.db.Sync() }
func (h *fileHandle) Verify() error  { return h.db.View(func(tx *bolt.Tx) error { return nil }) }
func (h *fileHandle) ReadOnly() bool { return h.readOnly }

func (h *fileHandle) CursorOpen(write bool) (Cursor, error) {
	if write && h.readOnly {
		return nil, fmt.Errorf("backend: file: %w", ErrReadOnlyCursor)
	}
	tx, err := h.db.Begin(write)
	if err != nil {
		return nil, fmt.Errorf("backend: file: %w", err)
	}
	return &fileCursor{tx: tx, write: write}, nil
}

type fileCursor struct {
	tx      *bolt.Tx
	write   bool
	iterKey []byte
}

func (c *fileCursor) Close() error {
	if c.write {
		return c.tx.Commit()
	}
	return c.tx.Rollback()
}

func (c *fileCursor) PkgGet(hdrNum uint32) ([]byte, bool, error) {
	v := c.tx.Bucket(primaryBucket).Get(keyOf(hdrNum))
	if v == nil {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (c *fileCursor) PkgPut(hdrNum uint32, blob []byte) error {
	return c.tx.Bucket(primaryBucket).Put(keyOf(hdrNum), blob)
}

func (c *fileCursor) PkgDel(hdrNum uint32) error {
	return c.tx.Bucket(primaryBucket).Delete(keyOf(hdrNum))
}

func (c *fileCursor) PkgNew() (uint32, error) {
	b := c.tx.Bucket(primaryBucket)
	n, err := b.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("backend: file: %w", err)
	}
	return uint32(n), nil
}

func (c *fileCursor) PkgNext() (uint32, []byte, bool, error) {
	b := c.tx.Bucket(primaryBucket)
	cur := b.Cursor()
	var k, v []byte
	if c.iterKey == nil {
		k, v = cur.First()
	} else {
		cur.Seek(c.iterKey)
		k, v = cur.Next()
	}
	if k == nil {
		return 0, nil, false, nil
	}
	c.iterKey = bytes.Clone(k)
	return binary.BigEndian.Uint32(k), bytes.Clone(v), true, nil
}

func (c *fileCursor) IdxGet(key []byte, search SearchMode) (*indexset.Set, bool, error) {
	b := c.tx.Bucket(indexBucket)
	switch search {
	case SearchExact:
		v := b.Get(key)
		if v == nil {
			return nil, false, nil
		}
		set, err := indexset.Decode(v, false)
		if err != nil {
			return nil, false, fmt.Errorf("backend: file: %w", err)
		}
		return set, true, nil
	case SearchPrefix:
		cur := b.Cursor()
		k, v := cur.Seek(key)
		if k == nil || !hasPrefix(k, key) {
			return nil, false, nil
		}
		set, err := indexset.Decode(v, false)
		if err != nil {
			return nil, false, fmt.Errorf("backend: file: %w", err)
		}
		return set, true, nil
	default:
		return nil, false, fmt.Errorf("backend: file: unknown search mode %d", search)
	}
}

func (c *fileCursor) IdxPut(key []byte, set *indexset.Set) error {
	return c.tx.Bucket(indexBucket).Put(key, set.Encode(false))
}

func (c *fileCursor) IdxDel(key []byte) error {
	return c.tx.Bucket(indexBucket).Delete(key)
}

func (c *fileCursor) IdxNext() ([]byte, *indexset.Set, bool, error) {
	b := c.tx.Bucket(indexBucket)
	cur := b.Cursor()
	var k, v []byte
	if c.iterKey == nil {
		k, v = cur.First()
	} else {
		cur.Seek(c.iterKey)
		k, v = cur.Next()
	}
	if k == nil {
		return nil, nil, false, nil
	}
	c.iterKey = bytes.Clone(k)
	set, err := indexset.Decode(v, false)
	if err != nil {
		return nil, nil, false, fmt.Errorf("backend: file: %w", err)
	}
	return bytes.Clone(k), set, true, nil
}

func keyOf(hdrNum uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], hdrNum)
	return b[:]
}

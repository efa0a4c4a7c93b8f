package legacydb

import "bytes"

// Cursor walks key/value pairs in a legacy database, positioned by Lookup,
// LookupGE, First, or BucketCursor and advanced by Next.
type Cursor struct {
	db  *DB
	hs  *hashState
	bs  *btreeState
	key []byte
	val []byte
}

// Key returns the key at the cursor's current position, or nil if the
// cursor has not been advanced onto a valid entry.
func (c *Cursor) Key() []byte { return c.key }

// Value returns the value at the cursor's current position.
func (c *Cursor) Value() []byte { return c.val }

// Next advances the cursor to the following entry, reporting false (with a
// nil error) once the underlying chain is exhausted.
func (c *Cursor) Next() (bool, error) {
	var k, v []byte
	var ok bool
	var err error
	switch {
	case c.hs != nil:
		k, v, ok, err = c.hs.next()
	case c.bs != nil:
		k, v, ok, err = c.bs.next()
	default:
		return false, formatErrorf("cursor is not positioned")
	}
	if err != nil || !ok {
		c.key, c.val = nil, nil
		return false, err
	}
	c.key, c.val = k, v
	return true, nil
}

// First positions a cursor before the first entry of the database, in its
// native on-disk order (bucket 0's chain for hash, the leftmost leaf for
// btree). Call Next to reach the first entry.
func (db *DB) First() (*Cursor, error) {
	switch db.kind {
	case KindHash:
		return db.BucketCursor(0)
	case KindBtree:
		bs, err := db.btreeDescend(nil)
		if err != nil {
			return nil, err
		}
		return &Cursor{db: db, bs: bs}, nil
	default:
		return nil, formatErrorf("unknown db kind")
	}
}

// MaxBucket reports the highest valid bucket number, for hash databases.
// Callers that want to enumerate every record of a hash database should
// drain a BucketCursor for every bucket in [0, MaxBucket()].
func (db *DB) MaxBucket() uint32 { return db.maxBucket }

// BucketCursor positions a cursor before the first entry of hash bucket b.
// Call Next to reach the first entry. Valid only for hash databases.
func (db *DB) BucketCursor(b uint32) (*Cursor, error) {
	if db.kind != KindHash {
		return nil, formatErrorf("bucket cursors are only supported for hash databases")
	}
	pg, err := db.getPage(db.bucketToPage(b))
	if err != nil {
		return nil, err
	}
	if err := checkHashPageType(pg); err != nil {
		return nil, err
	}
	return &Cursor{db: db, hs: &hashState{db: db, page: pg, idx: -2, bucket: b}}, nil
}

// Lookup positions a cursor at the first entry with a key exactly equal to
// key, reporting whether a match was found. On a miss Key and Value return
// nil. A missed hash lookup leaves the cursor exhausted (Next reports false);
// a missed btree lookup that stopped at a greater key leaves the cursor
// there, so Next continues with the entries after that key.
func (db *DB) Lookup(key []byte) (*Cursor, bool, error) {
	switch db.kind {
	case KindHash:
		hs, err := db.hashLookup(key)
		if err != nil {
			return nil, false, err
		}
		c := &Cursor{db: db, hs: hs}
		for {
			ok, err := c.Next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return c, false, nil
			}
			if bytes.Equal(c.key, key) {
				return c, true, nil
			}
		}
	case KindBtree:
		bs, err := db.btreeDescend(key)
		if err != nil {
			return nil, false, err
		}
		c := &Cursor{db: db, bs: bs}
		for {
			ok, err := c.Next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return c, false, nil
			}
			switch bytes.Compare(c.key, key) {
			case 0:
				return c, true, nil
			case 1:
				c.key, c.val = nil, nil
				return c, false, nil
			}
		}
	default:
		return nil, false, formatErrorf("unknown db kind")
	}
}

// LookupGE positions a cursor at the first entry with a key greater than or
// equal to target. It is only meaningful for btree databases: hash order has
// no relation to key order, so a "greater or equal" search over a hash table
// would just be a full scan.
func (db *DB) LookupGE(target []byte) (*Cursor, error) {
	if db.kind != KindBtree {
		return nil, formatErrorf("lookup_ge is only supported for btree databases")
	}
	bs, err := db.btreeDescend(target)
	if err != nil {
		return nil, err
	}
	c := &Cursor{db: db, bs: bs}
	for {
		ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return c, nil
		}
		if bytes.Compare(c.key, target) >= 0 {
			return c, nil
		}
	}
}

package legacydb

import (
	"encoding/binary"
	"math/bits"
)

// hashOf computes the legacy reader's bucket hash: an FNV-1a-shaped
// accumulation seeded at zero, per the open question recorded in the design
// about the unspecified on-disk seed.
func hashOf(key []byte) uint32 {
	const prime = 16777619
	var h uint32
	for _, c := range key {
		h = (h * prime) ^ uint32(c)
	}
	return h
}

// bucketOf maps a raw hash value to a bucket number using the high/low mask
// pair from the metadata page.
func (db *DB) bucketOf(h uint32) uint32 {
	b := h & db.highMask
	if b > db.maxBucket {
		b &= db.lowMask
	}
	return b
}

// bucketToPage returns the page number holding the first page of bucket b's
// chain, selected from the spares table by the bit-length of b.
func (db *DB) bucketToPage(b uint32) uint32 {
	return b + db.spares[bits.Len32(b)]
}

// hashLookup positions a hashState at the start of the bucket chain holding
// key, ready for iteration via [hashState.next].
func (db *DB) hashLookup(key []byte) (*hashState, error) {
	b := db.bucketOf(hashOf(key))
	pg, err := db.getPage(db.bucketToPage(b))
	if err != nil {
		return nil, err
	}
	if err := checkHashPageType(pg); err != nil {
		return nil, err
	}
	return &hashState{db: db, page: pg, idx: -2, bucket: b}, nil
}

// hashState walks a hash bucket's page chain two items (key, value) at a
// time.
type hashState struct {
	db     *DB
	page   []byte
	idx    int
	bucket uint32
}

func checkHashPageType(page []byte) error {
	switch page[25] {
	case pageTypeHashBucket, pageTypeHashSorted, pageTypeHashUnsorted:
		return nil
	default:
		return formatErrorf("unexpected hash page type %d", page[25])
	}
}

func (s *hashState) numEntries() int {
	return int(binary.LittleEndian.Uint16(s.page[20:]))
}

// next advances to the next (key, value) pair. It reports io.EOF-shaped
// exhaustion by returning ok=false with a nil error.
func (s *hashState) next() (key, value []byte, ok bool, err error) {
	s.idx += 2
	for {
		n := s.numEntries()
		if s.idx+1 >= n {
			next := binary.LittleEndian.Uint32(s.page[16:])
			if next == 0 {
				return nil, nil, false, nil
			}
			pg, err := s.db.getPage(next)
			if err != nil {
				return nil, nil, false, err
			}
			if err := checkHashPageType(pg); err != nil {
				return nil, nil, false, err
			}
			s.page, s.idx = pg, 0
			continue
		}

		pagesize := len(s.page)
		koff := int(binary.LittleEndian.Uint16(s.page[26+2*s.idx:]))
		voff := int(binary.LittleEndian.Uint16(s.page[28+2*s.idx:]))
		if koff >= pagesize || voff >= pagesize {
			return nil, nil, false, formatErrorf("hash entry offset out of range")
		}
		var klen int
		if s.idx == 0 {
			klen = pagesize - koff
		} else {
			klen = int(binary.LittleEndian.Uint16(s.page[24+2*s.idx:])) - koff
		}
		vlen := koff - voff

		key, err = s.db.hashItem(s.page, koff, klen)
		if err != nil {
			return nil, nil, false, err
		}
		value, err = s.db.hashItem(s.page, voff, vlen)
		if err != nil {
			return nil, nil, false, err
		}
		return key, value, true, nil
	}
}

// hashItem decodes one keyed hash item (inline or overflow-referenced) of
// length l starting at off in page.
func (db *DB) hashItem(page []byte, off, l int) ([]byte, error) {
	if l <= 0 || off+l > len(page) {
		return nil, formatErrorf("hash item length %d at offset %d out of range", l, off)
	}
	switch page[off] {
	case 1: // inline
		return page[off+1 : off+l], nil
	case 3: // overflow reference
		if l != 12 {
			return nil, formatErrorf("hash overflow item has unexpected length %d", l)
		}
		pageNo := binary.LittleEndian.Uint32(page[off+4:])
		length := binary.LittleEndian.Uint32(page[off+8:])
		return db.overflowGet(pageNo, length)
	default:
		return nil, formatErrorf("hash item has unexpected type byte %d", page[off])
	}
}

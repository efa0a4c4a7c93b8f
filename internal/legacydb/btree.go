package legacydb

import (
	"bytes"
	"encoding/binary"
)

// btreeState walks a single leaf page's paired items, the result of
// descending from the root via btreeDescend.
type btreeState struct {
	db   *DB
	page []byte
	idx  int
}

// btreeDescend walks from the root page to the leaf that would contain key,
// per the legacy format's "pick the greatest child whose key is <= search
// key" rule. If key is nil, the leftmost leaf is returned.
func (db *DB) btreeDescend(key []byte) (*btreeState, error) {
	pg, err := db.getPage(db.root)
	if err != nil {
		return nil, err
	}
	for pg[25] != pageTypeBtreeLeaf {
		if pg[25] != pageTypeBtreeInternal {
			return nil, formatErrorf("unexpected btree page type %d", pg[25])
		}
		numidx := int(binary.LittleEndian.Uint16(pg[20:]))
		if numidx == 0 {
			return nil, formatErrorf("btree internal page has no entries")
		}
		pagesize := len(pg)
		lastOff := 0
		for idx := 0; idx < numidx; idx++ {
			off := int(binary.LittleEndian.Uint16(pg[26+2*idx:]))
			if off&3 != 0 || off+3 > pagesize {
				return nil, formatErrorf("btree internal entry offset misaligned")
			}
			ekeylen := int(binary.LittleEndian.Uint16(pg[off:]))
			if off+12+ekeylen > pagesize {
				return nil, formatErrorf("btree internal entry overruns page")
			}
			if key == nil {
				lastOff = off
				break
			}
			if idx == 0 {
				lastOff = off
				continue
			}
			ekey := pg[off+12 : off+12+ekeylen]
			switch pg[off+2] & 0x7f {
			case 3:
				if ekeylen != 12 {
					return nil, formatErrorf("btree internal overflow key has unexpected length")
				}
				pageNo := binary.LittleEndian.Uint32(ekey[4:])
				length := binary.LittleEndian.Uint32(ekey[8:])
				resolved, err := db.overflowGet(pageNo, length)
				if err != nil {
					return nil, err
				}
				ekey = resolved
			case 1:
			default:
				return nil, formatErrorf("btree internal entry has unexpected flag byte")
			}
			n := min(len(key), len(ekey))
			cmp := bytes.Compare(ekey[:n], key[:n])
			if cmp > 0 || (cmp == 0 && len(ekey) > len(key)) {
				break
			}
			lastOff = off
		}
		childPage := binary.LittleEndian.Uint32(pg[lastOff+4:])
		pg, err = db.getPage(childPage)
		if err != nil {
			return nil, err
		}
	}
	return &btreeState{db: db, page: pg, idx: -2}, nil
}

func (s *btreeState) numEntries() int {
	return int(binary.LittleEndian.Uint16(s.page[20:]))
}

// next advances to the next (key, value) pair on the leaf chain, skipping
// entries whose interior flag byte has the deletion bit set.
func (s *btreeState) next() (key, value []byte, ok bool, err error) {
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
			if pg[25] != pageTypeBtreeLeaf {
				return nil, nil, false, formatErrorf("unexpected btree leaf page type %d", pg[25])
			}
			s.page, s.idx = pg, 0
			continue
		}

		pagesize := len(s.page)
		koff := int(binary.LittleEndian.Uint16(s.page[26+2*s.idx:]))
		voff := int(binary.LittleEndian.Uint16(s.page[28+2*s.idx:]))
		if koff+3 > pagesize || voff+3 > pagesize {
			return nil, nil, false, formatErrorf("btree leaf entry offset out of range")
		}
		if s.page[koff+2]&0x80 != 0 || s.page[voff+2]&0x80 != 0 {
			s.idx += 2
			continue
		}
		key, err = s.db.btreeItem(s.page, koff)
		if err != nil {
			return nil, nil, false, err
		}
		value, err = s.db.btreeItem(s.page, voff)
		if err != nil {
			return nil, nil, false, err
		}
		return key, value, true, nil
	}
}

func (db *DB) btreeItem(page []byte, off int) ([]byte, error) {
	if off&3 != 0 {
		return nil, formatErrorf("btree item offset misaligned")
	}
	switch page[off+2] {
	case 1: // inline
		l := int(binary.LittleEndian.Uint16(page[off:]))
		if off+3+l > len(page) {
			return nil, formatErrorf("btree item overruns page")
		}
		return page[off+3 : off+3+l], nil
	case 3: // overflow reference
		if off+12 > len(page) {
			return nil, formatErrorf("btree overflow item overruns page")
		}
		pageNo := binary.LittleEndian.Uint32(page[off+4:])
		length := binary.LittleEndian.Uint32(page[off+8:])
		return db.overflowGet(pageNo, length)
	default:
		return nil, formatErrorf("btree item has unexpected type byte %d", page[off+2])
	}
}

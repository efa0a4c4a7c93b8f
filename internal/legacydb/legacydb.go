// Package legacydb implements a byte-exact, read-only reader for the legacy
// BerkeleyDB hash/btree on-disk page format used by older package database
// installations.
//
// The format is treated as data, not as a build-time endianness choice: the
// file's byte order is detected once, at open time, from the magic number in
// the metadata page. A file in the opposite byte order has its metadata and
// page header fields byte-swapped in place, and every multi-byte integer is
// then read little-endian.
package legacydb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Kind distinguishes the two legacy page layouts.
type Kind int

const (
	// KindHash is the hash-table layout.
	KindHash Kind = iota
	// KindBtree is the b-tree layout.
	KindBtree
)

func (k Kind) String() string {
	switch k {
	case KindHash:
		return "hash"
	case KindBtree:
		return "btree"
	default:
		return "unknown"
	}
}

// Page types, read from byte offset 25 of every non-meta page.
const (
	pageTypeBtreeInternal = 3
	pageTypeHashUnsorted  = 2
	pageTypeHashBucket    = 8
	pageTypeBtreeLeaf     = 5
	pageTypeHashMeta      = 9
	pageTypeBtreeMeta     = 10
	pageTypeOverflow      = 7
	pageTypeHashSorted    = 13
)

const metaPageBytes = 512

// DB is an opened legacy hash or btree database.
type DB struct {
	r        io.ReaderAt
	ord      binary.ByteOrder
	swapped  bool
	kind     Kind
	pageSize uint32
	lastPage uint32

	// hash
	maxBucket uint32
	highMask  uint32
	lowMask   uint32
	spares    [32]uint32

	// btree
	root uint32
}

// FormatError reports that the on-disk bytes violate the format contract
// described in the legacy reader's specification. It is always fatal for the
// cursor or operation that produced it, never for the process.
type FormatError struct {
	Detail string
}

func (e *FormatError) Error() string { return "legacydb: format corrupt: " + e.Detail }

func formatErrorf(format string, a ...any) error {
	return &FormatError{Detail: fmt.Sprintf(format, a...)}
}

// Open parses the metadata page at the start of r and returns a ready-to-use
// DB. r is retained for the lifetime of the DB; it is never written to.
func Open(r io.ReaderAt) (*DB, error) {
	const (
		hashMagicNative  = 0x00061561
		hashMagicSwapped = 0x61150600
		btreeMagicNative = 0x00053162
		btreeMagicSwapped = 0x62310500

		offMagic   = 12
		offVersion = 16
		offPageSz  = 20
		offLastPg  = 32

		offHashMaxBucket = 72
		offHashHighMask  = 76
		offHashLowMask   = 80
		offHashSpares    = 96

		offBtreeRoot = 88
	)

	raw := make([]byte, metaPageBytes)
	n, err := r.ReadAt(raw, 0)
	if n < metaPageBytes {
		return nil, formatErrorf("metadata page short: only read %d of %d bytes: %v", n, metaPageBytes, err)
	}

	magic := binary.LittleEndian.Uint32(raw[offMagic:])
	db := &DB{r: r}
	switch magic {
	case hashMagicNative:
		db.kind, db.ord, db.swapped = KindHash, binary.LittleEndian, false
	case hashMagicSwapped:
		db.kind, db.ord, db.swapped = KindHash, binary.BigEndian, true
	case btreeMagicNative:
		db.kind, db.ord, db.swapped = KindBtree, binary.LittleEndian, false
	case btreeMagicSwapped:
		db.kind, db.ord, db.swapped = KindBtree, binary.BigEndian, true
	default:
		return nil, formatErrorf("unrecognized magic %#08x", magic)
	}

	if db.swapped {
		// DWORDs 2..(224 for hash / 92 for btree), plus the DWORD at offset 24,
		// are byte-swapped in place before being read as native values below.
		maxi := 224
		if db.kind == KindBtree {
			maxi = 92
		}
		for i := 8; i < maxi; i += 4 {
			swap32(raw[i:])
		}
		swap32(raw[24:])
	}

	// The swap loop above (when applicable) has already put every consumed
	// DWORD into host order, so everything from here reads as LittleEndian
	// regardless of db.ord (db.ord records the file's byte order; no read in
	// this package consults it).
	version := binary.LittleEndian.Uint32(raw[offVersion:])
	db.pageSize = binary.LittleEndian.Uint32(raw[offPageSz:])
	db.lastPage = binary.LittleEndian.Uint32(raw[offLastPg:])
	if db.pageSize == 0 {
		return nil, formatErrorf("page size is zero")
	}

	switch db.kind {
	case KindHash:
		if version < 8 || version > 10 {
			return nil, formatErrorf("unsupported hash version %d", version)
		}
		db.maxBucket = binary.LittleEndian.Uint32(raw[offHashMaxBucket:])
		db.highMask = binary.LittleEndian.Uint32(raw[offHashHighMask:])
		db.lowMask = binary.LittleEndian.Uint32(raw[offHashLowMask:])
		for i := range db.spares {
			db.spares[i] = binary.LittleEndian.Uint32(raw[offHashSpares+i*4:])
		}
	case KindBtree:
		if version < 9 || version > 10 {
			return nil, formatErrorf("unsupported btree version %d", version)
		}
		db.root = binary.LittleEndian.Uint32(raw[offBtreeRoot:])
	}

	return db, nil
}

// Kind reports whether the database is a hash table or a b-tree.
func (db *DB) Kind() Kind { return db.kind }

// swap32 reverses the 4 bytes at the start of b in place.
func swap32(b []byte) {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
}

func swap16(b []byte) {
	b[0], b[1] = b[1], b[0]
}

// getPage reads page number p into a freshly allocated buffer, applying the
// per-page byte swap table when the database is swapped, then verifies the
// page-number field matches p.
func (db *DB) getPage(p uint32) ([]byte, error) {
	if p == 0 || p > db.lastPage {
		return nil, formatErrorf("page number %d out of range (last page %d)", p, db.lastPage)
	}
	buf := make([]byte, db.pageSize)
	off := int64(p) * int64(db.pageSize)
	if _, err := db.r.ReadAt(buf, off); err != nil {
		return nil, formatErrorf("reading page %d: %v", p, err)
	}
	if db.swapped {
		swapPage(buf)
	}
	if got := binary.LittleEndian.Uint32(buf[8:]); got != p {
		return nil, formatErrorf("page %d: page-number field is %d after swap", p, got)
	}
	return buf, nil
}

// swapPage applies the per-page byte-swap table described in the legacy
// reader's format contract: page number, prev/next, nitems, highfree are
// always swapped; item interiors are swapped according to their type byte.
func swapPage(page []byte) {
	pagesize := len(page)
	swap32(page[8:])  // page number
	swap32(page[12:]) // prev
	swap32(page[16:]) // next
	swap16(page[20:]) // nitems
	swap16(page[22:]) // highfree

	typ := page[25]
	if typ != pageTypeHashUnsorted && typ != pageTypeHashSorted && typ != pageTypeBtreeInternal && typ != pageTypeBtreeLeaf {
		return
	}
	nent := int(binary.LittleEndian.Uint16(page[20:]))
	if max := (pagesize - 26) / 2; nent > max {
		nent = max
	}
	minoff := 26 + nent*2
	for i := 0; i < nent; i++ {
		swap16(page[26+i*2:])
		off := int(binary.LittleEndian.Uint16(page[26+i*2:]))
		if off < minoff || off >= pagesize {
			continue
		}
		switch typ {
		case pageTypeHashUnsorted, pageTypeHashSorted:
			if page[off] == 3 && off+12 <= pagesize {
				swap32(page[off+4:])
				swap32(page[off+8:])
			}
		case pageTypeBtreeInternal:
			if off+12 > pagesize {
				continue
			}
			swap16(page[off:])
			swap32(page[off+4:])
			swap32(page[off+8:])
			if page[off+2] == 3 && off+24 <= pagesize {
				swap32(page[off+16:])
				swap32(page[off+20:])
			}
		case pageTypeBtreeLeaf:
			switch {
			case off+3 <= pagesize && page[off+2] == 1:
				swap16(page[off:])
			case off+12 <= pagesize && page[off+2] == 3:
				swap32(page[off+4:])
				swap32(page[off+8:])
			}
		}
	}
}

// overflowGet reads the full value referenced by an overflow descriptor
// (page_no, length), following the chain of overflow pages.
func (db *DB) overflowGet(pageNo, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, formatErrorf("overflow descriptor has zero length")
	}
	out := make([]byte, 0, length)
	remaining := length
	for remaining > 0 {
		if pageNo == 0 {
			return nil, formatErrorf("overflow chain ended with %d bytes remaining", remaining)
		}
		page, err := db.getPage(pageNo)
		if err != nil {
			return nil, err
		}
		if page[25] != pageTypeOverflow {
			return nil, formatErrorf("overflow page %d has unexpected type %d", pageNo, page[25])
		}
		plen := uint32(binary.LittleEndian.Uint16(page[22:]))
		if int(plen)+26 > len(page) || plen > remaining {
			return nil, formatErrorf("overflow page %d: implausible length %d", pageNo, plen)
		}
		out = append(out, page[26:26+plen]...)
		remaining -= plen
		pageNo = binary.LittleEndian.Uint32(page[16:])
	}
	return out, nil
}

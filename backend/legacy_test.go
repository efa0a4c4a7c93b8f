package backend

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// legacyHashFixture builds a minimal native-order legacy hash database with
// one page per bucket, each page holding a single inline (key, value) pair
// and no overflow chain. Page 0 is the metadata page; bucket i lives at
// page i+1.
func legacyHashFixture(pairs [][2][]byte) []byte {
	const pageSize = 512
	buf := make([]byte, pageSize*(1+len(pairs)))

	meta := buf[:pageSize]
	binary.LittleEndian.PutUint32(meta[12:], 0x00061561) // hash magic, native order
	binary.LittleEndian.PutUint32(meta[16:], 8)           // version
	binary.LittleEndian.PutUint32(meta[20:], pageSize)
	binary.LittleEndian.PutUint32(meta[32:], uint32(len(pairs)))   // last page
	binary.LittleEndian.PutUint32(meta[72:], uint32(len(pairs)-1)) // max_bucket
	for i := 0; i < 32; i++ {
		// spares[bits.Len32(b)] == 1 for every b puts bucket b at page b+1.
		binary.LittleEndian.PutUint32(meta[96+i*4:], 1)
	}

	for b, kv := range pairs {
		page := buf[pageSize*(b+1) : pageSize*(b+2)]
		binary.LittleEndian.PutUint32(page[8:], uint32(b+1)) // page number
		page[25] = pageTypeHashUnsorted
		binary.LittleEndian.PutUint16(page[20:], 2) // two items: key, value

		key, val := kv[0], kv[1]
		koff := pageSize - (1 + len(key))
		voff := koff - (1 + len(val))
		page[koff] = 1 // inline
		copy(page[koff+1:], key)
		page[voff] = 1 // inline
		copy(page[voff+1:], val)
		binary.LittleEndian.PutUint16(page[26:], uint16(koff))
		binary.LittleEndian.PutUint16(page[28:], uint16(voff))
	}
	return buf
}

// pageTypeHashUnsorted mirrors the unexported constant of the same name in
// internal/legacydb; the page-type byte a hash bucket page must carry.
const pageTypeHashUnsorted = 2

// TestLegacyPkgNextDrainsEveryBucket is a regression test for a bug where
// PkgNext stopped after bucket 0's chain was exhausted instead of crossing
// into the next hash bucket, silently losing every record outside bucket 0
// of a real multi-bucket legacy database.
func TestLegacyPkgNextDrainsEveryBucket(t *testing.T) {
	key := func(hdrNum uint32) []byte {
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, hdrNum)
		return b
	}
	raw := legacyHashFixture([][2][]byte{
		{key(10), []byte("blob-ten")},
		{key(20), []byte("blob-twenty")},
		{key(30), []byte("blob-thirty")},
	})

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Packages"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := Open(Legacy, Options{Dir: dir, Mode: ReadOnly})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	cur, err := h.CursorOpen(false)
	if err != nil {
		t.Fatalf("CursorOpen: %v", err)
	}
	defer cur.Close()

	got := map[uint32]string{}
	for {
		hdrNum, blob, ok, err := cur.PkgNext()
		if err != nil {
			t.Fatalf("PkgNext: %v", err)
		}
		if !ok {
			break
		}
		got[hdrNum] = string(blob)
	}

	want := map[uint32]string{10: "blob-ten", 20: "blob-twenty", 30: "blob-thirty"}
	if len(got) != len(want) {
		t.Fatalf("PkgNext collected %d records, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("record %d = %q, want %q", k, got[k], v)
		}
	}
}

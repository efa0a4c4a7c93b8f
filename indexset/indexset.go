// Package indexset implements the sorted (hdrNum, tagNum) value type used as
// the payload of a secondary index record.
package indexset

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"slices"
)

// Record is one (hdrNum, tagNum) pair: hdrNum identifies the primary record,
// tagNum identifies which occurrence within that record's tag array produced
// the index entry.
type Record struct {
	HdrNum uint32
	TagNum uint32
}

func compare(a, b Record) int {
	if c := cmp.Compare(a.HdrNum, b.HdrNum); c != 0 {
		return c
	}
	return cmp.Compare(a.TagNum, b.TagNum)
}

// Set is a sorted, deduplicated list of [Record]s; the value stored for one
// secondary-index key.
//
// The zero value is an empty, sorted Set.
type Set struct {
	rec    []Record
	sorted bool
}

// New returns a Set with the provided capacity reserved.
func New(capacity int) *Set {
	return &Set{rec: make([]Record, 0, capacity), sorted: true}
}

// Count reports the number of records in the Set.
func (s *Set) Count() int {
	if s == nil {
		return 0
	}
	return len(s.rec)
}

// Append adds rec to the Set.
//
// If allowDup is false, the Set is kept sorted and deduplicated on every
// call (an O(n) re-sort in the worst case). If allowDup is true, rec is
// appended unconditionally and the Set is marked unsorted until the next
// call that requires sortedness ([Set.Prune], [Set.Records]) forces a
// uniq pass.
func (s *Set) Append(rec Record, allowDup bool) {
	s.rec = append(s.rec, rec)
	s.sorted = false
	if allowDup {
		return
	}
	s.uniq()
}

// AppendSet merges other into s, preserving sort order and uniqueness.
func (s *Set) AppendSet(other *Set) {
	if other.Count() == 0 {
		return
	}
	other.uniq()
	s.rec = append(s.rec, other.rec...)
	s.sorted = false
	s.uniq()
}

// Prune removes the first record matching rec.
//
// If matchTagNum is true, both HdrNum and TagNum must match; otherwise only
// HdrNum is compared and the first record with that HdrNum is removed.
// Reports whether a record was removed.
func (s *Set) Prune(rec Record, matchTagNum bool) bool {
	s.uniq()
	idx := -1
	for i, r := range s.rec {
		if r.HdrNum != rec.HdrNum {
			continue
		}
		if matchTagNum && r.TagNum != rec.TagNum {
			continue
		}
		idx = i
		break
	}
	if idx < 0 {
		return false
	}
	s.rec = slices.Delete(s.rec, idx, idx+1)
	return true
}

// Records returns the sorted, deduplicated records in the Set. The returned
// slice must not be mutated by the caller.
func (s *Set) Records() []Record {
	if s == nil {
		return nil
	}
	s.uniq()
	return s.rec
}

func (s *Set) uniq() {
	if s.sorted {
		return
	}
	slices.SortStableFunc(s.rec, compare)
	s.rec = slices.CompactFunc(s.rec, func(a, b Record) bool { return compare(a, b) == 0 })
	s.sorted = true
}

// Encode serializes the Set to its on-wire form: the concatenation of
// (u32 HdrNum, u32 TagNum) pairs. If swap is true, every u32 is byte-reversed,
// matching a legacy-backend file opened with swapped endianness.
func (s *Set) Encode(swap bool) []byte {
	recs := s.Records()
	buf := make([]byte, len(recs)*8)
	order := byteOrder(swap)
	for i, r := range recs {
		order.PutUint32(buf[i*8:], r.HdrNum)
		order.PutUint32(buf[i*8+4:], r.TagNum)
	}
	return buf
}

// Decode parses the on-wire form produced by [Set.Encode] back into a Set.
func Decode(b []byte, swap bool) (*Set, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("indexset: payload length %d not a multiple of 8", len(b))
	}
	n := len(b) / 8
	s := New(n)
	order := byteOrder(swap)
	for i := 0; i < n; i++ {
		s.rec = append(s.rec, Record{
			HdrNum: order.Uint32(b[i*8:]),
			TagNum: order.Uint32(b[i*8+4:]),
		})
	}
	s.sorted = false
	s.uniq()
	return s, nil
}

func byteOrder(swap bool) binary.ByteOrder {
	if swap {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

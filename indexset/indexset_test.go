package indexset

import (
	"testing"
)

func TestPruneMismatchedTagNum(t *testing.T) {
	s := New(3)
	s.Append(Record{1, 0}, false)
	s.Append(Record{1, 2}, false)
	s.Append(Record{2, 0}, false)

	if got := s.Prune(Record{1, 1}, true); got {
		t.Fatalf("Prune(match_tagnum=true) = %v, want false", got)
	}
	if got, want := s.Count(), 3; got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}

	if got := s.Prune(Record{1, 1}, false); !got {
		t.Fatalf("Prune(match_tagnum=false) = %v, want true", got)
	}
	want := []Record{{1, 2}, {2, 0}}
	got := s.Records()
	if len(got) != len(want) {
		t.Fatalf("Records() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Records()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, swap := range []bool{false, true} {
		for _, n := range []int{0, 1, 5} {
			s := New(n)
			for i := 0; i < n; i++ {
				s.Append(Record{HdrNum: uint32(i + 1), TagNum: uint32(i)}, false)
			}
			enc := s.Encode(swap)
			dec, err := Decode(enc, swap)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			got, want := dec.Records(), s.Records()
			if len(got) != len(want) {
				t.Fatalf("swap=%v n=%d: got %v, want %v", swap, n, got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("swap=%v n=%d: record %d = %v, want %v", swap, n, i, got[i], want[i])
				}
			}
		}
	}
}

func TestAppendSetDedup(t *testing.T) {
	a := New(2)
	a.Append(Record{1, 0}, false)
	a.Append(Record{2, 0}, false)
	b := New(2)
	b.Append(Record{2, 0}, false)
	b.Append(Record{3, 0}, false)

	a.AppendSet(b)
	if got, want := a.Count(), 3; got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
}

package avail

import (
	"testing"

	"github.com/quay/rpmdb/internal/header"
	"github.com/quay/rpmdb/internal/rpmver"
)

func mustVer(t *testing.T, s string) rpmver.Version {
	t.Helper()
	v, err := rpmver.Parse(s)
	if err != nil {
		t.Fatalf("rpmver.Parse(%q): %v", s, err)
	}
	return v
}

func TestSatisfiesByName(t *testing.T) {
	s := New(0, 0, nil)

	libfoo := &Te{Name: "libfoo", EVR: mustVer(t, "1.0-1"), Kind: Added}
	libfoo.Provides = []Ds{{Tag: header.TagProvName, Name: "libfoo", EVR: libfoo.EVR}}
	s.Add(libfoo)

	app := &Te{Name: "app", EVR: mustVer(t, "2.0-1"), Kind: Added}
	s.Add(app)

	ds := Ds{Tag: header.TagRequName, Name: "libfoo"}
	got := s.Satisfies(app, ds)
	if got != libfoo {
		t.Fatalf("Satisfies: got %v, want libfoo", got)
	}
}

func TestSatisfiesVersionedRequire(t *testing.T) {
	s := New(0, 0, nil)

	old := &Te{Name: "libfoo", EVR: mustVer(t, "1.0-1")}
	old.Provides = []Ds{{Name: "libfoo", EVR: old.EVR}}
	s.Add(old)

	ds := Ds{Name: "libfoo", EVR: mustVer(t, "2.0-1"), Flags: header.SenseGreater | header.SenseEqual}
	if got := s.Satisfies(nil, ds); got != nil {
		t.Fatalf("Satisfies: want nil (1.0-1 does not satisfy >= 2.0-1), got %v", got)
	}

	ds = Ds{Name: "libfoo", EVR: mustVer(t, "0.9-1"), Flags: header.SenseGreater | header.SenseEqual}
	if got := s.Satisfies(nil, ds); got != old {
		t.Fatalf("Satisfies: want old (1.0-1 satisfies >= 0.9-1), got %v", got)
	}
}

func TestDelTombstonesEntry(t *testing.T) {
	s := New(0, 0, nil)
	libfoo := &Te{Name: "libfoo"}
	libfoo.Provides = []Ds{{Name: "libfoo"}}
	s.Add(libfoo)

	ds := Ds{Name: "libfoo"}
	if s.Satisfies(nil, ds) == nil {
		t.Fatal("expected a match before Del")
	}
	s.Del(libfoo)
	if got := s.Satisfies(nil, ds); got != nil {
		t.Fatalf("Satisfies after Del: want nil, got %v", got)
	}
}

func TestAllSatisfiesSkipsSelfObsoletes(t *testing.T) {
	s := New(0, 0, nil)
	pkg := &Te{Name: "foo", EVR: mustVer(t, "1.0-1")}
	selfObsolete := Ds{Tag: header.TagObsName, Name: "foo"}
	pkg.Obsoletes = []Ds{selfObsolete}
	pkg.Provides = []Ds{{Name: "foo", EVR: pkg.EVR}}
	s.Add(pkg)

	got := s.AllSatisfies(selfObsolete, pkg)
	if len(got) != 0 {
		t.Fatalf("AllSatisfies: want no self-match, got %v", got)
	}
}

func TestFileSatisfiesExactDir(t *testing.T) {
	s := New(0, 0, nil)
	pkg := &Te{Name: "foo"}
	pkg.Files = []string{"/usr/bin/foo"}
	s.Add(pkg)

	ds := Ds{Name: "/usr/bin/foo"}
	if got := s.Satisfies(nil, ds); got != pkg {
		t.Fatalf("Satisfies: want pkg, got %v", got)
	}
}

func TestFileSatisfiesViaDirEquivalence(t *testing.T) {
	eq := fakeDirEq{"/usr/bin": "/bin"}
	s := New(0, 0, eq)
	pkg := &Te{Name: "foo"}
	pkg.Files = []string{"/bin/foo"}
	s.Add(pkg)

	ds := Ds{Name: "/usr/bin/foo"}
	if got := s.Satisfies(nil, ds); got != pkg {
		t.Fatalf("Satisfies: want pkg via dir equivalence, got %v", got)
	}
}

func TestColorScoring(t *testing.T) {
	s := New(0x2, 0x2, nil)

	red := &Te{Name: "libfoo", Color: 0x1}
	red.Provides = []Ds{{Name: "libfoo", Color: 0x1}}
	s.Add(red)

	blue := &Te{Name: "libfoo", Color: 0x2}
	blue.Provides = []Ds{{Name: "libfoo", Color: 0x2}}
	s.Add(blue)

	ds := Ds{Name: "libfoo"}
	got := s.Satisfies(nil, ds)
	if got != blue {
		t.Fatalf("Satisfies: want blue (preferred color), got %v", got)
	}
}

type fakeDirEq map[string]string

func (f fakeDirEq) SameDir(a, b string) bool {
	return f[a] == b || f[b] == a
}

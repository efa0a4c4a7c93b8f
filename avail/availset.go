package avail

import (
	"path"

	"github.com/quay/rpmdb/internal/header"
	"github.com/quay/rpmdb/internal/rpmver"
)

// DirEquivalence resolves whether two directory paths name the same
// filesystem directory once symlinks are taken into account. The fingerprint
// cache implements this; AvailSet falls back to exact string comparison when
// none is supplied.
type DirEquivalence interface {
	SameDir(a, b string) bool
}

type provideRef struct {
	pkgIdx   int
	entryIdx int
}

type fileRef struct {
	pkgIdx   int
	dir      string
	entryIdx int
}

type pkgEntry struct {
	te        *Te
	provides  []Ds
	obsoletes []Ds
	files     []string
}

// AvailSet is the set of transaction elements available for dependency
// resolution: every package being added or removed in the current
// transaction, indexed lazily by provided name and by file basename.
//
// Deletion never shrinks the backing list: [AvailSet.Del] tombstones the
// slot by nilling its Te so outstanding (pkgIdx, entryIdx) references in the
// hash indexes remain valid but dead.
type AvailSet struct {
	list         []pkgEntry
	providesHash map[string][]provideRef
	fileHash     map[string][]fileRef

	dirEq     DirEquivalence
	tsColor   uint32
	prefColor uint32
}

// New returns an empty AvailSet. tsColor is the transaction's color mask
// (zero disables color-based scoring); prefColor is the preferred color used
// when a dependency spec itself carries no color. dirEq may be nil, in which
// case file lookups across differing directories never match.
func New(tsColor, prefColor uint32, dirEq DirEquivalence) *AvailSet {
	return &AvailSet{tsColor: tsColor, prefColor: prefColor, dirEq: dirEq}
}

// Add appends te to the set, extending any index already built.
func (s *AvailSet) Add(te *Te) {
	idx := len(s.list)
	s.list = append(s.list, pkgEntry{te: te, provides: te.Provides, obsoletes: te.Obsoletes, files: te.Files})
	if s.providesHash != nil {
		s.indexProvides(idx, te.Provides)
	}
	if s.fileHash != nil {
		s.indexFiles(idx, te.Files)
	}
}

// Del tombstones te's slot: future lookups skip it, per invariant I4.
func (s *AvailSet) Del(te *Te) {
	for i := range s.list {
		if s.list[i].te == te {
			s.list[i].te = nil
			return
		}
	}
}

func (s *AvailSet) indexProvides(idx int, provides []Ds) {
	for i, p := range provides {
		s.providesHash[p.Name] = append(s.providesHash[p.Name], provideRef{pkgIdx: idx, entryIdx: i})
	}
}

func (s *AvailSet) indexFiles(idx int, files []string) {
	for i, f := range files {
		dir, base := splitFile(f)
		s.fileHash[base] = append(s.fileHash[base], fileRef{pkgIdx: idx, dir: dir, entryIdx: i})
	}
}

func (s *AvailSet) ensureProvidesIndex() {
	if s.providesHash != nil {
		return
	}
	s.providesHash = make(map[string][]provideRef, len(s.list)*2+8)
	for i, e := range s.list {
		s.indexProvides(i, e.provides)
	}
}

func (s *AvailSet) ensureFileIndex() {
	if s.fileHash != nil {
		return
	}
	s.fileHash = make(map[string][]fileRef, len(s.list)*4+8)
	for i, e := range s.list {
		s.indexFiles(i, e.files)
	}
}

func splitFile(p string) (dir, base string) {
	dir, base = path.Split(p)
	if len(dir) > 1 && dir[len(dir)-1] == '/' {
		dir = dir[:len(dir)-1]
	}
	return dir, base
}

// AllSatisfies returns every live candidate that satisfies ds, in insertion
// order. requester, if non-nil, is excluded when ds is one of requester's own
// conflicts or obsoletes entries (self-conflicts and self-obsoletes never
// satisfy themselves).
func (s *AvailSet) AllSatisfies(ds Ds, requester *Te) []*Te {
	isObsolete := ds.Tag == header.TagObsName
	if len(ds.Name) > 0 && ds.Name[0] == '/' && !isObsolete {
		if candidates := s.fileSatisfies(ds, requester); len(candidates) > 0 {
			return candidates
		}
	}

	s.ensureProvidesIndex()
	var out []*Te
	for _, ref := range s.providesHash[ds.Name] {
		e := &s.list[ref.pkgIdx]
		if e.te == nil {
			continue
		}
		if requester != nil && e.te == requester && requester.ownsDs(ds) {
			continue
		}
		if isObsolete {
			if evrMatches(e.te.nevr().EVR, ds) {
				out = append(out, e.te)
			}
			continue
		}
		if evrMatches(e.provides[ref.entryIdx].EVR, ds) {
			out = append(out, e.te)
		}
	}
	return out
}

func (s *AvailSet) fileSatisfies(ds Ds, requester *Te) []*Te {
	s.ensureFileIndex()
	dir, base := splitFile(ds.Name)
	var out []*Te
	for _, ref := range s.fileHash[base] {
		e := &s.list[ref.pkgIdx]
		if e.te == nil {
			continue
		}
		if requester != nil && e.te == requester && requester.ownsDs(ds) {
			continue
		}
		if ref.dir == dir {
			out = append(out, e.te)
			continue
		}
		if s.dirEq != nil && s.dirEq.SameDir(ref.dir, dir) {
			out = append(out, e.te)
		}
	}
	return out
}

// evrMatches reports whether candEVR satisfies ds's sense-flag constraint.
// A Ds carrying none of Less/Greater/Equal is unversioned, and matches
// unconditionally once the name (or file) lookup has already succeeded.
func evrMatches(candEVR rpmver.Version, ds Ds) bool {
	const rangeBits = header.SenseLess | header.SenseGreater | header.SenseEqual
	if ds.Flags&rangeBits == 0 {
		return true
	}
	switch c := rpmver.Compare(&candEVR, &ds.EVR); {
	case c < 0:
		return ds.Flags&header.SenseLess != 0
	case c > 0:
		return ds.Flags&header.SenseGreater != 0
	default:
		return ds.Flags&header.SenseEqual != 0
	}
}

// Satisfies returns the single best candidate satisfying ds on behalf of te,
// or nil if none does. Candidates are scored by color preference and
// self-provide bonus; ties keep the first (insertion-order) match.
func (s *AvailSet) Satisfies(te *Te, ds Ds) *Te {
	candidates := s.AllSatisfies(ds, te)
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	bestScore := s.score(te, ds, best)
	for _, c := range candidates[1:] {
		if sc := s.score(te, ds, c); sc > bestScore {
			best, bestScore = c, sc
		}
	}
	return best
}

func (s *AvailSet) score(te *Te, ds Ds, cand *Te) int {
	score := 0
	if s.tsColor != 0 {
		want := ds.Color
		if want == 0 {
			want = s.prefColor
		}
		if want != 0 && cand.Color&want != 0 {
			score += 2
		}
	}
	if cand == te {
		score++
	}
	return score
}

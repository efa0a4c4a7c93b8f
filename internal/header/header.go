// Package header implements the default Header collaborator: parsing of an
// installed-package header blob into the tag-indexed view the rest of the
// engine needs (identity, dependency specs, file lists), plus the EVR
// comparator used to order Ds values.
package header

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/quay/rpmdb/internal/rpmver"
)

// SenseFlags classifies one dependency edge, mirroring the bits a real
// package manager's sense-flags field carries.
type SenseFlags uint32

const (
	SenseAny SenseFlags = 0

	SenseLess    SenseFlags = 1 << 1
	SenseGreater SenseFlags = 1 << 2
	SenseEqual   SenseFlags = 1 << 3

	SensePreReq      SenseFlags = 1 << 6
	SenseScriptPre   SenseFlags = 1 << 7
	SenseScriptPost  SenseFlags = 1 << 8
	SenseScriptPreun SenseFlags = 1 << 9

	SenseRPMLib    SenseFlags = 1 << 24
	SenseConfig    SenseFlags = 1 << 25
	SensePreTrans  SenseFlags = 1 << 26
	SensePostTrans SenseFlags = 1 << 27
)

// Skip reports whether this dependency should never produce an ordering
// edge: it describes a capability the packaging tool itself provides
// (RPMLIB), a config-file ownership marker, or a pre/post-transaction-only
// hint.
func (f SenseFlags) Skip() bool {
	return f&(SenseRPMLib|SenseConfig|SensePreTrans|SensePostTrans) != 0
}

// Dep is one dependency spec ("Ds" in the ordering engine's vocabulary):
// tag identifies which list it came from (requires/provides/obsoletes),
// name and EVR identify what's depended on, and Flags carries the
// comparison operator plus any of the skip/pre-req bits above.
type Dep struct {
	Tag   Tag
	Name  string
	EVR   rpmver.Version
	Flags SenseFlags
	Color uint32
}

// CompareVersion orders two Deps by their EVR, the way the Header module's
// comparator is specified to.
func CompareVersion(a, b Dep) int { return rpmver.Compare(&a.EVR, &b.EVR) }

// Header is a parsed installed-package header.
type Header struct {
	tags   *io.SectionReader
	data   *io.SectionReader
	infos  []entryInfo
	region Tag
}

const (
	entryInfoSize = 16
	preambleSize  = 8
)

// Parse loads the tag/data arenas from r and verifies the header's region
// trailer (or falls back to lax verification for a pre-region bdb-era
// header).
func Parse(ctx context.Context, r io.ReaderAt) (*Header, error) {
	h := &Header{}
	if err := h.loadArenas(r); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	var isLegacy bool
	switch err := h.verifyRegion(); {
	case err == nil:
	case errors.Is(err, errNoRegion):
		isLegacy = true
	default:
		return nil, fmt.Errorf("header: %w", err)
	}
	if err := h.verifyInfo(isLegacy); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	return h, nil
}

var errNoRegion = errors.New("no initial region tag")

func (h *Header) loadArenas(r io.ReaderAt) error {
	const (
		tagsMax  = 0x0000ffff
		dataMax  = 0x0fffffff
		sizeMax  = 64 * 1024 * 1024
	)
	b := make([]byte, preambleSize)
	if _, err := r.ReadAt(b, 0); err != nil {
		return fmt.Errorf("failed to read preamble: %w", err)
	}
	tagsCt := binary.BigEndian.Uint32(b[0:])
	dataSz := binary.BigEndian.Uint32(b[4:])
	if tagsCt == 0 {
		return errors.New("no tags")
	}
	if tagsCt > tagsMax {
		return fmt.Errorf("tag count %d out of range", tagsCt)
	}
	if dataSz > dataMax {
		return fmt.Errorf("data length %d out of range", dataSz)
	}
	tagsSz := int64(tagsCt) * entryInfoSize
	if sz := preambleSize + tagsSz + int64(dataSz); sz >= sizeMax {
		return fmt.Errorf("header size %d exceeds bound", sz)
	}
	h.tags = io.NewSectionReader(r, preambleSize, tagsSz)
	h.data = io.NewSectionReader(r, preambleSize+tagsSz, int64(dataSz))
	h.infos = make([]entryInfo, tagsCt)
	return nil
}

func (h *Header) verifyRegion() error {
	const regionTagCount = 16
	region, err := h.loadTag(0)
	if err != nil {
		return err
	}
	switch region.Tag {
	case TagHeaderSignatures, TagHeaderImmutable, TagHeaderImage:
	default:
		return fmt.Errorf("region tag not found, got %v: %w", region.Tag, errNoRegion)
	}
	if region.Type != TypeBin || region.count != regionTagCount {
		return fmt.Errorf("nonsense region tag: %v count %d", region.Type, region.count)
	}

	var trailer entryInfo
	b := make([]byte, entryInfoSize)
	if _, err := h.data.ReadAt(b, int64(region.offset)); err != nil {
		return err
	}
	if err := trailer.unmarshal(b); err != nil {
		return err
	}
	if region.Tag == TagHeaderSignatures && trailer.Tag == TagHeaderImage {
		trailer.Tag = TagHeaderSignatures
	}
	if trailer.Tag != region.Tag || trailer.Type != TypeRegionTag || trailer.count != regionTagCount {
		return fmt.Errorf("bad region trailer: %+v", trailer)
	}
	h.region = region.Tag
	return nil
}

func (h *Header) verifyInfo(lax bool) error {
	lim := len(h.infos)
	start := 1
	if lax {
		start = 0
	}
	var prev int32
	for i := start; i < lim; i++ {
		e, err := h.loadTag(i)
		if err != nil {
			return err
		}
		switch {
		case prev > e.offset:
			return fmt.Errorf("entry %d: prev offset %d > offset %d", i, prev, e.offset)
		case e.Type < TypeMin || e.Type > TypeMax:
			return fmt.Errorf("entry %d: bad type %v", i, e.Type)
		case e.count == 0 || int64(e.count) > h.data.Size():
			return fmt.Errorf("entry %d: bad count %d", i, e.count)
		case (e.Type.alignment()-1)&e.offset != 0:
			return fmt.Errorf("entry %d: misaligned offset %d for type %v", i, e.offset, e.Type)
		case e.offset < 0 || int64(e.offset) > h.data.Size():
			return fmt.Errorf("entry %d: bad offset %d", i, e.offset)
		}
		prev = e.offset
	}
	return nil
}

func (h *Header) loadTag(i int) (*entryInfo, error) {
	e := &h.infos[i]
	if e.Tag == 0 {
		b := make([]byte, entryInfoSize)
		if _, err := h.tags.ReadAt(b, int64(i)*entryInfoSize); err != nil {
			return nil, fmt.Errorf("reading entry %d: %w", i, err)
		}
		if err := e.unmarshal(b); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return e, nil
}

type entryInfo struct {
	Tag    Tag
	Type   Kind
	offset int32
	count  uint32
}

func (e *entryInfo) unmarshal(b []byte) error {
	if len(b) < entryInfoSize {
		return io.ErrShortBuffer
	}
	e.Tag = Tag(int32(binary.BigEndian.Uint32(b[0:4])))
	e.Type = Kind(binary.BigEndian.Uint32(b[4:8]))
	e.offset = int32(binary.BigEndian.Uint32(b[8:12]))
	e.count = binary.BigEndian.Uint32(b[12:16])
	return nil
}

func (h *Header) find(tag Tag) (*entryInfo, bool) {
	for i := range h.infos {
		e, err := h.loadTag(i)
		if err != nil {
			return nil, false
		}
		if e.Tag == tag {
			return e, true
		}
	}
	return nil, false
}

// strings reads a TypeString/TypeStringArray/TypeI18nString entry.
func (h *Header) strings(e *entryInfo) ([]string, error) {
	sc := bufio.NewScanner(io.NewSectionReader(h.data, int64(e.offset), h.data.Size()-int64(e.offset)))
	sc.Split(splitCString)
	out := make([]string, 0, e.count)
	for i := 0; i < int(e.count) && sc.Scan(); i++ {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading string array: %w", err)
	}
	return out, nil
}

func (h *Header) int32s(e *entryInfo) ([]int32, error) {
	sr := io.NewSectionReader(h.data, int64(e.offset), h.data.Size()-int64(e.offset))
	out := make([]int32, e.count)
	b := make([]byte, 4)
	for i := range out {
		if _, err := io.ReadFull(sr, b); err != nil {
			return nil, fmt.Errorf("reading int32 array: %w", err)
		}
		out[i] = int32(binary.BigEndian.Uint32(b))
	}
	return out, nil
}

func splitCString(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Name, Version, Release, and Arch return the package's identity fields,
// or "" when the field is absent. The epoch is read through [Header.EVR],
// which reports a missing epoch as "0".
func (h *Header) Name() string    { return h.str1(TagName) }
func (h *Header) Version() string { return h.str1(TagVersion) }
func (h *Header) Release() string { return h.str1(TagRelease) }
func (h *Header) Arch() string    { return h.str1(TagArch) }

func (h *Header) str1(tag Tag) string {
	e, ok := h.find(tag)
	if !ok {
		return ""
	}
	s, err := h.strings(e)
	if err != nil || len(s) == 0 {
		return ""
	}
	return s[0]
}

// EVR builds this header's own version, for use as the left side of a
// CompareVersion call (e.g. against a dependency spec's required EVR).
func (h *Header) EVR() rpmver.Version {
	epoch := h.str1(TagEpoch)
	if epoch == "" {
		epoch = "0"
	}
	name := h.Name()
	return rpmver.Version{Name: &name, Epoch: epoch, Version: h.Version(), Release: h.Release()}
}

// Provides, Requires, and Obsoletes return this header's dependency specs
// of each kind.
func (h *Header) Provides() []Dep  { return h.deps(TagProvName, TagProvVers, TagProvFlags, TagProvName) }
func (h *Header) Requires() []Dep  { return h.deps(TagRequName, TagRequVers, TagRequFlags, TagRequName) }
func (h *Header) Obsoletes() []Dep { return h.deps(TagObsName, TagObsVers, TagObsFlags, TagObsName) }

func (h *Header) deps(nameTag, evrTag, flagsTag, dsTag Tag) []Dep {
	ne, ok := h.find(nameTag)
	if !ok {
		return nil
	}
	names, err := h.strings(ne)
	if err != nil {
		return nil
	}
	var evrs []string
	if ee, ok := h.find(evrTag); ok {
		evrs, _ = h.strings(ee)
	}
	var flags []int32
	if fe, ok := h.find(flagsTag); ok {
		flags, _ = h.int32s(fe)
	}
	color := h.color()
	out := make([]Dep, len(names))
	for i, n := range names {
		var v rpmver.Version
		if i < len(evrs) && evrs[i] != "" {
			v, _ = rpmver.Parse(evrs[i])
		}
		var f SenseFlags
		if i < len(flags) {
			f = SenseFlags(flags[i])
		}
		out[i] = Dep{Tag: dsTag, Name: n, EVR: v, Flags: f, Color: color}
	}
	return out
}

// Color returns this header's file color bits, used by the ordering engine
// to break ties between otherwise-equal dependency candidates.
func (h *Header) Color() uint32 { return h.color() }

func (h *Header) color() uint32 {
	e, ok := h.find(TagColor)
	if !ok {
		return 0
	}
	v, err := h.int32s(e)
	if err != nil || len(v) == 0 {
		return 0
	}
	return uint32(v[0])
}

// Files reconstructs this header's file list, in tagNum order, from the
// split basenames/dirnames/dirindexes arrays.
func (h *Header) Files() []string {
	be, ok := h.find(TagBasenames)
	if !ok {
		return nil
	}
	base, err := h.strings(be)
	if err != nil {
		return nil
	}
	de, ok := h.find(TagDirnames)
	if !ok {
		return nil
	}
	dirs, err := h.strings(de)
	if err != nil {
		return nil
	}
	ie, ok := h.find(TagDirIndexes)
	if !ok {
		return nil
	}
	idx, err := h.int32s(ie)
	if err != nil || len(idx) != len(base) {
		return nil
	}
	out := make([]string, len(base))
	for i, b := range base {
		di := int(idx[i])
		if di < 0 || di >= len(dirs) {
			continue
		}
		out[i] = dirs[di] + b
	}
	return out
}

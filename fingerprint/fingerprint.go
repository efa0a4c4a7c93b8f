// Package fingerprint implements the directory/symlink fingerprint cache
// used to recognize that two file paths name the same on-disk location once
// intermediate symlinks are taken into account.
package fingerprint

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/quay/zlog"
	"golang.org/x/sys/unix"

	ppath "github.com/quay/rpmdb/pkg/path"
)

// maxSymlinkTraversals bounds the symlink-chasing pass in [Cache.ResolveSymlinks];
// exceeding it most likely means a cycle, and the fingerprint is left as-is.
const maxSymlinkTraversals = 50

// DirEntry is a stat(2)-able directory: the canonical path that was stat'd,
// and the device/inode pair identifying it on disk.
type DirEntry struct {
	DirName string
	Dev     uint64
	Ino     uint64
}

// Fingerprint identifies a file by the directory entry that was actually
// stat'd, plus whatever trailing path components below that directory
// (SubDir) and final component (BaseName) were not themselves stat'd.
//
// Two Fingerprints compare equal iff their (dev, ino, SubDir, BaseName)
// tuples are bit-equal (invariant I5); DirName is informational only.
type Fingerprint struct {
	Entry    *DirEntry
	SubDir   string
	BaseName string
}

// Equal reports whether f and g identify the same file.
func (f Fingerprint) Equal(g Fingerprint) bool {
	if f.Entry == nil || g.Entry == nil {
		return f.Entry == g.Entry && f.SubDir == g.SubDir && f.BaseName == g.BaseName
	}
	return f.Entry.Dev == g.Entry.Dev && f.Entry.Ino == g.Entry.Ino &&
		f.SubDir == g.SubDir && f.BaseName == g.BaseName
}

type fpKey struct {
	dev, ino         uint64
	subDir, baseName string
}

func (f Fingerprint) key() fpKey {
	var dev, ino uint64
	if f.Entry != nil {
		dev, ino = f.Entry.Dev, f.Entry.Ino
	}
	return fpKey{dev: dev, ino: ino, subDir: f.SubDir, baseName: f.BaseName}
}

// symlinkEntry is a file in the transaction whose fingerprint currently sits
// under an unresolved subdirectory, and the symlink target it should be
// spliced through if some ancestor path component turns out to be a symlink
// being installed in this same transaction.
type symlinkEntry struct {
	fp         Fingerprint
	linkTarget string
}

// Cache is a fingerprint cache: a directory-entry table keyed by canonical
// path, shared across every [Cache.Lookup] call for the lifetime of one
// transaction.
type Cache struct {
	dirTable map[string]*DirEntry
	symlinks map[fpKey][]symlinkEntry

	stat func(dir string) (dev, ino uint64, err error)
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		dirTable: make(map[string]*DirEntry),
		symlinks: make(map[fpKey][]symlinkEntry),
		stat:     statDir,
	}
}

func statDir(dir string) (dev, ino uint64, err error) {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		return 0, 0, err
	}
	return uint64(st.Dev), uint64(st.Ino), nil
}

// canonDir canonicalizes dir: absolute paths are used as-is, relative ones
// are joined to the working directory's realpath. The result is cleaned and
// carries exactly one trailing slash.
func canonDir(dir string) (string, error) {
	if !strings.HasPrefix(dir, "/") {
		dir = ppath.CanonicalizeFileName(dir)
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("fingerprint: resolving cwd: %w", err)
		}
		dir = path.Join(wd, dir)
	}
	clean := path.Clean(dir)
	if len(clean) > 1 {
		clean += "/"
	} else {
		clean = "/"
	}
	return clean, nil
}

// parentOf returns the parent of a canonical directory path that carries a
// trailing slash, itself carrying a trailing slash. parentOf("/") is "/".
func parentOf(dir string) string {
	if dir == "/" {
		return "/"
	}
	trimmed := strings.TrimSuffix(dir, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx+1]
}

// Lookup canonicalizes dir, walks upward until it finds a directory prefix
// already stat'd (or stats one fresh), and returns a Fingerprint describing
// base relative to that matched directory.
func (c *Cache) Lookup(dir, base string) (Fingerprint, error) {
	cdn, err := canonDir(dir)
	if err != nil {
		return Fingerprint{}, err
	}

	full := cdn
	for {
		entry, ok := c.dirTable[full]
		if !ok {
			statPath := full
			if full != "/" {
				statPath = strings.TrimSuffix(full, "/")
			}
			dev, ino, statErr := c.stat(statPath)
			if statErr == nil {
				entry = &DirEntry{DirName: full, Dev: dev, Ino: ino}
				c.dirTable[full] = entry
			}
		}
		if entry != nil {
			subdir := strings.TrimSuffix(cdn[len(full)-1:], "/")
			return Fingerprint{Entry: entry, SubDir: subdir, BaseName: base}, nil
		}
		if full == "/" {
			return Fingerprint{}, fmt.Errorf("fingerprint: stat %q: no such directory", full)
		}
		full = parentOf(full)
	}
}

// LookupEquals reports whether fp identifies the same file as (dir, base).
func (c *Cache) LookupEquals(fp Fingerprint, dir, base string) bool {
	other, err := c.Lookup(dir, base)
	if err != nil {
		return false
	}
	return fp.Equal(other)
}

// SameDir reports whether a and b name the same on-disk directory, for use
// as an [github.com/quay/rpmdb/avail.DirEquivalence].
func (c *Cache) SameDir(a, b string) bool {
	if a == b {
		return true
	}
	fa, err := c.Lookup(a, "")
	if err != nil {
		return false
	}
	fb, err := c.Lookup(b, "")
	if err != nil {
		return false
	}
	return fa.Entry != nil && fb.Entry != nil && fa.Entry.Dev == fb.Entry.Dev && fa.Entry.Ino == fb.Entry.Ino &&
		fa.SubDir == fb.SubDir
}

// IndexSymlink registers that the file identified by fp is a symlink being
// installed with the given target, so [Cache.ResolveSymlinks] can splice
// other files' fingerprints through it.
func (c *Cache) IndexSymlink(fp Fingerprint, linkTarget string) {
	if linkTarget == "" {
		return
	}
	k := fp.key()
	c.symlinks[k] = append(c.symlinks[k], symlinkEntry{fp: fp, linkTarget: linkTarget})
}

// ResolveSymlinks rewrites fp in place, following any registered symlink
// that some ancestor component of fp.SubDir resolves to, capped at
// [maxSymlinkTraversals] to break cycles.
func (c *Cache) ResolveSymlinks(ctx context.Context, fp *Fingerprint) {
	for traversals := 0; fp.SubDir != ""; traversals++ {
		if traversals >= maxSymlinkTraversals {
			zlog.Warn(ctx).
				Str("basename", fp.BaseName).
				Msg("fingerprint: too many symlink traversals, leaving as-is")
			return
		}
		link, rest, found := c.matchSymlinkPrefix(fp)
		if !found {
			return
		}
		newPath := link.linkTarget
		if rest != "" {
			newPath = path.Join(newPath, rest)
		}
		next, err := c.Lookup(newPath, fp.BaseName)
		if err != nil {
			zlog.Info(ctx).Err(err).Msg("fingerprint: symlink target lookup failed, leaving as-is")
			return
		}
		*fp = next
	}
}

// matchSymlinkPrefix scans fp's SubDir component by component (outermost
// first), looking for a registered symlink at each prefix. It returns the
// matching symlink entry and the unmatched remainder of the subdir.
func (c *Cache) matchSymlinkPrefix(fp *Fingerprint) (symlinkEntry, string, bool) {
	sub := strings.TrimPrefix(fp.SubDir, "/")
	pos := 0
	for pos < len(sub) {
		end := strings.IndexByte(sub[pos:], '/')
		if end < 0 {
			end = len(sub)
		} else {
			end += pos
		}
		component := sub[:end]
		candidate := Fingerprint{Entry: fp.Entry, SubDir: "", BaseName: component}
		if entries, ok := c.symlinks[candidate.key()]; ok {
			rest := strings.TrimPrefix(sub[end:], "/")
			return entries[len(entries)-1], rest, true
		}
		if end >= len(sub) {
			break
		}
		pos = end + 1
	}
	return symlinkEntry{}, "", false
}

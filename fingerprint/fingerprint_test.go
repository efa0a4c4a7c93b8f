package fingerprint

import (
	"context"
	"testing"
)

func fakeCache(stats map[string][2]uint64) *Cache {
	c := New()
	c.stat = func(dir string) (uint64, uint64, error) {
		v, ok := stats[dir]
		if !ok {
			return 0, 0, errNoSuchDir(dir)
		}
		return v[0], v[1], nil
	}
	return c
}

type errNoSuchDir string

func (e errNoSuchDir) Error() string { return "no such directory: " + string(e) }

func TestLookupExactDirectory(t *testing.T) {
	c := fakeCache(map[string][2]uint64{
		"/usr/bin": {1, 100},
	})
	fp, err := c.Lookup("/usr/bin", "foo")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if fp.Entry == nil || fp.Entry.Dev != 1 || fp.Entry.Ino != 100 {
		t.Fatalf("Lookup: entry = %+v", fp.Entry)
	}
	if fp.SubDir != "" {
		t.Fatalf("SubDir = %q, want empty", fp.SubDir)
	}
	if fp.BaseName != "foo" {
		t.Fatalf("BaseName = %q, want foo", fp.BaseName)
	}
}

func TestLookupWalksUpOnMiss(t *testing.T) {
	c := fakeCache(map[string][2]uint64{
		"/usr": {2, 200},
	})
	fp, err := c.Lookup("/usr/bin", "foo")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if fp.Entry == nil || fp.Entry.Dev != 2 {
		t.Fatalf("Lookup: entry = %+v", fp.Entry)
	}
	if fp.SubDir != "/bin" {
		t.Fatalf("SubDir = %q, want /bin", fp.SubDir)
	}
}

func TestEqualComparesDevInoSubdirBase(t *testing.T) {
	entry := &DirEntry{Dev: 1, Ino: 2}
	a := Fingerprint{Entry: entry, SubDir: "/x", BaseName: "f"}
	b := Fingerprint{Entry: entry, SubDir: "/x", BaseName: "f"}
	if !a.Equal(b) {
		t.Fatal("expected equal fingerprints")
	}
	c := Fingerprint{Entry: entry, SubDir: "/y", BaseName: "f"}
	if a.Equal(c) {
		t.Fatal("expected unequal fingerprints (different subdir)")
	}
}

func TestSameDirViaDifferentPaths(t *testing.T) {
	c := fakeCache(map[string][2]uint64{
		"/usr/bin": {1, 100},
		"/bin":     {1, 100},
	})
	if !c.SameDir("/usr/bin", "/bin") {
		t.Fatal("expected /usr/bin and /bin to be the same directory")
	}
}

func TestResolveSymlinksSplicesPath(t *testing.T) {
	c := fakeCache(map[string][2]uint64{
		"/":        {9, 9},
		"/usr/opt": {1, 1},
	})

	// "opt" is a symlink living directly in "/", pointing at "/usr/opt".
	linkFp, err := c.Lookup("/", "opt")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	c.IndexSymlink(linkFp, "/usr/opt")

	fp, err := c.Lookup("/opt/lib", "foo.so")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if fp.SubDir != "/opt/lib" {
		t.Fatalf("precondition failed, SubDir = %q", fp.SubDir)
	}

	c.ResolveSymlinks(context.Background(), &fp)
	if fp.Entry == nil || fp.Entry.Dev != 1 || fp.Entry.Ino != 1 {
		t.Fatalf("ResolveSymlinks: entry = %+v", fp.Entry)
	}
	if fp.SubDir != "/lib" {
		t.Fatalf("ResolveSymlinks: SubDir = %q, want /lib", fp.SubDir)
	}
}

package backend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDummyHandleIsReadOnlyAndEmpty(t *testing.T) {
	h, err := Open(Dummy, Options{})
	if err != nil {
		t.Fatalf("Open(Dummy): %v", err)
	}
	defer h.Close()
	if !h.ReadOnly() {
		t.Fatal("dummy handle: ReadOnly() = false, want true")
	}
	if _, err := h.CursorOpen(true); err != ErrReadOnlyCursor {
		t.Fatalf("CursorOpen(write=true) = %v, want ErrReadOnlyCursor", err)
	}
	cur, err := h.CursorOpen(false)
	if err != nil {
		t.Fatalf("CursorOpen(write=false): %v", err)
	}
	defer cur.Close()
	if _, ok, err := cur.PkgGet(1); ok || err != nil {
		t.Fatalf("PkgGet on empty dummy cursor = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
	if err := cur.PkgPut(1, []byte("x")); err != ErrReadOnlyCursor {
		t.Fatalf("PkgPut on read-only dummy cursor = %v, want ErrReadOnlyCursor", err)
	}
}

func TestDetectRecognizesLegacyMarker(t *testing.T) {
	dir := t.TempDir()
	raw := make([]byte, 512)
	// little-endian hash magic at byte offset 12
	raw[12], raw[13], raw[14], raw[15] = 0x61, 0x15, 0x06, 0x00
	if err := os.WriteFile(filepath.Join(dir, "Packages"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if v != Legacy {
		t.Fatalf("Detect = %v, want Legacy", v)
	}
}

func TestDetectRejectsUnrelatedPackagesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Packages"), []byte("not a database"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Detect(dir); err == nil {
		t.Fatal("Detect on a non-database Packages file: want error, got nil")
	}
}

func TestDetectErrorsOnEmptyDir(t *testing.T) {
	if _, err := Detect(t.TempDir()); err == nil {
		t.Fatal("Detect on an empty directory: want error, got nil")
	}
}

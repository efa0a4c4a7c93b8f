package pkgdb

import (
	"context"
	"errors"
	"testing"

	"github.com/quay/rpmdb/backend"
	"github.com/quay/rpmdb/internal/header"
)

func TestPutGetRemoveRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(backend.File, dir, backend.ReadWrite, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	hdrNum, err := db.PutHeader(ctx, []byte("a header blob"))
	if err != nil {
		t.Fatalf("PutHeader: %v", err)
	}
	if hdrNum == 0 {
		t.Fatal("PutHeader returned hdrNum 0, which is reserved for the allocation counter")
	}

	var found bool
	for rec, err := range db.IterHeaders(ctx) {
		if err != nil {
			t.Fatalf("IterHeaders: %v", err)
		}
		if rec.HdrNum == hdrNum {
			found = true
			if string(rec.Blob) != "a header blob" {
				t.Fatalf("blob = %q, want %q", rec.Blob, "a header blob")
			}
		}
	}
	if !found {
		t.Fatalf("hdrNum %d not found by IterHeaders", hdrNum)
	}

	if err := db.Remove(ctx, hdrNum); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for rec, err := range db.IterHeaders(ctx) {
		if err != nil {
			t.Fatalf("IterHeaders after remove: %v", err)
		}
		if rec.HdrNum == hdrNum {
			t.Fatalf("hdrNum %d still present after Remove", hdrNum)
		}
	}
}

func TestRemoveMissingReportsNotFound(t *testing.T) {
	ctx := context.Background()
	db, err := Open(backend.File, t.TempDir(), backend.ReadWrite, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	err = db.Remove(ctx, 999)
	if err == nil {
		t.Fatal("Remove on a missing hdrNum: want error, got nil")
	}
}

func TestPutHeaderReadOnlyIsRejected(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	rw, err := Open(backend.File, dir, backend.ReadWrite, nil)
	if err != nil {
		t.Fatalf("Open(ReadWrite): %v", err)
	}
	rw.Close()

	ro, err := Open(backend.File, dir, backend.ReadOnly, nil)
	if err != nil {
		t.Fatalf("Open(ReadOnly): %v", err)
	}
	defer ro.Close()

	if _, err := ro.PutHeader(ctx, []byte("x")); err == nil {
		t.Fatal("PutHeader against a read-only PkgDb: want error, got nil")
	}
}

func TestMinWritesSkipsSecondaryIndexes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	failIndexer := func(h *header.Header) ([]IndexEntry, error) {
		return nil, errors.New("this indexer must never run under min_writes")
	}

	db, err := OpenWithOptions(backend.File, backend.Options{
		Dir:       dir,
		Mode:      backend.ReadWrite,
		MinWrites: true,
	}, map[string]Indexer{"name": failIndexer})
	if err != nil {
		t.Fatalf("OpenWithOptions: %v", err)
	}
	defer db.Close()

	if len(db.indexes) != 0 {
		t.Fatalf("indexes opened under min_writes: %v", db.indexes)
	}

	hdrNum, err := db.PutHeader(ctx, []byte("a header blob"))
	if err != nil {
		t.Fatalf("PutHeader under min_writes: %v", err)
	}

	if err := db.Remove(ctx, hdrNum); err != nil {
		t.Fatalf("Remove under min_writes: %v", err)
	}
}

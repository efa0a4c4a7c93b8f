package pkgdb

import (
	"context"
	"fmt"
	"iter"
	"runtime/trace"

	"github.com/quay/rpmdb/backend"
	"github.com/quay/rpmdb/indexset"
)

// HeaderRecord is one primary-store entry yielded by [PkgDb.IterHeaders].
type HeaderRecord struct {
	HdrNum uint32
	Blob   []byte
}

// IterHeaders walks every record in the primary store, in the order the
// backend's cursor yields them (hdrNum order, except for a legacy hash
// database, which yields records bucket by bucket).
//
// The returned iterator is single-use.
func (db *PkgDb) IterHeaders(ctx context.Context) iter.Seq2[HeaderRecord, error] {
	ctx, task := trace.NewTask(ctx, "pkgdb.IterHeaders")
	return func(yield func(HeaderRecord, error) bool) {
		defer task.End()
		cur, err := db.primary.CursorOpen(false)
		if err != nil {
			yield(HeaderRecord{}, fmt.Errorf("pkgdb: %w", err))
			return
		}
		defer cur.Close()
		for {
			hdrNum, blob, ok, err := cur.PkgNext()
			if err != nil {
				if !yield(HeaderRecord{}, fmt.Errorf("pkgdb: %w", err)) {
					return
				}
				continue
			}
			if !ok {
				return
			}
			if hdrNum == 0 {
				// Key 0 is reserved and is never a header; no allocation
				// counter is stored under it.
				continue
			}
			if !yield(HeaderRecord{HdrNum: hdrNum, Blob: blob}, nil) {
				return
			}
		}
	}
}

// IterByKey walks the index set stored under key in the named secondary
// index, yielding the hdrNum/blob pair for each member whose primary record
// still exists.
func (db *PkgDb) IterByKey(ctx context.Context, tag string, key []byte) iter.Seq2[HeaderRecord, error] {
	return func(yield func(HeaderRecord, error) bool) {
		set, ok, err := db.lookupIndex(tag, key, backend.SearchExact)
		if err != nil {
			yield(HeaderRecord{}, err)
			return
		}
		if !ok {
			return
		}
		db.yieldSet(ctx, set, yield)
	}
}

// PrefixSearch looks up, in the named secondary index, the first index set
// whose key is prefixed by key, and yields its members. Later keys sharing
// the prefix are not visited.
func (db *PkgDb) PrefixSearch(ctx context.Context, tag string, key []byte) iter.Seq2[HeaderRecord, error] {
	return func(yield func(HeaderRecord, error) bool) {
		set, ok, err := db.lookupIndex(tag, key, backend.SearchPrefix)
		if err != nil {
			yield(HeaderRecord{}, err)
			return
		}
		if !ok {
			return
		}
		db.yieldSet(ctx, set, yield)
	}
}

func (db *PkgDb) lookupIndex(tag string, key []byte, mode backend.SearchMode) (*indexset.Set, bool, error) {
	h, ok := db.indexes[tag]
	if !ok {
		return nil, false, fmt.Errorf("pkgdb: no such index %q", tag)
	}
	cur, err := h.CursorOpen(false)
	if err != nil {
		return nil, false, fmt.Errorf("pkgdb: opening index %q cursor: %w", tag, err)
	}
	defer cur.Close()
	set, ok, err := cur.IdxGet(key, mode)
	if err != nil {
		return nil, false, fmt.Errorf("pkgdb: reading index %q: %w", tag, err)
	}
	return set, ok, nil
}

func (db *PkgDb) yieldSet(ctx context.Context, set *indexset.Set, yield func(HeaderRecord, error) bool) {
	cur, err := db.primary.CursorOpen(false)
	if err != nil {
		yield(HeaderRecord{}, fmt.Errorf("pkgdb: %w", err))
		return
	}
	defer cur.Close()
	for _, rec := range set.Records() {
		blob, ok, err := cur.PkgGet(rec.HdrNum)
		if err != nil {
			if !yield(HeaderRecord{}, fmt.Errorf("pkgdb: %w", err)) {
				return
			}
			continue
		}
		if !ok {
			// Index entry outlived its primary record; skip it.
			continue
		}
		if !yield(HeaderRecord{HdrNum: rec.HdrNum, Blob: blob}, nil) {
			return
		}
	}
}

// Package pkgdb implements the package database facade: the owner of one
// primary header store and its secondary indexes, translating between
// header blobs and index-set records.
package pkgdb

import (
	"bytes"
	"context"
	"fmt"
	"runtime/trace"

	"github.com/quay/zlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	rpmdb "github.com/quay/rpmdb"
	"github.com/quay/rpmdb/backend"
	"github.com/quay/rpmdb/indexset"
	"github.com/quay/rpmdb/internal/header"
)

var tracer = otel.Tracer("github.com/quay/rpmdb/pkgdb")

// Indexer computes the (key, tagNum) pairs a parsed header contributes to
// one named secondary index.
type Indexer func(h *header.Header) ([]IndexEntry, error)

// IndexEntry is one secondary-index contribution: the key under which it
// should be filed, and the tagNum (position within its source array) that
// identifies this specific occurrence.
type IndexEntry struct {
	Key    []byte
	TagNum uint32
}

// PkgDb owns one primary store and a set of named secondary indexes, all
// bound to the same backend variant.
type PkgDb struct {
	primary   backend.Handle
	indexes   map[string]backend.Handle
	indexer   map[string]Indexer
	minWrites bool
}

// Open binds a PkgDb rooted at dir, with the given variant, mode, and
// indexers keyed by the tag name each one serves.
func Open(variant backend.Variant, dir string, mode backend.Mode, indexers map[string]Indexer) (*PkgDb, error) {
	return OpenWithOptions(variant, backend.Options{Dir: dir, Mode: mode}, indexers)
}

// OpenWithOptions is like [Open], but opt carries backend tuning (mmap
// size, cache size, fsync behavior, file permissions) in addition to the
// directory and mode. opt.Tag is ignored; it is set per-store internally.
func OpenWithOptions(variant backend.Variant, opt backend.Options, indexers map[string]Indexer) (*PkgDb, error) {
	primaryOpt := opt
	primaryOpt.Tag = ""
	primary, err := backend.Open(variant, primaryOpt)
	if err != nil {
		return nil, fmt.Errorf("pkgdb: opening primary store: %w", err)
	}
	db := &PkgDb{
		primary:   primary,
		indexes:   make(map[string]backend.Handle, len(indexers)),
		indexer:   indexers,
		minWrites: opt.MinWrites,
	}
	if opt.MinWrites {
		zlog.Debug(context.Background()).Msg("pkgdb: min_writes set, secondary indexes will not be opened")
		return db, nil
	}
	for tag := range indexers {
		idxOpt := opt
		idxOpt.Tag = tag
		h, err := backend.Open(variant, idxOpt)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("pkgdb: opening index %q: %w", tag, err)
		}
		db.indexes[tag] = h
	}
	return db, nil
}

// Close releases every backend this PkgDb opened.
func (db *PkgDb) Close() error {
	var err error
	if db.primary != nil {
		err = db.primary.Close()
	}
	for _, h := range db.indexes {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// PutHeader allocates a new hdrNum, writes blob under it in the primary
// store, then files every IndexEntry each configured indexer returns into
// that indexer's index, in tag-ascending order. Returns the assigned hdrNum.
func (db *PkgDb) PutHeader(ctx context.Context, blob []byte) (hdrNum uint32, err error) {
	ctx, span := tracer.Start(ctx, "PutHeader")
	defer span.End()
	ctx, task := trace.NewTask(ctx, "pkgdb.PutHeader")
	defer task.End()

	if db.primary.ReadOnly() {
		return 0, &rpmdb.Error{Op: "PutHeader", Kind: rpmdb.ErrReadOnly}
	}

	var region trace.Region
	region = trace.StartRegion(ctx, "pkgdb.primary.write")
	cur, err := db.primary.CursorOpen(true)
	if err != nil {
		region.End()
		return 0, fmt.Errorf("pkgdb: %w", err)
	}
	hdrNum, err = cur.PkgNew()
	if err != nil {
		cur.Close()
		region.End()
		return 0, fmt.Errorf("pkgdb: allocating hdrNum: %w", err)
	}
	if err := cur.PkgPut(hdrNum, blob); err != nil {
		cur.Close()
		region.End()
		return 0, fmt.Errorf("pkgdb: writing primary record: %w", err)
	}
	if err := cur.Close(); err != nil {
		region.End()
		return 0, fmt.Errorf("pkgdb: committing primary write: %w", err)
	}
	region.End()

	if len(db.indexer) > 0 && !db.minWrites {
		h, err := header.Parse(ctx, bytes.NewReader(blob))
		if err != nil {
			db.rollbackPut(ctx, hdrNum, h, nil)
			return 0, fmt.Errorf("pkgdb: parsing header %d: %w", hdrNum, err)
		}
		tags := sortedKeys(db.indexer)
		for i, tag := range tags {
			if err := db.putIndexed(ctx, tag, hdrNum, h); err != nil {
				zlog.Info(ctx).Err(err).Str("index", tag).Uint32("hdrNum", hdrNum).
					Msg("pkgdb: secondary index write failed, rolling back put")
				db.rollbackPut(ctx, hdrNum, h, tags[:i+1])
				return 0, err
			}
		}
	}
	zlog.Debug(ctx).Uint32("hdrNum", hdrNum).Msg("put header")
	span.SetAttributes(attribute.Int64("pkgdb.hdrnum", int64(hdrNum)))
	return hdrNum, nil
}

// rollbackPut undoes a partially completed PutHeader: it prunes whichever
// indexes in writtenTags already received an entry for hdrNum, then deletes
// the primary record itself. h may be nil when the failure happened before
// any index was touched. Rollback errors are logged, not returned: the
// original failure is what the caller needs to see.
func (db *PkgDb) rollbackPut(ctx context.Context, hdrNum uint32, h *header.Header, writtenTags []string) {
	if h != nil {
		for _, tag := range writtenTags {
			if err := db.pruneIndexed(ctx, tag, hdrNum, h); err != nil {
				zlog.Info(ctx).Err(err).Str("index", tag).Uint32("hdrNum", hdrNum).
					Msg("pkgdb: rollback: failed to prune index entry")
			}
		}
	}
	cur, err := db.primary.CursorOpen(true)
	if err != nil {
		zlog.Info(ctx).Err(err).Uint32("hdrNum", hdrNum).Msg("pkgdb: rollback: failed to open primary cursor")
		return
	}
	defer cur.Close()
	if err := cur.PkgDel(hdrNum); err != nil {
		zlog.Info(ctx).Err(err).Uint32("hdrNum", hdrNum).Msg("pkgdb: rollback: failed to delete primary record")
	}
}

func (db *PkgDb) putIndexed(ctx context.Context, tag string, hdrNum uint32, h *header.Header) error {
	defer trace.StartRegion(ctx, "pkgdb.index.write").End()
	entries, err := db.indexer[tag](h)
	if err != nil {
		return fmt.Errorf("pkgdb: computing index %q: %w", tag, err)
	}
	idx := db.indexes[tag]
	cur, err := idx.CursorOpen(true)
	if err != nil {
		return fmt.Errorf("pkgdb: opening index %q cursor: %w", tag, err)
	}
	defer cur.Close()
	for _, e := range entries {
		set, ok, err := cur.IdxGet(e.Key, backend.SearchExact)
		if err != nil {
			return fmt.Errorf("pkgdb: reading index %q key: %w", tag, err)
		}
		if !ok {
			set = indexset.New(1)
		}
		set.Append(indexset.Record{HdrNum: hdrNum, TagNum: e.TagNum}, false)
		if err := cur.IdxPut(e.Key, set); err != nil {
			return fmt.Errorf("pkgdb: writing index %q: %w", tag, err)
		}
	}
	return nil
}

// Remove deletes the primary record at hdrNum and prunes every index entry
// it contributed, index-first so no index can outlive its primary record.
func (db *PkgDb) Remove(ctx context.Context, hdrNum uint32) error {
	ctx, span := tracer.Start(ctx, "Remove")
	defer span.End()
	ctx, task := trace.NewTask(ctx, "pkgdb.Remove")
	defer task.End()

	if db.primary.ReadOnly() {
		return &rpmdb.Error{Op: "Remove", Kind: rpmdb.ErrReadOnly}
	}

	rcur, err := db.primary.CursorOpen(false)
	if err != nil {
		return fmt.Errorf("pkgdb: %w", err)
	}
	blob, ok, err := rcur.PkgGet(hdrNum)
	rcur.Close()
	if err != nil {
		return fmt.Errorf("pkgdb: reading record %d: %w", hdrNum, err)
	}
	if !ok {
		return &rpmdb.Error{Op: "Remove", Kind: rpmdb.ErrNotFound, Message: fmt.Sprintf("hdrNum %d", hdrNum)}
	}

	if len(db.indexer) > 0 && !db.minWrites {
		h, err := header.Parse(ctx, bytes.NewReader(blob))
		if err != nil {
			return fmt.Errorf("pkgdb: parsing header %d: %w", hdrNum, err)
		}
		for _, tag := range sortedKeys(db.indexer) {
			if err := db.pruneIndexed(ctx, tag, hdrNum, h); err != nil {
				return err
			}
		}
	}

	cur, err := db.primary.CursorOpen(true)
	if err != nil {
		return fmt.Errorf("pkgdb: %w", err)
	}
	defer cur.Close()
	if err := cur.PkgDel(hdrNum); err != nil {
		return fmt.Errorf("pkgdb: deleting primary record %d: %w", hdrNum, err)
	}
	zlog.Debug(ctx).Uint32("hdrNum", hdrNum).Msg("removed header")
	return nil
}

func (db *PkgDb) pruneIndexed(ctx context.Context, tag string, hdrNum uint32, h *header.Header) error {
	defer trace.StartRegion(ctx, "pkgdb.index.prune").End()
	entries, err := db.indexer[tag](h)
	if err != nil {
		return fmt.Errorf("pkgdb: computing index %q: %w", tag, err)
	}
	idx := db.indexes[tag]
	cur, err := idx.CursorOpen(true)
	if err != nil {
		return fmt.Errorf("pkgdb: opening index %q cursor: %w", tag, err)
	}
	defer cur.Close()
	for _, e := range entries {
		set, ok, err := cur.IdxGet(e.Key, backend.SearchExact)
		if err != nil {
			return fmt.Errorf("pkgdb: reading index %q key: %w", tag, err)
		}
		if !ok {
			continue
		}
		set.Prune(indexset.Record{HdrNum: hdrNum, TagNum: e.TagNum}, true)
		if set.Count() == 0 {
			if err := cur.IdxDel(e.Key); err != nil {
				return fmt.Errorf("pkgdb: deleting index %q key: %w", tag, err)
			}
			continue
		}
		if err := cur.IdxPut(e.Key, set); err != nil {
			return fmt.Errorf("pkgdb: writing index %q: %w", tag, err)
		}
	}
	return nil
}

// AllocateNextHdrNum returns the backend's next primary key (its PkgNew)
// without writing a record under it. Used for callers that must know the
// key before the blob is ready to write. No counter record is kept under
// key 0: the file backend advances its bucket sequence, so later calls
// return higher keys, while the sqlite backend derives the key from the
// highest stored hdrNum, so it returns the same key until a record is
// written.
func (db *PkgDb) AllocateNextHdrNum(ctx context.Context) (uint32, error) {
	defer trace.StartRegion(ctx, "pkgdb.AllocateNextHdrNum").End()
	cur, err := db.primary.CursorOpen(true)
	if err != nil {
		return 0, fmt.Errorf("pkgdb: %w", err)
	}
	defer cur.Close()
	n, err := cur.PkgNew()
	if err != nil {
		return 0, fmt.Errorf("pkgdb: %w", err)
	}
	return n, nil
}

func sortedKeys(m map[string]Indexer) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

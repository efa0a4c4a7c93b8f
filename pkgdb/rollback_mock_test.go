package pkgdb

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/quay/rpmdb/backend"
	"github.com/quay/rpmdb/indexset"
	"github.com/quay/rpmdb/internal/header"
)

// TestRollbackPutDeletesPrimaryRecord covers the no-index case: a failure
// discovered before any index was touched still must delete the primary
// record PutHeader had already committed.
func TestRollbackPutDeletesPrimaryRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := backend.NewMockHandle(ctrl)
	cur := backend.NewMockCursor(ctrl)

	primary.EXPECT().CursorOpen(true).Return(cur, nil)
	cur.EXPECT().PkgDel(uint32(7)).Return(nil)
	cur.EXPECT().Close().Return(nil)

	db := &PkgDb{primary: primary, indexes: map[string]backend.Handle{}, indexer: map[string]Indexer{}}
	db.rollbackPut(context.Background(), 7, nil, nil)
}

// TestRollbackPutPrunesWrittenIndexesBeforeDeletingPrimary covers the
// secondary-index-failure case from the error propagation policy: every
// index that already received an entry for hdrNum must have it pruned
// before the primary record is deleted.
func TestRollbackPutPrunesWrittenIndexesBeforeDeletingPrimary(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := backend.NewMockHandle(ctrl)
	primaryCur := backend.NewMockCursor(ctrl)
	byname := backend.NewMockHandle(ctrl)
	bynameCur := backend.NewMockCursor(ctrl)

	entries := []IndexEntry{{Key: []byte("a"), TagNum: 0}}
	indexer := func(*header.Header) ([]IndexEntry, error) { return entries, nil }

	set := indexset.New(1)
	set.Append(indexset.Record{HdrNum: 7, TagNum: 0}, false)

	byname.EXPECT().CursorOpen(true).Return(bynameCur, nil)
	bynameCur.EXPECT().IdxGet([]byte("a"), backend.SearchExact).Return(set, true, nil)
	idxDel := bynameCur.EXPECT().IdxDel([]byte("a")).Return(nil)
	bynameCur.EXPECT().Close().Return(nil)

	primary.EXPECT().CursorOpen(true).Return(primaryCur, nil)
	primaryCur.EXPECT().PkgDel(uint32(7)).Return(nil).After(idxDel)
	primaryCur.EXPECT().Close().Return(nil)

	db := &PkgDb{
		primary: primary,
		indexes: map[string]backend.Handle{"byname": byname},
		indexer: map[string]Indexer{"byname": indexer},
	}
	// h is never dereferenced by this test's indexer, so a zero-value
	// Header stands in for a real parsed one.
	db.rollbackPut(context.Background(), 7, &header.Header{}, []string{"byname"})
}

func TestRollbackPutLogsAndContinuesOnPruneFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := backend.NewMockHandle(ctrl)
	primaryCur := backend.NewMockCursor(ctrl)
	byname := backend.NewMockHandle(ctrl)

	indexer := func(*header.Header) ([]IndexEntry, error) { return nil, errors.New("boom") }

	// pruneIndexed fails computing entries before ever touching the index's
	// cursor, so byname itself sees no calls: rollback must still proceed
	// to delete the primary record.

	primary.EXPECT().CursorOpen(true).Return(primaryCur, nil)
	primaryCur.EXPECT().PkgDel(uint32(7)).Return(nil)
	primaryCur.EXPECT().Close().Return(nil)

	db := &PkgDb{
		primary: primary,
		indexes: map[string]backend.Handle{"byname": byname},
		indexer: map[string]Indexer{"byname": indexer},
	}
	db.rollbackPut(context.Background(), 7, &header.Header{}, []string{"byname"})
}

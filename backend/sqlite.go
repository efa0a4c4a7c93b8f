package backend

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/doug-martin/goqu/v8"
	_ "github.com/doug-martin/goqu/v8/dialect/sqlite3"
	_ "modernc.org/sqlite"

	"github.com/quay/rpmdb/indexset"
)

// sqliteHandle is the relational backend: one SQLite file per store, with
// a single table shaped for whichever of primary or index it holds.
type sqliteHandle struct {
	gdb      *goqu.Database
	table    goqu.Expression
	readOnly bool
	isIndex  bool
}

func openSqlite(opt Options) (Handle, error) {
	name := opt.Tag
	tableName := "idx_" + name
	isIndex := true
	if name == "" {
		name, tableName, isIndex = "rpmdb", "packages", false
	}
	q := url.Values{}
	if opt.Mode == ReadOnly {
		q.Add("_pragma", "query_only(1)")
	}
	if opt.NoFsync {
		q.Add("_pragma", "synchronous(0)")
	}
	if opt.CacheSize > 0 {
		q.Add("_pragma", fmt.Sprintf("cache_size(-%d)", opt.CacheSize/1024))
	}
	if opt.MmapSize > 0 {
		q.Add("_pragma", fmt.Sprintf("mmap_size(%d)", opt.MmapSize))
	}
	u := url.URL{
		Scheme:   "file",
		Opaque:   filepath.Join(opt.Dir, name+".sqlite"),
		RawQuery: q.Encode(),
	}
	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return nil, fmt.Errorf("backend: sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("backend: sqlite: %w", err)
	}
	h := &sqliteHandle{
		gdb:      goqu.Dialect("sqlite3").DB(db),
		table:    goqu.T(tableName),
		readOnly: opt.Mode == ReadOnly,
		isIndex:  isIndex,
	}
	if opt.Mode == ReadWrite {
		var stmt string
		if isIndex {
			stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key BLOB PRIMARY KEY, payload BLOB NOT NULL)`, tableName)
		} else {
			stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (hnum INTEGER PRIMARY KEY, blob BLOB NOT NULL)`, tableName)
		}
		if _, err := h.gdb.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("backend: sqlite: %w", err)
		}
	}
	return h, nil
}

func (h *sqliteHandle) Close() error   { return h.gdb.Db.Close() }
func (h *sqliteHandle) Sync() error    { return nil }
func (h *sqliteHandle) Verify() error  { return h.gdb.Db.Ping() }
func (h *sqliteHandle) ReadOnly() bool { return h.readOnly }

func (h *sqliteHandle) CursorOpen(write bool) (Cursor, error) {
	if write && h.readOnly {
		return nil, fmt.Errorf("backend: sqlite: %w", ErrReadOnlyCursor)
	}
	tx, err := h.gdb.Begin()
	if err != nil {
		return nil, fmt.Errorf("backend: sqlite: %w", err)
	}
	return &sqliteCursor{h: h, tx: tx, write: write}, nil
}

type sqliteCursor struct {
	h       *sqliteHandle
	tx      *goqu.TxDatabase
	write   bool
	iterKey []byte
	iterNum int64
	started bool
}

func (c *sqliteCursor) Close() error {
	if c.write {
		return c.tx.Commit()
	}
	return c.tx.Rollback()
}

func (c *sqliteCursor) ds() *goqu.SelectDataset { return c.tx.From(c.h.table) }

func (c *sqliteCursor) PkgGet(hdrNum uint32) ([]byte, bool, error) {
	var row struct {
		Blob []byte `db:"blob"`
	}
	ok, err := c.ds().Select("blob").Where(goqu.C("hnum").Eq(hdrNum)).ScanStruct(&row)
	if err != nil {
		return nil, false, fmt.Errorf("backend: sqlite: %w", err)
	}
	return row.Blob, ok, nil
}

func (c *sqliteCursor) PkgPut(hdrNum uint32, blob []byte) error {
	_, err := c.tx.Insert(c.h.table).
		Rows(goqu.Record{"hnum": hdrNum, "blob": blob}).
		OnConflict(goqu.DoUpdate("hnum", goqu.Record{"blob": blob})).
		Executor().Exec()
	return err
}

func (c *sqliteCursor) PkgDel(hdrNum uint32) error {
	_, err := c.tx.Delete(c.h.table).Where(goqu.C("hnum").Eq(hdrNum)).Executor().Exec()
	return err
}

func (c *sqliteCursor) PkgNew() (uint32, error) {
	var row struct {
		Max sql.NullInt64 `db:"m"`
	}
	_, err := c.ds().Select(goqu.MAX("hnum").As("m")).ScanStruct(&row)
	if err != nil {
		return 0, fmt.Errorf("backend: sqlite: %w", err)
	}
	return uint32(row.Max.Int64) + 1, nil
}

func (c *sqliteCursor) PkgNext() (uint32, []byte, bool, error) {
	var row struct {
		Hnum int64  `db:"hnum"`
		Blob []byte `db:"blob"`
	}
	ok, err := c.ds().
		Where(goqu.C("hnum").Gt(c.iterNum)).
		Order(goqu.C("hnum").Asc()).
		Limit(1).
		ScanStruct(&row)
	if err != nil {
		return 0, nil, false, fmt.Errorf("backend: sqlite: %w", err)
	}
	if !ok {
		return 0, nil, false, nil
	}
	c.started, c.iterNum = true, row.Hnum
	return uint32(row.Hnum), row.Blob, true, nil
}

func (c *sqliteCursor) IdxGet(key []byte, search SearchMode) (*indexset.Set, bool, error) {
	var row struct {
		Key     []byte `db:"key"`
		Payload []byte `db:"payload"`
	}
	var ds *goqu.SelectDataset
	switch search {
	case SearchExact:
		ds = c.ds().Where(goqu.C("key").Eq(key))
	case SearchPrefix:
		ds = c.ds().Where(goqu.C("key").Gte(key)).Order(goqu.C("key").Asc()).Limit(1)
	default:
		return nil, false, fmt.Errorf("backend: sqlite: unknown search mode %d", search)
	}
	ok, err := ds.ScanStruct(&row)
	if err != nil {
		return nil, false, fmt.Errorf("backend: sqlite: %w", err)
	}
	if !ok || (search == SearchPrefix && !hasPrefix(row.Key, key)) {
		return nil, false, nil
	}
	set, err := indexset.Decode(row.Payload, false)
	if err != nil {
		return nil, false, fmt.Errorf("backend: sqlite: %w", err)
	}
	return set, true, nil
}

func (c *sqliteCursor) IdxPut(key []byte, set *indexset.Set) error {
	payload := set.Encode(false)
	_, err := c.tx.Insert(c.h.table).
		Rows(goqu.Record{"key": key, "payload": payload}).
		OnConflict(goqu.DoUpdate("key", goqu.Record{"payload": payload})).
		Executor().Exec()
	return err
}

func (c *sqliteCursor) IdxDel(key []byte) error {
	_, err := c.tx.Delete(c.h.table).Where(goqu.C("key").Eq(key)).Executor().Exec()
	return err
}

func (c *sqliteCursor) IdxNext() ([]byte, *indexset.Set, bool, error) {
	var row struct {
		Key     []byte `db:"key"`
		Payload []byte `db:"payload"`
	}
	ds := c.ds().Order(goqu.C("key").Asc()).Limit(1)
	if c.started {
		ds = ds.Where(goqu.C("key").Gt(c.iterKey))
	}
	ok, err := ds.ScanStruct(&row)
	if err != nil {
		return nil, nil, false, fmt.Errorf("backend: sqlite: %w", err)
	}
	if !ok {
		return nil, nil, false, nil
	}
	c.started, c.iterKey = true, row.Key
	set, err := indexset.Decode(row.Payload, false)
	if err != nil {
		return nil, nil, false, fmt.Errorf("backend: sqlite: %w", err)
	}
	return row.Key, set, true, nil
}

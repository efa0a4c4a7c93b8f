package backend

import "github.com/quay/rpmdb/indexset"

// dummyHandle implements every operation as a well-defined no-op: reads
// always miss, writes always fail with ErrReadOnlyCursor. It exists so that
// the facade's error paths (ReadOnly propagation, missing-key handling) can
// be exercised without standing up a real on-disk database.
type dummyHandle struct{}

func openDummy(Options) (Handle, error) { return dummyHandle{}, nil }

func (dummyHandle) Close() error   { return nil }
func (dummyHandle) Sync() error    { return nil }
func (dummyHandle) Verify() error  { return nil }
func (dummyHandle) ReadOnly() bool { return true }

func (dummyHandle) CursorOpen(write bool) (Cursor, error) {
	if write {
		return nil, ErrReadOnlyCursor
	}
	return dummyCursor{}, nil
}

type dummyCursor struct{}

func (dummyCursor) Close() error                                       { return nil }
func (dummyCursor) PkgGet(uint32) ([]byte, bool, error)                 { return nil, false, nil }
func (dummyCursor) PkgPut(uint32, []byte) error                        { return ErrReadOnlyCursor }
func (dummyCursor) PkgDel(uint32) error                                { return ErrReadOnlyCursor }
func (dummyCursor) PkgNew() (uint32, error)                            { return 0, ErrReadOnlyCursor }
func (dummyCursor) PkgNext() (uint32, []byte, bool, error)             { return 0, nil, false, nil }
func (dummyCursor) IdxGet([]byte, SearchMode) (*indexset.Set, bool, error) { return nil, false, nil }
func (dummyCursor) IdxPut([]byte, *indexset.Set) error                 { return ErrReadOnlyCursor }
func (dummyCursor) IdxDel([]byte) error                                { return ErrReadOnlyCursor }
func (dummyCursor) IdxNext() ([]byte, *indexset.Set, bool, error)       { return nil, nil, false, nil }

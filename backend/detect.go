package backend

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// markerFiles maps the file a backend advertises its presence with, within
// a database directory, to the variant it identifies. Checked in order;
// the first match wins.
var markerFiles = []struct {
	name    string
	variant Variant
}{
	{"Packages", Legacy},
	{"rpmdb.sqlite", Sqlite},
	{"primary.kv", File},
}

// Detect inspects dir for the marker files each backend advertises and
// returns the variant bound to it. It does not open the database.
func Detect(dir string) (Variant, error) {
	for _, m := range markerFiles {
		p := filepath.Join(dir, m.name)
		fi, err := os.Stat(p)
		switch {
		case err == nil && fi.Mode().IsRegular():
			if m.variant == Legacy {
				if ok, err := legacyMagicMatches(p); err != nil {
					return 0, err
				} else if !ok {
					continue
				}
			}
			return m.variant, nil
		case os.IsNotExist(err):
			continue
		case err != nil:
			return 0, fmt.Errorf("backend: detecting variant in %s: %w", dir, err)
		}
	}
	return 0, fmt.Errorf("backend: no recognized database in %s", dir)
}

// legacyMagicMatches reports whether p's first 512 bytes carry a legacy
// hash or btree magic number, distinguishing a real legacy database from an
// unrelated file that happens to be named "Packages".
func legacyMagicMatches(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, fmt.Errorf("backend: %w", err)
	}
	defer f.Close()
	var buf [16]byte
	if _, err := f.ReadAt(buf[:], 0); err != nil {
		return false, nil
	}
	switch binary.LittleEndian.Uint32(buf[12:]) {
	case 0x00061561, 0x61150600, 0x00053162, 0x62310500:
		return true, nil
	default:
		return false, nil
	}
}

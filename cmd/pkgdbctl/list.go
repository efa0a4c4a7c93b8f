package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/quay/rpmdb/backend"
	"github.com/quay/rpmdb/internal/header"
	"github.com/quay/rpmdb/pkgdb"
)

func openDB(cfg *commonConfig) (*pkgdb.PkgDb, error) {
	variant, err := cfg.DB.Variant()
	if err != nil {
		return nil, err
	}
	opt := cfg.DB.Options(cfg.Dir, backend.ReadOnly)
	return pkgdb.OpenWithOptions(variant, opt, nil)
}

// List prints every header currently in the primary store, one line each.
func List(ctx context.Context, cfg *commonConfig, args []string) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	for rec, err := range db.IterHeaders(ctx) {
		if err != nil {
			return err
		}
		h, err := header.Parse(ctx, bytes.NewReader(rec.Blob))
		if err != nil {
			fmt.Printf("%d\t<unparseable: %v>\n", rec.HdrNum, err)
			continue
		}
		evr := h.EVR()
		fmt.Printf("%d\t%s-%s.%s\n", rec.HdrNum, h.Name(), evr.EVR(), h.Arch())
	}
	return nil
}

package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/quay/rpmdb/avail"
	"github.com/quay/rpmdb/internal/header"
	"github.com/quay/rpmdb/order"
)

// OrderCmd loads every header in the primary store as an install-side
// transaction element, computes an install order for the whole set, and
// prints it in the order it would be applied.
func OrderCmd(ctx context.Context, cfg *commonConfig, args []string) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	added := avail.New(0, 0, nil)
	var elems []*avail.Te
	for rec, err := range db.IterHeaders(ctx) {
		if err != nil {
			return err
		}
		h, err := header.Parse(ctx, bytes.NewReader(rec.Blob))
		if err != nil {
			continue
		}
		evr := h.EVR()
		te := &avail.Te{
			Name:      h.Name(),
			EVR:       evr,
			Arch:      h.Arch(),
			Color:     h.Color(),
			Kind:      avail.Added,
			HdrNum:    rec.HdrNum,
			Requires:  h.Requires(),
			Obsoletes: h.Obsoletes(),
			Provides:  h.Provides(),
			Files:     h.Files(),
		}
		added.Add(te)
		elems = append(elems, te)
	}

	result, err := order.Order(ctx, added, avail.New(0, 0, nil), elems, 0)
	if err != nil {
		return fmt.Errorf("pkgdbctl: order: %w", err)
	}
	for _, te := range result {
		fmt.Printf("%d\t%s\n", te.HdrNum, te.Name)
	}
	return nil
}

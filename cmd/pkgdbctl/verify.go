package main

import (
	"context"
	"fmt"

	"github.com/quay/rpmdb/backend"
)

// Verify opens the primary store directly against the backend (bypassing
// the facade, since [backend.Handle.Verify] isn't exposed through pkgdb)
// and runs whatever consistency check the selected backend supports.
func Verify(ctx context.Context, cfg *commonConfig, args []string) error {
	variant, err := cfg.DB.Variant()
	if err != nil {
		return err
	}
	h, err := backend.Open(variant, cfg.DB.Options(cfg.Dir, backend.ReadOnly))
	if err != nil {
		return err
	}
	defer h.Close()
	if err := h.Verify(); err != nil {
		return fmt.Errorf("pkgdbctl: verify: %w", err)
	}
	fmt.Println("ok")
	return nil
}

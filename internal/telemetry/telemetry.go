// Package telemetry wires up the process-wide logger the command-line
// front end installs before doing any real work.
package telemetry

import (
	"os"

	"github.com/quay/zlog"
	"github.com/rs/zerolog"
)

// Setup builds a console logger at the given level and installs it as the
// default [zlog] logger, so every package's zlog.Debug/Info/etc calls reach
// it regardless of whether the caller threaded a logger through ctx.
func Setup(levelName string) error {
	lvl, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return err
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().Timestamp().Logger().
		Level(lvl)
	zlog.Set(&log)
	return nil
}

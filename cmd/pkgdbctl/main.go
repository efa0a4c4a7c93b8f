// Command pkgdbctl inspects and orders a package database directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/quay/rpmdb/config"
	"github.com/quay/rpmdb/internal/telemetry"
)

var cleanup sync.WaitGroup

type commonConfig struct {
	Dir string
	DB  config.Config
}

type subcmd func(context.Context, *commonConfig, []string) error

func main() {
	var exit int
	defer func() {
		if exit != 0 {
			os.Exit(exit)
		}
	}()
	ctx, done := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		<-ch
		done()
	}()

	var cfg commonConfig
	cfg.DB = config.Default()
	fs := flag.NewFlagSet("pkgdbctl", flag.ExitOnError)
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nSubcommands\n\n")
		fmt.Fprintln(out, "list\n\tprint every header in the primary store")
		fmt.Fprintln(out, "order\n\tcompute and print an install order for every header in the primary store")
		fmt.Fprintln(out, "verify\n\trun the backend's consistency check")
		fmt.Fprintln(out)
	}

	fs.StringVar(&cfg.Dir, "dir", ".", "package database directory")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	cfg.DB.RegisterFlags(fs)

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	if err := telemetry.Setup(*logLevel); err != nil {
		log.Fatal(err)
	}

	var cmd subcmd
	switch n := fs.Arg(0); n {
	case "list":
		cmd = List
	case "order":
		cmd = OrderCmd
	case "verify":
		cmd = Verify
	case "":
		fs.Usage()
		os.Exit(99)
	default:
		fs.Usage()
		fmt.Fprintf(os.Stderr, "\nunknown subcommand %q\n", n)
		os.Exit(99)
	}

	var cmdErr error
	cmdctx, cmddone := context.WithCancel(ctx)
	go func() {
		defer cmddone()
		cmdErr = cmd(cmdctx, &cfg, fs.Args()[1:])
	}()

	select {
	case <-ctx.Done():
		log.Print(ctx.Err())
		exit = 1
	case <-cmdctx.Done():
		if cmdErr != nil {
			log.Print(cmdErr)
			exit = 2
		}
	}
	cleanup.Wait()
}

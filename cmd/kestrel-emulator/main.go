// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// kestrel-emulator runs the Kestrel kernel as a host process.
//
// The emulator builds a board (interrupt controller, deferred call
// scheduler and the selected digest engine), runs the digest
// known-answer self-tests, verifies the configured application
// binaries against their .sha256 sidecars, and then services the
// kernel loop until it receives SIGINT or SIGTERM.
//
// Usage:
//
//	kestrel-emulator -a build/blink,build/console -e 4 --digest_engine hardware
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kestrel-os/kestrel/lib/clock"
	"github.com/kestrel-os/kestrel/lib/emuconfig"
	"github.com/kestrel-os/kestrel/lib/process"
	"github.com/kestrel-os/kestrel/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		process.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	config, err := emuconfig.FromArgs(args, emuconfig.DefaultFileReader{})
	if errors.Is(err, pflag.ErrHelp) {
		printHelp(stdout)
		return nil
	}
	if err != nil {
		return &process.UsageError{Err: err}
	}
	if config.ShowVersion {
		version.Print(stdout, emuconfig.ProgramName)
		return nil
	}

	var holder emuconfig.Holder
	holder.Set(config)

	newTextHandler := func(options *slog.HandlerOptions) slog.Handler {
		return slog.NewTextHandler(stderr, options)
	}
	logger := slog.New(config.EmulationLog.Handler(newTextHandler))
	appLogger := slog.New(config.AppLog.Handler(newTextHandler))

	if err := config.CreateRuntimeDir(); err != nil {
		return err
	}
	defer config.Close()
	logger.Info("emulator starting",
		"version", version.Info(),
		"digest_engine", config.Board,
		"apps", len(config.Apps),
		"syscall_rx", config.SyscallRxPath(),
		"syscall_tx", config.SyscallTxPath(),
	)

	board, err := newBoard(config.Board, clock.Real(), logger)
	if err != nil {
		return err
	}
	return boot(ctx, board, &holder, logger, appLogger)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `Kestrel host emulator: runs the kernel loop and its digest engine as a
host process.

Usage:
  %s [flags]

Flags:
%s`, emuconfig.ProgramName, emuconfig.Usage())
}

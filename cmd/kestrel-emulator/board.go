// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/kestrel-os/kestrel/lib/clock"
	"github.com/kestrel-os/kestrel/lib/deferred"
	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/digest/hardware"
	"github.com/kestrel-os/kestrel/lib/digest/software"
	"github.com/kestrel-os/kestrel/lib/emuconfig"
	"github.com/kestrel-os/kestrel/lib/irq"
	"github.com/kestrel-os/kestrel/lib/kernel"
)

const (
	interruptLines   = 4
	digestLine       = irq.Line(2)
	deferredCapacity = 8
)

// board is the emulated chip: peripherals plus the kernel loop that
// services them.
type board struct {
	clock      clock.Clock
	interrupts *irq.Controller
	scheduler  *deferred.Scheduler
	kernel     *kernel.Kernel
	engine     digest.Engine

	// device is set on the hardware board.
	device *hardware.Device
}

func newBoard(selection emuconfig.Board, clk clock.Clock, logger *slog.Logger) (*board, error) {
	b := &board{
		clock:      clk,
		interrupts: irq.New(interruptLines),
		scheduler:  deferred.New(deferredCapacity),
	}

	switch selection {
	case emuconfig.BoardSoftware:
		b.engine = software.New(b.scheduler, software.Options{Logger: logger})
	case emuconfig.BoardHardware:
		b.device = hardware.NewDevice(clk, b.interrupts, digestLine, hardware.Options{})
		b.engine = hardware.New(b.device, logger)
	default:
		return nil, fmt.Errorf("unknown digest engine %q", selection)
	}

	var err error
	b.kernel, err = kernel.New(kernel.Config{
		Interrupts: b.interrupts,
		Deferred:   b.scheduler,
		Logger:     logger.With("component", "kernel"),
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

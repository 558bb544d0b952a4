// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kestrel-os/kestrel/lib/deferred"
	"github.com/kestrel-os/kestrel/lib/irq"
)

// Config holds the kernel's collaborators.
type Config struct {
	Interrupts *irq.Controller
	Deferred   *deferred.Scheduler

	// Logger is optional. Nil discards.
	Logger *slog.Logger
}

// Stats counts work done by the loop.
type Stats struct {
	Passes        uint64
	Interrupts    uint64
	DeferredCalls uint64
}

// Kernel is the main loop. It is not safe for concurrent use; only
// irq.Controller.Raise and deferred.Scheduler.Set may be called from
// other goroutines while Run is active.
type Kernel struct {
	interrupts *irq.Controller
	deferred   *deferred.Scheduler
	logger     *slog.Logger
	stats      Stats
}

// New returns a Kernel. Interrupts and Deferred are required.
func New(config Config) (*Kernel, error) {
	if config.Interrupts == nil {
		return nil, errors.New("kernel: interrupt controller is required")
	}
	if config.Deferred == nil {
		return nil, errors.New("kernel: deferred call scheduler is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Kernel{
		interrupts: config.Interrupts,
		deferred:   config.Deferred,
		logger:     logger,
	}, nil
}

// Step runs one service point: service interrupts, then one deferred
// drain. Returns the number of handlers run.
func (k *Kernel) Step() int {
	interrupts := k.interrupts.Service()
	calls := k.deferred.Drain()

	k.stats.Passes++
	k.stats.Interrupts += uint64(interrupts)
	k.stats.DeferredCalls += uint64(calls)
	return interrupts + calls
}

// RunSteps runs n service points.
func (k *Kernel) RunSteps(n int) {
	for range n {
		k.Step()
	}
}

// Pending reports whether an interrupt or deferred call is waiting.
func (k *Kernel) Pending() bool {
	return k.interrupts.HasPending() || k.deferred.HasPending()
}

// Run loops until ctx is cancelled, sleeping whenever nothing is
// pending. Returns ctx.Err().
func (k *Kernel) Run(ctx context.Context) error {
	k.logger.Info("kernel loop started")
	for {
		if err := ctx.Err(); err != nil {
			k.logger.Info("kernel loop stopped",
				"passes", k.stats.Passes,
				"interrupts", k.stats.Interrupts,
				"deferred_calls", k.stats.DeferredCalls,
			)
			return err
		}

		k.Step()
		if k.Pending() {
			continue
		}

		select {
		case <-ctx.Done():
		case <-k.interrupts.Notify():
		case <-k.deferred.Notify():
		}
	}
}

// Stats returns the loop counters.
func (k *Kernel) Stats() Stats { return k.stats }

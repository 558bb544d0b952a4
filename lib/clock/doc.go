// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for emulated
// peripherals.
//
// Emulated hardware completes its commands after a configured latency.
// Drivers and devices take a [Clock] instead of calling time.AfterFunc
// directly so tests can substitute [Fake] and fire completions
// deterministically with [FakeClock.Advance]:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	device := hardware.NewDevice(c, controller, line, options)
//	// ... issue a command ...
//	c.Advance(options.Latency) // the device raises its interrupt now
//
// In production, [Real] delegates to the time package.
package clock

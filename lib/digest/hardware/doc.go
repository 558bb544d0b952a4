// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package hardware implements the digest capability on top of an
// HMAC/SHA-256 peripheral, with an emulated peripheral for the host
// kernel.
//
// [Device] models the peripheral: a bounded message FIFO, a digest
// register, a status register, and one interrupt line. Each command
// finishes after Options.Latency on the injected clock and then raises
// the line. The device never calls into the driver; the timer callback
// only raises the line, and the kernel loop later runs the driver's
// interrupt handler.
//
// [Engine] is the driver. AddData accepts as much of the caller's
// window as fits in the FIFO, so a long buffer may need several
// AddData calls; the return value says how many bytes were taken.
// Completions are delivered from [Engine.HandleInterrupt]. A command
// that finishes with a fault status is reported to the client as an
// error wrapping digest.ErrData, together with the returned buffer,
// and the peripheral's accumulated state is discarded.
package hardware

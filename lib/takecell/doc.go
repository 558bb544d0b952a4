// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package takecell provides a single-slot ownership exchange.
//
// A [Cell] holds at most one value. Whoever calls [Cell.Take] owns the
// value until it is handed back with [Cell.Put]. Engines and clients
// park buffers in cells at every asynchronous boundary: the engine puts
// the caller's buffer into its cell when it accepts an operation and
// takes it out again to pass it to the completion callback.
//
// Taking from an empty cell or putting into an occupied one means two
// parties believe they own the same buffer. That is a contract
// violation, not a runtime condition, so both panic with a [*Fault].
package takecell

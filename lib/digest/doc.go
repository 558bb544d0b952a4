// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest defines the split-phase digest capability shared by
// every SHA-256 / HMAC-SHA256 engine in the kernel.
//
// An [Engine] accepts or rejects each request synchronously and
// reports the outcome later through exactly one call on its [Client].
// Buffers travel with the request: [Engine.AddData] takes a
// *leasable.Buffer, [Engine.RunHash] and [Engine.Verify] take a
// [Length]-byte slice, and the matching callback hands the very same
// buffer back. Between acceptance and callback the engine owns the
// buffer and the caller must not touch it.
//
// An engine runs one operation at a time. A request made while another
// is outstanding fails with [ErrBusy] and changes nothing: the caller
// still owns the buffer it tried to pass, and the data accumulated so
// far is intact. Synchronous errors are [ErrBusy], [ErrSize] and
// [ErrNoClient]. Failures during an accepted operation are delivered
// only through the callback, wrapped around [ErrData].
//
// Engines differ in how completions arrive. The software engine in
// package software resumes through the deferred call scheduler; the
// hardware engine in package hardware completes from its interrupt
// handler. Both satisfy the same contract, which package digesttest
// checks.
//
// [Machine] is the state tracker both engines embed.
package digest

// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package selftest runs known-answer digest checks at boot.
//
// A [Test] owns a data region and an expected digest, both allocated
// once. Run hands the data to the engine; when AddDataDone returns it,
// the test passes the expected digest to Verify, and VerificationDone
// reports whether the engine produced the known answer. Buffers go
// back into the test's exchange slots on every callback, so a Test can
// be run again after it finishes.
//
// [Fixtures] returns the standard known answers: SHA-256 of
// "hello world", SHA-256 of twelve repetitions of "hello " (72 bytes,
// crossing a block boundary), and HMAC-SHA256 with a 0xA1-filled key
// over 32 bytes of 0x20.
package selftest

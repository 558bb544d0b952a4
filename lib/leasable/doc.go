// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package leasable provides a zero-copy window over a fixed byte
// region.
//
// A [Buffer] wraps a region the caller allocated once (typically at
// boot) and tracks an active offset and length. Split-phase operations
// consume the window from the front as they accept bytes, so one
// physical region can be fed to an engine across several calls without
// copying. The window only ever narrows; a caller that wants to reuse
// the whole region creates a new Buffer over [Buffer.Region].
//
// A Buffer is handed to a digest engine by pointer and comes back
// through the completion callback as the same pointer. Identity of the
// pointer is how callers know the engine returned their buffer and not
// a substitute.
//
// This package has no dependencies on other Kestrel packages.
package leasable

// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package appcheck verifies application binaries through the digest
// engine before they are launched.
//
// A [Checker] processes its apps one after another on a single engine.
// Each binary is loaded into a region and streamed through AddData,
// re-issuing the call while the engine accepts only part of the
// window. If the binary has a sidecar digest (see package binhash) the
// checker asks the engine to Verify it; otherwise it runs RunHash and
// reports the digest. The completion callback runs once, after the
// last app.
package appcheck

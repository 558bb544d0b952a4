// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package digesttest checks that a digest.Engine honours the
// split-phase contract.
//
// Engine packages call [RunConformance] from their tests with a
// factory that builds a fresh engine together with a Step function
// advancing whatever drives its completions (a kernel service point,
// plus emulated time for hardware). The suite compares results with
// crypto/sha256 and crypto/hmac and checks buffer identity, the busy
// rule, size rejection, and that no completion is delivered inline.
//
// [Recorder] is a digest.Client that records every completion; it is
// also useful on its own in engine-specific tests.
package digesttest

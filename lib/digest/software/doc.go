// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package software implements the digest capability in software.
//
// The [Engine] has no interrupt source, so it never completes an
// operation inside the call that requested it. Every accepted request
// parks its buffer, marks the engine pending in the deferred call
// scheduler, and returns. The work happens in HandleDeferredCall at the
// next kernel service point, which is also where the client callback
// runs. Callers therefore see the same timing as with a hardware
// engine: synchronous acceptance, asynchronous result.
//
// Data is absorbed in 64-byte blocks, at most Options.BlocksPerPass
// blocks per resumption. A partial block is carried across AddData
// calls. When a buffer is longer than one pass allows, the engine
// re-marks itself pending and continues on the next drain, leaving the
// rest of the kernel a turn in between.
//
// The block compression and the HMAC key schedule come from
// crypto/sha256 and crypto/hmac.
package software

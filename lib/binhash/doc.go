// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash reads and writes SHA-256 digests of application
// binaries.
//
// A binary at path may carry a sidecar file at path + ".sha256" holding
// its expected digest, either as 64 hex characters or in the
// "<hex>  <name>" line format sha256sum produces. The boot-time
// integrity check verifies a binary against its sidecar through the
// digest engine; binaries without one are hashed and the digest is
// logged.
//
//   - [HashFile] streams a file through crypto/sha256 on the host
//   - [FormatDigest] and [ParseDigest] convert to and from hex
//   - [ReadSidecar] and [WriteSidecar] handle the sidecar file
package binhash

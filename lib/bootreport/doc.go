// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootreport records the outcome of the emulator's boot
// sequence in the runtime directory.
//
// After the digest self-tests and the application check finish, the
// emulator writes a [Report] to <runtime dir>/boot.cbor. A host-side
// harness reads it to learn which engine ran, whether the self-tests
// passed, and which applications were verified, without scraping
// logs. The file is CBOR (package codec) and is written atomically:
// temporary file, fsync, rename, parent directory fsync.
package bootreport

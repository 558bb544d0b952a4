// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for Kestrel binaries.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected with
// -ldflags -X and default to "unknown" / "0.1.0-dev" in development
// builds and tests:
//
//	go build -ldflags "-X github.com/kestrel-os/kestrel/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// [Info] formats the one-line --version output, [Full] adds the Go
// toolchain and platform.
package version

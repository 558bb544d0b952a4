// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint helpers for Kestrel binaries: the
// raw stderr output used before the structured logger exists, and the
// exit codes main reports.
package process

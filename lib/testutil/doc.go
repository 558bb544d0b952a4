// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Kestrel packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern used when a test waits on a kernel loop running in another
// goroutine. They are the only place tests use wall-clock timeouts;
// everything else drives time through lib/clock's fake clock.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil

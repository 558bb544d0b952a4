// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package kernel runs the host kernel's main loop.
//
// The loop has one service point. Each pass services raised interrupt
// lines, then drains the deferred call scheduler exactly once. Every
// driver callback in the system runs from one of those two calls, so
// the loop is the only place where "the rest of the system" gets to run
// between a request and its completion. When nothing is pending the
// loop sleeps until an interrupt is raised, a deferred call is set, or
// the context is cancelled.
//
// [Kernel.Step] runs a single pass and is what tests and boot-time
// self-tests use to drive the system deterministically.
package kernel

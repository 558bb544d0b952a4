// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package deferred provides the kernel's deferred call scheduler.
//
// Components that have no interrupt source of their own (software
// digest engines, virtual timers) register a [Client] at boot and call
// [Scheduler.Set] when they need to run "later". The kernel's service
// point calls [Scheduler.Drain] once per pass, which resumes every
// client that was pending when the pass began, in registration order.
//
// A client that marks itself pending again from inside its resumption
// is not run again in the same pass; it waits for the next Drain. This
// keeps a self-rescheduling client from monopolising the kernel loop
// and bounds the call depth of every completion to one frame above the
// service point.
//
// The registry has a fixed capacity chosen at construction. Register
// is only legal before the first Drain; registering past capacity or
// after the kernel started draining panics.
package deferred

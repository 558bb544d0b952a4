// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package irq emulates an interrupt controller for the host kernel.
//
// Emulated peripherals finish their work on other goroutines (timer
// callbacks from [clock.Clock.AfterFunc]). They must not touch driver
// state from there, so they only call [Controller.Raise], which sets a
// per-line flag. The kernel loop calls [Controller.Service] at its
// service point, and that is where each pending line's [Handler] runs.
// Handlers therefore execute on the same logical thread as every other
// driver callback, which is the property real interrupt handlers get
// by deferring work out of interrupt context.
//
// Lines are attached at boot and are serviced in line-number order.
package irq

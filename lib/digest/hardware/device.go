// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"time"

	"github.com/kestrel-os/kestrel/lib/clock"
	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/irq"
)

const (
	// DefaultFIFODepth is the message FIFO size in bytes.
	DefaultFIFODepth = 2048

	// DefaultLatency is how long a command takes to finish.
	DefaultLatency = 50 * time.Microsecond
)

// ErrDeviceBusy is returned when a command is issued before the
// previous one was acknowledged.
var ErrDeviceBusy = errors.New("hardware: device busy")

// Status is the peripheral status register.
type Status int

const (
	// StatusIdle accepts a command.
	StatusIdle Status = iota
	// StatusDone holds a finished command's result until acknowledged.
	StatusDone
	// StatusFault holds a failed command until acknowledged.
	StatusFault
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusDone:
		return "done"
	case StatusFault:
		return "fault"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Options configures a Device.
type Options struct {
	// FIFODepth is the message FIFO size. Zero means
	// DefaultFIFODepth.
	FIFODepth int

	// Latency is the command completion time. Zero means
	// DefaultLatency; negative completes immediately.
	Latency time.Duration
}

// Device is an emulated HMAC/SHA-256 peripheral. A command does its
// work when it is issued and holds the result in the status and digest
// registers; only the interrupt is delayed. All methods run on the
// kernel loop.
type Device struct {
	clock      clock.Clock
	interrupts *irq.Controller
	line       irq.Line
	latency    time.Duration

	fifo      []byte
	primitive hash.Hash
	digest    [digest.Length]byte
	status    Status

	fault     error
	lastFault error
}

// NewDevice returns a Device in SHA-256 mode whose completions raise
// line on interrupts.
func NewDevice(clk clock.Clock, interrupts *irq.Controller, line irq.Line, options Options) *Device {
	if options.FIFODepth <= 0 {
		options.FIFODepth = DefaultFIFODepth
	}
	if options.Latency == 0 {
		options.Latency = DefaultLatency
	}
	return &Device{
		clock:      clk,
		interrupts: interrupts,
		line:       line,
		latency:    options.Latency,
		fifo:       make([]byte, 0, options.FIFODepth),
		primitive:  sha256.New(),
	}
}

// Attach connects handler to the device's interrupt line.
func (d *Device) Attach(handler irq.Handler) {
	d.interrupts.Attach(d.line, handler)
}

// Configure selects the algorithm and clears the digest state. A nil
// key selects plain SHA-256.
func (d *Device) Configure(key []byte) {
	if key == nil {
		d.primitive = sha256.New()
	} else {
		d.primitive = hmac.New(sha256.New, key)
	}
	d.Reset()
}

// Reset discards accumulated data and any FIFO contents.
func (d *Device) Reset() {
	d.primitive.Reset()
	d.fifo = d.fifo[:0]
}

// FIFOFree returns the number of bytes the FIFO can take.
func (d *Device) FIFOFree() int { return cap(d.fifo) - len(d.fifo) }

// Write copies as much of p as fits into the FIFO and returns the
// count.
func (d *Device) Write(p []byte) int {
	n := min(len(p), d.FIFOFree())
	d.fifo = append(d.fifo, p[:n]...)
	return n
}

// Process starts absorbing the FIFO contents. The line is raised when
// the command finishes.
func (d *Device) Process() error {
	return d.start(func() {
		d.primitive.Write(d.fifo)
		d.fifo = d.fifo[:0]
	})
}

// Finish starts digest finalization. The digest register is valid
// once the command finished with StatusDone.
func (d *Device) Finish() error {
	return d.start(func() {
		d.primitive.Write(d.fifo)
		d.fifo = d.fifo[:0]
		d.primitive.Sum(d.digest[:0])
		d.primitive.Reset()
	})
}

// InjectFault makes the next command finish with StatusFault and err
// as its cause.
func (d *Device) InjectFault(err error) { d.fault = err }

// Status returns the status register.
func (d *Device) Status() Status { return d.status }

// Acknowledge clears a finished status so the next command can start.
// It returns the fault cause when the command failed.
func (d *Device) Acknowledge() error {
	status := d.status
	d.status = StatusIdle
	if status == StatusFault {
		return d.lastFault
	}
	return nil
}

// Digest returns the digest register.
func (d *Device) Digest() []byte { return d.digest[:] }

func (d *Device) start(work func()) error {
	if d.status != StatusIdle {
		return ErrDeviceBusy
	}
	if d.fault != nil {
		d.lastFault = d.fault
		d.fault = nil
		d.status = StatusFault
		d.Reset()
	} else {
		work()
		d.status = StatusDone
	}

	// The timer callback only raises the line. The status register is
	// read by the interrupt handler on the kernel loop.
	if d.latency < 0 {
		d.interrupts.Raise(d.line)
		return nil
	}
	d.clock.AfterFunc(d.latency, func() { d.interrupts.Raise(d.line) })
	return nil
}

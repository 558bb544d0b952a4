// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"crypto/hmac"
	"fmt"
	"log/slog"

	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/leasable"
	"github.com/kestrel-os/kestrel/lib/takecell"
)

// Engine drives a Device through the digest contract.
type Engine struct {
	logger  *slog.Logger
	device  *Device
	machine digest.Machine
	mode    digest.Mode

	data   takecell.Cell[*leasable.Buffer]
	output takecell.Cell[[]byte]
}

var _ digest.Engine = (*Engine)(nil)

// New returns an Engine for device and attaches it to the device's
// interrupt line. Call it at boot.
func New(device *Device, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	engine := &Engine{
		logger: logger.With("engine", "hardware"),
		device: device,
	}
	device.Attach(engine)
	return engine
}

// SetClient installs the completion receiver, or returns digest.ErrBusy
// while an operation is outstanding.
func (e *Engine) SetClient(client digest.Client) error { return e.machine.SetClient(client) }

// Mode returns the current algorithm.
func (e *Engine) Mode() digest.Mode { return e.mode }

// State returns the operation in progress.
func (e *Engine) State() digest.State { return e.machine.State() }

// AddData moves as much of data's window as fits into the device FIFO
// and starts processing it. Returns the number of bytes accepted,
// which may be less than data.Remaining().
func (e *Engine) AddData(data *leasable.Buffer) (int, error) {
	if err := e.machine.Check(); err != nil {
		return 0, err
	}
	accepted := e.device.Write(data.Active())
	if err := data.Consume(accepted); err != nil {
		panic(err)
	}
	if err := e.device.Process(); err != nil {
		panic(fmt.Sprintf("hardware: process command rejected while driver idle: %v", err))
	}
	e.data.Put(data)
	e.machine.Begin(digest.StateAddingData)
	return accepted, nil
}

// SetModeSHA256 selects plain SHA-256 and discards accumulated data.
func (e *Engine) SetModeSHA256() error {
	if err := e.machine.CheckIdle(); err != nil {
		return err
	}
	e.mode = digest.ModeSHA256
	e.device.Configure(nil)
	e.machine.Reset()
	return nil
}

// SetModeHMACSHA256 loads key into the device and discards accumulated
// data.
func (e *Engine) SetModeHMACSHA256(key [digest.KeyLength]byte) error {
	if err := e.machine.CheckIdle(); err != nil {
		return err
	}
	e.mode = digest.ModeHMACSHA256
	e.device.Configure(key[:])
	e.machine.Reset()
	return nil
}

// RunHash starts finalization into digestBuffer.
func (e *Engine) RunHash(digestBuffer []byte) error {
	return e.finish(digestBuffer, digest.StateHashing)
}

// Verify starts finalization and compares the result with expected.
func (e *Engine) Verify(expected []byte) error {
	return e.finish(expected, digest.StateVerifying)
}

// ClearData discards accumulated data.
func (e *Engine) ClearData() error {
	if err := e.machine.CheckIdle(); err != nil {
		return err
	}
	e.device.Reset()
	e.machine.Reset()
	return nil
}

func (e *Engine) finish(buffer []byte, state digest.State) error {
	if err := e.machine.Check(); err != nil {
		return err
	}
	if err := digest.CheckLength(buffer); err != nil {
		return err
	}
	if err := e.device.Finish(); err != nil {
		panic(fmt.Sprintf("hardware: finish command rejected while driver idle: %v", err))
	}
	e.output.Put(buffer)
	e.machine.Begin(state)
	return nil
}

// HandleInterrupt completes the outstanding operation. The kernel loop
// calls it when the device's line is serviced.
func (e *Engine) HandleInterrupt() {
	if e.machine.Idle() {
		status := e.device.Status()
		e.logger.Warn("interrupt with no operation outstanding", "status", status, "error", e.device.Acknowledge())
		return
	}

	fault := e.device.Acknowledge()
	var err error
	if fault != nil {
		err = fmt.Errorf("%w: %v", digest.ErrData, fault)
		e.logger.Error("device fault", "operation", e.machine.State(), "error", fault)
	}

	switch e.machine.State() {
	case digest.StateAddingData:
		data := e.data.Take()
		if err != nil {
			e.machine.Reset()
		}
		client := e.machine.Finish()
		client.AddDataDone(data, err)

	case digest.StateHashing:
		buffer := e.output.Take()
		if err == nil {
			copy(buffer, e.device.Digest())
		}
		client := e.machine.Finish()
		client.HashDone(buffer, err)

	case digest.StateVerifying:
		expected := e.output.Take()
		equal := err == nil && hmac.Equal(e.device.Digest(), expected)
		client := e.machine.Finish()
		client.VerificationDone(expected, equal, err)
	}
}

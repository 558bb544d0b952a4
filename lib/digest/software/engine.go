// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package software

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"log/slog"

	"github.com/kestrel-os/kestrel/lib/deferred"
	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/leasable"
	"github.com/kestrel-os/kestrel/lib/takecell"
)

// DefaultBlocksPerPass is used when Options.BlocksPerPass is zero.
const DefaultBlocksPerPass = 8

// Options configures an Engine.
type Options struct {
	// BlocksPerPass bounds the number of 64-byte blocks absorbed in
	// one deferred call resumption.
	BlocksPerPass int

	// Logger receives debug records for each completion. Nil
	// discards.
	Logger *slog.Logger
}

// Engine is a software SHA-256 / HMAC-SHA256 engine.
type Engine struct {
	logger        *slog.Logger
	scheduler     *deferred.Scheduler
	handle        deferred.Handle
	blocksPerPass int

	machine   digest.Machine
	mode      digest.Mode
	primitive hash.Hash

	// block holds the trailing partial block between passes.
	block       [digest.BlockSize]byte
	blockLength int
	absorbed    uint64

	data   takecell.Cell[*leasable.Buffer]
	output takecell.Cell[[]byte]
	result [digest.Length]byte
}

var _ digest.Engine = (*Engine)(nil)

// New returns an Engine in SHA-256 mode and registers it with
// scheduler. Call it at boot, before the kernel starts draining.
func New(scheduler *deferred.Scheduler, options Options) *Engine {
	if options.BlocksPerPass <= 0 {
		options.BlocksPerPass = DefaultBlocksPerPass
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := &Engine{
		logger:        logger.With("engine", "software"),
		scheduler:     scheduler,
		blocksPerPass: options.BlocksPerPass,
		primitive:     sha256.New(),
	}
	engine.handle = scheduler.Register(engine)
	return engine
}

// SetClient installs the completion receiver.
func (e *Engine) SetClient(client digest.Client) error { return e.machine.SetClient(client) }

// Mode returns the current algorithm.
func (e *Engine) Mode() digest.Mode { return e.mode }

// State returns the operation in progress.
func (e *Engine) State() digest.State { return e.machine.State() }

// AddData accepts all of data's remaining bytes.
func (e *Engine) AddData(data *leasable.Buffer) (int, error) {
	if err := e.machine.Check(); err != nil {
		return 0, err
	}
	accepted := data.Remaining()
	e.data.Put(data)
	e.machine.Begin(digest.StateAddingData)
	e.scheduler.Set(e.handle)
	return accepted, nil
}

// SetModeSHA256 selects plain SHA-256 and discards accumulated data.
func (e *Engine) SetModeSHA256() error {
	if err := e.machine.CheckIdle(); err != nil {
		return err
	}
	e.mode = digest.ModeSHA256
	e.primitive = sha256.New()
	e.reset()
	return nil
}

// SetModeHMACSHA256 selects HMAC-SHA256 keyed with key and discards
// accumulated data.
func (e *Engine) SetModeHMACSHA256(key [digest.KeyLength]byte) error {
	if err := e.machine.CheckIdle(); err != nil {
		return err
	}
	e.mode = digest.ModeHMACSHA256
	e.primitive = hmac.New(sha256.New, key[:])
	e.reset()
	return nil
}

// RunHash schedules finalization into digestBuffer.
func (e *Engine) RunHash(digestBuffer []byte) error {
	return e.finalizeInto(digestBuffer, digest.StateHashing)
}

// Verify schedules finalization and comparison against expected.
func (e *Engine) Verify(expected []byte) error {
	return e.finalizeInto(expected, digest.StateVerifying)
}

// ClearData discards accumulated data.
func (e *Engine) ClearData() error {
	if err := e.machine.CheckIdle(); err != nil {
		return err
	}
	e.reset()
	return nil
}

func (e *Engine) finalizeInto(buffer []byte, state digest.State) error {
	if err := e.machine.Check(); err != nil {
		return err
	}
	if err := digest.CheckLength(buffer); err != nil {
		return err
	}
	e.output.Put(buffer)
	e.machine.Begin(state)
	e.scheduler.Set(e.handle)
	return nil
}

// HandleDeferredCall runs the outstanding operation. It is invoked by
// the scheduler's Drain.
func (e *Engine) HandleDeferredCall() {
	switch e.machine.State() {
	case digest.StateAddingData:
		data := e.data.Take()
		e.absorb(data)
		if data.Remaining() > 0 {
			e.data.Put(data)
			e.scheduler.Set(e.handle)
			return
		}
		client := e.machine.Finish()
		e.logger.Debug("add data complete", "absorbed", e.absorbed)
		client.AddDataDone(data, nil)

	case digest.StateHashing:
		buffer := e.output.Take()
		e.finalize()
		copy(buffer, e.result[:])
		client := e.machine.Finish()
		e.logger.Debug("hash complete", "mode", e.mode)
		client.HashDone(buffer, nil)

	case digest.StateVerifying:
		expected := e.output.Take()
		e.finalize()
		equal := hmac.Equal(e.result[:], expected)
		client := e.machine.Finish()
		e.logger.Debug("verification complete", "mode", e.mode, "equal", equal)
		client.VerificationDone(expected, equal, nil)

	default:
		e.logger.Warn("deferred call while idle")
	}
}

// absorb feeds up to blocksPerPass whole blocks from data into the
// primitive, buffering a trailing partial block.
func (e *Engine) absorb(data *leasable.Buffer) {
	budget := e.blocksPerPass
	for budget > 0 && data.Remaining() > 0 {
		active := data.Active()
		if e.blockLength == 0 && len(active) >= digest.BlockSize {
			e.primitive.Write(active[:digest.BlockSize])
			e.consume(data, digest.BlockSize)
			budget--
			continue
		}

		copied := copy(e.block[e.blockLength:], active)
		e.blockLength += copied
		e.consume(data, copied)
		if e.blockLength == digest.BlockSize {
			e.primitive.Write(e.block[:])
			e.blockLength = 0
			budget--
		}
	}
}

func (e *Engine) consume(data *leasable.Buffer, n int) {
	if err := data.Consume(n); err != nil {
		panic(err)
	}
	e.absorbed += uint64(n)
}

// finalize flushes the partial block, stores the digest in result, and
// resets the accumulation.
func (e *Engine) finalize() {
	e.primitive.Write(e.block[:e.blockLength])
	e.primitive.Sum(e.result[:0])
	e.reset()
}

func (e *Engine) reset() {
	e.primitive.Reset()
	e.blockLength = 0
	e.absorbed = 0
	e.machine.Reset()
}

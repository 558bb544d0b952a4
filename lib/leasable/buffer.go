// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package leasable

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a narrowing operation asks for more
// bytes than the active window holds.
var ErrOutOfRange = errors.New("leasable: out of range")

// Buffer is a window over an externally owned byte region. The window
// starts at offset and spans length bytes. offset+length never exceeds
// len(region).
type Buffer struct {
	region []byte
	offset int
	length int
}

// New returns a Buffer whose window covers all of region. The region
// is referenced, not copied.
func New(region []byte) *Buffer {
	return &Buffer{region: region, length: len(region)}
}

// Consume advances the start of the window by n bytes. It fails with
// ErrOutOfRange (leaving the window untouched) when n is negative or
// larger than Remaining.
func (b *Buffer) Consume(n int) error {
	if n < 0 || n > b.length {
		return fmt.Errorf("%w: consume %d of %d remaining", ErrOutOfRange, n, b.length)
	}
	b.offset += n
	b.length -= n
	return nil
}

// SliceFront drops n bytes from the front of the window. It is the
// same operation as Consume.
func (b *Buffer) SliceFront(n int) error {
	return b.Consume(n)
}

// SliceBack drops n bytes from the end of the window.
func (b *Buffer) SliceBack(n int) error {
	if n < 0 || n > b.length {
		return fmt.Errorf("%w: slice %d off back of %d remaining", ErrOutOfRange, n, b.length)
	}
	b.length -= n
	return nil
}

// Remaining returns the length of the active window.
func (b *Buffer) Remaining() int { return b.length }

// Offset returns the position of the window within the region.
func (b *Buffer) Offset() int { return b.offset }

// Active returns the window as a sub-slice of the region. The capacity
// is clipped so appending to the result can never write past the
// window into the rest of the region.
func (b *Buffer) Active() []byte {
	end := b.offset + b.length
	return b.region[b.offset:end:end]
}

// Region returns the whole underlying region, independent of the
// window.
func (b *Buffer) Region() []byte { return b.region }

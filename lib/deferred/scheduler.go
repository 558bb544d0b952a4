// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package deferred

import (
	"fmt"
	"sync/atomic"
)

// Client is resumed by Drain after it has been marked pending.
type Client interface {
	HandleDeferredCall()
}

// Handle identifies a registered client. Handles are assigned in
// registration order starting at zero.
type Handle int

type entry struct {
	client  Client
	pending atomic.Bool
}

// Scheduler is a fixed-capacity registry of deferred call clients.
//
// Register and Drain must be called from the kernel loop. Set may be
// called from any goroutine.
type Scheduler struct {
	entries []entry
	count   int
	sealed  bool

	// snapshot holds the indices pending at the start of a Drain. It
	// is allocated once so Drain never allocates.
	snapshot []int

	notify chan struct{}
}

// New returns a Scheduler with room for capacity clients.
func New(capacity int) *Scheduler {
	if capacity <= 0 {
		panic(fmt.Sprintf("deferred: capacity must be positive, got %d", capacity))
	}
	return &Scheduler{
		entries:  make([]entry, capacity),
		snapshot: make([]int, 0, capacity),
		notify:   make(chan struct{}, 1),
	}
}

// Register adds client to the registry and returns its handle. Panics
// when the registry is full or Drain has already run.
func (s *Scheduler) Register(client Client) Handle {
	if s.sealed {
		panic("deferred: Register after the first Drain")
	}
	if s.count == len(s.entries) {
		panic(fmt.Sprintf("deferred: registry full (capacity %d)", len(s.entries)))
	}
	handle := Handle(s.count)
	s.entries[s.count].client = client
	s.count++
	return handle
}

// Set marks the client behind handle as pending. It is a single atomic
// store plus a non-blocking wakeup, so it is safe from interrupt
// context. Panics on a handle that was never registered.
func (s *Scheduler) Set(handle Handle) {
	if handle < 0 || int(handle) >= s.count {
		panic(fmt.Sprintf("deferred: Set on unregistered handle %d", handle))
	}
	s.entries[handle].pending.Store(true)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Drain runs one scheduling pass: every client pending when the call
// began has its flag cleared and is resumed, in registration order.
// Clients marked pending during the pass are left for the next call.
// Returns the number of clients resumed.
func (s *Scheduler) Drain() int {
	s.sealed = true

	s.snapshot = s.snapshot[:0]
	for index := 0; index < s.count; index++ {
		if s.entries[index].pending.Load() {
			s.snapshot = append(s.snapshot, index)
		}
	}

	for _, index := range s.snapshot {
		current := &s.entries[index]
		current.pending.Store(false)
		current.client.HandleDeferredCall()
	}
	return len(s.snapshot)
}

// HasPending reports whether any registered client is pending.
func (s *Scheduler) HasPending() bool {
	for index := 0; index < s.count; index++ {
		if s.entries[index].pending.Load() {
			return true
		}
	}
	return false
}

// Notify returns a channel that receives after Set is called. The
// channel has capacity one; several Sets between reads coalesce.
func (s *Scheduler) Notify() <-chan struct{} { return s.notify }

// Len returns the number of registered clients.
func (s *Scheduler) Len() int { return s.count }

// Capacity returns the maximum number of clients.
func (s *Scheduler) Capacity() int { return len(s.entries) }

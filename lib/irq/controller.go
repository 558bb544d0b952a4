// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package irq

import (
	"fmt"
	"sync/atomic"
)

// Line identifies an interrupt line.
type Line int

// Handler services an interrupt on the kernel loop.
type Handler interface {
	HandleInterrupt()
}

type line struct {
	handler Handler
	pending atomic.Bool
}

// Controller holds a fixed number of interrupt lines.
type Controller struct {
	lines  []line
	notify chan struct{}
}

// New returns a Controller with the given number of lines.
func New(lines int) *Controller {
	if lines <= 0 {
		panic(fmt.Sprintf("irq: line count must be positive, got %d", lines))
	}
	return &Controller{
		lines:  make([]line, lines),
		notify: make(chan struct{}, 1),
	}
}

// Attach binds handler to line. Panics if the line does not exist or
// already has a handler.
func (c *Controller) Attach(number Line, handler Handler) {
	target := c.line(number)
	if target.handler != nil {
		panic(fmt.Sprintf("irq: line %d already attached", number))
	}
	target.handler = handler
}

// Raise marks line pending. Safe from any goroutine.
func (c *Controller) Raise(number Line) {
	c.line(number).pending.Store(true)
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Service runs the handler of every pending line once, in line order,
// and returns how many ran. A line raised again by its own handler is
// serviced on the next call. Pending lines with no handler are
// cleared and dropped.
func (c *Controller) Service() int {
	serviced := 0
	for index := range c.lines {
		current := &c.lines[index]
		if !current.pending.Swap(false) {
			continue
		}
		if current.handler == nil {
			continue
		}
		current.handler.HandleInterrupt()
		serviced++
	}
	return serviced
}

// HasPending reports whether any line is raised.
func (c *Controller) HasPending() bool {
	for index := range c.lines {
		if c.lines[index].pending.Load() {
			return true
		}
	}
	return false
}

// Notify returns a channel that receives after Raise.
func (c *Controller) Notify() <-chan struct{} { return c.notify }

func (c *Controller) line(number Line) *line {
	if number < 0 || int(number) >= len(c.lines) {
		panic(fmt.Sprintf("irq: line %d out of range [0, %d)", number, len(c.lines)))
	}
	return &c.lines[number]
}

// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package takecell

import "fmt"

// Fault is the panic value raised when a Cell is used out of protocol.
type Fault struct {
	// Operation is "take" or "put".
	Operation string
}

func (f *Fault) Error() string {
	if f.Operation == "take" {
		return "takecell: take from empty cell"
	}
	return fmt.Sprintf("takecell: %s into occupied cell", f.Operation)
}

// Cell is an exclusive exchange slot. The zero value is empty.
type Cell[T any] struct {
	value    T
	occupied bool
}

// New returns a Cell that already holds value.
func New[T any](value T) Cell[T] {
	return Cell[T]{value: value, occupied: true}
}

// Put stores value. Panics if the cell is occupied.
func (c *Cell[T]) Put(value T) {
	if c.occupied {
		panic(&Fault{Operation: "put"})
	}
	c.value = value
	c.occupied = true
}

// Take removes and returns the stored value. Panics if the cell is
// empty.
func (c *Cell[T]) Take() T {
	if !c.occupied {
		panic(&Fault{Operation: "take"})
	}
	value := c.value
	var zero T
	c.value = zero
	c.occupied = false
	return value
}

// Occupied reports whether the cell holds a value.
func (c *Cell[T]) Occupied() bool { return c.occupied }

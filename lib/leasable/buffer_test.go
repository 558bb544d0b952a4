// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package leasable

import (
	"errors"
	"testing"
)

func TestNewCoversRegion(t *testing.T) {
	region := []byte("hello world")
	buffer := New(region)

	if buffer.Remaining() != len(region) {
		t.Errorf("Remaining = %d, want %d", buffer.Remaining(), len(region))
	}
	if buffer.Offset() != 0 {
		t.Errorf("Offset = %d, want 0", buffer.Offset())
	}
	if string(buffer.Active()) != "hello world" {
		t.Errorf("Active = %q, want %q", buffer.Active(), "hello world")
	}
}

func TestConsumeAdvancesWindow(t *testing.T) {
	region := []byte("hello world")
	buffer := New(region)

	if err := buffer.Consume(6); err != nil {
		t.Fatalf("Consume(6): %v", err)
	}
	if string(buffer.Active()) != "world" {
		t.Errorf("Active = %q, want %q", buffer.Active(), "world")
	}
	if buffer.Offset() != 6 || buffer.Remaining() != 5 {
		t.Errorf("window = (%d, %d), want (6, 5)", buffer.Offset(), buffer.Remaining())
	}

	if err := buffer.Consume(5); err != nil {
		t.Fatalf("Consume(5): %v", err)
	}
	if buffer.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", buffer.Remaining())
	}
	if len(buffer.Active()) != 0 {
		t.Errorf("Active has %d bytes, want 0", len(buffer.Active()))
	}
}

func TestConsumeOutOfRange(t *testing.T) {
	buffer := New(make([]byte, 4))
	if err := buffer.Consume(1); err != nil {
		t.Fatalf("Consume(1): %v", err)
	}

	for _, n := range []int{4, 100, -1} {
		err := buffer.Consume(n)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Consume(%d) error = %v, want ErrOutOfRange", n, err)
		}
	}
	if buffer.Offset() != 1 || buffer.Remaining() != 3 {
		t.Errorf("window changed after failed Consume: (%d, %d)", buffer.Offset(), buffer.Remaining())
	}
}

func TestSliceBack(t *testing.T) {
	buffer := New([]byte("hello world"))
	if err := buffer.SliceBack(6); err != nil {
		t.Fatalf("SliceBack(6): %v", err)
	}
	if string(buffer.Active()) != "hello" {
		t.Errorf("Active = %q, want %q", buffer.Active(), "hello")
	}
	if err := buffer.SliceFront(1); err != nil {
		t.Fatalf("SliceFront(1): %v", err)
	}
	if string(buffer.Active()) != "ello" {
		t.Errorf("Active = %q, want %q", buffer.Active(), "ello")
	}
	if err := buffer.SliceBack(5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SliceBack(5) error = %v, want ErrOutOfRange", err)
	}
}

func TestActiveSharesRegion(t *testing.T) {
	region := []byte("abcdef")
	buffer := New(region)
	if err := buffer.Consume(2); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	active := buffer.Active()
	active[0] = 'X'
	if region[2] != 'X' {
		t.Errorf("write through Active did not reach region: %q", region)
	}
	if &buffer.Region()[0] != &region[0] {
		t.Error("Region does not return the original backing array")
	}
}

func TestActiveCapacityClipped(t *testing.T) {
	region := []byte("abcdef")
	buffer := New(region)
	if err := buffer.SliceBack(3); err != nil {
		t.Fatalf("SliceBack: %v", err)
	}

	grown := append(buffer.Active(), 'Z')
	grown[0] = 'Q'
	if string(region) != "abcdef" {
		t.Errorf("append past window modified region: %q", region)
	}
}

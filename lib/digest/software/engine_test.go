// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package software

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/kestrel-os/kestrel/lib/deferred"
	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/digest/digesttest"
	"github.com/kestrel-os/kestrel/lib/leasable"
)

func TestConformance(t *testing.T) {
	for _, blocksPerPass := range []int{1, 3, DefaultBlocksPerPass} {
		t.Run(fmt.Sprintf("blocks=%d", blocksPerPass), func(t *testing.T) {
			digesttest.RunConformance(t, func(t *testing.T) digesttest.Target {
				scheduler := deferred.New(2)
				engine := New(scheduler, Options{BlocksPerPass: blocksPerPass})
				return digesttest.Target{
					Engine: engine,
					Step:   func() { scheduler.Drain() },
				}
			})
		})
	}
}

func TestMultiBlockSpansPasses(t *testing.T) {
	scheduler := deferred.New(1)
	engine := New(scheduler, Options{BlocksPerPass: 1})
	recorder := &digesttest.Recorder{}
	engine.SetClient(recorder)

	data := leasable.New(bytes.Repeat([]byte("hello "), 12))
	accepted, err := engine.AddData(data)
	if err != nil || accepted != 72 {
		t.Fatalf("AddData = (%d, %v), want (72, nil)", accepted, err)
	}
	if engine.State() != digest.StateAddingData {
		t.Fatalf("State = %s, want adding-data", engine.State())
	}

	// First pass absorbs one whole block and re-marks the engine.
	scheduler.Drain()
	if recorder.Len() != 0 {
		t.Fatal("completed after one block")
	}
	if data.Remaining() != 8 {
		t.Errorf("Remaining after first pass = %d, want 8", data.Remaining())
	}
	if !scheduler.HasPending() {
		t.Fatal("engine did not re-mark itself pending")
	}

	// Second pass buffers the 8-byte tail and completes.
	scheduler.Drain()
	if recorder.Len() != 1 || recorder.Last().Data != data {
		t.Fatalf("completions = %+v, want one AddDataDone with the same buffer", recorder.Completions)
	}
	if engine.State() != digest.StateIdle {
		t.Errorf("State = %s, want idle", engine.State())
	}

	output := make([]byte, digest.Length)
	if err := engine.RunHash(output); err != nil {
		t.Fatalf("RunHash: %v", err)
	}
	scheduler.Drain()
	want := digesttest.MustDecodeHex("5942c3716f0282893fbe049ba20e560e4594d5ee15cb8a1e287c2012c2ceb5a9")
	if !bytes.Equal(output, want) {
		t.Errorf("digest %x, want %x", output, want)
	}
}

func TestEnginesCompleteInRegistrationOrder(t *testing.T) {
	scheduler := deferred.New(2)
	first := New(scheduler, Options{})
	second := New(scheduler, Options{})

	var order []string
	firstRecorder := &digesttest.Recorder{OnComplete: func(digesttest.Completion) { order = append(order, "first") }}
	secondRecorder := &digesttest.Recorder{OnComplete: func(digesttest.Completion) { order = append(order, "second") }}
	first.SetClient(firstRecorder)
	second.SetClient(secondRecorder)

	// The second engine is marked pending before the first.
	if _, err := second.AddData(leasable.New([]byte("b"))); err != nil {
		t.Fatalf("second AddData: %v", err)
	}
	if _, err := first.AddData(leasable.New([]byte("a"))); err != nil {
		t.Fatalf("first AddData: %v", err)
	}

	if serviced := scheduler.Drain(); serviced != 2 {
		t.Fatalf("Drain serviced %d, want 2", serviced)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("completion order = %v, want [first second]", order)
	}
}

func TestRequestFromCallbackRunsNextPass(t *testing.T) {
	scheduler := deferred.New(1)
	engine := New(scheduler, Options{})
	output := make([]byte, digest.Length)
	recorder := &digesttest.Recorder{}
	recorder.OnComplete = func(completion digesttest.Completion) {
		if completion.Kind == digesttest.KindAddData {
			if err := engine.RunHash(output); err != nil {
				t.Errorf("RunHash from callback: %v", err)
			}
		}
	}
	engine.SetClient(recorder)

	if _, err := engine.AddData(leasable.New([]byte("hello world"))); err != nil {
		t.Fatalf("AddData: %v", err)
	}
	scheduler.Drain()
	if recorder.Len() != 1 {
		t.Fatalf("completions after first pass = %d, want 1", recorder.Len())
	}

	// The hash requested from inside the callback waits for the next
	// pass instead of running recursively.
	scheduler.Drain()
	if recorder.Len() != 2 || recorder.Last().Kind != digesttest.KindHash {
		t.Fatalf("completions = %+v, want AddDataDone then HashDone", recorder.Completions)
	}
	if want := sha256.Sum256([]byte("hello world")); !bytes.Equal(output, want[:]) {
		t.Errorf("digest %x, want %x", output, want)
	}
}

func TestModeReporting(t *testing.T) {
	engine := New(deferred.New(1), Options{})
	if engine.Mode() != digest.ModeSHA256 {
		t.Errorf("initial mode = %s", engine.Mode())
	}
	if err := engine.SetModeHMACSHA256([digest.KeyLength]byte{1}); err != nil {
		t.Fatalf("SetModeHMACSHA256: %v", err)
	}
	if engine.Mode() != digest.ModeHMACSHA256 {
		t.Errorf("mode = %s, want hmac-sha256", engine.Mode())
	}
	// Mode changes are idempotent while idle.
	if err := engine.SetModeHMACSHA256([digest.KeyLength]byte{1}); err != nil {
		t.Fatalf("second SetModeHMACSHA256: %v", err)
	}
}

func TestSpuriousDeferredCallIgnored(t *testing.T) {
	engine := New(deferred.New(1), Options{})
	engine.HandleDeferredCall()
	if engine.State() != digest.StateIdle {
		t.Errorf("State = %s, want idle", engine.State())
	}
}

// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package digesttest

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/leasable"
)

// maxSteps bounds how long Await drives a target before giving up.
const maxSteps = 10000

// Target is an engine under test plus the function that advances
// whatever delivers its completions.
type Target struct {
	Engine digest.Engine

	// Step runs one kernel service point. For interrupt-driven
	// engines it also advances emulated time far enough for a
	// pending command to finish.
	Step func()
}

// Factory builds a fresh Target for one subtest.
type Factory func(t *testing.T) Target

// Await steps target until recorder holds want completions. Fails the
// test after maxSteps steps.
func Await(t *testing.T, target Target, recorder *Recorder, want int) {
	t.Helper()
	for step := 0; recorder.Len() < want; step++ {
		if step == maxSteps {
			t.Fatalf("no completion after %d steps (have %d, want %d)", maxSteps, recorder.Len(), want)
		}
		target.Step()
	}
}

// AddAll feeds all of data through AddData, re-issuing the call while
// the engine accepts only part of the window. Every completion must
// return the same buffer without error.
func AddAll(t *testing.T, target Target, recorder *Recorder, data []byte) {
	t.Helper()
	buffer := leasable.New(data)
	for {
		accepted, err := target.Engine.AddData(buffer)
		if err != nil {
			t.Fatalf("AddData: %v", err)
		}
		if accepted < 0 {
			t.Fatalf("AddData accepted %d bytes", accepted)
		}
		Await(t, target, recorder, recorder.Len()+1)

		completion := recorder.Last()
		if completion.Kind != KindAddData {
			t.Fatalf("completion kind = %s, want %s", completion.Kind, KindAddData)
		}
		if completion.Data != buffer {
			t.Fatal("AddDataDone returned a different buffer")
		}
		if completion.Err != nil {
			t.Fatalf("AddDataDone error: %v", completion.Err)
		}
		if buffer.Remaining() == 0 {
			return
		}
	}
}

// Hash runs RunHash and returns the digest, checking buffer identity.
func Hash(t *testing.T, target Target, recorder *Recorder) [digest.Length]byte {
	t.Helper()
	output := make([]byte, digest.Length)
	if err := target.Engine.RunHash(output); err != nil {
		t.Fatalf("RunHash: %v", err)
	}
	Await(t, target, recorder, recorder.Len()+1)

	completion := recorder.Last()
	if completion.Kind != KindHash {
		t.Fatalf("completion kind = %s, want %s", completion.Kind, KindHash)
	}
	if !sameSlice(completion.Buffer, output) {
		t.Fatal("HashDone returned a different buffer")
	}
	if completion.Err != nil {
		t.Fatalf("HashDone error: %v", completion.Err)
	}
	return [digest.Length]byte(output)
}

// Verify runs Verify against expected and returns the outcome,
// checking buffer identity and that no error was reported.
func Verify(t *testing.T, target Target, recorder *Recorder, expected []byte) bool {
	t.Helper()
	if err := target.Engine.Verify(expected); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	Await(t, target, recorder, recorder.Len()+1)

	completion := recorder.Last()
	if completion.Kind != KindVerify {
		t.Fatalf("completion kind = %s, want %s", completion.Kind, KindVerify)
	}
	if !sameSlice(completion.Buffer, expected) {
		t.Fatal("VerificationDone returned a different buffer")
	}
	if completion.Err != nil {
		t.Fatalf("VerificationDone error: %v", completion.Err)
	}
	return completion.Equal
}

// Pattern returns n bytes of a deterministic non-repeating-per-block
// pattern.
func Pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// MustDecodeHex decodes a hex string or panics. For fixtures.
func MustDecodeHex(s string) []byte {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return decoded
}

func sameSlice(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// RunConformance runs the contract suite against engines built by
// factory.
func RunConformance(t *testing.T, factory Factory) {
	t.Run("SHA256MatchesReference", func(t *testing.T) {
		for _, size := range []int{0, 1, 55, 56, 63, 64, 65, 72, 127, 128, 129, 1000, 4099} {
			target := factory(t)
			recorder := &Recorder{}
			target.Engine.SetClient(recorder)

			data := Pattern(size)
			AddAll(t, target, recorder, data)
			got := Hash(t, target, recorder)
			if want := sha256.Sum256(data); got != want {
				t.Errorf("size %d: digest %x, want %x", size, got, want)
			}
		}
	})

	t.Run("SHA256AcrossSeveralAddData", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		target.Engine.SetClient(recorder)

		data := Pattern(300)
		for _, chunk := range [][]byte{data[:7], data[7:70], data[70:71], data[71:200], data[200:]} {
			AddAll(t, target, recorder, chunk)
		}
		got := Hash(t, target, recorder)
		if want := sha256.Sum256(data); got != want {
			t.Errorf("digest %x, want %x", got, want)
		}
	})

	t.Run("Fixtures", func(t *testing.T) {
		fixtures := []struct {
			name   string
			data   []byte
			digest string
		}{
			{"hello world", []byte("hello world"), "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
			{"12x hello", bytes.Repeat([]byte("hello "), 12), "5942c3716f0282893fbe049ba20e560e4594d5ee15cb8a1e287c2012c2ceb5a9"},
		}
		for _, fixture := range fixtures {
			target := factory(t)
			recorder := &Recorder{}
			target.Engine.SetClient(recorder)

			AddAll(t, target, recorder, fixture.data)
			got := Hash(t, target, recorder)
			if hex.EncodeToString(got[:]) != fixture.digest {
				t.Errorf("%s: digest %x, want %s", fixture.name, got, fixture.digest)
			}
		}
	})

	t.Run("HMACMatchesReference", func(t *testing.T) {
		var key [digest.KeyLength]byte
		for i := range key {
			key[i] = byte(0xA0 + i)
		}
		for _, size := range []int{0, 32, 64, 65, 200} {
			target := factory(t)
			recorder := &Recorder{}
			target.Engine.SetClient(recorder)
			if err := target.Engine.SetModeHMACSHA256(key); err != nil {
				t.Fatalf("SetModeHMACSHA256: %v", err)
			}

			data := Pattern(size)
			AddAll(t, target, recorder, data)
			got := Hash(t, target, recorder)

			mac := hmac.New(sha256.New, key[:])
			mac.Write(data)
			if want := mac.Sum(nil); !bytes.Equal(got[:], want) {
				t.Errorf("size %d: mac %x, want %x", size, got, want)
			}
		}
	})

	t.Run("HMACFixture", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		target.Engine.SetClient(recorder)

		var key [digest.KeyLength]byte
		for i := range key {
			key[i] = 0xA1
		}
		if err := target.Engine.SetModeHMACSHA256(key); err != nil {
			t.Fatalf("SetModeHMACSHA256: %v", err)
		}
		AddAll(t, target, recorder, bytes.Repeat([]byte{0x20}, 32))

		expected := MustDecodeHex("dc55515e30ac50c765bd0e0282f78be1efd10bdca8bae1fa113ff6ebaf585740")
		if !Verify(t, target, recorder, expected) {
			t.Error("HMAC fixture did not verify")
		}
	})

	t.Run("VerifyMatchAndMismatch", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		target.Engine.SetClient(recorder)

		data := []byte("hello world")
		want := sha256.Sum256(data)

		AddAll(t, target, recorder, data)
		expected := append([]byte(nil), want[:]...)
		if !Verify(t, target, recorder, expected) {
			t.Error("Verify with correct digest reported a mismatch")
		}
		if !bytes.Equal(expected, want[:]) {
			t.Error("Verify modified the expected buffer")
		}

		for _, index := range []int{0, 17, digest.Length - 1} {
			AddAll(t, target, recorder, data)
			tampered := append([]byte(nil), want[:]...)
			tampered[index] ^= 0x01
			if Verify(t, target, recorder, tampered) {
				t.Errorf("Verify with byte %d flipped reported a match", index)
			}
		}
	})

	t.Run("NoInlineCompletion", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		target.Engine.SetClient(recorder)

		if _, err := target.Engine.AddData(leasable.New([]byte("abc"))); err != nil {
			t.Fatalf("AddData: %v", err)
		}
		if recorder.Len() != 0 {
			t.Fatal("AddDataDone delivered before AddData returned")
		}
		Await(t, target, recorder, 1)

		if err := target.Engine.RunHash(make([]byte, digest.Length)); err != nil {
			t.Fatalf("RunHash: %v", err)
		}
		if recorder.Len() != 1 {
			t.Fatal("HashDone delivered before RunHash returned")
		}
		Await(t, target, recorder, 2)

		if err := target.Engine.Verify(make([]byte, digest.Length)); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if recorder.Len() != 2 {
			t.Fatal("VerificationDone delivered before Verify returned")
		}
		Await(t, target, recorder, 3)
	})

	t.Run("BusyLeavesStateUnchanged", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		target.Engine.SetClient(recorder)

		first := Pattern(100)
		firstBuffer := leasable.New(first)
		accepted, err := target.Engine.AddData(firstBuffer)
		if err != nil {
			t.Fatalf("AddData: %v", err)
		}

		second := leasable.New([]byte("intruder"))
		if _, err := target.Engine.AddData(second); !errors.Is(err, digest.ErrBusy) {
			t.Errorf("second AddData = %v, want ErrBusy", err)
		}
		if second.Remaining() != len("intruder") || second.Offset() != 0 {
			t.Error("rejected AddData touched the caller's buffer")
		}
		if err := target.Engine.RunHash(make([]byte, digest.Length)); !errors.Is(err, digest.ErrBusy) {
			t.Errorf("RunHash while busy = %v, want ErrBusy", err)
		}
		if err := target.Engine.Verify(make([]byte, digest.Length)); !errors.Is(err, digest.ErrBusy) {
			t.Errorf("Verify while busy = %v, want ErrBusy", err)
		}
		if err := target.Engine.SetModeHMACSHA256([digest.KeyLength]byte{}); !errors.Is(err, digest.ErrBusy) {
			t.Errorf("SetModeHMACSHA256 while busy = %v, want ErrBusy", err)
		}
		if err := target.Engine.SetModeSHA256(); !errors.Is(err, digest.ErrBusy) {
			t.Errorf("SetModeSHA256 while busy = %v, want ErrBusy", err)
		}
		if err := target.Engine.ClearData(); !errors.Is(err, digest.ErrBusy) {
			t.Errorf("ClearData while busy = %v, want ErrBusy", err)
		}

		Await(t, target, recorder, 1)
		if recorder.Len() != 1 {
			t.Fatalf("%d completions after busy rejections, want 1", recorder.Len())
		}
		if recorder.Last().Data != firstBuffer {
			t.Fatal("AddDataDone returned a different buffer")
		}

		// Finish feeding whatever the engine did not accept at first.
		if accepted < len(first) {
			AddAll(t, target, recorder, first[accepted:])
		}
		got := Hash(t, target, recorder)
		if want := sha256.Sum256(first); got != want {
			t.Errorf("digest after busy rejections %x, want %x", got, want)
		}
	})

	t.Run("SizeErrors", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		target.Engine.SetClient(recorder)

		AddAll(t, target, recorder, []byte("hello "))
		for _, size := range []int{0, digest.Length - 1, digest.Length + 1} {
			if err := target.Engine.RunHash(make([]byte, size)); !errors.Is(err, digest.ErrSize) {
				t.Errorf("RunHash(%d bytes) = %v, want ErrSize", size, err)
			}
			if err := target.Engine.Verify(make([]byte, size)); !errors.Is(err, digest.ErrSize) {
				t.Errorf("Verify(%d bytes) = %v, want ErrSize", size, err)
			}
		}

		// Rejections must not have disturbed the accumulated data.
		AddAll(t, target, recorder, []byte("world"))
		got := Hash(t, target, recorder)
		if want := sha256.Sum256([]byte("hello world")); got != want {
			t.Errorf("digest %x, want %x", got, want)
		}
	})

	t.Run("NoClient", func(t *testing.T) {
		target := factory(t)
		if _, err := target.Engine.AddData(leasable.New([]byte("x"))); !errors.Is(err, digest.ErrNoClient) {
			t.Errorf("AddData without client = %v, want ErrNoClient", err)
		}
		if err := target.Engine.RunHash(make([]byte, digest.Length)); !errors.Is(err, digest.ErrNoClient) {
			t.Errorf("RunHash without client = %v, want ErrNoClient", err)
		}
	})

	t.Run("ChainFromCallback", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		expected := sha256.Sum256([]byte("hello world"))
		compare := expected[:]
		recorder.OnComplete = func(completion Completion) {
			if completion.Kind != KindAddData || completion.Data.Remaining() > 0 {
				return
			}
			if err := target.Engine.Verify(compare); err != nil {
				t.Errorf("Verify from AddDataDone: %v", err)
			}
		}
		target.Engine.SetClient(recorder)

		if accepted, err := target.Engine.AddData(leasable.New([]byte("hello world"))); err != nil || accepted != 11 {
			t.Fatalf("AddData = (%d, %v), want (11, nil)", accepted, err)
		}
		Await(t, target, recorder, 2)
		if last := recorder.Last(); last.Kind != KindVerify || !last.Equal {
			t.Errorf("chained verify = %+v, want equal verify", last)
		}
	})

	t.Run("ClearAndModeReset", func(t *testing.T) {
		target := factory(t)
		recorder := &Recorder{}
		target.Engine.SetClient(recorder)

		AddAll(t, target, recorder, []byte("discarded"))
		if err := target.Engine.ClearData(); err != nil {
			t.Fatalf("ClearData: %v", err)
		}
		AddAll(t, target, recorder, []byte("kept"))
		if got, want := Hash(t, target, recorder), sha256.Sum256([]byte("kept")); got != want {
			t.Errorf("after ClearData digest %x, want %x", got, want)
		}

		AddAll(t, target, recorder, []byte("discarded too"))
		if err := target.Engine.SetModeSHA256(); err != nil {
			t.Fatalf("SetModeSHA256: %v", err)
		}
		if got, want := Hash(t, target, recorder), sha256.Sum256(nil); got != want {
			t.Errorf("after SetModeSHA256 digest %x, want empty-input digest %x", got, want)
		}
	})

	t.Run("SetClientWhileBusy", func(t *testing.T) {
		target := factory(t)
		owner := &Recorder{}
		if err := target.Engine.SetClient(owner); err != nil {
			t.Fatalf("SetClient on idle engine: %v", err)
		}

		data := leasable.New([]byte("hello world"))
		if _, err := target.Engine.AddData(data); err != nil {
			t.Fatalf("AddData: %v", err)
		}
		intruder := &Recorder{}
		if err := target.Engine.SetClient(intruder); !errors.Is(err, digest.ErrBusy) {
			t.Fatalf("SetClient while busy = %v, want ErrBusy", err)
		}

		Await(t, target, owner, 1)
		if completion := owner.Last(); completion.Kind != KindAddData || completion.Data != data {
			t.Errorf("owner completion = %+v, want its own AddDataDone", completion)
		}
		if intruder.Len() != 0 {
			t.Errorf("rejected client received %d completions", intruder.Len())
		}

		if err := target.Engine.SetClient(intruder); err != nil {
			t.Fatalf("SetClient once idle: %v", err)
		}
		if got, want := Hash(t, target, intruder), sha256.Sum256([]byte("hello world")); got != want {
			t.Errorf("digest after client change %x, want %x", got, want)
		}
	})
}

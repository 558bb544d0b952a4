// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"errors"
	"fmt"

	"github.com/kestrel-os/kestrel/lib/leasable"
)

const (
	// Length is the size of a SHA-256 digest in bytes.
	Length = 32

	// KeyLength is the size of an HMAC-SHA256 key accepted by
	// SetModeHMACSHA256.
	KeyLength = 32

	// BlockSize is the SHA-256 block size in bytes.
	BlockSize = 64
)

var (
	// ErrBusy is returned when an operation is already outstanding on
	// the engine. The rejected call has no side effects.
	ErrBusy = errors.New("digest: operation already outstanding")

	// ErrSize is returned when a digest buffer passed to RunHash or
	// Verify is not exactly Length bytes.
	ErrSize = errors.New("digest: buffer is not digest length")

	// ErrData reports a computational or hardware fault during an
	// accepted operation. It only ever reaches a client through a
	// completion callback.
	ErrData = errors.New("digest: data error")

	// ErrNoClient is returned when an operation is requested before
	// SetClient.
	ErrNoClient = errors.New("digest: no client set")
)

// Mode selects the algorithm an engine applies to accumulated data.
type Mode int

const (
	// ModeSHA256 is plain SHA-256. Engines start in this mode.
	ModeSHA256 Mode = iota
	// ModeHMACSHA256 is HMAC-SHA256 with a KeyLength-byte key.
	ModeHMACSHA256
)

func (m Mode) String() string {
	switch m {
	case ModeSHA256:
		return "sha256"
	case ModeHMACSHA256:
		return "hmac-sha256"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DataClient receives the completion of AddData.
type DataClient interface {
	// AddDataDone returns the buffer passed to AddData. err is nil or
	// wraps ErrData.
	AddDataDone(data *leasable.Buffer, err error)
}

// HashClient receives the completion of RunHash.
type HashClient interface {
	// HashDone returns the digest buffer passed to RunHash, filled
	// with the digest when err is nil.
	HashDone(digest []byte, err error)
}

// VerifyClient receives the completion of Verify.
type VerifyClient interface {
	// VerificationDone returns the buffer passed to Verify. equal is
	// the comparison outcome and is only meaningful when err is nil.
	// A mismatch is equal == false with a nil error.
	VerificationDone(compare []byte, equal bool, err error)
}

// Client receives every completion an Engine produces.
type Client interface {
	DataClient
	HashClient
	VerifyClient
}

// Engine is a split-phase SHA-256 / HMAC-SHA256 engine.
type Engine interface {
	// SetClient installs the completion receiver. While an operation
	// is outstanding it returns ErrBusy and keeps the current client.
	SetClient(client Client) error

	// AddData accepts some or all of data's remaining bytes and takes
	// ownership of data until AddDataDone. Returns the number of bytes
	// accepted.
	AddData(data *leasable.Buffer) (int, error)

	// SetModeSHA256 selects plain SHA-256 and discards accumulated
	// data.
	SetModeSHA256() error

	// SetModeHMACSHA256 selects HMAC-SHA256 keyed with key and
	// discards accumulated data.
	SetModeHMACSHA256(key [KeyLength]byte) error

	// RunHash finalizes the digest of all data added since the last
	// reset and writes it into digest, which must be Length bytes.
	// Accumulated data is discarded once the digest is produced.
	RunHash(digest []byte) error

	// Verify finalizes like RunHash and compares the result with
	// expected, which must be Length bytes and is not modified.
	Verify(expected []byte) error

	// ClearData discards accumulated data without changing the mode.
	ClearData() error
}

// CheckLength returns ErrSize unless buffer is exactly Length bytes.
func CheckLength(buffer []byte) error {
	if len(buffer) != Length {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSize, len(buffer), Length)
	}
	return nil
}

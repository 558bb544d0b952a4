// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package selftest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/leasable"
	"github.com/kestrel-os/kestrel/lib/takecell"
)

// Fixture is a known answer.
type Fixture struct {
	Name     string
	Data     []byte
	Expected []byte

	// Key selects HMAC-SHA256 when non-nil.
	Key *[digest.KeyLength]byte
}

// Fixtures returns fresh copies of the standard known answers.
func Fixtures() []Fixture {
	hmacKey := [digest.KeyLength]byte(bytes.Repeat([]byte{0xA1}, digest.KeyLength))
	return []Fixture{
		{
			Name:     "sha256-hello-world",
			Data:     []byte("hello world"),
			Expected: mustHex("b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"),
		},
		{
			Name:     "sha256-multi-block",
			Data:     bytes.Repeat([]byte("hello "), 12),
			Expected: mustHex("5942c3716f0282893fbe049ba20e560e4594d5ee15cb8a1e287c2012c2ceb5a9"),
		},
		{
			Name:     "hmac-sha256",
			Data:     bytes.Repeat([]byte{0x20}, 32),
			Expected: mustHex("dc55515e30ac50c765bd0e0282f78be1efd10bdca8bae1fa113ff6ebaf585740"),
			Key:      &hmacKey,
		},
	}
}

// Result is the outcome of one Test run.
type Result struct {
	Name  string
	Equal bool
	Err   error
}

// Passed reports whether the engine produced the expected digest.
func (r Result) Passed() bool { return r.Err == nil && r.Equal }

// Test is a digest.Client that checks one fixture.
type Test struct {
	name   string
	engine digest.Engine
	key    *[digest.KeyLength]byte
	logger *slog.Logger

	data     takecell.Cell[[]byte]
	expected takecell.Cell[[]byte]

	onDone  func(Result)
	running bool
	result  Result
	done    bool
}

var _ digest.Client = (*Test)(nil)

// New returns a Test for fixture on engine. onDone, if non-nil, runs
// after every completed run.
func New(engine digest.Engine, fixture Fixture, logger *slog.Logger, onDone func(Result)) *Test {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(fixture.Expected) != digest.Length {
		panic(fmt.Sprintf("selftest: fixture %s expected digest is %d bytes", fixture.Name, len(fixture.Expected)))
	}
	return &Test{
		name:     fixture.Name,
		engine:   engine,
		key:      fixture.Key,
		logger:   logger.With("selftest", fixture.Name),
		data:     takecell.New(fixture.Data),
		expected: takecell.New(fixture.Expected),
		onDone:   onDone,
	}
}

// Run installs the test as the engine's client and submits the data.
// A synchronous rejection is returned and leaves the test ready to run
// again.
func (s *Test) Run() error {
	if s.running {
		return fmt.Errorf("selftest %s: already running", s.name)
	}
	if err := s.engine.SetClient(s); err != nil {
		return fmt.Errorf("selftest %s: %w", s.name, err)
	}
	if s.key != nil {
		if err := s.engine.SetModeHMACSHA256(*s.key); err != nil {
			return fmt.Errorf("selftest %s: setting hmac mode: %w", s.name, err)
		}
	} else if err := s.engine.SetModeSHA256(); err != nil {
		return fmt.Errorf("selftest %s: setting sha256 mode: %w", s.name, err)
	}

	region := s.data.Take()
	if _, err := s.engine.AddData(leasable.New(region)); err != nil {
		s.data.Put(region)
		return fmt.Errorf("selftest %s: add data: %w", s.name, err)
	}
	s.running = true
	s.done = false
	return nil
}

// Done reports whether the last run completed.
func (s *Test) Done() bool { return s.done }

// Result returns the outcome of the last completed run.
func (s *Test) Result() Result { return s.result }

// AddDataDone continues with the rest of the window, or moves on to
// Verify once the engine has taken all of it.
func (s *Test) AddDataDone(data *leasable.Buffer, err error) {
	if err != nil {
		s.data.Put(data.Region())
		s.complete(false, fmt.Errorf("add data: %w", err))
		return
	}
	if data.Remaining() > 0 {
		if _, err := s.engine.AddData(data); err != nil {
			s.data.Put(data.Region())
			s.complete(false, fmt.Errorf("add data: %w", err))
		}
		return
	}

	s.data.Put(data.Region())
	expected := s.expected.Take()
	if err := s.engine.Verify(expected); err != nil {
		s.expected.Put(expected)
		s.complete(false, fmt.Errorf("verify: %w", err))
	}
}

// HashDone is not expected; a self-test only verifies.
func (s *Test) HashDone(digestBuffer []byte, err error) {
	s.logger.Error("unexpected hash completion", "error", err)
}

// VerificationDone records the outcome.
func (s *Test) VerificationDone(compare []byte, equal bool, err error) {
	s.expected.Put(compare)
	if err != nil {
		err = fmt.Errorf("verify: %w", err)
	}
	s.complete(equal, err)
}

func (s *Test) complete(equal bool, err error) {
	s.running = false
	s.done = true
	s.result = Result{Name: s.name, Equal: equal, Err: err}
	if err != nil {
		s.logger.Error("verification failed", "error", err)
	} else {
		s.logger.Info("verification result", "equal", equal)
	}
	if s.onDone != nil {
		s.onDone(s.result)
	}
}

func mustHex(s string) []byte {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return decoded
}

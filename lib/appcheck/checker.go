// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package appcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/kestrel-os/kestrel/lib/binhash"
	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/leasable"
	"github.com/kestrel-os/kestrel/lib/takecell"
)

// ErrRunning is returned by Start while an earlier check is still in
// progress.
var ErrRunning = errors.New("appcheck: check already running")

// Result describes one application.
type Result struct {
	Path string

	// Digest is the expected digest when Checked, otherwise the digest
	// the engine computed.
	Digest [digest.Length]byte

	// Checked is true when the binary had a sidecar digest.
	Checked bool

	// Verified is true when the engine matched the sidecar digest.
	Verified bool

	Err error
}

// Passed reports whether the app may be launched.
func (r Result) Passed() bool {
	return r.Err == nil && (!r.Checked || r.Verified)
}

// Failed counts results that did not pass.
func Failed(results []Result) int {
	failed := 0
	for _, result := range results {
		if !result.Passed() {
			failed++
		}
	}
	return failed
}

// Checker is a digest.Client that checks a list of binaries.
type Checker struct {
	engine digest.Engine
	logger *slog.Logger

	output takecell.Cell[[]byte]

	apps    []string
	next    int
	current Result
	results []Result
	onDone  func([]Result)
	running bool
}

var _ digest.Client = (*Checker)(nil)

// New returns a Checker that uses engine.
func New(engine digest.Engine, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{
		engine: engine,
		logger: logger.With("component", "appcheck"),
		output: takecell.New(make([]byte, digest.Length)),
	}
}

// Start begins checking apps. It returns digest.ErrBusy, without
// touching the engine, while another client's operation is
// outstanding. onDone receives one result per app, in order. Apps
// that cannot be loaded are recorded without touching the engine, so
// onDone may run before Start returns.
func (c *Checker) Start(apps []string, onDone func([]Result)) error {
	if c.running {
		return ErrRunning
	}
	if err := c.engine.SetClient(c); err != nil {
		return fmt.Errorf("appcheck: %w", err)
	}
	c.apps = slices.Clone(apps)
	c.next = 0
	c.results = make([]Result, 0, len(apps))
	c.onDone = onDone
	c.running = true
	c.advance()
	return nil
}

// Running reports whether a check is in progress.
func (c *Checker) Running() bool { return c.running }

func (c *Checker) advance() {
	for c.next < len(c.apps) {
		path := c.apps[c.next]
		c.next++
		if err := c.begin(path); err != nil {
			c.current = Result{Path: path}
			c.finish(err)
			continue
		}
		return
	}

	c.running = false
	onDone := c.onDone
	c.onDone = nil
	if onDone != nil {
		onDone(c.results)
	}
}

func (c *Checker) begin(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading binary: %w", err)
	}
	expected, checked, err := binhash.ReadSidecar(path)
	if err != nil {
		return err
	}
	if err := c.engine.SetModeSHA256(); err != nil {
		return fmt.Errorf("setting sha256 mode: %w", err)
	}

	c.current = Result{Path: path, Checked: checked, Digest: expected}
	c.logger.Debug("checking application", "path", path, "size", len(content), "sidecar", checked)
	if _, err := c.engine.AddData(leasable.New(content)); err != nil {
		return fmt.Errorf("add data: %w", err)
	}
	return nil
}

// AddDataDone re-issues the rest of the window, then asks for the
// digest or its verification.
func (c *Checker) AddDataDone(data *leasable.Buffer, err error) {
	if err != nil {
		c.finishAndAdvance(fmt.Errorf("add data: %w", err))
		return
	}
	if data.Remaining() > 0 {
		if _, err := c.engine.AddData(data); err != nil {
			c.finishAndAdvance(fmt.Errorf("add data: %w", err))
		}
		return
	}

	buffer := c.output.Take()
	if c.current.Checked {
		copy(buffer, c.current.Digest[:])
		err = c.engine.Verify(buffer)
	} else {
		err = c.engine.RunHash(buffer)
	}
	if err != nil {
		c.output.Put(buffer)
		c.finishAndAdvance(fmt.Errorf("requesting digest: %w", err))
	}
}

// HashDone records the computed digest.
func (c *Checker) HashDone(digestBuffer []byte, err error) {
	if err == nil {
		copy(c.current.Digest[:], digestBuffer)
	}
	c.output.Put(digestBuffer)
	c.finishAndAdvance(err)
}

// VerificationDone records whether the sidecar digest matched.
func (c *Checker) VerificationDone(compare []byte, equal bool, err error) {
	c.output.Put(compare)
	c.current.Verified = equal
	c.finishAndAdvance(err)
}

func (c *Checker) finishAndAdvance(err error) {
	c.finish(err)
	c.advance()
}

func (c *Checker) finish(err error) {
	result := c.current
	result.Err = err
	c.results = append(c.results, result)

	digestText := binhash.FormatDigest(result.Digest)
	switch {
	case err != nil:
		c.logger.Error("application check failed", "path", result.Path, "error", err)
	case !result.Checked:
		c.logger.Info("application hashed", "path", result.Path, "digest", digestText)
	case result.Verified:
		c.logger.Info("application verified", "path", result.Path, "digest", digestText)
	default:
		attrs := []any{"path", result.Path, "expected", digestText}
		if hostDigest, err := binhash.HashFile(result.Path); err == nil {
			attrs = append(attrs, "host_digest", binhash.FormatDigest(hostDigest))
		}
		c.logger.Warn("application digest mismatch", attrs...)
	}
}

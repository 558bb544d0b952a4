// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package bootreport

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kestrel-os/kestrel/lib/appcheck"
	"github.com/kestrel-os/kestrel/lib/codec"
	"github.com/kestrel-os/kestrel/lib/digest/selftest"
)

// FileName is the report's name inside the runtime directory.
const FileName = "boot.cbor"

// Report is the boot outcome.
type Report struct {
	Engine    string        `cbor:"engine"`
	Timestamp time.Time     `cbor:"timestamp"`
	SelfTests []SelfTest    `cbor:"self_tests"`
	Apps      []Application `cbor:"apps,omitempty"`
}

// SelfTest is one known-answer test.
type SelfTest struct {
	Name   string `cbor:"name"`
	Passed bool   `cbor:"passed"`
	Error  string `cbor:"error,omitempty"`
}

// Application is one checked binary.
type Application struct {
	Path     string `cbor:"path"`
	Digest   []byte `cbor:"digest,omitempty"`
	Checked  bool   `cbor:"checked"`
	Verified bool   `cbor:"verified"`
	Error    string `cbor:"error,omitempty"`
}

// Passed reports whether every self-test passed and every app may be
// launched.
func (r *Report) Passed() bool {
	for _, test := range r.SelfTests {
		if !test.Passed {
			return false
		}
	}
	for _, app := range r.Apps {
		if app.Error != "" || (app.Checked && !app.Verified) {
			return false
		}
	}
	return true
}

// AddSelfTest records a self-test result.
func (r *Report) AddSelfTest(result selftest.Result) {
	r.SelfTests = append(r.SelfTests, SelfTest{
		Name:   result.Name,
		Passed: result.Passed(),
		Error:  errorText(result.Err),
	})
}

// AddApps records application check results.
func (r *Report) AddApps(results []appcheck.Result) {
	for _, result := range results {
		app := Application{
			Path:     result.Path,
			Checked:  result.Checked,
			Verified: result.Verified,
			Error:    errorText(result.Err),
		}
		if result.Err == nil {
			app.Digest = append([]byte(nil), result.Digest[:]...)
		}
		r.Apps = append(r.Apps, app)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Diagnose returns the report's encoding in CBOR diagnostic notation.
func (r *Report) Diagnose() (string, error) {
	data, err := codec.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding boot report: %w", err)
	}
	return codec.Diagnose(data)
}

// Path returns the report location inside runtimeDir.
func Path(runtimeDir string) string { return filepath.Join(runtimeDir, FileName) }

// Write atomically writes report to path with mode 0600.
func Write(path string, report *Report) error {
	data, err := codec.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding boot report: %w", err)
	}

	directory := filepath.Dir(path)
	file, err := os.CreateTemp(directory, ".boot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary boot report: %w", err)
	}
	temporaryPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary boot report: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary boot report: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary boot report: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming boot report into place: %w", err)
	}

	parentDirectory, err := os.Open(directory)
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// Read parses the report at path. A missing file yields an error
// wrapping os.ErrNotExist.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := codec.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing boot report %s: %w", path, err)
	}
	return &report, nil
}

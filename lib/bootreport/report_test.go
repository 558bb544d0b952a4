// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package bootreport

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kestrel-os/kestrel/lib/appcheck"
	"github.com/kestrel-os/kestrel/lib/digest/selftest"
)

func TestWriteRead(t *testing.T) {
	report := &Report{
		Engine:    "hardware",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	report.AddSelfTest(selftest.Result{Name: "sha256-hello-world", Equal: true})
	report.AddSelfTest(selftest.Result{Name: "hmac-sha256", Equal: true})

	digest := [32]byte{1, 2, 3}
	report.AddApps([]appcheck.Result{
		{Path: "/apps/blink", Digest: digest, Checked: true, Verified: true},
		{Path: "/apps/absent", Err: os.ErrNotExist},
	})

	path := Path(t.TempDir())
	if err := Write(path, report); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("mode = %o, want 600", mode)
	}

	decoded, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if decoded.Engine != "hardware" || !decoded.Timestamp.Equal(report.Timestamp) {
		t.Errorf("decoded header = %s %v", decoded.Engine, decoded.Timestamp)
	}
	if len(decoded.SelfTests) != 2 || !decoded.SelfTests[1].Passed {
		t.Errorf("self-tests = %+v", decoded.SelfTests)
	}
	if len(decoded.Apps) != 2 {
		t.Fatalf("apps = %+v", decoded.Apps)
	}
	if !bytes.Equal(decoded.Apps[0].Digest, digest[:]) || !decoded.Apps[0].Verified {
		t.Errorf("apps[0] = %+v", decoded.Apps[0])
	}
	if decoded.Apps[1].Error == "" || decoded.Apps[1].Digest != nil {
		t.Errorf("apps[1] = %+v", decoded.Apps[1])
	}
	if decoded.Passed() {
		t.Error("report with a missing app reported as passing")
	}
}

func TestPassed(t *testing.T) {
	report := &Report{}
	report.AddSelfTest(selftest.Result{Name: "a", Equal: true})
	report.AddApps([]appcheck.Result{{Path: "/apps/unsigned"}})
	if !report.Passed() {
		t.Error("passing report reported as failed")
	}

	report.AddApps([]appcheck.Result{{Path: "/apps/tampered", Checked: true}})
	if report.Passed() {
		t.Error("unverified app reported as passing")
	}

	failed := &Report{}
	failed.AddSelfTest(selftest.Result{Name: "b", Err: errors.New("data error")})
	if failed.Passed() || failed.SelfTests[0].Error != "data error" {
		t.Errorf("failed self-test = %+v", failed.SelfTests[0])
	}
}

func TestWriteReplacesAtomically(t *testing.T) {
	directory := t.TempDir()
	path := Path(directory)
	for _, engine := range []string{"software", "hardware"} {
		if err := Write(path, &Report{Engine: engine}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	decoded, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if decoded.Engine != "hardware" {
		t.Errorf("Engine = %q, want the second write", decoded.Engine)
	}
	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only %s", len(entries), FileName)
	}
}

func TestReadMissingAndCorrupt(t *testing.T) {
	directory := t.TempDir()
	if _, err := Read(Path(directory)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read(missing) error = %v, want ErrNotExist", err)
	}
	corrupt := filepath.Join(directory, "corrupt.cbor")
	if err := os.WriteFile(corrupt, []byte{0xff}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(corrupt); err == nil {
		t.Error("Read accepted corrupt data")
	}
}

func TestDiagnose(t *testing.T) {
	report := &Report{Engine: "software"}
	report.AddSelfTest(selftest.Result{Name: "hmac-sha256", Equal: true})
	diagnostic, err := report.Diagnose()
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	for _, want := range []string{`"engine"`, `"software"`, `"self_tests"`, `"hmac-sha256"`} {
		if !strings.Contains(diagnostic, want) {
			t.Errorf("diagnostic %q does not contain %s", diagnostic, want)
		}
	}
}

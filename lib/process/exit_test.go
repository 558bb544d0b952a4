// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	usage := &UsageError{Err: errors.New("unknown flag --bogus")}
	if got := ExitCode(usage); got != ExitUsage {
		t.Errorf("ExitCode(usage) = %d, want %d", got, ExitUsage)
	}
	if got := ExitCode(fmt.Errorf("parsing: %w", usage)); got != ExitUsage {
		t.Errorf("ExitCode(wrapped usage) = %d, want %d", got, ExitUsage)
	}
	if got := ExitCode(errors.New("boom")); got != ExitFailure {
		t.Errorf("ExitCode(other) = %d, want %d", got, ExitFailure)
	}
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	Report(&out, errors.New("self-test failed"))
	if got := out.String(); got != "error: self-test failed\n" {
		t.Errorf("Report wrote %q", got)
	}
}

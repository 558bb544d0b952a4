// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestInfoMarksDirtyBuilds(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit, GitDirty = "abc1234", "true"
	if got := Info(); !strings.Contains(got, "(abc1234-dirty,") {
		t.Errorf("Info() = %q, want dirty commit marker", got)
	}
	GitDirty = "false"
	if got := Info(); strings.Contains(got, "dirty") {
		t.Errorf("Info() = %q, want no dirty marker", got)
	}
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	Print(&out, "kestrel-emulator")
	got := out.String()
	if !strings.HasPrefix(got, "kestrel-emulator "+Version) {
		t.Errorf("Print wrote %q", got)
	}
	if !strings.Contains(got, "Platform: ") {
		t.Errorf("Print output missing platform: %q", got)
	}
}

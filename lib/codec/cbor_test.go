// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sampleRecord struct {
	Name   string `cbor:"name"`
	Digest []byte `cbor:"digest,omitempty"`
	Passed bool   `cbor:"passed"`
}

func TestMarshalUnmarshal(t *testing.T) {
	original := sampleRecord{Name: "sha256-hello-world", Digest: []byte{0xb9, 0x4d}, Passed: true}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != original.Name || !bytes.Equal(decoded.Digest, original.Digest) || !decoded.Passed {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal produced different bytes for the same map")
		}
	}
}

func TestOmitempty(t *testing.T) {
	data, err := Marshal(sampleRecord{Name: "x"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if strings.Contains(diagnostic, "digest") {
		t.Errorf("empty digest was encoded: %s", diagnostic)
	}
	if !strings.Contains(diagnostic, `"name"`) || !strings.Contains(diagnostic, `"x"`) {
		t.Errorf("diagnostic = %s", diagnostic)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var decoded sampleRecord
	if err := Unmarshal([]byte{0xff, 0x00}, &decoded); err == nil {
		t.Error("Unmarshal accepted invalid CBOR")
	}
}

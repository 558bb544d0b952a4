// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SidecarSuffix is appended to a binary's path to locate its expected
// digest.
const SidecarSuffix = ".sha256"

// HashFile computes the SHA-256 digest of the file at path on the host,
// streaming it in chunks.
func HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	hasher.Sum(digest[:0])
	return digest, nil
}

// FormatDigest returns the lowercase hex encoding of digest.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex digest. Surrounding whitespace and a
// trailing sha256sum file name field are ignored.
func ParseDigest(text string) ([32]byte, error) {
	var digest [32]byte
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return digest, errors.New("parsing hash digest: empty")
	}
	decoded, err := hex.DecodeString(fields[0])
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("hash digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// SidecarPath returns the sidecar location for the binary at path.
func SidecarPath(path string) string { return path + SidecarSuffix }

// ReadSidecar returns the expected digest recorded next to the binary
// at path. ok is false when there is no sidecar.
func ReadSidecar(path string) (digest [32]byte, ok bool, err error) {
	content, err := os.ReadFile(SidecarPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return digest, false, nil
	}
	if err != nil {
		return digest, false, fmt.Errorf("reading digest sidecar: %w", err)
	}
	digest, err = ParseDigest(string(content))
	if err != nil {
		return digest, false, fmt.Errorf("%s: %w", SidecarPath(path), err)
	}
	return digest, true, nil
}

// WriteSidecar records digest next to the binary at path in sha256sum
// format.
func WriteSidecar(path string, digest [32]byte) error {
	line := FormatDigest(digest) + "  " + filepath.Base(path) + "\n"
	if err := os.WriteFile(SidecarPath(path), []byte(line), 0o644); err != nil {
		return fmt.Errorf("writing digest sidecar: %w", err)
	}
	return nil
}

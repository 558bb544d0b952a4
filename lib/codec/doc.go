// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds Kestrel's CBOR encoding configuration.
//
// State files the emulator leaves in its runtime directory (the boot
// report, see package bootreport) are CBOR. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The same logical data
// always produces identical bytes, so a host harness can compare
// reports byte for byte.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types serialized only as CBOR use `cbor` struct tags.
package codec

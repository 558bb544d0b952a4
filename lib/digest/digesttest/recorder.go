// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package digesttest

import (
	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/leasable"
)

// Kind names the callback that produced a Completion.
type Kind string

const (
	KindAddData Kind = "add-data"
	KindHash    Kind = "hash"
	KindVerify  Kind = "verify"
)

// Completion is one recorded callback.
type Completion struct {
	Kind Kind

	// Data is the buffer returned by AddDataDone.
	Data *leasable.Buffer

	// Buffer is the digest buffer returned by HashDone or
	// VerificationDone.
	Buffer []byte

	// Equal is the VerificationDone outcome.
	Equal bool

	Err error
}

// Recorder is a digest.Client that appends every callback to
// Completions and then runs OnComplete, if set.
type Recorder struct {
	Completions []Completion
	OnComplete  func(Completion)
}

var _ digest.Client = (*Recorder)(nil)

func (r *Recorder) AddDataDone(data *leasable.Buffer, err error) {
	r.record(Completion{Kind: KindAddData, Data: data, Err: err})
}

func (r *Recorder) HashDone(digestBuffer []byte, err error) {
	r.record(Completion{Kind: KindHash, Buffer: digestBuffer, Err: err})
}

func (r *Recorder) VerificationDone(compare []byte, equal bool, err error) {
	r.record(Completion{Kind: KindVerify, Buffer: compare, Equal: equal, Err: err})
}

// Len returns the number of recorded completions.
func (r *Recorder) Len() int { return len(r.Completions) }

// Last returns the most recent completion. Panics if there is none.
func (r *Recorder) Last() Completion { return r.Completions[len(r.Completions)-1] }

func (r *Recorder) record(completion Completion) {
	r.Completions = append(r.Completions, completion)
	if r.OnComplete != nil {
		r.OnComplete(completion)
	}
}

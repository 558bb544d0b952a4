// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import "fmt"

// State is the operation an engine is currently running.
type State int

const (
	// StateIdle accepts new operations.
	StateIdle State = iota
	// StateAddingData is absorbing a buffer passed to AddData.
	StateAddingData
	// StateHashing is producing a digest for RunHash.
	StateHashing
	// StateVerifying is producing a digest for Verify.
	StateVerifying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAddingData:
		return "adding-data"
	case StateHashing:
		return "hashing"
	case StateVerifying:
		return "verifying"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine tracks the single outstanding operation of an engine and the
// installed client. The zero value is idle with no client.
type Machine struct {
	state  State
	client Client

	// pending records whether data has been added since the last
	// finalize or reset.
	pending bool
}

// SetClient installs client. It returns ErrBusy while an operation is
// outstanding, leaving the current client in place.
func (m *Machine) SetClient(client Client) error {
	if err := m.CheckIdle(); err != nil {
		return err
	}
	m.client = client
	return nil
}

// Client returns the installed client, or nil.
func (m *Machine) Client() Client { return m.client }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Idle reports whether no operation is outstanding.
func (m *Machine) Idle() bool { return m.state == StateIdle }

// HasData reports whether bytes were added since the last finalize or
// reset.
func (m *Machine) HasData() bool { return m.pending }

// Check returns the synchronous rejection a new request would get:
// ErrNoClient without a client, ErrBusy while an operation is
// outstanding, nil otherwise.
func (m *Machine) Check() error {
	if m.client == nil {
		return ErrNoClient
	}
	return m.CheckIdle()
}

// CheckIdle returns ErrBusy while an operation is outstanding. Mode
// changes and ClearData use it; they do not need a client.
func (m *Machine) CheckIdle() error {
	if m.state != StateIdle {
		return fmt.Errorf("%w: engine is %s", ErrBusy, m.state)
	}
	return nil
}

// Begin moves from idle into state. Panics if the engine is not idle;
// callers run Check first.
func (m *Machine) Begin(state State) {
	if m.state != StateIdle {
		panic(fmt.Sprintf("digest: Begin(%s) while %s", state, m.state))
	}
	if state == StateAddingData {
		m.pending = true
	}
	m.state = state
}

// Finish returns to idle and yields the client that should receive the
// completion. Finishing a hash or verify clears the accumulated-data
// marker.
func (m *Machine) Finish() Client {
	if m.state == StateHashing || m.state == StateVerifying {
		m.pending = false
	}
	m.state = StateIdle
	return m.client
}

// Reset clears the accumulated-data marker.
func (m *Machine) Reset() { m.pending = false }

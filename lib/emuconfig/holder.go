// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package emuconfig

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadySet is the panic value of a second Holder.Set.
	ErrAlreadySet = errors.New("emuconfig: configuration already set")

	// ErrNotSet is the panic value of Holder.Get before Set.
	ErrNotSet = errors.New("emuconfig: configuration not set")
)

// Holder carries the process configuration once it is known.
type Holder struct {
	mu     sync.Mutex
	config *Config
}

// Set stores config. It panics with ErrAlreadySet if a configuration
// is already held, keeping the first one.
func (h *Holder) Set(config *Config) {
	if config == nil {
		panic("emuconfig: Set with nil configuration")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.config != nil {
		panic(ErrAlreadySet)
	}
	h.config = config
}

// Get returns the configuration. It panics with ErrNotSet before Set.
func (h *Holder) Get() *Config {
	config, ok := h.Load()
	if !ok {
		panic(ErrNotSet)
	}
	return config
}

// Load returns the configuration and whether it has been set.
func (h *Holder) Load() (*Config, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config, h.config != nil
}

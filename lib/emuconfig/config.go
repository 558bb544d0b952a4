// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package emuconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// Board selects the digest engine the emulated kernel uses.
type Board string

const (
	BoardSoftware Board = "software"
	BoardHardware Board = "hardware"
)

// ProgramName is the flag set name and the --version prefix.
const ProgramName = "kestrel-emulator"

// Runtime file names inside the runtime directory.
const (
	syscallRxName = "kernel_rx"
	syscallTxName = "kernel_tx"
)

// AppInfo names an application binary to load.
type AppInfo struct {
	Name string
	Path string
}

// Config is the emulator's process configuration.
type Config struct {
	Apps          []AppInfo
	EmulationLog  LogLevel
	AppLog        LogLevel
	ConfigPath    string
	Board         Board
	File          FileConfig
	ShowVersion   bool
	SelfTestsOnly bool

	runtimeDir string
}

type flagValues struct {
	apps          []string
	emulationLog  int
	appLog        int
	configPath    string
	board         string
	showVersion   bool
	selfTestsOnly bool
}

func newFlagSet(values *flagValues) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(ProgramName, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringSliceVarP(&values.apps, "apps", "a", nil, "comma-separated application binaries to verify and load")
	flagSet.IntVarP(&values.emulationLog, "emulation_log", "e", int(LogNone), "emulator log level (0 none, 1 error, 2 warning, 3 info, 4 debug)")
	flagSet.IntVarP(&values.appLog, "app_log", "p", int(LogNone), "application log level (0-4)")
	flagSet.StringVarP(&values.configPath, "config", "c", "", "config file (JSON with comments, or YAML)")
	flagSet.StringVar(&values.board, "digest_engine", string(BoardSoftware), "digest engine: software or hardware")
	flagSet.BoolVar(&values.selfTestsOnly, "self_test", false, "run the digest self-tests and exit")
	flagSet.BoolVar(&values.showVersion, "version", false, "print version information and exit")
	return flagSet
}

// Usage returns the flag help text.
func Usage() string {
	return newFlagSet(&flagValues{}).FlagUsages()
}

// FromArgs parses args (without the program name) and loads the config
// file through reader. It returns pflag.ErrHelp for --help.
func FromArgs(args []string, reader FileReader) (*Config, error) {
	var values flagValues
	flagSet := newFlagSet(&values)
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	config := &Config{
		ConfigPath:    values.configPath,
		Board:         Board(values.board),
		ShowVersion:   values.showVersion,
		SelfTestsOnly: values.selfTestsOnly,
		File:          DefaultFileConfig(),
	}
	if config.ShowVersion {
		return config, nil
	}

	var err error
	if config.EmulationLog, err = ParseLogLevel(values.emulationLog); err != nil {
		return nil, fmt.Errorf("--emulation_log: %w", err)
	}
	if config.AppLog, err = ParseLogLevel(values.appLog); err != nil {
		return nil, fmt.Errorf("--app_log: %w", err)
	}
	switch config.Board {
	case BoardSoftware, BoardHardware:
	default:
		return nil, fmt.Errorf("--digest_engine: unknown engine %q (want %s or %s)", values.board, BoardSoftware, BoardHardware)
	}
	for _, path := range values.apps {
		if path == "" {
			return nil, errors.New("--apps: empty application path")
		}
		config.Apps = append(config.Apps, AppInfo{Name: filepath.Base(path), Path: path})
	}

	if config.ConfigPath != "" {
		if reader == nil {
			reader = DefaultFileReader{}
		}
		if config.File, err = reader.ReadConfig(config.ConfigPath); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// AppPaths returns the paths of the configured apps in order.
func (c *Config) AppPaths() []string {
	paths := make([]string, len(c.Apps))
	for i, app := range c.Apps {
		paths[i] = app.Path
	}
	return paths
}

// CreateRuntimeDir creates the runtime directory: the socket path base
// plus a unique suffix.
func (c *Config) CreateRuntimeDir() error {
	if c.runtimeDir != "" {
		return fmt.Errorf("runtime directory already created at %s", c.runtimeDir)
	}
	base := c.File.SocketPathBase
	directory, err := os.MkdirTemp(filepath.Dir(base), filepath.Base(base)+"*")
	if err != nil {
		return fmt.Errorf("creating runtime directory: %w", err)
	}
	c.runtimeDir = directory
	return nil
}

// RuntimeDir returns the runtime directory, or "" before
// CreateRuntimeDir.
func (c *Config) RuntimeDir() string { return c.runtimeDir }

// SyscallRxPath is the socket the kernel receives syscalls on.
func (c *Config) SyscallRxPath() string { return c.runtimePath(syscallRxName) }

// SyscallTxPath is the socket the kernel sends syscall replies on.
func (c *Config) SyscallTxPath() string { return c.runtimePath(syscallTxName) }

func (c *Config) runtimePath(name string) string {
	if c.runtimeDir == "" {
		return ""
	}
	return filepath.Join(c.runtimeDir, name)
}

// Close removes the runtime directory.
func (c *Config) Close() error {
	if c.runtimeDir == "" {
		return nil
	}
	directory := c.runtimeDir
	c.runtimeDir = ""
	return os.RemoveAll(directory)
}

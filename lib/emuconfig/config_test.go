// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package emuconfig

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type stubReader struct {
	config FileConfig
	err    error
	paths  []string
}

func (r *stubReader) ReadConfig(path string) (FileConfig, error) {
	r.paths = append(r.paths, path)
	return r.config, r.err
}

func TestFromArgsDefaults(t *testing.T) {
	config, err := FromArgs(nil, nil)
	if err != nil {
		t.Fatalf("FromArgs: %v", err)
	}
	if config.EmulationLog != LogNone || config.AppLog != LogNone {
		t.Errorf("log levels = %s/%s, want none/none", config.EmulationLog, config.AppLog)
	}
	if config.Board != BoardSoftware {
		t.Errorf("Board = %q, want software", config.Board)
	}
	if config.File.SocketPathBase != DefaultSocketPathBase {
		t.Errorf("SocketPathBase = %q, want %q", config.File.SocketPathBase, DefaultSocketPathBase)
	}
	if len(config.Apps) != 0 {
		t.Errorf("Apps = %v, want none", config.Apps)
	}
}

func TestFromArgsFlags(t *testing.T) {
	reader := &stubReader{config: FileConfig{SocketPathBase: "/run/kestrel/he_"}}
	config, err := FromArgs([]string{
		"-a", "/apps/blink,/apps/console",
		"-e", "9",
		"--app_log=1",
		"-c", "emulator.jsonc",
		"--digest_engine", "hardware",
	}, reader)
	if err != nil {
		t.Fatalf("FromArgs: %v", err)
	}

	want := []AppInfo{{Name: "blink", Path: "/apps/blink"}, {Name: "console", Path: "/apps/console"}}
	if len(config.Apps) != len(want) {
		t.Fatalf("Apps = %v, want %v", config.Apps, want)
	}
	for i := range want {
		if config.Apps[i] != want[i] {
			t.Errorf("Apps[%d] = %+v, want %+v", i, config.Apps[i], want[i])
		}
	}
	if paths := config.AppPaths(); paths[1] != "/apps/console" {
		t.Errorf("AppPaths = %v", paths)
	}
	if config.EmulationLog != LogDebug {
		t.Errorf("EmulationLog = %s, want debug (clamped)", config.EmulationLog)
	}
	if config.AppLog != LogError {
		t.Errorf("AppLog = %s, want error", config.AppLog)
	}
	if config.Board != BoardHardware {
		t.Errorf("Board = %q, want hardware", config.Board)
	}
	if len(reader.paths) != 1 || reader.paths[0] != "emulator.jsonc" {
		t.Errorf("reader called with %v", reader.paths)
	}
	if config.File.SocketPathBase != "/run/kestrel/he_" {
		t.Errorf("SocketPathBase = %q", config.File.SocketPathBase)
	}
}

func TestFromArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"negative level", []string{"-e", "-1"}},
		{"non-numeric level", []string{"-p", "loud"}},
		{"unknown engine", []string{"--digest_engine", "fpga"}},
		{"positional", []string{"extra"}},
		{"empty app", []string{"-a", "/apps/one,,/apps/two"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := FromArgs(test.args, &stubReader{}); err == nil {
				t.Errorf("FromArgs(%v) succeeded", test.args)
			}
		})
	}
}

func TestFromArgsReaderError(t *testing.T) {
	readErr := errors.New("permission denied")
	_, err := FromArgs([]string{"-c", "x.json"}, &stubReader{err: readErr})
	if !errors.Is(err, readErr) {
		t.Fatalf("error = %v, want %v", err, readErr)
	}
}

func TestFromArgsHelpAndVersion(t *testing.T) {
	if _, err := FromArgs([]string{"--help"}, nil); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("--help error = %v, want pflag.ErrHelp", err)
	}
	config, err := FromArgs([]string{"--version", "--digest_engine", "fpga"}, nil)
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !config.ShowVersion {
		t.Error("ShowVersion not set")
	}
	if usage := Usage(); !strings.Contains(usage, "--emulation_log") || !strings.Contains(usage, "-a, --apps") {
		t.Errorf("Usage() missing flags:\n%s", usage)
	}
}

func TestParseLogLevel(t *testing.T) {
	for value, want := range map[int]LogLevel{0: LogNone, 1: LogError, 2: LogWarning, 3: LogInfo, 4: LogDebug, 5: LogDebug, 100: LogDebug} {
		got, err := ParseLogLevel(value)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%d) = %s, %v; want %s", value, got, err, want)
		}
	}
}

func TestLogLevelHandler(t *testing.T) {
	var built []slog.Level
	newHandler := func(options *slog.HandlerOptions) slog.Handler {
		built = append(built, options.Level.Level())
		return slog.NewTextHandler(os.Stderr, options)
	}

	if handler := LogNone.Handler(newHandler); handler != slog.DiscardHandler {
		t.Errorf("LogNone handler = %T, want DiscardHandler", handler)
	}
	LogWarning.Handler(newHandler)
	LogDebug.Handler(newHandler)
	if len(built) != 2 || built[0] != slog.LevelWarn || built[1] != slog.LevelDebug {
		t.Errorf("built handler levels = %v", built)
	}
}

func TestParseFile(t *testing.T) {
	t.Setenv("KESTREL_RUN", "/var/run/kestrel")
	tests := []struct {
		name string
		path string
		data string
		want string
	}{
		{"jsonc", "emulator.jsonc", "{\n  // base for sockets\n  \"socket_path_base\": \"/srv/he_\",\n}\n", "/srv/he_"},
		{"json empty", "emulator.json", "{}", DefaultSocketPathBase},
		{"yaml", "emulator.yaml", "socket_path_base: /opt/he_\n", "/opt/he_"},
		{"yml expand", "emulator.yml", "socket_path_base: ${KESTREL_RUN}/he_\n", "/var/run/kestrel/he_"},
		{"default expand", "emulator.json", `{"socket_path_base": "${KESTREL_UNSET_VAR:-/tmp}/k_"}`, "/tmp/k_"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config, err := ParseFile(test.path, []byte(test.data))
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}
			if config.SocketPathBase != test.want {
				t.Errorf("SocketPathBase = %q, want %q", config.SocketPathBase, test.want)
			}
		})
	}

	if _, err := ParseFile("bad.json", []byte("{not json")); err == nil {
		t.Error("ParseFile accepted malformed JSON")
	}
	if _, err := ParseFile("bad.yaml", []byte("socket_path_base: [unterminated")); err == nil {
		t.Error("ParseFile accepted malformed YAML")
	}
}

func TestDefaultFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emulator.json")
	if err := os.WriteFile(path, []byte(`{"socket_path_base": "/x/he_"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err := DefaultFileReader{}.ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if config.SocketPathBase != "/x/he_" {
		t.Errorf("SocketPathBase = %q", config.SocketPathBase)
	}
	if _, err := (DefaultFileReader{}).ReadConfig(path + ".missing"); err == nil {
		t.Error("ReadConfig succeeded for a missing file")
	}
}

func TestRuntimeDir(t *testing.T) {
	config := &Config{File: FileConfig{SocketPathBase: filepath.Join(t.TempDir(), "he_")}}
	if config.SyscallRxPath() != "" {
		t.Error("SyscallRxPath set before CreateRuntimeDir")
	}
	if err := config.CreateRuntimeDir(); err != nil {
		t.Fatalf("CreateRuntimeDir: %v", err)
	}
	directory := config.RuntimeDir()
	if !strings.HasPrefix(filepath.Base(directory), "he_") {
		t.Errorf("runtime dir %q does not start with the base", directory)
	}
	if info, err := os.Stat(directory); err != nil || !info.IsDir() {
		t.Fatalf("runtime dir missing: %v", err)
	}
	if got := config.SyscallRxPath(); got != filepath.Join(directory, "kernel_rx") {
		t.Errorf("SyscallRxPath = %q", got)
	}
	if got := config.SyscallTxPath(); got != filepath.Join(directory, "kernel_tx") {
		t.Errorf("SyscallTxPath = %q", got)
	}
	if err := config.CreateRuntimeDir(); err == nil {
		t.Error("second CreateRuntimeDir succeeded")
	}

	if err := config.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(directory); !os.IsNotExist(err) {
		t.Errorf("runtime dir still present after Close: %v", err)
	}
}

func TestRuntimeDirsAreUnique(t *testing.T) {
	base := filepath.Join(t.TempDir(), "he_")
	first := &Config{File: FileConfig{SocketPathBase: base}}
	second := &Config{File: FileConfig{SocketPathBase: base}}
	for _, config := range []*Config{first, second} {
		if err := config.CreateRuntimeDir(); err != nil {
			t.Fatal(err)
		}
		defer config.Close()
	}
	if first.RuntimeDir() == second.RuntimeDir() {
		t.Errorf("both configs share %s", first.RuntimeDir())
	}
}

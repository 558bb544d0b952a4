// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package emuconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DefaultSocketPathBase is used when no config file is given or the
// file leaves socket_path_base empty.
const DefaultSocketPathBase = "/tmp/he_"

// FileConfig is the content of the config file.
type FileConfig struct {
	// SocketPathBase is the prefix of the runtime directory. A unique
	// suffix is appended per process.
	SocketPathBase string `json:"socket_path_base" yaml:"socket_path_base"`
}

// DefaultFileConfig returns the configuration used without a file.
func DefaultFileConfig() FileConfig {
	return FileConfig{SocketPathBase: DefaultSocketPathBase}
}

// FileReader loads a config file.
type FileReader interface {
	ReadConfig(path string) (FileConfig, error)
}

// DefaultFileReader reads config files from disk.
type DefaultFileReader struct{}

// ReadConfig parses path as YAML or JSONC depending on its extension,
// fills defaults, and expands ${VAR} references.
func (DefaultFileReader) ReadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseFile(path, data)
}

// ParseFile decodes data, choosing the format from path's extension.
func ParseFile(path string, data []byte) (FileConfig, error) {
	config := DefaultFileConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return FileConfig{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
			return FileConfig{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if config.SocketPathBase == "" {
		config.SocketPathBase = DefaultSocketPathBase
	}
	config.SocketPathBase = expandVars(config.SocketPathBase)
	return config, nil
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads a configuration from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile[C any](path string) (C, error) {
	var zero C

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return zero, fmt.Errorf("unsupported config file extension: %s", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read config file: %w", err)
	}

	if ext == ".json" {
		return FromJSON[C](data)
	}
	return FromYAML[C](data)
}

// FromYAML parses YAML data into a C
func FromYAML[C any](data []byte) (C, error) {
	var cfg C
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		var zero C
		return zero, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// FromJSON parses JSON data into a C
func FromJSON[C any](data []byte) (C, error) {
	var cfg C
	if err := json.Unmarshal(data, &cfg); err != nil {
		var zero C
		return zero, fmt.Errorf("parse json: %w", err)
	}
	return cfg, nil
}

// Package config loads and validates the optional kryc.yaml project
// configuration file: default include directories, default
// optimization level, target platform, and custom variable defaults
// (SPEC_FULL.md §10), following the teacher pack's yaml.v3 +
// validator/v10 layered-config idiom.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoggerConfig controls one logging sink (console or file), mirroring
// the pack's LoggerConfig shape scaled down to what a compiler CLI
// needs.
type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" validate:"omitempty,filepath"`
}

// LoggingConfig groups the console and file logging sinks.
type LoggingConfig struct {
	Console LoggerConfig `yaml:"console"`
	File    LoggerConfig `yaml:"file"`
}

// Config is the top-level shape of kryc.yaml.
type Config struct {
	IncludeDirs       []string          `yaml:"include_dirs,omitempty"`
	OptimizationLevel int               `yaml:"optimization_level" validate:"gte=0,lte=2"`
	TargetPlatform    string            `yaml:"target_platform,omitempty" validate:"omitempty,oneof=desktop mobile web embedded universal"`
	EmbedScripts      bool              `yaml:"embed_scripts"`
	CustomVariables   map[string]string `yaml:"custom_variables,omitempty"`
	Logging           LoggingConfig     `yaml:"logging"`
}

// Default returns the baseline configuration used when no kryc.yaml is
// present: normal console logging, no file logging, no optimization.
func Default() *Config {
	return &Config{
		OptimizationLevel: 0,
		TargetPlatform:    "universal",
		Logging: LoggingConfig{
			Console: LoggerConfig{Level: "normal"},
			File:    LoggerConfig{Level: "none"},
		},
	}
}

// Load reads and validates the config file at path. An empty path
// returns Default(). Unknown keys are rejected (yaml.Decoder.KnownFields)
// so a typo'd field fails loudly instead of silently being ignored.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Dump marshals cfg back to YAML, backing the `kryc config dump`
// subcommand.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

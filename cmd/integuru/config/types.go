// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"github.com/go-playground/validator/v10"
)

// configValidate is the validator instance for the config file.
// Initialized in init().
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

type InteguruConfig struct {
	// Model: which reasoning model answers discovery and generation calls
	Model ModelConfig `yaml:"model"`

	// Capture: default locations of the recorded session artifacts
	Capture CaptureConfig `yaml:"capture"`

	// Discovery: knobs for the dependency-resolution loop
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Logging: destination and verbosity for diagnostics
	Logging LoggingConfig `yaml:"logging"`
}

type ModelConfig struct {
	// Name drives the structured discovery calls, e.g. gpt-4o.
	Name string `yaml:"name" validate:"required"`

	// Alternate is tried first for code generation; discovery never
	// uses it. Empty keeps the built-in default.
	Alternate string `yaml:"alternate,omitempty"`

	// BaseURL points the client at a self-hosted gateway. Empty uses
	// the public endpoint (or OPENAI_BASE_URL when set).
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
}

type CaptureConfig struct {
	HARPath    string `yaml:"har_path" validate:"required"`    // e.g. network_requests.har
	CookiePath string `yaml:"cookie_path" validate:"required"` // e.g. cookies.json
}

type DiscoveryConfig struct {
	// MaxSteps bounds how many requests the engine will resolve before
	// giving up and returning the partial graph.
	MaxSteps int `yaml:"max_steps" validate:"gte=1,lte=200"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"` // empty disables file logging
}

// Validate checks the loaded config against the struct tags.
//
// # Outputs
//
//   - error: Non-nil if validation failed, with details about which field
func (c *InteguruConfig) Validate() error {
	return configValidate.Struct(c)
}

func DefaultConfig() InteguruConfig {
	return InteguruConfig{
		Model: ModelConfig{
			Name:      "gpt-4o",
			Alternate: "o1-preview",
		},
		Capture: CaptureConfig{
			HARPath:    "network_requests.har",
			CookiePath: "cookies.json",
		},
		Discovery: DiscoveryConfig{
			MaxSteps: 15,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package atlas

import "github.com/gogpu/present"

// Config holds atlas configuration.
type Config struct {
	// TextureSize is the edge length of atlas textures.
	// Default: present.DefaultAtlasSize
	TextureSize int

	// Padding between tiles to prevent sampling bleed.
	// Default: 1
	Padding int

	// MaxTextures caps the number of live textures per kind.
	// Default: 64
	MaxTextures int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TextureSize: present.DefaultAtlasSize,
		Padding:     1,
		MaxTextures: 64,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TextureSize < 64 {
		return &ConfigError{Field: "TextureSize", Reason: "must be at least 64"}
	}
	if c.TextureSize&(c.TextureSize-1) != 0 {
		return &ConfigError{Field: "TextureSize", Reason: "must be power of 2"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.Padding >= c.TextureSize/2 {
		return &ConfigError{Field: "Padding", Reason: "must be less than half TextureSize"}
	}
	if c.MaxTextures < 1 {
		return &ConfigError{Field: "MaxTextures", Reason: "must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}

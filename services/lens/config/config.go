// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads i18nlens settings.
//
// Settings come from three layers, later layers winning: the embedded
// defaults, a workspace YAML file, and LENS_* environment variables.
package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/i18nlens/services/lens/annotate"
	"github.com/AleutianAI/i18nlens/services/lens/ast"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

//go:embed lens_defaults.yaml
var defaultsYAML []byte

var tracer = otel.Tracer("lens.config")

var validate = validator.New()

const (
	// DefaultFileName is the workspace-relative settings file.
	DefaultFileName = ".i18nlens.yaml"

	// MaxYAMLFileSize bounds the settings file.
	MaxYAMLFileSize = 1 << 20
)

// Environment overrides.
const (
	EnvDisplayLanguage = "LENS_DISPLAY_LANGUAGE"
	EnvLocaleFilePath  = "LENS_LOCALE_FILE_PATH"
	EnvSimpleCallNames = "LENS_SIMPLE_CALL_NAMES"
)

// ErrNoCallPatterns indicates a configuration that recognizes no calls at all.
var ErrNoCallPatterns = errors.New("no call patterns configured")

// Config holds the user-facing settings.
type Config struct {
	// SimpleCallNames lists bare callee names, e.g. "t".
	SimpleCallNames []string `yaml:"simple_call_names" json:"simple_call_names" validate:"dive,required"`

	// ObjectPropertyCalls maps an object identifier to the method names
	// called on it that take a key.
	ObjectPropertyCalls map[string][]string `yaml:"object_property_calls" json:"object_property_calls" validate:"dive,keys,required,endkeys,dive,required"`

	// LocaleFilePath is the dictionary path pattern.
	LocaleFilePath string `yaml:"locale_file_path" json:"locale_file_path" validate:"required"`

	// DisplayLanguage fills the {locale} placeholder.
	DisplayLanguage string `yaml:"display_language" json:"display_language" validate:"required"`

	// Fold is one of each, first or join.
	Fold string `yaml:"fold" json:"fold" validate:"oneof=each first join"`

	// NotFoundText is shown for unresolved keys.
	NotFoundText string `yaml:"not_found_text" json:"not_found_text" validate:"required"`

	// Prefix precedes rendered text.
	Prefix string `yaml:"prefix" json:"prefix"`

	// CacheTTL is how long a loaded dictionary is reused.
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl" validate:"gte=0"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load(context.Background(), nil)
	if err != nil {
		// The embedded file is part of the build; failing here is a programming error.
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load parses YAML settings over the embedded defaults and validates the result.
//
// Description:
//
//	Keys absent from data keep their default value. Empty data yields the
//	defaults. A present list or map replaces the default wholesale.
//
// Outputs:
//   - *Config: The validated configuration.
//   - error: Non-nil if data is oversized, unparseable or invalid.
func Load(ctx context.Context, data []byte) (*Config, error) {
	_, span := tracer.Start(ctx, "config.Load")
	defer span.End()

	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("config: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing defaults: %w", err)
	}
	if len(data) > 0 {
		// Decode into a fresh map so user entries replace rather than merge.
		cfg.ObjectPropertyCalls = nil
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing YAML: %w", err)
		}
		if cfg.ObjectPropertyCalls == nil {
			cfg.ObjectPropertyCalls = map[string][]string{}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("simple_call_names", len(cfg.SimpleCallNames)),
		attribute.Int("object_property_calls", len(cfg.ObjectPropertyCalls)),
		attribute.String("display_language", cfg.DisplayLanguage),
		attribute.String("fold", cfg.Fold),
	)
	return &cfg, nil
}

// LoadFile reads settings from path. A missing file yields the defaults.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("settings file not found, using defaults", slog.String("path", path))
			return Load(ctx, nil)
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := Load(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("settings loaded", slog.String("path", path))
	return cfg, nil
}

// ApplyEnv overrides settings from LENS_* environment variables and
// revalidates. LENS_SIMPLE_CALL_NAMES is comma separated.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvDisplayLanguage); ok && v != "" {
		c.DisplayLanguage = v
	}
	if v, ok := os.LookupEnv(EnvLocaleFilePath); ok && v != "" {
		c.LocaleFilePath = v
	}
	if v, ok := os.LookupEnv(EnvSimpleCallNames); ok {
		names := make([]string, 0)
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		c.SimpleCallNames = names
	}
	return c.Validate()
}

// Validate checks field constraints and that at least one call shape is configured.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: validation: %w", err)
	}
	if c.CallPatterns().IsEmpty() {
		return fmt.Errorf("config: validation: %w", ErrNoCallPatterns)
	}
	return nil
}

// CallPatterns converts the call settings for the extractor.
func (c *Config) CallPatterns() ast.CallPatterns {
	return ast.CallPatterns{
		SimpleNames:     append([]string(nil), c.SimpleCallNames...),
		NamespacedCalls: c.ObjectPropertyCalls,
	}
}

// FoldPolicy returns the parsed fold setting. Validate guarantees it parses.
func (c *Config) FoldPolicy() annotate.FoldPolicy {
	p, _ := annotate.ParseFoldPolicy(c.Fold)
	return p
}

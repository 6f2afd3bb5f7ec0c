// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/retry"
	"github.com/walteh/pagemigrate/pkg/source"
	"github.com/walteh/pagemigrate/pkg/wiki"
	"gitlab.com/tozd/go/errors"
)

// 🔑 Environment variables that override the credentials of the config file
const (
	EnvUsername = "PAGEMIGRATE_USERNAME"
	EnvPassword = "PAGEMIGRATE_PASSWORD"
)

// DefaultDriver is the browser driver used when none is configured.
const DefaultDriver = "chromedp"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 RetryConfig bounds every interaction with the wiki UI
type RetryConfig struct {
	MaxAttempts int    `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	Delay       string `json:"delay,omitempty" yaml:"delay,omitempty"` // Go duration, e.g. "1s"
}

// 🚩 SentinelConfig lists the texts the wiki shows instead of a missing page
type SentinelConfig struct {
	NotFound       []string `json:"not_found,omitempty" yaml:"not_found,omitempty"`
	RecoveryTitles []string `json:"recovery_titles,omitempty" yaml:"recovery_titles,omitempty"`
	NoAttachments  string   `json:"no_attachments,omitempty" yaml:"no_attachments,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	BaseAddress    string          `json:"base_address" yaml:"base_address"`
	Space          string          `json:"space" yaml:"space"`
	SourceRoot     string          `json:"source_root" yaml:"source_root"`
	IsTesting      bool            `json:"is_testing,omitempty" yaml:"is_testing,omitempty"`
	Username       string          `json:"username,omitempty" yaml:"username,omitempty"`
	Password       string          `json:"password,omitempty" yaml:"password,omitempty"`
	MarkerSuffix   string          `json:"marker_suffix,omitempty" yaml:"marker_suffix,omitempty"`
	ProvenanceNote string          `json:"provenance_note,omitempty" yaml:"provenance_note,omitempty"`
	Include        []string        `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude        []string        `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Retry          *RetryConfig    `json:"retry,omitempty" yaml:"retry,omitempty"`
	Sentinels      *SentinelConfig `json:"sentinels,omitempty" yaml:"sentinels,omitempty"`
	Headless       *bool           `json:"headless,omitempty" yaml:"headless,omitempty"`
	BrowserPath    string          `json:"browser_path,omitempty" yaml:"browser_path,omitempty"`
	Driver         string          `json:"driver,omitempty" yaml:"driver,omitempty"`
}

// 🎯 Load loads the configuration from a file, overlays credentials from the
// environment and validates the result. A .env file next to the config file is
// read first; real environment variables win over it.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.ApplyEnv(ctx, filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, errors.Errorf("reading credentials: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔑 ApplyEnv overlays credentials from envFile (when it exists) and then from the process
// environment.
func (cfg *Config) ApplyEnv(ctx context.Context, envFile string) error {
	values := map[string]string{}
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			values, err = godotenv.Read(envFile)
			if err != nil {
				return errors.Errorf("reading %s: %w", envFile, err)
			}
			zerolog.Ctx(ctx).Debug().Str("path", envFile).Msg("loaded env file")
		}
	}

	for key, target := range map[string]*string{
		EnvUsername: &cfg.Username,
		EnvPassword: &cfg.Password,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		} else if v := values[key]; v != "" {
			*target = v
		}
	}
	return nil
}

// 🔍 Validate checks if the configuration is valid and fills in defaults
func (cfg *Config) Validate() error {
	// Check required fields
	if cfg.BaseAddress == "" {
		return errors.Errorf("base_address is required")
	}
	if !strings.HasPrefix(cfg.BaseAddress, "http://") && !strings.HasPrefix(cfg.BaseAddress, "https://") {
		return errors.Errorf("base_address must be an http(s) url, got %q", cfg.BaseAddress)
	}
	if cfg.Space == "" {
		return errors.Errorf("space is required")
	}
	if cfg.SourceRoot == "" {
		return errors.Errorf("source_root is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return errors.Errorf("username and password are required (set them in the config, a .env file or %s/%s)", EnvUsername, EnvPassword)
	}

	// Clean up paths
	cfg.BaseAddress = strings.TrimSuffix(cfg.BaseAddress, "/")
	cfg.SourceRoot = filepath.Clean(cfg.SourceRoot)

	// Set defaults
	if cfg.MarkerSuffix == "" {
		cfg.MarkerSuffix = source.DefaultMarkerSuffix
	}
	if !strings.HasPrefix(cfg.MarkerSuffix, ".") {
		return errors.Errorf("marker_suffix must start with a dot, got %q", cfg.MarkerSuffix)
	}
	if cfg.Driver == "" {
		cfg.Driver = DefaultDriver
	}
	if cfg.Retry == nil {
		cfg.Retry = &RetryConfig{}
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = retry.DefaultMaxAttempts
	}
	if cfg.Retry.Delay == "" {
		cfg.Retry.Delay = retry.DefaultDelay.String()
	}
	delay, err := time.ParseDuration(cfg.Retry.Delay)
	if err != nil {
		return errors.Errorf("retry.delay: %w", err)
	}
	if delay <= 0 {
		return errors.Errorf("retry.delay must be positive, got %q", cfg.Retry.Delay)
	}
	if err := cfg.RetryPolicy().Validate(); err != nil {
		return errors.Errorf("retry: %w", err)
	}
	if err := cfg.Filter().Validate(); err != nil {
		return errors.Errorf("include/exclude: %w", err)
	}

	return nil
}

// RetryPolicy returns the configured retry bounds.
func (cfg *Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	if cfg.Retry == nil {
		return p
	}
	if cfg.Retry.MaxAttempts != 0 {
		p.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if d, err := time.ParseDuration(cfg.Retry.Delay); err == nil {
		p.Delay = d
	}
	return p
}

// Filter returns the file selection of the run.
func (cfg *Config) Filter() source.Filter {
	return source.Filter{
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
		MarkerSuffix: cfg.MarkerSuffix,
	}
}

// WikiSentinels returns the configured not found texts; empty lists fall back to the defaults.
func (cfg *Config) WikiSentinels() wiki.Sentinels {
	if cfg.Sentinels == nil {
		return wiki.Sentinels{}
	}
	return wiki.Sentinels{
		NotFound:       cfg.Sentinels.NotFound,
		RecoveryTitles: cfg.Sentinels.RecoveryTitles,
		NoAttachments:  cfg.Sentinels.NoAttachments,
	}
}

// WikiOptions returns the session options for this configuration.
func (cfg *Config) WikiOptions() wiki.Options {
	return wiki.Options{
		BaseAddress: cfg.BaseAddress,
		Space:       cfg.Space,
		Username:    cfg.Username,
		Password:    cfg.Password,
		IsTesting:   cfg.IsTesting,
		Retry:       cfg.RetryPolicy(),
		Sentinels:   cfg.WikiSentinels(),
	}
}

// IsHeadless reports whether the browser runs without a window; the default is true.
func (cfg *Config) IsHeadless() bool {
	return cfg.Headless == nil || *cfg.Headless
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s/display/%s", cfg.SourceRoot, strings.TrimSuffix(cfg.BaseAddress, "/"), cfg.Space)
}

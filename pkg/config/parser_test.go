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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestParserRegistration tests the parser registration system
func TestParserRegistration(t *testing.T) {
	// Save original parsers
	originalParsers := parsers
	defer func() {
		parsers = originalParsers
	}()

	// Reset parsers
	parsers = nil

	// Create mock parser
	mockParser := &struct {
		Parser
		canParse bool
	}{
		canParse: true,
	}

	// Test registration
	Register(mockParser)
	assert.Len(t, parsers, 1, "should have 1 parser registered")
	assert.Equal(t, mockParser, parsers[0], "registered parser should match")
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{
			name:     "yaml_file",
			filename: "pagemigrate.yaml",
			want:     &YAMLParser{},
		},
		{
			name:     "yml_file",
			filename: "pagemigrate.yml",
			want:     &YAMLParser{},
		},
		{
			name:     "hcl_file",
			filename: "pagemigrate.hcl",
			want:     &HCLParser{},
		},
		{
			name:     "json_file",
			filename: "PAGEMIGRATE.JSON",
			want:     &JSONParser{},
		},
		{
			name:     "unknown_extension",
			filename: "pagemigrate.txt",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

// 🧪 TestHCLParsing tests HCL config parsing
func TestHCLParsing(t *testing.T) {
	t.Setenv("PAGEMIGRATE_TEST_PASSWORD", "hunter2")

	tests := []struct {
		name        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid_hcl",
			config: `
base_address = "https://wiki.example.com"
space        = "DOCS"
source_root  = "/srv/share/Import"
username     = "migrator"
password     = env.PAGEMIGRATE_TEST_PASSWORD
exclude      = ["Archive/**", "**/*.tmp"]
headless     = true

retry {
  max_attempts = 3
  delay        = "2s"
}

sentinels {
  not_found       = ["Page Not Found", "Seite nicht gefunden"]
  recovery_titles = ["Space Tools"]
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://wiki.example.com", cfg.BaseAddress)
				assert.Equal(t, "DOCS", cfg.Space)
				assert.Equal(t, "/srv/share/Import", cfg.SourceRoot)
				assert.Equal(t, "migrator", cfg.Username)
				assert.Equal(t, "hunter2", cfg.Password)
				assert.Equal(t, []string{"Archive/**", "**/*.tmp"}, cfg.Exclude)
				require.NotNil(t, cfg.Headless)
				assert.True(t, *cfg.Headless)
				require.NotNil(t, cfg.Retry)
				assert.Equal(t, 3, cfg.Retry.MaxAttempts)
				assert.Equal(t, "2s", cfg.Retry.Delay)
				require.NotNil(t, cfg.Sentinels)
				assert.Equal(t, []string{"Page Not Found", "Seite nicht gefunden"}, cfg.Sentinels.NotFound)
			},
		},
		{
			name: "minimal_hcl",
			config: `
base_address = "https://wiki.example.com"
space        = "DOCS"
source_root  = "/srv"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Nil(t, cfg.Retry)
				assert.Nil(t, cfg.Sentinels)
				assert.Nil(t, cfg.Headless)
			},
		},
		{
			name: "invalid_hcl_syntax",
			config: `
base_address = "https://wiki.example.com"
space =
`,
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name: "invalid_block_type",
			config: `
base_address = "https://wiki.example.com"
space        = "DOCS"
source_root  = "/srv"
unknown_block {
  foo = "bar"
}`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
	}

	parser := &HCLParser{}
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parser.Parse(ctx, []byte(tt.config))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// 🧪 TestJSONParsing tests JSON config parsing
func TestJSONParsing(t *testing.T) {
	parser := &JSONParser{}

	cfg, err := parser.Parse(context.Background(), []byte(`{
		"base_address": "https://wiki.example.com",
		"space": "DOCS",
		"source_root": "/srv",
		"retry": {"max_attempts": 4},
		"include": ["**/*.docx"]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "DOCS", cfg.Space)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, []string{"**/*.docx"}, cfg.Include)

	_, err = parser.Parse(context.Background(), []byte(`{"base_address": "x", "extra": true}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON")
}

// 🧪 TestJSONRetryDelay tests the accepted spellings of the retry delay
func TestJSONRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		retry   string
		want    string
		wantErr bool
	}{
		{name: "duration_string", retry: `{"delay": "250ms"}`, want: "250ms"},
		{name: "seconds", retry: `{"delay": 2}`, want: "2s"},
		{name: "fractional_seconds", retry: `{"delay": 1.5}`, want: "1.5s"},
		{name: "unset", retry: `{"max_attempts": 3}`, want: ""},
		{name: "boolean", retry: `{"delay": true}`, wantErr: true},
		{name: "unknown_key", retry: `{"backoff": "2x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := (&JSONParser{}).Parse(context.Background(), []byte(`{"retry": `+tt.retry+`}`))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Retry.Delay)
		})
	}
}

// 🧪 TestJSONParseErrors tests the errors reported for malformed files
func TestJSONParseErrors(t *testing.T) {
	parser := &JSONParser{}

	_, err := parser.Parse(context.Background(), []byte("{\n  \"space\": \"DOCS\",\n  oops\n}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at line 3")

	_, err = parser.Parse(context.Background(), []byte(`{"space": "DOCS"} {"space": "OTHER"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected data after the config object")
}

// 🧪 TestValidateDefaults tests default values filled in by Validate
func TestValidateDefaults(t *testing.T) {
	cfg := &Config{
		BaseAddress: "http://localhost:8090/",
		Space:       "TST",
		SourceRoot:  "./import/../import",
		Username:    "admin",
		Password:    "admin",
	}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:8090", cfg.BaseAddress)
	assert.Equal(t, "import", cfg.SourceRoot)
	assert.Equal(t, ".migrated", cfg.MarkerSuffix)
	assert.Equal(t, DefaultDriver, cfg.Driver)
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
	assert.Equal(t, "1s", cfg.Retry.Delay)

	bad := &Config{BaseAddress: "http://x", Space: "S", SourceRoot: "/", Username: "u", Password: "p", MarkerSuffix: "done"}
	assert.ErrorContains(t, bad.Validate(), "marker_suffix must start with a dot")
}

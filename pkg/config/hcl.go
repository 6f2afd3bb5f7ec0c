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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. The environment is exposed as env.NAME so
// credentials can stay out of the file.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		BaseAddress    string   `hcl:"base_address"`
		Space          string   `hcl:"space"`
		SourceRoot     string   `hcl:"source_root"`
		IsTesting      bool     `hcl:"is_testing,optional"`
		Username       string   `hcl:"username,optional"`
		Password       string   `hcl:"password,optional"`
		MarkerSuffix   string   `hcl:"marker_suffix,optional"`
		ProvenanceNote string   `hcl:"provenance_note,optional"`
		Include        []string `hcl:"include,optional"`
		Exclude        []string `hcl:"exclude,optional"`
		Headless       *bool    `hcl:"headless,optional"`
		BrowserPath    string   `hcl:"browser_path,optional"`
		Driver         string   `hcl:"driver,optional"`
		Retry          *struct {
			MaxAttempts int    `hcl:"max_attempts,optional"`
			Delay       string `hcl:"delay,optional"`
		} `hcl:"retry,block"`
		Sentinels *struct {
			NotFound       []string `hcl:"not_found,optional"`
			RecoveryTitles []string `hcl:"recovery_titles,optional"`
			NoAttachments  string   `hcl:"no_attachments,optional"`
		} `hcl:"sentinels,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		BaseAddress:    hclCfg.BaseAddress,
		Space:          hclCfg.Space,
		SourceRoot:     hclCfg.SourceRoot,
		IsTesting:      hclCfg.IsTesting,
		Username:       hclCfg.Username,
		Password:       hclCfg.Password,
		MarkerSuffix:   hclCfg.MarkerSuffix,
		ProvenanceNote: hclCfg.ProvenanceNote,
		Include:        hclCfg.Include,
		Exclude:        hclCfg.Exclude,
		Headless:       hclCfg.Headless,
		BrowserPath:    hclCfg.BrowserPath,
		Driver:         hclCfg.Driver,
	}

	if hclCfg.Retry != nil {
		cfg.Retry = &RetryConfig{
			MaxAttempts: hclCfg.Retry.MaxAttempts,
			Delay:       hclCfg.Retry.Delay,
		}
	}
	if hclCfg.Sentinels != nil {
		cfg.Sentinels = &SentinelConfig{
			NotFound:       hclCfg.Sentinels.NotFound,
			RecoveryTitles: hclCfg.Sentinels.RecoveryTitles,
			NoAttachments:  hclCfg.Sentinels.NoAttachments,
		}
	}

	return cfg, nil
}

func envObject() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}

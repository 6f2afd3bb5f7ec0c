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
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 🔧 JSONParser reads pagemigrate.json style configs
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json")
}

// 📝 Parse decodes a single JSON object. Unknown keys and trailing data are rejected, and
// syntax errors name the line and column.
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON%s: %w", jsonPosition(data, err), err)
	}
	if decoder.More() {
		return nil, errors.Errorf("parsing JSON: unexpected data after the config object")
	}
	return &cfg, nil
}

// UnmarshalJSON accepts the retry delay as a duration string or as a number of seconds.
func (r *RetryConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		MaxAttempts int             `json:"max_attempts"`
		Delay       json.RawMessage `json:"delay"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	r.MaxAttempts = raw.MaxAttempts
	r.Delay = ""
	if len(raw.Delay) == 0 || string(raw.Delay) == "null" {
		return nil
	}
	if raw.Delay[0] == '"' {
		return json.Unmarshal(raw.Delay, &r.Delay)
	}
	seconds, err := strconv.ParseFloat(string(raw.Delay), 64)
	if err != nil {
		return errors.Errorf("retry delay must be a duration string or seconds, got %s", raw.Delay)
	}
	r.Delay = time.Duration(seconds * float64(time.Second)).String()
	return nil
}

func jsonPosition(data []byte, err error) string {
	var syntax *json.SyntaxError
	if !errors.As(err, &syntax) {
		return ""
	}
	before := data[:min(int(syntax.Offset), len(data))]
	line := bytes.Count(before, []byte("\n")) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return " at line " + strconv.Itoa(line) + " column " + strconv.Itoa(col)
}

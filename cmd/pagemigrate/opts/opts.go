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

package opts

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/config"
	"github.com/walteh/pagemigrate/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool

	Config *config.Config
	Logger *log.Logger
}

// 🔧 Load reads the config file named by the flags and sets up the console logger.
// Commands call it once their flags are parsed.
func (o *RootOpts) Load(ctx context.Context) error {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	o.Logger = log.New(os.Stdout, level)

	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg
	return nil
}

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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pagemigrate/cmd/pagemigrate/opts"
	"github.com/walteh/pagemigrate/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates a new plan command
func NewPlanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a run would migrate",
		Long: `Plan walks the source root and prints the page each pending file would become.
It does not start a browser, contact the wiki or rename any file. Pages that
already exist in the wiki are not detected, so conflict names may differ in a real run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "plan").Logger().WithContext(ctx)

			if err := opts.Load(ctx); err != nil {
				return err
			}

			migrator, err := operation.New(operation.Options{
				Root:     opts.Config.SourceRoot,
				Filter:   opts.Config.Filter(),
				Reporter: opts.Logger,
			})
			if err != nil {
				return errors.Errorf("creating migrator: %w", err)
			}

			opts.Logger.Header("planning " + opts.Config.String())
			summary, err := migrator.Plan(ctx)
			if err != nil {
				return errors.Errorf("planning migration: %w", err)
			}
			opts.Logger.Summary(summary.Counts())
			return nil
		},
	}

	return cmd
}

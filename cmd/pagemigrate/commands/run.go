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
	"github.com/walteh/pagemigrate/pkg/metrics"
	"github.com/walteh/pagemigrate/pkg/operation"
	"github.com/walteh/pagemigrate/pkg/remote"
	"github.com/walteh/pagemigrate/pkg/wiki"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates a new run command
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate every pending file into the wiki",
		Long: `Run logs into the wiki and imports each file below the source root as a page.
It will:
1. Create a page for every directory between the root and the file
2. Import the file with the strategy for its type
3. Rename the file with the marker suffix once its page is published

Files that fail keep their name and are picked up again by the next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "run").Logger().WithContext(ctx)

			if err := opts.Load(ctx); err != nil {
				return err
			}
			cfg := opts.Config

			recorder := metrics.Recorder(metrics.NoopRecorder{})
			var prom *metrics.PrometheusRecorder
			if metricsFile != "" {
				prom = metrics.NewPrometheusRecorder(nil)
				recorder = prom
			}

			driver, err := remote.NewDriver(ctx, cfg.Driver, remote.DriverOptions{
				Headless:    cfg.IsHeadless(),
				BrowserPath: cfg.BrowserPath,
			})
			if err != nil {
				return errors.Errorf("starting browser: %w", err)
			}
			defer driver.Close()

			session, err := wiki.NewSession(driver, cfg.WikiOptions())
			if err != nil {
				return errors.Errorf("creating session: %w", err)
			}

			migrator, err := operation.New(operation.Options{
				Session:        session,
				Root:           cfg.SourceRoot,
				Filter:         cfg.Filter(),
				ProvenanceNote: cfg.ProvenanceNote,
				Reporter:       opts.Logger,
				Metrics:        recorder,
			})
			if err != nil {
				return errors.Errorf("creating migrator: %w", err)
			}

			opts.Logger.Header("migrating " + cfg.String())
			summary, runErr := migrator.Run(ctx)
			opts.Logger.Summary(summary.Counts())

			if prom != nil {
				if err := prom.WriteTextfile(metricsFile); err != nil {
					opts.Logger.Warningf("could not write metrics: %v", err)
				}
			}

			if runErr != nil {
				return errors.Errorf("running migration: %w", runErr)
			}
			if summary.Failed > 0 {
				return errors.Errorf("%d files failed to migrate and were left unmarked", summary.Failed)
			}
			opts.Logger.Successf("migrated %d files", summary.Migrated)
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")

	return cmd
}

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

package operation

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/importer"
	"github.com/walteh/pagemigrate/pkg/log"
	"github.com/walteh/pagemigrate/pkg/metrics"
	"github.com/walteh/pagemigrate/pkg/naming"
	"github.com/walteh/pagemigrate/pkg/pages"
	"github.com/walteh/pagemigrate/pkg/source"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrSourceRootMissing = errors.Base("import root does not exist")
	ErrLogin             = errors.Base("login failed")
)

// RunError is a failure that ends the whole run. It matches both its kind and its cause.
type RunError struct {
	Kind error
	Err  error
}

func (e *RunError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *RunError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// 🎯 Session is everything a run needs from the wiki
type Session interface {
	pages.PageSession
	importer.Session
	Login(ctx context.Context) error
}

// 📢 Reporter shows per file progress to the operator
type Reporter interface {
	StartDirectory(ctx context.Context, dir string)
	ReportFile(ctx context.Context, r log.FileReport)
}

// 🔧 Options contains configuration for the migrator
type Options struct {
	// Session is the logged out wiki session; required by Run
	Session Session
	// Root is the import root directory
	Root string
	// Filter selects files and carries the marker suffix
	Filter source.Filter
	// ProvenanceNote overrides importer.DefaultProvenanceNote
	ProvenanceNote string
	// Reporter receives per file outcomes, optional
	Reporter Reporter
	// Metrics receives run events, optional
	Metrics metrics.Recorder
	// Tokens overrides the conflict page token source, optional
	Tokens func() string
}

// 🏭 New creates a new migrator with the given options
func New(opts Options) (*Migrator, error) {
	if opts.Root == "" {
		return nil, errors.Errorf("import root is required")
	}
	if err := opts.Filter.Validate(); err != nil {
		return nil, errors.Errorf("validating filter: %w", err)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	return &Migrator{opts: opts, state: StateIdle}, nil
}

// 🎮 Migrator runs one migration at a time over a single session
type Migrator struct {
	opts  Options
	state State
}

// State returns where the current or last run is.
func (m *Migrator) State() State {
	return m.state
}

func (m *Migrator) setState(ctx context.Context, s State) {
	zerolog.Ctx(ctx).Trace().Str("from", m.state.String()).Str("to", s.String()).Msg("state change")
	m.state = s
}

func (m *Migrator) checkRoot() error {
	info, err := os.Stat(m.opts.Root)
	if err != nil {
		return &RunError{Kind: ErrSourceRootMissing, Err: err}
	}
	if !info.IsDir() {
		return &RunError{Kind: ErrSourceRootMissing, Err: errors.Errorf("%s is not a directory", m.opts.Root)}
	}
	return nil
}

func (m *Migrator) resolver(checker naming.PageChecker) *naming.Resolver {
	r := naming.NewResolver(m.opts.Root, checker)
	if m.opts.Tokens != nil {
		r = r.WithTokenSource(m.opts.Tokens)
	}
	return r
}

// 🚀 Run logs in and migrates every pending file below the root. Only a missing root, a
// failed login or cancellation end the run early; per file failures are reported and the
// file is left for the next run.
func (m *Migrator) Run(ctx context.Context) (Summary, error) {
	logger := zerolog.Ctx(ctx).With().Str("root", m.opts.Root).Logger()
	ctx = logger.WithContext(ctx)
	start := time.Now()

	var summary Summary
	defer func() {
		m.opts.Metrics.ObserveRunDuration(time.Since(start))
	}()

	m.setState(ctx, StateIdle)
	if m.opts.Session == nil {
		return summary, errors.Errorf("session is required")
	}
	if err := m.checkRoot(); err != nil {
		return summary, err
	}

	if err := m.opts.Session.Login(ctx); err != nil {
		return summary, &RunError{Kind: ErrLogin, Err: err}
	}
	m.setState(ctx, StateLoggedIn)
	logger.Info().Msg("logged in")

	resolver := m.resolver(m.opts.Session)
	creator, err := pages.NewCreator(m.opts.Session, pages.NewCache(), resolver)
	if err != nil {
		return summary, errors.Errorf("creating page creator: %w", err)
	}
	registry := importer.NewRegistry(m.opts.Session, m.opts.ProvenanceNote)

	m.setState(ctx, StateTraversing)
	err = source.Walk(ctx, m.opts.Root, m.opts.Filter, func(file source.File) error {
		m.migrateFile(ctx, file, resolver, creator, registry, &summary)
		m.setState(ctx, StateTraversing)
		return nil
	})
	m.opts.Metrics.SetParentDirsCached(creator.Cache().Len())
	if err != nil {
		return summary, errors.Errorf("walking %s: %w", m.opts.Root, err)
	}

	m.setState(ctx, StateDone)
	logger.Info().
		Int("migrated", summary.Migrated).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Int("already_migrated", summary.AlreadyMigrated).
		Int("unsupported", summary.Unsupported).
		Msg("migration finished")
	return summary, nil
}

// skip reports whether the file takes no part in the run, counting it if so.
func (m *Migrator) skip(ctx context.Context, file source.File, summary *Summary) (importer.Kind, bool) {
	logger := zerolog.Ctx(ctx)

	if file.Migrated {
		logger.Debug().Str("file", file.Path).Msg("already migrated")
		summary.AlreadyMigrated++
		m.opts.Metrics.IncFileResult("", metrics.ResultAlreadyMigrated)
		return "", true
	}

	kind, ok := importer.SelectStrategy(file.Ext)
	if !ok {
		logger.Debug().Str("file", file.Path).Str("ext", file.Ext).Msg("unsupported file type")
		summary.Unsupported++
		m.opts.Metrics.IncFileResult("", metrics.ResultUnsupported)
		return "", true
	}

	if file.Excluded {
		logger.Debug().Str("file", file.Path).Msg("excluded by filter")
		summary.Skipped++
		m.opts.Metrics.IncFileResult(kind.String(), metrics.ResultSkipped)
		return kind, true
	}

	return kind, false
}

func (m *Migrator) migrateFile(ctx context.Context, file source.File, resolver *naming.Resolver, creator *pages.Creator, registry *importer.Registry, summary *Summary) {
	kind, skipped := m.skip(ctx, file, summary)
	if skipped {
		return
	}

	logger := zerolog.Ctx(ctx).With().Str("file", file.Path).Str("strategy", kind.String()).Logger()
	ctx = logger.WithContext(ctx)
	m.report(func(r Reporter) { r.StartDirectory(ctx, file.Dir) })

	fail := func(page naming.PageName, err error) {
		logger.Error().Err(err).Str("page", page.String()).Msg("file migration failed")
		summary.Failed++
		m.opts.Metrics.IncFileResult(kind.String(), metrics.ResultFailed)
		m.report(func(r Reporter) {
			r.ReportFile(ctx, log.FileReport{Path: file.Rel, Page: page.String(), Strategy: kind.String(), Status: log.StatusFailed, Err: err})
		})
	}

	m.setState(ctx, StateResolvingName)
	page := resolver.ResolveTargetPageName(ctx, file.Path)

	m.setState(ctx, StateEnsuringParents)
	if err := creator.EnsureParentPages(ctx, file.Dir); err != nil {
		fail(page, errors.Errorf("ensuring parent pages: %w", err))
		return
	}

	m.setState(ctx, StateImporting)
	start := time.Now()
	outcome := registry.For(file.Ext).Import(ctx, file, page)
	m.opts.Metrics.ObserveImportDuration(kind.String(), time.Since(start))
	if !outcome.OK {
		err := outcome.Err
		if err == nil {
			err = errors.New("import reported failure")
		}
		fail(page, err)
		return
	}

	m.setState(ctx, StateCommitting)
	if _, err := source.Commit(ctx, file, m.opts.Filter.MarkerSuffix); err != nil {
		fail(page, errors.Errorf("marking file: %w", err))
		return
	}

	summary.Migrated++
	m.opts.Metrics.IncFileResult(kind.String(), metrics.ResultMigrated)
	m.report(func(r Reporter) {
		r.ReportFile(ctx, log.FileReport{Path: file.Rel, Page: page.String(), Strategy: kind.String(), Status: log.StatusMigrated})
	})
}

// 🔍 Plan walks the tree like Run and reports the page each pending file would become,
// without touching the wiki or the files. Existing pages are not detected, so conflict
// titles are only predicted for files named like one of their own directories.
func (m *Migrator) Plan(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := m.checkRoot(); err != nil {
		return summary, err
	}

	resolver := m.resolver(nil)
	err := source.Walk(ctx, m.opts.Root, m.opts.Filter, func(file source.File) error {
		kind, skipped := m.skip(ctx, file, &summary)
		if skipped {
			return nil
		}
		page := resolver.ResolveTargetPageName(ctx, file.Path)
		summary.Planned++
		m.report(func(r Reporter) {
			r.StartDirectory(ctx, file.Dir)
			r.ReportFile(ctx, log.FileReport{Path: file.Rel, Page: page.String(), Strategy: kind.String(), Status: log.StatusPlanned})
		})
		return nil
	})
	if err != nil {
		return summary, errors.Errorf("walking %s: %w", m.opts.Root, err)
	}
	return summary, nil
}

func (m *Migrator) report(fn func(Reporter)) {
	if m.opts.Reporter != nil {
		fn(m.opts.Reporter)
	}
}

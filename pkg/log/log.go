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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent    = 4  // spaces to indent file entries
	nameWidth     = 35 // Base width for filename
	strategyWidth = 12 // Width for strategy name
	statusWidth   = 18 // Width for status text
)

// Status is the outcome of one file in a run.
type Status string

const (
	StatusMigrated        Status = "MIGRATED"
	StatusFailed          Status = "FAILED"
	StatusSkipped         Status = "SKIPPED"
	StatusAlreadyMigrated Status = "ALREADY MIGRATED"
	StatusUnsupported     Status = "UNSUPPORTED"
	StatusPlanned         Status = "PLANNED"
)

// 🎯 FileReport describes what happened to one source file
type FileReport struct {
	Path     string // Source file path
	Page     string // Target page title
	Strategy string // Import strategy
	Status   Status // Outcome
	Err      error  // Diagnostic for failures
}

// 📊 Count is one row of the end of run summary
type Count struct {
	Label string
	N     int
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentDir string
	reports    []FileReport
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileReport formats a file report for display
func (l *Logger) formatFileReport(r FileReport) string {
	var symbol rune
	var symbolColor color.Attribute
	switch r.Status {
	case StatusMigrated:
		symbol = '✓'
		symbolColor = color.FgGreen
	case StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case StatusAlreadyMigrated:
		symbol = '•'
		symbolColor = color.FgCyan
	case StatusPlanned:
		symbol = '→'
		symbolColor = color.FgBlue
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, r.Path),
		color.New(color.FgMagenta).Sprint(fmt.Sprintf("%-*s", strategyWidth, r.Strategy)),
		fmt.Sprintf("%-*s", statusWidth, r.Status))

	if r.Page != "" {
		line += color.New(color.Faint).Sprint("→ " + r.Page)
	}
	return line
}

// 📝 ReportFile prints the outcome of a file and logs it
func (l *Logger) ReportFile(ctx context.Context, r FileReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reports = append(l.reports, r)

	fmt.Fprintln(l.console, l.formatFileReport(r))
	if r.Err != nil {
		fmt.Fprintf(l.console, "%*s%s\n", fileIndent+2, "", color.New(color.FgRed).Sprint(r.Err.Error()))
	}

	ev := l.zlog.Info()
	if r.Status == StatusFailed {
		ev = l.zlog.Error().Err(r.Err)
	}
	ev.Str("file", r.Path).
		Str("page", r.Page).
		Str("strategy", r.Strategy).
		Str("status", string(r.Status)).
		Msg("file processed")
}

// 📂 StartDirectory prints a header the first time a file from dir is reported
func (l *Logger) StartDirectory(ctx context.Context, dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentDir == dir {
		return
	}
	l.currentDir = dir

	fmt.Fprintf(l.console, "[migrating %s]\n", color.New(color.FgCyan).Sprint(dir))
	l.zlog.Debug().Str("dir", dir).Msg("entering directory")
}

// Reports returns every file reported so far.
func (l *Logger) Reports() []FileReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]FileReport(nil), l.reports...)
}

// 📊 Summary prints the end of run counts as a table
func (l *Logger) Summary(counts []Count) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"Outcome", "Files"}}
	ev := l.zlog.Info()
	for _, c := range counts {
		data = append(data, []string{c.Label, fmt.Sprint(c.N)})
		ev = ev.Int(c.Label, c.N)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		l.zlog.Warn().Err(err).Msg("rendering summary table")
	} else {
		fmt.Fprintf(l.console, "\n%s\n", table)
	}
	ev.Msg("run summary")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("pagemigrate")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

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

// Package metrics records what a migration run did so it can be scraped from a textfile.
package metrics

import "time"

// Result labels a per-file outcome.
type Result string

const (
	ResultMigrated        Result = "migrated"
	ResultFailed          Result = "failed"
	ResultSkipped         Result = "skipped"
	ResultAlreadyMigrated Result = "already_migrated"
	ResultUnsupported     Result = "unsupported"
)

// 📊 Recorder receives run events. The migrator always has one; NoopRecorder is the default.
type Recorder interface {
	IncFileResult(strategy string, result Result)
	ObserveImportDuration(strategy string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	SetParentDirsCached(n int)
}

// NoopRecorder drops everything.
type NoopRecorder struct{}

func (NoopRecorder) IncFileResult(string, Result)                {}
func (NoopRecorder) ObserveImportDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)            {}
func (NoopRecorder) SetParentDirsCached(int)                     {}

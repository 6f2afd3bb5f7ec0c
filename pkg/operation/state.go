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

import "github.com/walteh/pagemigrate/pkg/log"

// 🚦 State is the position of a run
type State int

const (
	StateIdle State = iota
	StateLoggedIn
	StateTraversing
	StateResolvingName
	StateEnsuringParents
	StateImporting
	StateCommitting
	StateDone
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateLoggedIn:        "logged_in",
	StateTraversing:      "traversing",
	StateResolvingName:   "resolving_name",
	StateEnsuringParents: "ensuring_parents",
	StateImporting:       "importing",
	StateCommitting:      "committing",
	StateDone:            "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// 📊 Summary counts what happened to the files of a run
type Summary struct {
	Migrated        int
	Failed          int
	Skipped         int
	AlreadyMigrated int
	Unsupported     int
	// Planned is only set by Plan
	Planned int
}

// Counts returns the summary as table rows, leaving out Planned for real runs.
func (s Summary) Counts() []log.Count {
	counts := []log.Count{
		{Label: "Migrated", N: s.Migrated},
		{Label: "Failed", N: s.Failed},
		{Label: "Skipped", N: s.Skipped},
		{Label: "Already migrated", N: s.AlreadyMigrated},
		{Label: "Unsupported", N: s.Unsupported},
	}
	if s.Planned > 0 {
		counts = append([]log.Count{{Label: "Planned", N: s.Planned}}, counts[2:]...)
	}
	return counts
}

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

// Package naming maps file system names onto wiki page titles.
package naming

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PageName is a normalized page title.
type PageName string

func (p PageName) String() string {
	return string(p)
}

// Equal compares two names the way the wiki compares titles.
func (p PageName) Equal(other PageName) bool {
	return strings.EqualFold(string(p), string(other))
}

// 🔄 replacements are applied in order; parentheses are dropped afterwards
var replacements = []struct {
	old string
	new string
}{
	{" + ", " and "},
	{"+", " and "},
	{" & ", " and "},
	{"&", " and "},
}

// 🧹 NormalizePageName turns a file or directory name into a page title. It is pure and
// idempotent: normalizing its own output returns the same value.
func NormalizePageName(name string) PageName {
	out := name
	for _, r := range replacements {
		out = strings.ReplaceAll(out, r.old, r.new)
	}
	out = strings.NewReplacer("(", "", ")", "").Replace(out)
	return PageName(strings.Join(strings.Fields(out), " "))
}

// PageChecker reports whether a page title is already taken in the target space.
type PageChecker interface {
	PageExists(ctx context.Context, name string) (bool, error)
}

// 🎯 Resolver picks the target page title for each imported file.
type Resolver struct {
	root    string
	checker PageChecker
	token   func() string
	// renamed holds names whose normalization was already logged
	renamed map[string]struct{}
}

// 🏭 NewResolver creates a resolver for files below root
func NewResolver(root string, checker PageChecker) *Resolver {
	return &Resolver{
		root:    filepath.Clean(root),
		checker: checker,
		token:   uuid.NewString,
		renamed: map[string]struct{}{},
	}
}

// WithTokenSource replaces the conflict token generator.
func (r *Resolver) WithTokenSource(token func() string) *Resolver {
	r.token = token
	return r
}

// Normalize normalizes name. The first time a name comes out different it is logged, since
// the operator has to find the page by its title later.
func (r *Resolver) Normalize(ctx context.Context, name string) PageName {
	out := NormalizePageName(name)
	if string(out) == name {
		return out
	}
	if _, seen := r.renamed[name]; !seen {
		r.renamed[name] = struct{}{}
		zerolog.Ctx(ctx).Info().Str("name", name).Str("page", out.String()).Msg("normalized page name")
	}
	return out
}

// Segments returns the normalized directory names between the root and dir.
func (r *Resolver) Segments(ctx context.Context, dir string) []PageName {
	rel, err := filepath.Rel(r.root, filepath.Clean(dir))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	var out []PageName
	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		if seg == "" {
			continue
		}
		out = append(out, r.Normalize(ctx, seg))
	}
	return out
}

// 🎯 ResolveTargetPageName returns the page title for the file at path. The title is the
// normalized file name without extension, unless that collides with one of the file's own
// ancestor directories or with an existing page; then a unique conflict title is used.
func (r *Resolver) ResolveTargetPageName(ctx context.Context, path string) PageName {
	logger := zerolog.Ctx(ctx)

	fileName := filepath.Base(path)
	base := r.Normalize(ctx, strings.TrimSuffix(fileName, filepath.Ext(fileName)))

	collides := false
	for _, seg := range r.Segments(ctx, filepath.Dir(path)) {
		if seg.Equal(base) {
			collides = true
			break
		}
	}

	if !collides && r.checker != nil {
		exists, err := r.checker.PageExists(ctx, base.String())
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Str("page", base.String()).Msg("could not check page existence, keeping name")
		}
		collides = exists
	}

	if !collides {
		return base
	}

	conflict := PageName(fmt.Sprintf("Conflict page %s %s", fileName, r.token()))
	logger.Info().Str("file", path).Str("page", base.String()).Str("conflict_page", conflict.String()).Msg("page already exists, using conflict name")
	return conflict
}

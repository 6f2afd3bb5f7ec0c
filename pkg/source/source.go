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

// Package source enumerates the import tree and marks files once they are migrated.
package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultMarkerSuffix is appended to a file's name after it has been migrated.
const DefaultMarkerSuffix = ".migrated"

var ErrAlreadyCommitted = errors.Base("file already carries the marker suffix")

// 📄 File is a regular file found below the import root
type File struct {
	// Path is the full path of the file
	Path string
	// Dir is the directory holding the file
	Dir string
	// Name is the base name including the extension
	Name string
	// Ext is the lower-cased extension including the dot
	Ext string
	// Rel is the slash separated path relative to the import root
	Rel string
	// Migrated is set when the name carries the marker suffix
	Migrated bool
	// Excluded is set when the include/exclude globs reject the file
	Excluded bool
}

// 🔍 Filter decides which files take part in a run
type Filter struct {
	// Include globs; an empty list includes everything
	Include []string
	// Exclude globs win over Include
	Exclude []string
	// MarkerSuffix marks migrated files, DefaultMarkerSuffix when empty
	MarkerSuffix string
}

func (f Filter) suffix() string {
	if f.MarkerSuffix == "" {
		return DefaultMarkerSuffix
	}
	return f.MarkerSuffix
}

// Validate checks that every glob is well formed.
func (f Filter) Validate() error {
	for _, pattern := range append(append([]string{}, f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// Allows reports whether the slash separated relative path passes the globs.
func (f Filter) Allows(rel string) bool {
	for _, pattern := range f.Exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (f Filter) excludesDir(rel string) bool {
	for _, pattern := range f.Exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// NewFile describes the file at path below root.
func NewFile(root, path, markerSuffix string) File {
	if markerSuffix == "" {
		markerSuffix = DefaultMarkerSuffix
	}
	name := filepath.Base(path)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = name
	}
	return File{
		Path:     path,
		Dir:      filepath.Dir(path),
		Name:     name,
		Ext:      strings.ToLower(filepath.Ext(name)),
		Rel:      filepath.ToSlash(rel),
		Migrated: strings.HasSuffix(name, markerSuffix),
	}
}

// 🚶 Walk calls fn for every regular file below root in lexical, depth-first order.
// Directories matching an exclude glob are not entered. Files rejected by the globs are
// still reported with Excluded set so callers can count them.
func Walk(ctx context.Context, root string, filter Filter, fn func(File) error) error {
	logger := zerolog.Ctx(ctx)
	root = filepath.Clean(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.WithStack(ctxErr)
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			rel, _ := filepath.Rel(root, path)
			if filter.excludesDir(filepath.ToSlash(rel)) {
				logger.Debug().Str("dir", path).Msg("skipping excluded directory")
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		file := NewFile(root, path, filter.suffix())
		file.Excluded = !filter.Allows(file.Rel)
		return fn(file)
	})
}

// ✅ Commit renames the file to carry the marker suffix. The rename is atomic on a single
// file system, so a file is either marked or untouched.
func Commit(ctx context.Context, file File, markerSuffix string) (File, error) {
	if markerSuffix == "" {
		markerSuffix = DefaultMarkerSuffix
	}
	if file.Migrated || strings.HasSuffix(file.Name, markerSuffix) {
		return file, errors.Errorf("%w: %s", ErrAlreadyCommitted, file.Path)
	}

	target := file.Path + markerSuffix
	if _, err := os.Lstat(target); err == nil {
		return file, errors.Errorf("marking %s: %s already exists", file.Path, target)
	}

	if err := os.Rename(file.Path, target); err != nil {
		return file, errors.Errorf("marking %s: %w", file.Path, err)
	}

	zerolog.Ctx(ctx).Info().Str("file", file.Path).Str("marked", target).Msg("marked file as migrated")

	file.Path = target
	file.Name = filepath.Base(target)
	file.Rel += markerSuffix
	file.Migrated = true
	return file, nil
}

// ReadText returns the contents of a text file.
func ReadText(file File) (string, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", file.Path, err)
	}
	return string(data), nil
}

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

// Package pages mirrors the source directory hierarchy as a chain of wiki pages.
package pages

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// 💾 Cache remembers directories whose page chain is known to exist. It lives for one run
// and only grows.
type Cache struct {
	dirs map[string]struct{}
}

func NewCache() *Cache {
	return &Cache{dirs: map[string]struct{}{}}
}

func (c *Cache) Has(dir string) bool {
	_, ok := c.dirs[filepath.Clean(dir)]
	return ok
}

func (c *Cache) Add(dir string) {
	c.dirs[filepath.Clean(dir)] = struct{}{}
}

func (c *Cache) Len() int {
	return len(c.dirs)
}

// PageSession is the part of the wiki session the creator drives.
type PageSession interface {
	PageExists(ctx context.Context, name string) (bool, error)
	GotoSpaceRoot(ctx context.Context) error
	GotoPage(ctx context.Context, name string) error
	CreatePage(ctx context.Context, title, body string) error
}

// 🏗️ Creator makes sure every ancestor page of a file exists before it is imported
type Creator struct {
	session  PageSession
	cache    *Cache
	resolver *naming.Resolver
}

// 🏭 NewCreator creates a creator for directories below the resolver's root
func NewCreator(session PageSession, cache *Cache, resolver *naming.Resolver) (*Creator, error) {
	if session == nil {
		return nil, errors.Errorf("session is required")
	}
	if resolver == nil {
		return nil, errors.Errorf("resolver is required")
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Creator{session: session, cache: cache, resolver: resolver}, nil
}

func (c *Creator) Cache() *Cache {
	return c.cache
}

// 🔗 EnsureParentPages creates the missing pages for dir, root to leaf, each under its
// parent, and leaves the session on the leaf page (the space root for the import root).
// A cached dir costs no existence checks.
func (c *Creator) EnsureParentPages(ctx context.Context, dir string) error {
	logger := zerolog.Ctx(ctx).With().Str("dir", dir).Logger()

	segments := c.resolver.Segments(ctx, dir)

	if c.cache.Has(dir) {
		logger.Debug().Msg("parent pages cached")
		return c.gotoLeaf(ctx, segments)
	}

	var parent naming.PageName
	for _, seg := range segments {
		exists, err := c.session.PageExists(ctx, seg.String())
		if err != nil {
			return errors.Errorf("checking page %q: %w", seg, err)
		}

		if !exists {
			if err := c.gotoParent(ctx, parent); err != nil {
				return err
			}
			if err := c.session.CreatePage(ctx, seg.String(), ""); err != nil {
				return errors.Errorf("creating page %q: %w", seg, err)
			}
			logger.Info().Str("page", seg.String()).Str("parent", parent.String()).Msg("created parent page")
		}

		parent = seg
	}

	c.cache.Add(dir)
	return c.gotoLeaf(ctx, segments)
}

func (c *Creator) gotoParent(ctx context.Context, parent naming.PageName) error {
	if parent == "" {
		if err := c.session.GotoSpaceRoot(ctx); err != nil {
			return errors.Errorf("opening space root: %w", err)
		}
		return nil
	}
	if err := c.session.GotoPage(ctx, parent.String()); err != nil {
		return errors.Errorf("opening page %q: %w", parent, err)
	}
	return nil
}

func (c *Creator) gotoLeaf(ctx context.Context, segments []naming.PageName) error {
	if len(segments) == 0 {
		return c.gotoParent(ctx, "")
	}
	return c.gotoParent(ctx, segments[len(segments)-1])
}

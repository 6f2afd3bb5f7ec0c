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

// Package browser implements remote.Driver on top of a Chrome instance controlled through chromedp.
package browser

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

const (
	// Name is the registry name of this driver
	Name = "chromedp"

	defaultActionTimeout = 30 * time.Second
)

func init() {
	remote.RegisterDriver(Name, func(ctx context.Context, opts remote.DriverOptions) (remote.Driver, error) {
		return New(ctx, opts)
	})
}

// 🌐 Driver drives one Chrome tab. Frame switches are tracked as a stack of iframe nodes;
// queries run inside the innermost frame.
type Driver struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	frames      []*cdp.Node
	timeout     time.Duration
}

// 🏭 New starts Chrome and opens a blank tab
func New(ctx context.Context, opts remote.DriverOptions) (*Driver, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
	)
	if path := strings.TrimSpace(opts.BrowserPath); path != "" {
		execOpts = append(execOpts, chromedp.ExecPath(path))
	}

	// the browser outlives individual calls, so it hangs off a background context
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)

	logger := zerolog.Ctx(ctx)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Trace().Msgf(format, args...)
		}),
	)

	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		tabCancel()
		allocCancel()
		return nil, errors.Errorf("starting browser: %w", err)
	}

	return &Driver{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		timeout:     defaultActionTimeout,
	}, nil
}

// run executes actions in the tab, bounded by the driver timeout and the caller's context.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.tabCtx, d.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (d *Driver) queryOpts(loc remote.Locator) (string, []chromedp.QueryOption) {
	var sel string
	var opts []chromedp.QueryOption
	switch loc.By {
	case remote.ByID:
		sel = "#" + loc.Value
		opts = append(opts, chromedp.ByID)
	case remote.ByClass:
		sel = "." + loc.Value
		opts = append(opts, chromedp.ByQueryAll)
	default:
		sel = loc.Value
		opts = append(opts, chromedp.ByQueryAll)
	}
	opts = append(opts, chromedp.AtLeast(0))
	if n := len(d.frames); n > 0 {
		opts = append(opts, chromedp.FromNode(d.frames[n-1]))
	}
	return sel, opts
}

func (d *Driver) nodes(ctx context.Context, loc remote.Locator) ([]*cdp.Node, error) {
	sel, opts := d.queryOpts(loc)
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return nil, errors.Errorf("querying %s: %w", loc, err)
	}
	return nodes, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.frames = nil
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return errors.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (d *Driver) Find(ctx context.Context, loc remote.Locator) (remote.Element, error) {
	nodes, err := d.nodes(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.Errorf("%w: %s", remote.ErrNotFound, loc)
	}
	return &element{driver: d, node: nodes[0]}, nil
}

func (d *Driver) FindAll(ctx context.Context, loc remote.Locator) ([]remote.Element, error) {
	nodes, err := d.nodes(ctx, loc)
	if err != nil {
		return nil, err
	}
	out := make([]remote.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{driver: d, node: n})
	}
	return out, nil
}

func (d *Driver) SwitchToFrame(ctx context.Context, id string) error {
	nodes, err := d.nodes(ctx, remote.ID(id))
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return errors.Errorf("%w: frame %s", remote.ErrNotFound, id)
	}
	d.frames = append(d.frames, nodes[0])
	return nil
}

func (d *Driver) SwitchToParent(ctx context.Context) error {
	if len(d.frames) > 0 {
		d.frames = d.frames[:len(d.frames)-1]
	}
	return nil
}

func (d *Driver) Close() error {
	d.tabCancel()
	d.allocCancel()
	return nil
}

type element struct {
	driver *Driver
	node   *cdp.Node
}

func (e *element) sel() ([]cdp.NodeID, chromedp.QueryOption) {
	return []cdp.NodeID{e.node.NodeID}, chromedp.ByNodeID
}

func (e *element) Click(ctx context.Context) error {
	ids, by := e.sel()
	return e.driver.run(ctx, chromedp.Click(ids, by))
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	ids, by := e.sel()
	if strings.EqualFold(e.node.NodeName, "input") && strings.EqualFold(e.node.AttributeValue("type"), "file") {
		return e.driver.run(ctx, chromedp.SetUploadFiles(ids, []string{text}, by))
	}
	return e.driver.run(ctx, chromedp.SendKeys(ids, text, by))
}

func (e *element) Press(ctx context.Context, key remote.Key) error {
	var k string
	switch key {
	case remote.KeyDocumentStart:
		k = kb.Home
	case remote.KeyDocumentEnd:
		k = kb.End
	default:
		return errors.Errorf("unsupported key %q", key)
	}
	ids, by := e.sel()
	return e.driver.run(ctx,
		chromedp.Focus(ids, by),
		chromedp.KeyEvent(k, chromedp.KeyModifiers(input.ModifierCtrl)),
	)
}

func (e *element) Submit(ctx context.Context) error {
	ids, by := e.sel()
	return e.driver.run(ctx, chromedp.Submit(ids, by))
}

func (e *element) Text(ctx context.Context) (string, error) {
	ids, by := e.sel()
	var s string
	if err := e.driver.run(ctx, chromedp.Text(ids, &s, by)); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (e *element) HTML(ctx context.Context) (string, error) {
	ids, by := e.sel()
	var s string
	if err := e.driver.run(ctx, chromedp.OuterHTML(ids, &s, by)); err != nil {
		return "", err
	}
	return s, nil
}

var _ remote.Driver = (*Driver)(nil)

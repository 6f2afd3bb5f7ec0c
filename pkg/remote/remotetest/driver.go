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

// Package remotetest provides a scripted, in-memory remote.Driver for tests.
package remotetest

import (
	"context"
	"fmt"
	"strings"

	"github.com/walteh/pagemigrate/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// ErrNavigationTimeout is returned by navigations that FailNavigations makes fail.
var ErrNavigationTimeout = errors.Base("navigation timed out")

// Element is a fake DOM element. Hooks let tests script how the page reacts.
type Element struct {
	Value  string
	Markup string

	// HiddenFor makes the element report not found for this many lookups
	HiddenFor int

	OnClick  func()
	OnKeys   func(text string)
	OnSubmit func()
	// TextFunc overrides Value when set
	TextFunc func() string

	Clicks  int
	Typed   []string
	Pressed []remote.Key
	Submits int

	driver *Driver
	name   string
}

func (e *Element) Click(ctx context.Context) error {
	e.Clicks++
	e.driver.record("click %s", e.name)
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	e.Typed = append(e.Typed, text)
	e.driver.record("keys %s %q", e.name, text)
	if e.OnKeys != nil {
		e.OnKeys(text)
	}
	return nil
}

func (e *Element) Press(ctx context.Context, key remote.Key) error {
	e.Pressed = append(e.Pressed, key)
	e.driver.record("press %s %s", e.name, key)
	return nil
}

func (e *Element) Submit(ctx context.Context) error {
	e.Submits++
	e.driver.record("submit %s", e.name)
	if e.OnSubmit != nil {
		e.OnSubmit()
	}
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if e.TextFunc != nil {
		return e.TextFunc(), nil
	}
	return e.Value, nil
}

func (e *Element) HTML(ctx context.Context) (string, error) {
	return e.Markup, nil
}

// Driver is a fake remote.Driver. Elements are registered per frame ("" is the top document).
type Driver struct {
	URL    string
	Visits []string
	Calls  []string
	Frame  []string
	Closed bool

	// OnNavigate runs after every navigation, typically to swap page elements
	OnNavigate func(d *Driver, url string)
	// FailNavigations makes this many navigations time out before they start working
	FailNavigations int

	elements map[string][]*Element
}

func New() *Driver {
	return &Driver{elements: map[string][]*Element{}}
}

func key(frame string, loc remote.Locator) string {
	return frame + "|" + loc.String()
}

func (d *Driver) currentFrame() string {
	if len(d.Frame) == 0 {
		return ""
	}
	return d.Frame[len(d.Frame)-1]
}

func (d *Driver) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

// Set registers el under loc in the top document and returns it.
func (d *Driver) Set(loc remote.Locator, el *Element) *Element {
	return d.SetIn("", loc, el)
}

// SetIn registers el under loc inside frame.
func (d *Driver) SetIn(frame string, loc remote.Locator, el *Element) *Element {
	el.driver = d
	el.name = loc.String()
	d.elements[key(frame, loc)] = []*Element{el}
	return el
}

// SetAll registers several elements matching loc in the top document.
func (d *Driver) SetAll(loc remote.Locator, els ...*Element) {
	for _, el := range els {
		el.driver = d
		el.name = loc.String()
	}
	d.elements[key("", loc)] = els
}

// Remove deletes loc from the top document.
func (d *Driver) Remove(loc remote.Locator) {
	delete(d.elements, key("", loc))
}

// Get returns the element registered under loc in the top document.
func (d *Driver) Get(loc remote.Locator) *Element {
	els := d.elements[key("", loc)]
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// GetIn returns the element registered under loc in frame.
func (d *Driver) GetIn(frame string, loc remote.Locator) *Element {
	els := d.elements[key(frame, loc)]
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// CallsWithPrefix filters recorded calls.
func (d *Driver) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range d.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if d.FailNavigations > 0 {
		d.FailNavigations--
		d.record("navigate %s failed", url)
		return errors.Errorf("navigating to %s: %w", url, ErrNavigationTimeout)
	}
	d.URL = url
	d.Frame = nil
	d.Visits = append(d.Visits, url)
	d.record("navigate %s", url)
	if d.OnNavigate != nil {
		d.OnNavigate(d, url)
	}
	return nil
}

func (d *Driver) Find(ctx context.Context, loc remote.Locator) (remote.Element, error) {
	els := d.elements[key(d.currentFrame(), loc)]
	if len(els) == 0 {
		return nil, errors.Errorf("%w: %s", remote.ErrNotFound, loc)
	}
	if els[0].HiddenFor > 0 {
		els[0].HiddenFor--
		return nil, errors.Errorf("%w: %s", remote.ErrNotFound, loc)
	}
	return els[0], nil
}

func (d *Driver) FindAll(ctx context.Context, loc remote.Locator) ([]remote.Element, error) {
	var out []remote.Element
	for _, el := range d.elements[key(d.currentFrame(), loc)] {
		if el.HiddenFor > 0 {
			el.HiddenFor--
			continue
		}
		out = append(out, el)
	}
	return out, nil
}

func (d *Driver) SwitchToFrame(ctx context.Context, id string) error {
	if len(d.elements[key(d.currentFrame(), remote.ID(id))]) == 0 {
		return errors.Errorf("%w: frame %s", remote.ErrNotFound, id)
	}
	d.Frame = append(d.Frame, id)
	d.record("frame %s", id)
	return nil
}

func (d *Driver) SwitchToParent(ctx context.Context) error {
	if len(d.Frame) > 0 {
		d.Frame = d.Frame[:len(d.Frame)-1]
	}
	d.record("frame parent")
	return nil
}

func (d *Driver) Close() error {
	d.Closed = true
	return nil
}

var _ remote.Driver = (*Driver)(nil)

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

// Package remote describes the page automation channel used to drive the wiki's web UI.
package remote

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// ErrNotFound is returned when a locator matches nothing on the current page or frame.
var ErrNotFound = errors.Base("element not found")

// DriverOptions configures a driver when it is created from the registry.
type DriverOptions struct {
	Headless    bool
	BrowserPath string
}

// DriverFactory creates a driver. The driver lives until Close is called.
type DriverFactory func(ctx context.Context, opts DriverOptions) (Driver, error)

var (
	registryMu sync.Mutex
	registry   = map[string]DriverFactory{}
)

// RegisterDriver makes a driver implementation available by name.
func RegisterDriver(name string, factory DriverFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// NewDriver creates the driver registered under name.
func NewDriver(ctx context.Context, name string, opts DriverOptions) (Driver, error) {
	registryMu.Lock()
	factory, ok := registry[name]
	options := make([]string, 0, len(registry))
	for k := range registry {
		options = append(options, k)
	}
	registryMu.Unlock()

	if !ok {
		sort.Strings(options)
		return nil, errors.Errorf("driver %s not found, options: %s", name, strings.Join(options, ", "))
	}
	return factory(ctx, opts)
}

// By selects how a Locator's value is interpreted.
type By int

const (
	ByID By = iota
	ByCSS
	ByClass
)

func (b By) String() string {
	switch b {
	case ByID:
		return "id"
	case ByCSS:
		return "css"
	case ByClass:
		return "class"
	default:
		return "unknown"
	}
}

// Locator identifies elements on a page.
type Locator struct {
	By    By
	Value string
}

func ID(id string) Locator {
	return Locator{By: ByID, Value: id}
}

func CSS(selector string) Locator {
	return Locator{By: ByCSS, Value: selector}
}

func Class(class string) Locator {
	return Locator{By: ByClass, Value: class}
}

func (l Locator) String() string {
	return l.By.String() + "=" + l.Value
}

// Key is a keyboard chord understood by Element.Press.
type Key string

const (
	KeyDocumentStart Key = "ctrl+home"
	KeyDocumentEnd   Key = "ctrl+end"
)

// Driver is a single stateful automation session. It has exactly one current page and
// one current frame, so it must never be used from more than one goroutine at a time.
type Driver interface {
	// Navigate loads url in the session
	Navigate(ctx context.Context, url string) error
	// Find returns the first element matching loc in the current frame, or ErrNotFound
	Find(ctx context.Context, loc Locator) (Element, error)
	// FindAll returns every element matching loc in the current frame
	FindAll(ctx context.Context, loc Locator) ([]Element, error)
	// SwitchToFrame makes the iframe with the given id the current frame
	SwitchToFrame(ctx context.Context, id string) error
	// SwitchToParent returns to the enclosing frame
	SwitchToParent(ctx context.Context) error
	// Close releases the session
	Close() error
}

// Element is a handle to a DOM element found by a Driver.
type Element interface {
	Click(ctx context.Context) error
	// SendKeys types text into the element. For file inputs the text is a local file path.
	SendKeys(ctx context.Context, text string) error
	Press(ctx context.Context, key Key) error
	Submit(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	// HTML returns the element's outer HTML
	HTML(ctx context.Context) (string, error)
}

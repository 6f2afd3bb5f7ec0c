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

// Package wiki drives the wiki's web UI through a remote.Driver. A Session owns the
// driver's "current page" and "current frame" state, so all work on it is sequential.
package wiki

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/remote"
	"github.com/walteh/pagemigrate/pkg/retry"
	"gitlab.com/tozd/go/errors"
)

// ErrWordImportFailed is matched by every WordImportError.
var ErrWordImportFailed = errors.Base("word document import failed")

// ErrLoginRejected is matched when the login form is still shown after submitting it.
var ErrLoginRejected = errors.Base("login form still shown after submit")

// LoginRejectedError wraps the last check of a login that did not take effect.
type LoginRejectedError struct {
	Err error
}

func (e *LoginRejectedError) Error() string {
	return "login rejected: " + e.Err.Error()
}

func (e *LoginRejectedError) Unwrap() error {
	return e.Err
}

func (e *LoginRejectedError) Is(target error) bool {
	return target == ErrLoginRejected
}

// WordImportError reports which step of the word import flow failed.
type WordImportError struct {
	Step string
	Err  error
}

func (e *WordImportError) Error() string {
	return "word document import failed: " + e.Step + ": " + e.Err.Error()
}

func (e *WordImportError) Unwrap() error {
	return e.Err
}

func (e *WordImportError) Is(target error) bool {
	return target == ErrWordImportFailed
}

// 🔧 Options configures a Session
type Options struct {
	BaseAddress string
	Space       string
	Username    string
	Password    string
	IsTesting   bool
	Retry       retry.Policy
	Sentinels   Sentinels
	// Selectors overrides DefaultSelectors when non-nil
	Selectors *Selectors
}

// 🧭 Session is the single stateful wiki session used by a migration run.
type Session struct {
	driver    remote.Driver
	opts      Options
	sel       Selectors
	policy    retry.Policy
	sentinels Sentinels
}

// 🏭 NewSession wraps driver
func NewSession(driver remote.Driver, opts Options) (*Session, error) {
	if driver == nil {
		return nil, errors.Errorf("driver is required")
	}
	if opts.BaseAddress == "" {
		return nil, errors.Errorf("base address is required")
	}
	if opts.Space == "" {
		return nil, errors.Errorf("space is required")
	}

	sel := DefaultSelectors(opts.IsTesting)
	if opts.Selectors != nil {
		sel = *opts.Selectors
	}

	sentinels := opts.Sentinels
	defaults := DefaultSentinels()
	if len(sentinels.NotFound) == 0 {
		sentinels.NotFound = defaults.NotFound
	}
	if len(sentinels.RecoveryTitles) == 0 {
		sentinels.RecoveryTitles = defaults.RecoveryTitles
	}
	if sentinels.NoAttachments == "" {
		sentinels.NoAttachments = defaults.NoAttachments
	}

	return &Session{
		driver:    driver,
		opts:      opts,
		sel:       sel,
		policy:    opts.Retry.WithDefaults(),
		sentinels: sentinels,
	}, nil
}

// LoginURL is the login form address; the test installation uses the legacy action path.
func (s *Session) LoginURL() string {
	base := strings.TrimSuffix(s.opts.BaseAddress, "/")
	if s.opts.IsTesting {
		return base + "/login.action"
	}
	return base + "/login"
}

// SpaceRootURL is the address of the space home page.
func (s *Session) SpaceRootURL() string {
	return strings.TrimSuffix(s.opts.BaseAddress, "/") + "/display/" + url.PathEscape(s.opts.Space)
}

// PageURL is the address of a page directly below the space root. Page titles are unique
// within a space, so every page can be reached this way regardless of its parent.
func (s *Session) PageURL(name string) string {
	if name == "" {
		return s.SpaceRootURL()
	}
	return s.SpaceRootURL() + "/" + url.PathEscape(name)
}

// 🔑 Login signs in with the configured credentials. The form is filled and submitted again
// when a step fails, and the sign in only counts once the form has gone away. A wiki that
// keeps showing the form has rejected the credentials.
func (s *Session) Login(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Str("url", s.LoginURL()).Msg("logging in")

	if err := retry.Do(ctx, s.policy, s.submitLogin); err != nil {
		return err
	}

	if err := retry.Until(ctx, s.policy, func(ctx context.Context) (bool, error) {
		_, err := s.driver.Find(ctx, s.sel.LoginUsername)
		if errors.Is(err, remote.ErrNotFound) {
			return true, nil
		}
		return false, err
	}); err != nil {
		return &LoginRejectedError{Err: err}
	}
	return nil
}

func (s *Session) submitLogin(ctx context.Context) error {
	if err := s.driver.Navigate(ctx, s.LoginURL()); err != nil {
		return errors.Errorf("opening login page: %w", err)
	}
	if err := s.sendKeys(ctx, s.sel.LoginUsername, s.opts.Username); err != nil {
		return errors.Errorf("entering username: %w", err)
	}
	if err := s.sendKeysOnce(ctx, s.sel.LoginPassword, s.opts.Password); err != nil {
		return errors.Errorf("entering password: %w", err)
	}
	if err := s.clickOnce(ctx, s.sel.LoginButton); err != nil {
		return errors.Errorf("submitting login: %w", err)
	}
	return nil
}

// GotoSpaceRoot opens the space home page.
func (s *Session) GotoSpaceRoot(ctx context.Context) error {
	return s.GotoPage(ctx, "")
}

// GotoPage opens the named page; an empty name opens the space home page.
func (s *Session) GotoPage(ctx context.Context, name string) error {
	if err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.driver.Navigate(ctx, s.PageURL(name))
	}); err != nil {
		return errors.Errorf("opening page %q: %w", name, err)
	}
	return nil
}

// 🔍 PageExists reports whether name is a page of this space. A page counts as existing only
// when both the title and the secondary message agree: the UI renders a plausible title for
// pages that live in another space, and a recovery tool page for deleted ones.
func (s *Session) PageExists(ctx context.Context, name string) (bool, error) {
	if err := s.GotoPage(ctx, name); err != nil {
		return false, err
	}

	title, err := retry.Value(ctx, s.policy, func(ctx context.Context) (string, error) {
		el, err := s.driver.Find(ctx, s.sel.PageTitle)
		if err != nil {
			return "", err
		}
		return el.Text(ctx)
	})
	if err != nil {
		return false, errors.Errorf("reading title of %q: %w", name, err)
	}

	if matchesAny(title, s.sentinels.NotFound) || matchesAny(title, s.sentinels.RecoveryTitles) {
		return false, nil
	}

	secondary, err := s.driver.Find(ctx, s.sel.SecondaryTitle)
	if errors.Is(err, remote.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, errors.Errorf("reading secondary title of %q: %w", name, err)
	}
	text, err := secondary.Text(ctx)
	if err != nil {
		return false, errors.Errorf("reading secondary title of %q: %w", name, err)
	}
	return !matchesAny(text, s.sentinels.NotFound), nil
}

// 📄 CreatePage creates a child of the current page with the given title and body and publishes it.
func (s *Session) CreatePage(ctx context.Context, title, body string) error {
	zerolog.Ctx(ctx).Debug().Str("page", title).Msg("creating page")

	if err := s.click(ctx, s.sel.QuickCreate); err != nil {
		return errors.Errorf("opening create dialog: %w", err)
	}
	if err := s.sendKeys(ctx, s.sel.ContentTitle, title); err != nil {
		return errors.Errorf("entering title: %w", err)
	}
	if body != "" {
		if err := s.typeInEditor(ctx, "", body); err != nil {
			return errors.Errorf("entering body: %w", err)
		}
	}
	if err := s.Publish(ctx); err != nil {
		return errors.Errorf("publishing %q: %w", title, err)
	}
	return nil
}

// 📎 AttachFile uploads path as an attachment of the current page and returns to the page view.
func (s *Session) AttachFile(ctx context.Context, path string) error {
	if err := s.click(ctx, s.sel.ActionMenu); err != nil {
		return errors.Errorf("opening action menu: %w", err)
	}
	if err := s.click(ctx, s.sel.ViewAttachments); err != nil {
		return errors.Errorf("opening attachments: %w", err)
	}
	if err := s.sendKeys(ctx, s.sel.AttachmentInput, path); err != nil {
		return errors.Errorf("choosing file: %w", err)
	}
	if err := s.submitOnce(ctx, s.sel.AttachmentForm); err != nil {
		return errors.Errorf("uploading file: %w", err)
	}
	if err := s.click(ctx, s.sel.ViewPage); err != nil {
		return errors.Errorf("returning to page: %w", err)
	}
	return nil
}

// ✏️ OpenEditor switches the current page into edit mode and waits for the editor frame.
func (s *Session) OpenEditor(ctx context.Context) error {
	if err := s.click(ctx, s.sel.EditPage); err != nil {
		return errors.Errorf("opening editor: %w", err)
	}
	if err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		_, err := s.driver.Find(ctx, remote.ID(s.sel.EditorFrame))
		return err
	}); err != nil {
		return errors.Errorf("waiting for editor: %w", err)
	}
	return nil
}

// 🚀 Publish saves the open editor. A publish that silently did not take effect leaves the
// editor frame in place, so the click is repeated until the frame is gone. A save that lands
// between two attempts also takes the publish button away, so the frame is checked first.
func (s *Session) Publish(ctx context.Context) error {
	return retry.Until(ctx, s.policy, func(ctx context.Context) (bool, error) {
		closed, err := s.editorClosed(ctx)
		if err != nil || closed {
			return closed, err
		}
		btn, err := s.driver.Find(ctx, s.sel.Publish)
		if err != nil {
			return false, err
		}
		if err := btn.Click(ctx); err != nil {
			return false, err
		}
		closed, err = s.editorClosed(ctx)
		if err != nil || closed {
			return closed, err
		}
		zerolog.Ctx(ctx).Debug().Msg("editor still open after publish")
		return false, nil
	})
}

func (s *Session) editorClosed(ctx context.Context) (bool, error) {
	_, err := s.driver.Find(ctx, remote.ID(s.sel.EditorFrame))
	if errors.Is(err, remote.ErrNotFound) {
		return true, nil
	}
	return false, err
}

// 📝 PrependNote opens the editor, types note at the top of the body and publishes.
func (s *Session) PrependNote(ctx context.Context, note string) error {
	if err := s.OpenEditor(ctx); err != nil {
		return err
	}
	if err := s.typeInEditor(ctx, remote.KeyDocumentStart, note); err != nil {
		return errors.Errorf("typing note: %w", err)
	}
	return s.Publish(ctx)
}

// 📃 ImportWordDocument runs the wiki's word import on the current page, overwriting its body.
func (s *Session) ImportWordDocument(ctx context.Context, path string) error {
	steps := []struct {
		what string
		do   func(ctx context.Context) error
	}{
		{"opening action menu", func(ctx context.Context) error { return s.click(ctx, s.sel.ActionMenu) }},
		{"opening word import", func(ctx context.Context) error { return s.clickOnce(ctx, s.sel.ImportWordDoc) }},
		{"choosing file", func(ctx context.Context) error { return s.sendKeys(ctx, s.sel.WordFileInput, path) }},
		{"uploading file", func(ctx context.Context) error { return s.clickOnce(ctx, s.sel.WordNext) }},
		{"choosing overwrite", func(ctx context.Context) error { return s.click(ctx, s.sel.WordOverwrite) }},
		{"submitting import", func(ctx context.Context) error { return s.submitOnce(ctx, s.sel.WordForm) }},
	}
	for _, step := range steps {
		if err := step.do(ctx); err != nil {
			return &WordImportError{Step: step.what, Err: err}
		}
	}

	// the form stays up until the conversion ends, with or without an error banner
	var (
		failed bool
		banner string
	)
	if err := retry.Until(ctx, s.policy, func(ctx context.Context) (bool, error) {
		el, err := s.driver.Find(ctx, s.sel.WordError)
		if err == nil {
			msg, err := el.Text(ctx)
			if err != nil {
				return false, err
			}
			failed, banner = true, msg
			return true, nil
		}
		if !errors.Is(err, remote.ErrNotFound) {
			return false, err
		}
		_, err = s.driver.Find(ctx, s.sel.WordForm)
		if errors.Is(err, remote.ErrNotFound) {
			return true, nil
		}
		return false, err
	}); err != nil {
		return &WordImportError{Step: "waiting for result", Err: err}
	}
	if failed {
		if banner == "" {
			banner = "no message shown"
		}
		return &WordImportError{Step: "import reported an error", Err: errors.New(banner)}
	}
	return nil
}

// 🧩 InsertAttachmentMacro appends a rendering macro for the page's attachment and publishes.
// The macro browser only offers the attachment once it has been indexed, so the parameter
// field is polled until it stops reporting that nothing is available.
func (s *Session) InsertAttachmentMacro(ctx context.Context, macro Macro) error {
	if err := s.OpenEditor(ctx); err != nil {
		return err
	}
	if err := s.typeInEditor(ctx, remote.KeyDocumentEnd, ""); err != nil {
		return errors.Errorf("moving cursor: %w", err)
	}
	if err := s.click(ctx, s.sel.InsertMenu); err != nil {
		return errors.Errorf("opening insert menu: %w", err)
	}
	if err := s.click(ctx, s.sel.InsertMacro); err != nil {
		return errors.Errorf("opening macro browser: %w", err)
	}
	if err := s.sendKeys(ctx, s.sel.MacroSearch, macro.Search); err != nil {
		return errors.Errorf("searching macro %s: %w", macro.Name, err)
	}
	if err := s.click(ctx, macro.Option); err != nil {
		return errors.Errorf("choosing macro %s: %w", macro.Name, err)
	}
	if err := retry.Until(ctx, s.policy, func(ctx context.Context) (bool, error) {
		el, err := s.driver.Find(ctx, s.sel.MacroParamName)
		if err != nil {
			return false, err
		}
		text, err := el.Text(ctx)
		if err != nil {
			return false, err
		}
		return text != s.sentinels.NoAttachments, nil
	}); err != nil {
		return errors.Errorf("waiting for attachment in macro browser: %w", err)
	}
	if err := s.clickOnce(ctx, s.sel.DialogOK); err != nil {
		return errors.Errorf("confirming macro: %w", err)
	}
	if err := s.waitForMarker(ctx, s.sel.MacroMarker); err != nil {
		return errors.Errorf("waiting for macro in body: %w", err)
	}
	return s.Publish(ctx)
}

// 🖼️ InsertAttachedImage embeds the page's first attachment as an image and publishes.
func (s *Session) InsertAttachedImage(ctx context.Context) error {
	if err := s.OpenEditor(ctx); err != nil {
		return err
	}
	if err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.typeInEditor(ctx, remote.KeyDocumentEnd, "")
	}); err != nil {
		return errors.Errorf("moving cursor: %w", err)
	}
	if err := s.clickOnce(ctx, s.sel.InsertFilesTrigger); err != nil {
		return errors.Errorf("opening file picker: %w", err)
	}
	if err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		files, err := s.driver.FindAll(ctx, s.sel.AttachedFiles)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return errors.Errorf("%w: %s", remote.ErrNotFound, s.sel.AttachedFiles)
		}
		return files[0].Click(ctx)
	}); err != nil {
		return errors.Errorf("choosing attached file: %w", err)
	}
	if err := s.clickOnce(ctx, s.sel.DialogInsert); err != nil {
		return errors.Errorf("inserting image: %w", err)
	}
	if err := s.waitForMarker(ctx, s.sel.ImageMarker); err != nil {
		return errors.Errorf("waiting for image in body: %w", err)
	}
	return s.Publish(ctx)
}

// EditorBodyHTML returns the HTML of the editor body. The session must be in edit mode.
func (s *Session) EditorBodyHTML(ctx context.Context) (string, error) {
	var out string
	err := s.inEditorFrame(ctx, func(ctx context.Context) error {
		body, err := s.driver.Find(ctx, s.sel.EditorBody)
		if err != nil {
			return err
		}
		out, err = body.HTML(ctx)
		return err
	})
	return out, err
}

func (s *Session) waitForMarker(ctx context.Context, selector string) error {
	return retry.Until(ctx, s.policy, func(ctx context.Context) (bool, error) {
		html, err := s.EditorBodyHTML(ctx)
		if err != nil {
			return false, err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return false, errors.Errorf("parsing editor body: %w", err)
		}
		return doc.Find(selector).Length() > 0, nil
	})
}

// typeInEditor focuses the editor body, optionally moves the cursor with key, then types text.
func (s *Session) typeInEditor(ctx context.Context, key remote.Key, text string) error {
	return s.inEditorFrame(ctx, func(ctx context.Context) error {
		body, err := s.driver.Find(ctx, s.sel.EditorBody)
		if err != nil {
			return err
		}
		if err := body.Click(ctx); err != nil {
			return err
		}
		if key != "" {
			if err := body.Press(ctx, key); err != nil {
				return err
			}
		}
		if text == "" {
			return nil
		}
		return body.SendKeys(ctx, text)
	})
}

func (s *Session) inEditorFrame(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.driver.SwitchToFrame(ctx, s.sel.EditorFrame)
	}); err != nil {
		return errors.Errorf("entering editor frame: %w", err)
	}
	err := fn(ctx)
	if perr := s.driver.SwitchToParent(ctx); perr != nil && err == nil {
		err = errors.Errorf("leaving editor frame: %w", perr)
	}
	return err
}

func (s *Session) click(ctx context.Context, loc remote.Locator) error {
	return retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.clickOnce(ctx, loc)
	})
}

func (s *Session) clickOnce(ctx context.Context, loc remote.Locator) error {
	el, err := s.driver.Find(ctx, loc)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

func (s *Session) sendKeys(ctx context.Context, loc remote.Locator, text string) error {
	return retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.sendKeysOnce(ctx, loc, text)
	})
}

func (s *Session) sendKeysOnce(ctx context.Context, loc remote.Locator, text string) error {
	el, err := s.driver.Find(ctx, loc)
	if err != nil {
		return err
	}
	return el.SendKeys(ctx, text)
}

func (s *Session) submitOnce(ctx context.Context, loc remote.Locator) error {
	el, err := s.driver.Find(ctx, loc)
	if err != nil {
		return err
	}
	return el.Submit(ctx)
}

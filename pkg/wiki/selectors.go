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

package wiki

import "github.com/walteh/pagemigrate/pkg/remote"

// Selectors names every element the session touches in the wiki's web UI.
type Selectors struct {
	LoginUsername remote.Locator
	LoginPassword remote.Locator
	LoginButton   remote.Locator

	PageTitle          remote.Locator
	SecondaryTitle     remote.Locator
	QuickCreate        remote.Locator
	ContentTitle       remote.Locator
	EditorFrame        string
	EditorBody         remote.Locator
	Publish            remote.Locator
	EditPage           remote.Locator
	ViewPage           remote.Locator
	ActionMenu         remote.Locator
	ViewAttachments    remote.Locator
	AttachmentInput    remote.Locator
	AttachmentForm     remote.Locator
	ImportWordDoc      remote.Locator
	WordFileInput      remote.Locator
	WordNext           remote.Locator
	WordOverwrite      remote.Locator
	WordForm           remote.Locator
	WordError          remote.Locator
	InsertMenu         remote.Locator
	InsertMacro        remote.Locator
	MacroSearch        remote.Locator
	MacroParamName     remote.Locator
	DialogOK           remote.Locator
	InsertFilesTrigger remote.Locator
	AttachedFiles      remote.Locator
	DialogInsert       remote.Locator

	// MacroMarker and ImageMarker are CSS selectors matched against the editor body HTML
	MacroMarker string
	ImageMarker string
}

// DefaultSelectors returns the element ids of a stock installation. The test
// installation uses the legacy login form.
func DefaultSelectors(isTesting bool) Selectors {
	s := Selectors{
		LoginUsername: remote.ID("username"),
		LoginPassword: remote.ID("password"),
		LoginButton:   remote.ID("login"),

		PageTitle:          remote.ID("title-text"),
		SecondaryTitle:     remote.CSS("div#content div.aui-message p.title"),
		QuickCreate:        remote.ID("quick-create-page-button"),
		ContentTitle:       remote.ID("content-title"),
		EditorFrame:        "wysiwygTextarea_ifr",
		EditorBody:         remote.ID("tinymce"),
		Publish:            remote.ID("rte-button-publish"),
		EditPage:           remote.ID("editPageLink"),
		ViewPage:           remote.ID("viewPageLink"),
		ActionMenu:         remote.ID("action-menu-link"),
		ViewAttachments:    remote.ID("view-attachments-link"),
		AttachmentInput:    remote.ID("file_0"),
		AttachmentForm:     remote.ID("upload-attachments"),
		ImportWordDoc:      remote.ID("import-word-doc"),
		WordFileInput:      remote.ID("filename"),
		WordNext:           remote.ID("next"),
		WordOverwrite:      remote.ID("overwritepage"),
		WordForm:           remote.ID("importwordform"),
		WordError:          remote.CSS("#importwordform div.aui-message.error"),
		InsertMenu:         remote.ID("rte-button-insert"),
		InsertMacro:        remote.ID("rte-insert-macro"),
		MacroSearch:        remote.ID("macro-browser-search"),
		MacroParamName:     remote.ID("macro-param-name"),
		DialogOK:           remote.CSS(".button-panel-button.ok"),
		InsertFilesTrigger: remote.CSS("#confluence-insert-files a.toolbar-trigger.aui-button"),
		AttachedFiles:      remote.CSS("#attached-files ul.file-list li.attached-file"),
		DialogInsert:       remote.CSS(".button-panel-button.insert"),

		MacroMarker: ".editor-inline-macro",
		ImageMarker: ".confluence-embedded-image",
	}
	if isTesting {
		s.LoginUsername = remote.ID("os_username")
		s.LoginPassword = remote.ID("os_password")
		s.LoginButton = remote.ID("loginButton")
	}
	return s
}

// Macro is an attachment-rendering macro offered by the macro browser.
type Macro struct {
	Name   string
	Search string
	Option remote.Locator
}

var (
	MacroPDF    = Macro{Name: "pdf", Search: "pdf", Option: remote.ID("macro-viewpdf")}
	MacroExcel  = Macro{Name: "excel", Search: "excel", Option: remote.ID("macro-viewxls")}
	MacroSlides = Macro{Name: "slides", Search: "powerpoint", Option: remote.ID("macro-viewppt")}
)

// Sentinels are the texts the UI renders in place of a missing page. They vary between
// installations and versions, so they come from configuration.
type Sentinels struct {
	NotFound       []string
	RecoveryTitles []string
	NoAttachments  string
}

func DefaultSentinels() Sentinels {
	return Sentinels{
		NotFound:       []string{"Page Not Found"},
		RecoveryTitles: []string{"Space Tools"},
		NoAttachments:  "No appropriate attachments",
	}
}

func matchesAny(s string, candidates []string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}

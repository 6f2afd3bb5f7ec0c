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

// Package importer turns a single source file into a wiki page. Each family of file types
// has its own strategy; SelectStrategy maps an extension onto the family.
package importer

import (
	"context"
	"strings"

	"github.com/walteh/pagemigrate/pkg/naming"
	"github.com/walteh/pagemigrate/pkg/source"
	"github.com/walteh/pagemigrate/pkg/wiki"
)

// DefaultProvenanceNote is placed on every page that carries the original as an attachment.
const DefaultProvenanceNote = "Note: This page was imported from share point. The original document had been attached as an attachment."

// Kind names an import strategy.
type Kind string

const (
	KindWordDocument      Kind = "word"
	KindMacroAttachable   Kind = "macro"
	KindImage             Kind = "image"
	KindPlainText         Kind = "text"
	KindGenericAttachment Kind = "attachment"
)

func (k Kind) String() string {
	return string(k)
}

var strategyByExt = map[string]Kind{
	".doc":  KindWordDocument,
	".docx": KindWordDocument,

	".xls":  KindMacroAttachable,
	".xlsx": KindMacroAttachable,
	".pdf":  KindMacroAttachable,
	".ppt":  KindMacroAttachable,
	".pptx": KindMacroAttachable,

	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".bmp":  KindImage,

	".txt": KindPlainText,
	".md":  KindPlainText,
	".csv": KindPlainText,
	".log": KindPlainText,

	".vsd":  KindGenericAttachment,
	".vsdx": KindGenericAttachment,
	".zip":  KindGenericAttachment,
	".rtf":  KindGenericAttachment,
	".odt":  KindGenericAttachment,
	".ods":  KindGenericAttachment,
	".msg":  KindGenericAttachment,
}

var macroByExt = map[string]wiki.Macro{
	".xls":  wiki.MacroExcel,
	".xlsx": wiki.MacroExcel,
	".pdf":  wiki.MacroPDF,
	".ppt":  wiki.MacroSlides,
	".pptx": wiki.MacroSlides,
}

// 🔀 SelectStrategy maps an extension (with or without the dot, any case) onto a strategy kind.
func SelectStrategy(ext string) (Kind, bool) {
	k, ok := strategyByExt[normalizeExt(ext)]
	return k, ok
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Outcome is the result of importing one file. Strategies report failures here instead of
// returning errors so the run can carry on with the next file.
type Outcome struct {
	OK  bool
	Err error
}

func success() Outcome {
	return Outcome{OK: true}
}

func failure(err error) Outcome {
	return Outcome{Err: err}
}

// 📦 Strategy imports one family of file types. The session is positioned on the parent page.
type Strategy interface {
	Kind() Kind
	Import(ctx context.Context, file source.File, page naming.PageName) Outcome
}

// Session is the part of the wiki session the strategies drive.
type Session interface {
	CreatePage(ctx context.Context, title, body string) error
	AttachFile(ctx context.Context, path string) error
	ImportWordDocument(ctx context.Context, path string) error
	PrependNote(ctx context.Context, note string) error
	InsertAttachmentMacro(ctx context.Context, macro wiki.Macro) error
	InsertAttachedImage(ctx context.Context) error
}

// 🗂️ Registry holds one strategy per kind
type Registry struct {
	strategies map[Kind]Strategy
}

// 🏭 NewRegistry creates the strategies over session. An empty note uses DefaultProvenanceNote.
func NewRegistry(session Session, note string) *Registry {
	if note == "" {
		note = DefaultProvenanceNote
	}
	r := &Registry{strategies: map[Kind]Strategy{}}
	for _, s := range []Strategy{
		&WordDocument{session: session, note: note},
		&MacroAttachable{session: session, note: note},
		&Image{session: session, note: note},
		&PlainText{session: session},
		&GenericAttachment{session: session, note: note},
	} {
		r.strategies[s.Kind()] = s
	}
	return r
}

// For returns the strategy for ext, or nil when the extension is not supported.
func (r *Registry) For(ext string) Strategy {
	k, ok := SelectStrategy(ext)
	if !ok {
		return nil
	}
	return r.strategies[k]
}

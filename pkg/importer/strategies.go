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

package importer

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/naming"
	"github.com/walteh/pagemigrate/pkg/source"
	"github.com/walteh/pagemigrate/pkg/wiki"
	"gitlab.com/tozd/go/errors"
)

// 📃 WordDocument converts the document into the page body with the wiki's word import,
// then keeps the original as an attachment.
type WordDocument struct {
	session Session
	note    string
}

func (s *WordDocument) Kind() Kind {
	return KindWordDocument
}

func (s *WordDocument) Import(ctx context.Context, file source.File, page naming.PageName) Outcome {
	logger := zerolog.Ctx(ctx)

	if err := s.session.CreatePage(ctx, page.String(), ""); err != nil {
		return failure(errors.Errorf("creating page: %w", err))
	}
	if err := s.session.ImportWordDocument(ctx, file.Path); err != nil {
		logger.Error().Err(err).Str("file", file.Path).Str("page", page.String()).Msg("word import failed")
		return failure(errors.Errorf("importing word document: %w", err))
	}
	if err := s.session.AttachFile(ctx, file.Path); err != nil {
		return failure(errors.Errorf("attaching original: %w", err))
	}
	if err := s.session.PrependNote(ctx, s.note); err != nil {
		return failure(errors.Errorf("adding note: %w", err))
	}
	return success()
}

// 🧩 MacroAttachable attaches the file and renders it inline with a viewer macro.
type MacroAttachable struct {
	session Session
	note    string
}

func (s *MacroAttachable) Kind() Kind {
	return KindMacroAttachable
}

func (s *MacroAttachable) Import(ctx context.Context, file source.File, page naming.PageName) Outcome {
	macro, ok := macroByExt[file.Ext]
	if !ok {
		return failure(errors.Errorf("no viewer macro for %q", file.Ext))
	}
	if err := s.session.CreatePage(ctx, page.String(), s.note); err != nil {
		return failure(errors.Errorf("creating page: %w", err))
	}
	if err := s.session.AttachFile(ctx, file.Path); err != nil {
		return failure(errors.Errorf("attaching file: %w", err))
	}
	if err := s.session.InsertAttachmentMacro(ctx, macro); err != nil {
		return failure(errors.Errorf("inserting %s macro: %w", macro.Name, err))
	}
	return success()
}

// 🖼️ Image attaches the picture and embeds it in the page body.
type Image struct {
	session Session
	note    string
}

func (s *Image) Kind() Kind {
	return KindImage
}

func (s *Image) Import(ctx context.Context, file source.File, page naming.PageName) Outcome {
	if err := s.session.CreatePage(ctx, page.String(), s.note); err != nil {
		return failure(errors.Errorf("creating page: %w", err))
	}
	if err := s.session.AttachFile(ctx, file.Path); err != nil {
		return failure(errors.Errorf("attaching image: %w", err))
	}
	if err := s.session.InsertAttachedImage(ctx); err != nil {
		return failure(errors.Errorf("embedding image: %w", err))
	}
	return success()
}

// 📝 PlainText uses the file's text as the page body.
type PlainText struct {
	session Session
}

func (s *PlainText) Kind() Kind {
	return KindPlainText
}

func (s *PlainText) Import(ctx context.Context, file source.File, page naming.PageName) Outcome {
	text, err := source.ReadText(file)
	if err != nil {
		return failure(err)
	}
	if err := s.session.CreatePage(ctx, page.String(), text); err != nil {
		return failure(errors.Errorf("creating page: %w", err))
	}
	return success()
}

// 📎 GenericAttachment keeps the file as an attachment of an otherwise empty page.
type GenericAttachment struct {
	session Session
	note    string
}

func (s *GenericAttachment) Kind() Kind {
	return KindGenericAttachment
}

func (s *GenericAttachment) Import(ctx context.Context, file source.File, page naming.PageName) Outcome {
	if err := s.session.CreatePage(ctx, page.String(), s.note); err != nil {
		return failure(errors.Errorf("creating page: %w", err))
	}
	if err := s.session.AttachFile(ctx, file.Path); err != nil {
		return failure(errors.Errorf("attaching file: %w", err))
	}
	return success()
}

var _ Session = (*wiki.Session)(nil)

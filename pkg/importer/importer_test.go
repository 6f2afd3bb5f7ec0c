package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/pagemigrate/pkg/naming"
	"github.com/walteh/pagemigrate/pkg/source"
	"github.com/walteh/pagemigrate/pkg/wiki"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockSession is a mock implementation of Session
type MockSession struct {
	mock.Mock
}

func (m *MockSession) CreatePage(ctx context.Context, title, body string) error {
	return m.Called(ctx, title, body).Error(0)
}

func (m *MockSession) AttachFile(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockSession) ImportWordDocument(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockSession) PrependNote(ctx context.Context, note string) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockSession) InsertAttachmentMacro(ctx context.Context, macro wiki.Macro) error {
	return m.Called(ctx, macro).Error(0)
}

func (m *MockSession) InsertAttachedImage(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func fileAt(root, rel string) source.File {
	return source.NewFile(root, filepath.Join(root, filepath.FromSlash(rel)), "")
}

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		ext  string
		want Kind
		ok   bool
	}{
		{".doc", KindWordDocument, true},
		{".DOCX", KindWordDocument, true},
		{"docx", KindWordDocument, true},
		{".xls", KindMacroAttachable, true},
		{".xlsx", KindMacroAttachable, true},
		{".pdf", KindMacroAttachable, true},
		{".pptx", KindMacroAttachable, true},
		{".jpg", KindImage, true},
		{".JPEG", KindImage, true},
		{".png", KindImage, true},
		{".gif", KindImage, true},
		{".txt", KindPlainText, true},
		{".md", KindPlainText, true},
		{".vsd", KindGenericAttachment, true},
		{".vsdx", KindGenericAttachment, true},
		{".exe", "", false},
		{"", "", false},
		{".migrated", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, ok := SelectStrategy(tt.ext)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryFor(t *testing.T) {
	r := NewRegistry(&MockSession{}, "")

	for _, ext := range []string{".docx", ".pdf", ".png", ".txt", ".vsdx"} {
		s := r.For(ext)
		require.NotNil(t, s, ext)
		k, _ := SelectStrategy(ext)
		assert.Equal(t, k, s.Kind())
	}
	assert.Nil(t, r.For(".exe"))
}

func TestWordDocument(t *testing.T) {
	root := filepath.Join("/", "Import")
	file := fileAt(root, "Specs/design.docx")

	t.Run("success", func(t *testing.T) {
		s := &MockSession{}
		s.On("CreatePage", mock.Anything, "design", "").Return(nil).Once()
		s.On("ImportWordDocument", mock.Anything, file.Path).Return(nil).Once()
		s.On("AttachFile", mock.Anything, file.Path).Return(nil).Once()
		s.On("PrependNote", mock.Anything, DefaultProvenanceNote).Return(nil).Once()

		out := NewRegistry(s, "").For(".docx").Import(context.Background(), file, "design")
		assert.True(t, out.OK)
		assert.NoError(t, out.Err)
		s.AssertExpectations(t)
	})

	t.Run("import_failure_stops_before_attach", func(t *testing.T) {
		s := &MockSession{}
		s.On("CreatePage", mock.Anything, "design", "").Return(nil)
		s.On("ImportWordDocument", mock.Anything, file.Path).Return(&wiki.WordImportError{Step: "uploading file", Err: errors.New("boom")})

		out := NewRegistry(s, "").For(".docx").Import(context.Background(), file, "design")
		assert.False(t, out.OK)
		assert.ErrorIs(t, out.Err, wiki.ErrWordImportFailed)
		s.AssertNotCalled(t, "AttachFile", mock.Anything, mock.Anything)
		s.AssertNotCalled(t, "PrependNote", mock.Anything, mock.Anything)
	})
}

func TestMacroAttachable(t *testing.T) {
	root := filepath.Join("/", "Import")

	tests := []struct {
		rel   string
		macro wiki.Macro
	}{
		{"Finance/Q1/report.pdf", wiki.MacroPDF},
		{"Finance/budget.xlsx", wiki.MacroExcel},
		{"Finance/old.xls", wiki.MacroExcel},
		{"Talks/deck.pptx", wiki.MacroSlides},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			file := fileAt(root, tt.rel)
			s := &MockSession{}
			s.On("CreatePage", mock.Anything, "page", "custom note").Return(nil).Once()
			s.On("AttachFile", mock.Anything, file.Path).Return(nil).Once()
			s.On("InsertAttachmentMacro", mock.Anything, tt.macro).Return(nil).Once()

			out := NewRegistry(s, "custom note").For(file.Ext).Import(context.Background(), file, "page")
			assert.True(t, out.OK)
			s.AssertExpectations(t)
		})
	}
}

func TestMacroAttachableAttachFailure(t *testing.T) {
	file := fileAt("/Import", "report.pdf")
	s := &MockSession{}
	s.On("CreatePage", mock.Anything, "report", DefaultProvenanceNote).Return(nil)
	s.On("AttachFile", mock.Anything, file.Path).Return(errors.New("upload form missing"))

	out := NewRegistry(s, "").For(".pdf").Import(context.Background(), file, "report")
	assert.False(t, out.OK)
	assert.ErrorContains(t, out.Err, "attaching file")
	s.AssertNotCalled(t, "InsertAttachmentMacro", mock.Anything, mock.Anything)
}

func TestImage(t *testing.T) {
	file := fileAt("/Import", "Photos/team.png")
	s := &MockSession{}
	s.On("CreatePage", mock.Anything, "team", DefaultProvenanceNote).Return(nil).Once()
	s.On("AttachFile", mock.Anything, file.Path).Return(nil).Once()
	s.On("InsertAttachedImage", mock.Anything).Return(nil).Once()

	out := NewRegistry(s, "").For(".png").Import(context.Background(), file, "team")
	assert.True(t, out.OK)
	s.AssertExpectations(t)
}

func TestPlainText(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "readme.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two"), 0o644))

	s := &MockSession{}
	s.On("CreatePage", mock.Anything, "readme", "line one\nline two").Return(nil).Once()

	out := NewRegistry(s, "").For(".txt").Import(context.Background(), source.NewFile(root, path, ""), "readme")
	assert.True(t, out.OK)
	s.AssertExpectations(t)
	s.AssertNotCalled(t, "AttachFile", mock.Anything, mock.Anything)
}

func TestPlainTextUnreadable(t *testing.T) {
	root := t.TempDir()
	s := &MockSession{}

	out := NewRegistry(s, "").For(".txt").Import(context.Background(), fileAt(root, "gone.txt"), "gone")
	assert.False(t, out.OK)
	assert.Error(t, out.Err)
	s.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenericAttachment(t *testing.T) {
	file := fileAt("/Import", "Diagrams/network.vsdx")
	s := &MockSession{}
	s.On("CreatePage", mock.Anything, "network", DefaultProvenanceNote).Return(nil).Once()
	s.On("AttachFile", mock.Anything, file.Path).Return(nil).Once()

	out := NewRegistry(s, "").For(".vsdx").Import(context.Background(), file, naming.PageName("network"))
	assert.True(t, out.OK)
	s.AssertExpectations(t)
}
